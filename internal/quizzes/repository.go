package quizzes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-lms/atlas/internal/authz"
)

var (
	// ErrNotFound indicates the quiz does not exist.
	ErrNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates the question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAnswerNotFound indicates the answer does not exist.
	ErrAnswerNotFound = errors.New("answer not found")
)

// Repository defines persistence operations for quizzes, questions and
// answers.
type Repository interface {
	GetQuiz(ctx context.Context, id int64) (*Quiz, error)
	ListQuizzes(ctx context.Context, scope authz.Scope, courseID *int64, limit, offset int) ([]Quiz, int, error)
	CreateQuiz(ctx context.Context, quiz Quiz) (int64, error)
	UpdateQuiz(ctx context.Context, id int64, updates map[string]any) error
	SetQuizStatus(ctx context.Context, id int64, status authz.Status) error
	DeleteQuiz(ctx context.Context, id int64) error
	CourseExists(ctx context.Context, courseID int64) (bool, error)

	GetQuestion(ctx context.Context, id int64) (*Question, error)
	ListQuestions(ctx context.Context, quizID int64) ([]Question, error)
	CreateQuestion(ctx context.Context, q Question) (int64, error)
	UpdateQuestion(ctx context.Context, id int64, updates map[string]any) error
	DeleteQuestion(ctx context.Context, id int64) error

	GetAnswer(ctx context.Context, id int64) (*Answer, error)
	ListAnswers(ctx context.Context, questionID int64) ([]Answer, error)
	CreateAnswer(ctx context.Context, a Answer) (int64, error)
	UpdateAnswer(ctx context.Context, id int64, updates map[string]any) error
	DeleteAnswer(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const quizColumns = `id, course_id, title, description, status, owner_id, created_at, updated_at`

func (r *repository) GetQuiz(ctx context.Context, id int64) (*Quiz, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id)
	quiz, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return quiz, nil
}

func (r *repository) ListQuizzes(ctx context.Context, scope authz.Scope, courseID *int64, limit, offset int) ([]Quiz, int, error) {
	if scope.None() {
		return []Quiz{}, 0, nil
	}

	var conditions []string
	var args []any
	if ownerID, ok := scope.OwnedBy(); ok {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)+1))
		args = append(args, ownerID)
	} else if scope.ApprovedOnly() {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, authz.StatusApproved)
	}
	if courseID != nil {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, *courseID)
	}

	where := ""
	for i, cond := range conditions {
		if i == 0 {
			where = "WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM quizzes %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM quizzes %s ORDER BY id LIMIT $%d OFFSET $%d",
		quizColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quizzes := make([]Quiz, 0, limit)
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, *quiz)
	}
	return quizzes, total, rows.Err()
}

func (r *repository) CreateQuiz(ctx context.Context, quiz Quiz) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quizzes (course_id, title, description, status, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		quiz.CourseID, quiz.Title, textOrNil(quiz.Description), quiz.Status, quiz.OwnerID,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateQuiz(ctx context.Context, id int64, updates map[string]any) error {
	return r.update(ctx, "quizzes", []string{"title", "description"}, id, updates, ErrNotFound)
}

func (r *repository) SetQuizStatus(ctx context.Context, id int64, status authz.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteQuiz(ctx context.Context, id int64) error {
	return r.delete(ctx, `DELETE FROM quizzes WHERE id = $1`, id, ErrNotFound)
}

func (r *repository) CourseExists(ctx context.Context, courseID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&exists)
	return exists, err
}

const questionSelect = `
	SELECT q.id, q.quiz_id, q.text, q.question_type, q.owner_id, z.status
	FROM questions q
	JOIN quizzes z ON z.id = q.quiz_id`

func (r *repository) GetQuestion(ctx context.Context, id int64) (*Question, error) {
	row := r.pool.QueryRow(ctx, questionSelect+` WHERE q.id = $1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *repository) ListQuestions(ctx context.Context, quizID int64) ([]Question, error) {
	rows, err := r.pool.Query(ctx, questionSelect+` WHERE q.quiz_id = $1 ORDER BY q.id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *repository) CreateQuestion(ctx context.Context, q Question) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO questions (quiz_id, text, question_type, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		q.QuizID, q.Text, q.Type, q.OwnerID,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateQuestion(ctx context.Context, id int64, updates map[string]any) error {
	return r.update(ctx, "questions", []string{"text", "question_type"}, id, updates, ErrQuestionNotFound)
}

func (r *repository) DeleteQuestion(ctx context.Context, id int64) error {
	return r.delete(ctx, `DELETE FROM questions WHERE id = $1`, id, ErrQuestionNotFound)
}

const answerSelect = `
	SELECT a.id, a.question_id, a.text, a.is_correct, q.owner_id, z.status
	FROM answers a
	JOIN questions q ON q.id = a.question_id
	JOIN quizzes z ON z.id = q.quiz_id`

func (r *repository) GetAnswer(ctx context.Context, id int64) (*Answer, error) {
	row := r.pool.QueryRow(ctx, answerSelect+` WHERE a.id = $1`, id)
	a, err := scanAnswer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) ListAnswers(ctx context.Context, questionID int64) ([]Answer, error) {
	rows, err := r.pool.Query(ctx, answerSelect+` WHERE a.question_id = $1 ORDER BY a.id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

func (r *repository) CreateAnswer(ctx context.Context, a Answer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO answers (question_id, text, is_correct)
		VALUES ($1, $2, $3)
		RETURNING id`,
		a.QuestionID, a.Text, a.IsCorrect,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateAnswer(ctx context.Context, id int64, updates map[string]any) error {
	return r.update(ctx, "answers", []string{"text", "is_correct"}, id, updates, ErrAnswerNotFound)
}

func (r *repository) DeleteAnswer(ctx context.Context, id int64) error {
	return r.delete(ctx, `DELETE FROM answers WHERE id = $1`, id, ErrAnswerNotFound)
}

func (r *repository) update(ctx context.Context, table string, columns []string, id int64, updates map[string]any, notFound error) error {
	query := fmt.Sprintf("UPDATE %s SET", table)
	var args []any
	argPos := 1
	set := ""

	if table != "answers" {
		set = " updated_at = NOW()"
	}
	for _, col := range columns {
		if v, ok := updates[col]; ok {
			if set != "" {
				set += ","
			}
			set += fmt.Sprintf(" %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	if len(args) == 0 {
		return nil
	}

	query += set + fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func (r *repository) delete(ctx context.Context, query string, id int64, notFound error) error {
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func scanQuiz(row pgx.Row) (*Quiz, error) {
	var q Quiz
	var description pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&q.ID, &q.CourseID, &q.Title, &description, &q.Status, &q.OwnerID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		q.Description = &description.String
	}
	q.CreatedAt = createdAt.Time
	q.UpdatedAt = updatedAt.Time
	return &q, nil
}

func scanQuestion(row pgx.Row) (*Question, error) {
	var q Question
	if err := row.Scan(&q.ID, &q.QuizID, &q.Text, &q.Type, &q.OwnerID, &q.QuizStatus); err != nil {
		return nil, err
	}
	return &q, nil
}

func scanAnswer(row pgx.Row) (*Answer, error) {
	var a Answer
	if err := row.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect, &a.QuestionOwner, &a.QuizStatus); err != nil {
		return nil, err
	}
	return &a, nil
}

func textOrNil(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
