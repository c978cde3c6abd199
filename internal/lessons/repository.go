package lessons

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-lms/atlas/internal/authz"
)

// ErrNotFound indicates the lesson does not exist.
var ErrNotFound = errors.New("lesson not found")

// ListFilter narrows lesson listings.
type ListFilter struct {
	CourseID *int64
}

// Repository defines persistence operations for lessons.
type Repository interface {
	Get(ctx context.Context, id int64) (*Lesson, error)
	List(ctx context.Context, scope authz.Scope, filter ListFilter, limit, offset int) ([]Lesson, int, error)
	Create(ctx context.Context, lesson Lesson) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SetStatus(ctx context.Context, id int64, status authz.Status) error
	Delete(ctx context.Context, id int64) error
	CourseExists(ctx context.Context, courseID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const lessonColumns = `id, course_id, title, description, preview_url, video_url, status, owner_id, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Lesson, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id)
	lesson, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lesson, nil
}

func (r *repository) List(ctx context.Context, scope authz.Scope, filter ListFilter, limit, offset int) ([]Lesson, int, error) {
	if scope.None() {
		return []Lesson{}, 0, nil
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
	if filter.CourseID != nil {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, *filter.CourseID)
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
		fmt.Sprintf("SELECT COUNT(*) FROM lessons %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM lessons %s ORDER BY id LIMIT $%d OFFSET $%d",
		lessonColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lessons := make([]Lesson, 0, limit)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, 0, err
		}
		lessons = append(lessons, *lesson)
	}
	return lessons, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, lesson Lesson) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lessons (course_id, title, description, preview_url, video_url, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		lesson.CourseID, lesson.Title, lesson.Description, textOrNil(lesson.PreviewURL),
		lesson.VideoURL, lesson.Status, lesson.OwnerID,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE lessons SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"title", "description", "preview_url", "video_url"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status authz.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lessons SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CourseExists(ctx context.Context, courseID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&exists)
	return exists, err
}

func scanLesson(row pgx.Row) (*Lesson, error) {
	var l Lesson
	var preview pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&l.ID, &l.CourseID, &l.Title, &l.Description, &preview, &l.VideoURL,
		&l.Status, &l.OwnerID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if preview.Valid {
		l.PreviewURL = &preview.String
	}
	l.CreatedAt = createdAt.Time
	l.UpdatedAt = updatedAt.Time
	return &l, nil
}

func textOrNil(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
