package courses

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-lms/atlas/internal/authz"
)

// ErrNotFound indicates the course does not exist.
var ErrNotFound = errors.New("course not found")

// Repository defines persistence operations for courses.
type Repository interface {
	Get(ctx context.Context, id int64) (*Course, error)
	List(ctx context.Context, scope authz.Scope, limit, offset int) ([]Course, int, error)
	Create(ctx context.Context, course Course) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SetStatus(ctx context.Context, id int64, status authz.Status) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const courseSelect = `
	SELECT c.id, c.title, c.description, c.preview_url, c.price, c.status,
	       c.owner_id, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS lessons_count
	FROM courses c`

func (r *repository) Get(ctx context.Context, id int64) (*Course, error) {
	row := r.pool.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id)
	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *repository) List(ctx context.Context, scope authz.Scope, limit, offset int) ([]Course, int, error) {
	if scope.None() {
		return []Course{}, 0, nil
	}

	where := ""
	var args []any
	if ownerID, ok := scope.OwnedBy(); ok {
		where = "WHERE c.owner_id = $1"
		args = append(args, ownerID)
	} else if scope.ApprovedOnly() {
		where = "WHERE c.status = $1"
		args = append(args, authz.StatusApproved)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM courses c %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("%s %s ORDER BY c.id LIMIT $%d OFFSET $%d",
		courseSelect, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]Course, 0, limit)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *course)
	}
	return courses, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, course Course) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO courses (title, description, preview_url, price, status, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		course.Title, course.Description, textOrNil(course.PreviewURL),
		course.Price, course.Status, course.OwnerID,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := "UPDATE courses SET updated_at = NOW()"
	var args []any
	argPos := 1

	for _, col := range []string{"title", "description", "preview_url", "price"} {
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
		`UPDATE courses SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*Course, error) {
	var c Course
	var preview pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &preview, &c.Price, &c.Status,
		&c.OwnerID, &createdAt, &updatedAt, &c.LessonsCount,
	)
	if err != nil {
		return nil, err
	}
	if preview.Valid {
		c.PreviewURL = &preview.String
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func textOrNil(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
