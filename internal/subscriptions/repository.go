package subscriptions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no subscription exists for the pair.
	ErrNotFound = errors.New("subscription not found")
	// ErrDuplicate indicates the pair is already subscribed.
	ErrDuplicate = errors.New("subscription already exists")
	// ErrCourseNotFound indicates the referenced course does not exist.
	ErrCourseNotFound = errors.New("course not found")
)

// Repository defines persistence operations for subscriptions.
type Repository interface {
	Exists(ctx context.Context, userID, courseID int64) (bool, error)
	Create(ctx context.Context, userID, courseID int64) (*Subscription, error)
	Delete(ctx context.Context, userID, courseID int64) error
	ListByUser(ctx context.Context, userID int64) ([]Subscription, error)
	SubscriberEmails(ctx context.Context, courseID int64) ([]string, error)
	CourseStatus(ctx context.Context, courseID int64) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Exists(ctx context.Context, userID, courseID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, userID, courseID int64) (*Subscription, error) {
	var sub Subscription
	var createdAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, course_id)
		VALUES ($1, $2)
		RETURNING id, user_id, course_id, created_at`,
		userID, courseID,
	).Scan(&sub.ID, &sub.UserID, &sub.CourseID, &createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	sub.CreatedAt = createdAt.Time
	return &sub, nil
}

func (r *repository) Delete(ctx context.Context, userID, courseID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, course_id, created_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.CourseID, &createdAt); err != nil {
			return nil, err
		}
		sub.CreatedAt = createdAt.Time
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *repository) SubscriberEmails(ctx context.Context, courseID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.email
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE s.course_id = $1 AND u.is_active
		ORDER BY u.email`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *repository) CourseStatus(ctx context.Context, courseID int64) (string, error) {
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM courses WHERE id = $1`, courseID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrCourseNotFound
	}
	return status, err
}
