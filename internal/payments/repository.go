package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the payment does not exist.
var ErrNotFound = errors.New("payment not found")

// ListFilter narrows payment listings. A nil UserID means no user
// restriction and is only set for privileged callers.
type ListFilter struct {
	UserID   *int64
	CourseID *int64
	Method   *Method
}

// Repository defines persistence operations for payments.
type Repository interface {
	Get(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Payment, int, error)
	Create(ctx context.Context, payment Payment) (int64, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	ExpireStale(ctx context.Context, olderThanHours int) (int64, error)
	CoursePrice(ctx context.Context, courseID int64) (title string, price float64, err error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `id, reference, user_id, course_id, amount, payment_method, status, stripe_session_id, payment_url, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Payment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Payment, int, error) {
	var conditions []string
	var args []any
	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, *filter.UserID)
	}
	if filter.CourseID != nil {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, *filter.CourseID)
	}
	if filter.Method != nil {
		conditions = append(conditions, fmt.Sprintf("payment_method = $%d", len(args)+1))
		args = append(args, *filter.Method)
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
		fmt.Sprintf("SELECT COUNT(*) FROM payments %s", where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM payments %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		paymentColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := make([]Payment, 0, limit)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *payment)
	}
	return payments, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, payment Payment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payments (reference, user_id, course_id, amount, payment_method, status, stripe_session_id, payment_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		payment.Reference, payment.UserID, payment.CourseID, payment.Amount,
		payment.Method, payment.Status,
		textOrNil(payment.StripeSessionID), textOrNil(payment.PaymentURL),
	).Scan(&id)
	return id, err
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ExpireStale(ctx context.Context, olderThanHours int) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET status = $1
		WHERE status = $2 AND created_at < NOW() - make_interval(hours => $3)`,
		StatusExpired, StatusPending, olderThanHours)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) CoursePrice(ctx context.Context, courseID int64) (string, float64, error) {
	var title string
	var price float64
	err := r.pool.QueryRow(ctx,
		`SELECT title, price FROM courses WHERE id = $1`, courseID).Scan(&title, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, ErrCourseNotFound
	}
	return title, price, err
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	var sessionID, paymentURL pgtype.Text
	var createdAt pgtype.Timestamptz
	err := row.Scan(
		&p.ID, &p.Reference, &p.UserID, &p.CourseID, &p.Amount,
		&p.Method, &p.Status, &sessionID, &paymentURL, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if sessionID.Valid {
		p.StripeSessionID = &sessionID.String
	}
	if paymentURL.Valid {
		p.PaymentURL = &paymentURL.String
	}
	p.CreatedAt = createdAt.Time
	return &p, nil
}

func textOrNil(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
