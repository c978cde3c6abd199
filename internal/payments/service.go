package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/atlas-lms/atlas/internal/authz"
	"github.com/atlas-lms/atlas/internal/payments/stripe"
	"github.com/atlas-lms/atlas/internal/platform/httpx"
)

// ErrCourseNotFound indicates the referenced course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// Gateway is the slice of the payment provider the checkout flow uses.
type Gateway interface {
	CreateProduct(ctx context.Context, name string) (*stripe.Product, error)
	CreatePrice(ctx context.Context, productID string, amount int64, currency string) (*stripe.Price, error)
	CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string) (*stripe.CheckoutSession, error)
}

// Service implements payment business rules.
type Service struct {
	repo       Repository
	gateway    Gateway
	logger     *slog.Logger
	successURL string
	cancelURL  string
}

// NewService constructs a Service. A nil logger falls back to the default.
func NewService(logger *slog.Logger, repo Repository, gateway Gateway, successURL, cancelURL string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		gateway:    gateway,
		logger:     logger,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// Checkout opens a hosted payment page for the course and records a pending
// card payment carrying its URL. Provider failures surface as upstream
// errors so the handler can answer with a 5xx rather than blaming the
// client.
func (s *Service) Checkout(ctx context.Context, p *authz.Principal, courseID int64) (*Payment, error) {
	if p == nil {
		return nil, authz.ErrDenied
	}

	title, price, err := s.repo.CoursePrice(ctx, courseID)
	if err != nil {
		return nil, err
	}

	product, err := s.gateway.CreateProduct(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("%w: create product: %w", httpx.ErrUpstream, err)
	}
	cents := int64(math.Round(price * 100))
	stripePrice, err := s.gateway.CreatePrice(ctx, product.ID, cents, "usd")
	if err != nil {
		return nil, fmt.Errorf("%w: create price: %w", httpx.ErrUpstream, err)
	}
	session, err := s.gateway.CreateCheckoutSession(ctx, stripePrice.ID, s.successURL, s.cancelURL)
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %w", httpx.ErrUpstream, err)
	}

	payment := Payment{
		Reference:       uuid.New(),
		UserID:          p.UserID,
		CourseID:        courseID,
		Amount:          price,
		Method:          MethodCard,
		Status:          StatusPending,
		StripeSessionID: &session.ID,
		PaymentURL:      &session.URL,
	}
	id, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.logger.Info("checkout session created",
		slog.Int64("payment_id", id),
		slog.Int64("course_id", courseID),
		slog.String("session_id", session.ID))
	return s.repo.Get(ctx, id)
}

// Record stores a manual (cash or transfer) payment. Staff only.
func (s *Service) Record(ctx context.Context, p *authz.Principal, req RecordPaymentRequest) (*Payment, error) {
	if p == nil || (!p.Superuser && !p.Roles.Has(authz.RoleModerator)) {
		return nil, authz.ErrDenied
	}

	_, _, err := s.repo.CoursePrice(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	payment := Payment{
		Reference: uuid.New(),
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		Amount:    req.Amount,
		Method:    Method(req.Method),
		Status:    StatusPaid,
	}
	id, err := s.repo.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Get returns a payment. Users see their own; staff see all.
func (s *Service) Get(ctx context.Context, p *authz.Principal, id int64) (*Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, authz.ErrDenied
	}
	if payment.UserID != p.UserID && !p.Superuser && !p.Roles.Has(authz.RoleModerator) {
		return nil, ErrNotFound
	}
	return payment, nil
}

// List returns payments matching the filter. Non-privileged callers are
// locked to their own rows regardless of the requested filter.
func (s *Service) List(ctx context.Context, p *authz.Principal, filter ListFilter, limit, offset int) ([]Payment, int, error) {
	if p == nil {
		return nil, 0, authz.ErrDenied
	}
	if !p.Superuser && !p.Roles.Has(authz.RoleModerator) {
		filter.UserID = &p.UserID
	}
	return s.repo.List(ctx, filter, limit, offset)
}
