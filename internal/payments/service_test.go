package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lms/atlas/internal/authz"
	"github.com/atlas-lms/atlas/internal/payments/stripe"
	"github.com/atlas-lms/atlas/internal/platform/httpx"
)

type fakeRepo struct {
	nextID   int64
	payments map[int64]*Payment
	courses  map[int64]struct {
		title string
		price float64
	}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:   1,
		payments: make(map[int64]*Payment),
		courses: make(map[int64]struct {
			title string
			price float64
		}),
	}
}

func (f *fakeRepo) addCourse(id int64, title string, price float64) {
	f.courses[id] = struct {
		title string
		price float64
	}{title, price}
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Payment, error) {
	payment, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter, limit, offset int) ([]Payment, int, error) {
	var matched []Payment
	for id := int64(1); id < f.nextID; id++ {
		payment, ok := f.payments[id]
		if !ok {
			continue
		}
		if filter.UserID != nil && payment.UserID != *filter.UserID {
			continue
		}
		if filter.CourseID != nil && payment.CourseID != *filter.CourseID {
			continue
		}
		if filter.Method != nil && payment.Method != *filter.Method {
			continue
		}
		matched = append(matched, *payment)
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeRepo) Create(_ context.Context, payment Payment) (int64, error) {
	payment.ID = f.nextID
	payment.CreatedAt = time.Now()
	f.nextID++
	f.payments[payment.ID] = &payment
	return payment.ID, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id int64, status Status) error {
	payment, ok := f.payments[id]
	if !ok {
		return ErrNotFound
	}
	payment.Status = status
	return nil
}

func (f *fakeRepo) ExpireStale(_ context.Context, _ int) (int64, error) {
	var expired int64
	for _, payment := range f.payments {
		if payment.Status == StatusPending {
			payment.Status = StatusExpired
			expired++
		}
	}
	return expired, nil
}

func (f *fakeRepo) CoursePrice(_ context.Context, courseID int64) (string, float64, error) {
	course, ok := f.courses[courseID]
	if !ok {
		return "", 0, ErrCourseNotFound
	}
	return course.title, course.price, nil
}

type fakeGateway struct {
	failOn    string
	priceArgs []int64
}

func (f *fakeGateway) CreateProduct(_ context.Context, name string) (*stripe.Product, error) {
	if f.failOn == "product" {
		return nil, errors.New("stripe down")
	}
	return &stripe.Product{ID: "prod_1", Name: name}, nil
}

func (f *fakeGateway) CreatePrice(_ context.Context, productID string, amount int64, currency string) (*stripe.Price, error) {
	if f.failOn == "price" {
		return nil, errors.New("stripe down")
	}
	f.priceArgs = append(f.priceArgs, amount)
	return &stripe.Price{ID: "price_1", Product: productID, UnitAmount: amount, Currency: currency}, nil
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, priceID, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	if f.failOn == "session" {
		return nil, errors.New("stripe down")
	}
	return &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}, nil
}

func student(id int64) *authz.Principal {
	return &authz.Principal{UserID: id, Roles: authz.ResolveRoles([]string{"student"})}
}

func moderator(id int64) *authz.Principal {
	return &authz.Principal{UserID: id, Roles: authz.ResolveRoles([]string{"moderator"})}
}

func TestCheckoutCreatesPendingPayment(t *testing.T) {
	repo := newFakeRepo()
	repo.addCourse(1, "Go from Scratch", 49.99)
	gateway := &fakeGateway{}
	svc := NewService(nil, repo, gateway, "https://app.test/ok", "https://app.test/cancel")

	payment, err := svc.Checkout(context.Background(), student(3), 1)
	require.NoError(t, err)
	require.Equal(t, StatusPending, payment.Status)
	require.Equal(t, MethodCard, payment.Method)
	require.Equal(t, 49.99, payment.Amount)
	require.NotNil(t, payment.PaymentURL)
	require.Equal(t, "https://checkout.stripe.test/cs_1", *payment.PaymentURL)
	require.NotEqual(t, payment.Reference.String(), "00000000-0000-0000-0000-000000000000")

	// Price is sent in cents.
	require.Equal(t, []int64{4999}, gateway.priceArgs)
}

func TestCheckoutUnknownCourse(t *testing.T) {
	svc := NewService(nil, newFakeRepo(), &fakeGateway{}, "", "")
	_, err := svc.Checkout(context.Background(), student(3), 404)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCheckoutGatewayFailureIsUpstream(t *testing.T) {
	for _, stage := range []string{"product", "price", "session"} {
		repo := newFakeRepo()
		repo.addCourse(1, "c", 10)
		svc := NewService(nil, repo, &fakeGateway{failOn: stage}, "", "")

		_, err := svc.Checkout(context.Background(), student(3), 1)
		require.ErrorIs(t, err, httpx.ErrUpstream, "stage %s", stage)
		require.Empty(t, repo.payments, "no payment should be recorded when %s fails", stage)
	}
}

func TestListLocksNonPrivilegedToOwnRows(t *testing.T) {
	repo := newFakeRepo()
	repo.addCourse(1, "c", 10)
	gateway := &fakeGateway{}
	svc := NewService(nil, repo, gateway, "", "")
	ctx := context.Background()

	_, err := svc.Checkout(ctx, student(3), 1)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, student(4), 1)
	require.NoError(t, err)

	mine, total, err := svc.List(ctx, student(3), ListFilter{}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, mine, 1)
	require.Equal(t, int64(3), mine[0].UserID)

	// A user cannot widen the filter to someone else's rows.
	otherID := int64(4)
	mine, _, err = svc.List(ctx, student(3), ListFilter{UserID: &otherID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, int64(3), mine[0].UserID)

	all, total, err := svc.List(ctx, moderator(9), ListFilter{}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 2)
}

func TestRecordManualPayment(t *testing.T) {
	repo := newFakeRepo()
	repo.addCourse(1, "c", 10)
	svc := NewService(nil, repo, &fakeGateway{}, "", "")
	ctx := context.Background()

	_, err := svc.Record(ctx, student(3), RecordPaymentRequest{UserID: 3, CourseID: 1, Amount: 10, Method: "cash"})
	require.ErrorIs(t, err, authz.ErrDenied)

	payment, err := svc.Record(ctx, moderator(9), RecordPaymentRequest{UserID: 3, CourseID: 1, Amount: 10, Method: "cash"})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, payment.Status)
	require.Equal(t, MethodCash, payment.Method)
}

func TestGetPaymentOwnership(t *testing.T) {
	repo := newFakeRepo()
	repo.addCourse(1, "c", 10)
	svc := NewService(nil, repo, &fakeGateway{}, "", "")
	ctx := context.Background()

	created, err := svc.Checkout(ctx, student(3), 1)
	require.NoError(t, err)

	_, err = svc.Get(ctx, student(4), created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, student(3), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	got, err = svc.Get(ctx, moderator(9), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}
