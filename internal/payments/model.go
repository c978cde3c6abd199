package payments

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a payment through the checkout flow.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusExpired Status = "expired"
)

// Method is how the payment was made. Card payments go through the hosted
// checkout; cash and transfer are recorded manually by staff.
type Method string

const (
	MethodCard     Method = "card"
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
)

// Payment records a purchase attempt for a course. Reference is the stable
// external identifier handed to the payment provider.
type Payment struct {
	ID              int64     `json:"id"`
	Reference       uuid.UUID `json:"reference"`
	UserID          int64     `json:"user_id"`
	CourseID        int64     `json:"course"`
	Amount          float64   `json:"amount"`
	Method          Method    `json:"payment_method"`
	Status          Status    `json:"status"`
	StripeSessionID *string   `json:"-"`
	PaymentURL      *string   `json:"payment_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
