package payments

type CheckoutRequest struct {
	CourseID int64 `json:"course_id" validate:"required,gt=0"`
}

type RecordPaymentRequest struct {
	UserID   int64   `json:"user_id" validate:"required,gt=0"`
	CourseID int64   `json:"course_id" validate:"required,gt=0"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Method   string  `json:"payment_method" validate:"required,oneof=cash transfer"`
}
