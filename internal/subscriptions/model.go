package subscriptions

import "time"

// Subscription links a user to a course they follow. One row per
// (user, course) pair, enforced by a unique constraint.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CourseID  int64     `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleResult reports the outcome of a toggle request.
type ToggleResult struct {
	Subscribed bool   `json:"subscribed"`
	Message    string `json:"message"`
}
