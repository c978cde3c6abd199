package lessons

import (
	"time"

	"github.com/atlas-lms/atlas/internal/authz"
)

// Lesson belongs to a course and carries its own owner and approval status,
// subject to the same authorization rules as courses.
type Lesson struct {
	ID          int64        `json:"id"`
	CourseID    int64        `json:"course"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	PreviewURL  *string      `json:"preview,omitempty"`
	VideoURL    string       `json:"video_url"`
	Status      authz.Status `json:"status"`
	OwnerID     int64        `json:"owner_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// State exposes the authorization-relevant facts of the lesson.
func (l *Lesson) State() authz.ObjectState {
	return authz.ObjectState{OwnerID: l.OwnerID, Status: l.Status}
}
