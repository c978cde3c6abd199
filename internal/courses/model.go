package courses

import (
	"time"

	"github.com/atlas-lms/atlas/internal/authz"
)

// Course is a sellable unit of learning content. Owner and status drive the
// authorization rules; LessonsCount is derived at read time.
type Course struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	PreviewURL   *string      `json:"preview,omitempty"`
	Price        float64      `json:"price"`
	Status       authz.Status `json:"status"`
	OwnerID      int64        `json:"owner_id"`
	LessonsCount int          `json:"lessons_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// State exposes the authorization-relevant facts of the course.
func (c *Course) State() authz.ObjectState {
	return authz.ObjectState{OwnerID: c.OwnerID, Status: c.Status}
}
