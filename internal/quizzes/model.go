package quizzes

import (
	"time"

	"github.com/atlas-lms/atlas/internal/authz"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionText           QuestionType = "text"
)

// Quiz is a graded test attached to a course.
type Quiz struct {
	ID          int64        `json:"id"`
	CourseID    int64        `json:"course"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      authz.Status `json:"status"`
	OwnerID     int64        `json:"owner_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// State exposes the authorization-relevant facts of the quiz.
func (q *Quiz) State() authz.ObjectState {
	return authz.ObjectState{OwnerID: q.OwnerID, Status: q.Status}
}

// Question belongs to a quiz. It carries its own owner; its approval status
// is the owning quiz's status.
type Question struct {
	ID         int64        `json:"id"`
	QuizID     int64        `json:"test"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"question_type"`
	OwnerID    int64        `json:"owner_id"`
	QuizStatus authz.Status `json:"-"`
}

// State exposes the authorization-relevant facts of the question.
func (q *Question) State() authz.ObjectState {
	return authz.ObjectState{OwnerID: q.OwnerID, Status: q.QuizStatus}
}

// Answer belongs to a question. It has no owner of its own; authorization
// follows the owning question.
type Answer struct {
	ID            int64        `json:"id"`
	QuestionID    int64        `json:"question"`
	Text          string       `json:"text"`
	IsCorrect     bool         `json:"is_correct"`
	QuestionOwner int64        `json:"-"`
	QuizStatus    authz.Status `json:"-"`
}

// State exposes the authorization-relevant facts of the answer.
func (a *Answer) State() authz.ObjectState {
	return authz.ObjectState{OwnerID: a.QuestionOwner, Status: a.QuizStatus}
}
