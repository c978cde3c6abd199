package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atlas-lms/atlas/internal/authz"
)

// Service implements subscription business rules. Toggle semantics: a repeat
// request for the same course removes the existing subscription instead of
// failing, so the endpoint is safe to retry from a UI button.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service. A nil logger falls back to the default.
func NewService(logger *slog.Logger, repo Repository) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Toggle subscribes the principal to the course, or unsubscribes if already
// subscribed. Students may only follow approved courses; moderators, course
// owners and superusers are not restricted by status.
func (s *Service) Toggle(ctx context.Context, p *authz.Principal, courseID int64) (*ToggleResult, error) {
	if p == nil {
		return nil, authz.ErrDenied
	}

	status, err := s.repo.CourseStatus(ctx, courseID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, p.UserID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check subscription: %w", err)
	}
	if exists {
		if err := s.repo.Delete(ctx, p.UserID, courseID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("remove subscription: %w", err)
		}
		return &ToggleResult{Subscribed: false, Message: "subscription removed"}, nil
	}

	privileged := p.Superuser || p.Roles.Has(authz.RoleModerator) || p.Roles.Has(authz.RoleTeacher)
	if !privileged && authz.Status(status) != authz.StatusApproved {
		return nil, ErrCourseNotFound
	}

	if _, err := s.repo.Create(ctx, p.UserID, courseID); err != nil {
		// Lost the race with a concurrent toggle; treat as already subscribed.
		if errors.Is(err, ErrDuplicate) {
			s.logger.Warn("concurrent subscription toggle",
				slog.Int64("user_id", p.UserID), slog.Int64("course_id", courseID))
			return &ToggleResult{Subscribed: true, Message: "subscription added"}, nil
		}
		return nil, fmt.Errorf("add subscription: %w", err)
	}
	return &ToggleResult{Subscribed: true, Message: "subscription added"}, nil
}

// List returns the principal's subscriptions.
func (s *Service) List(ctx context.Context, p *authz.Principal) ([]Subscription, error) {
	if p == nil {
		return nil, authz.ErrDenied
	}
	subs, err := s.repo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []Subscription{}
	}
	return subs, nil
}

// SubscriberEmails lists active subscriber addresses for a course. It backs
// the course-update notification fan-out.
func (s *Service) SubscriberEmails(ctx context.Context, courseID int64) ([]string, error) {
	return s.repo.SubscriberEmails(ctx, courseID)
}
