package courses

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlas-lms/atlas/internal/authz"
)

// SubscriberSource lists the emails of users subscribed to a course.
type SubscriberSource interface {
	SubscriberEmails(ctx context.Context, courseID int64) ([]string, error)
}

// Notifier hands a course-update notification to the background queue.
// Enqueue failures are logged by the service and never surfaced to the
// request that triggered them.
type Notifier interface {
	NotifyCourseUpdate(ctx context.Context, courseTitle string, emails []string) error
}

// Service implements course business rules on top of the repository, with
// authorization checks up front and subscriber notification on update.
type Service struct {
	repo        Repository
	cache       *Cache
	subscribers SubscriberSource
	notifier    Notifier
	logger      *slog.Logger
}

// NewService constructs a Service. Cache, subscribers and notifier may be
// nil; the related behavior is skipped.
func NewService(repo Repository, cache *Cache, subscribers SubscriberSource, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		cache:       cache,
		subscribers: subscribers,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create inserts a new course owned by the principal. New courses start in
// pending status and become listable for students once approved.
func (s *Service) Create(ctx context.Context, p *authz.Principal, req CreateCourseRequest) (*Course, error) {
	if !authz.Can(p, authz.ActionCreate, authz.ObjectState{}) {
		return nil, authz.ErrDenied
	}

	course := Course{
		Title:       req.Title,
		Description: req.Description,
		PreviewURL:  req.Preview,
		Price:       req.Price,
		Status:      authz.StatusPending,
		OwnerID:     p.UserID,
	}
	id, err := s.repo.Create(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Get returns a single course if it falls inside the principal's visibility.
func (s *Service) Get(ctx context.Context, p *authz.Principal, id int64) (*Course, error) {
	course, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Visible(p).Allows(course.State()) {
		return nil, ErrNotFound
	}
	return course, nil
}

// List returns the visible courses with the total count before pagination.
func (s *Service) List(ctx context.Context, p *authz.Principal, limit, offset int) ([]Course, int, error) {
	return s.repo.List(ctx, authz.Visible(p), limit, offset)
}

// Update applies the requested changes and notifies subscribers. The
// notification is fire-and-forget: an enqueue failure is logged, not
// returned.
func (s *Service) Update(ctx context.Context, p *authz.Principal, id int64, req UpdateCourseRequest) (*Course, error) {
	course, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(p, authz.ActionUpdate, course.State()) {
		return nil, authz.ErrDenied
	}

	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Preview != nil {
		updates["preview_url"] = *req.Preview
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if len(updates) == 0 {
		return course, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	s.cache.Invalidate(ctx, id)

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifySubscribers(ctx, updated)
	return updated, nil
}

// Approve marks the course approved. Only moderators and superusers may
// approve; the transition is monotonic and never reversed here.
func (s *Service) Approve(ctx context.Context, p *authz.Principal, id int64) (*Course, error) {
	course, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Superuser && !p.Roles.Has(authz.RoleModerator)) {
		return nil, authz.ErrDenied
	}
	if course.Status != authz.StatusApproved {
		if err := s.repo.SetStatus(ctx, id, authz.StatusApproved); err != nil {
			return nil, fmt.Errorf("approve course: %w", err)
		}
		s.cache.Invalidate(ctx, id)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the course when policy permits.
func (s *Service) Delete(ctx context.Context, p *authz.Principal, id int64) error {
	course, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if !authz.Can(p, authz.ActionDelete, course.State()) {
		return authz.ErrDenied
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *Service) lookup(ctx context.Context, id int64) (*Course, error) {
	if course, ok := s.cache.Get(ctx, id); ok {
		return course, nil
	}
	course, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, course)
	return course, nil
}

func (s *Service) notifySubscribers(ctx context.Context, course *Course) {
	if s.subscribers == nil || s.notifier == nil {
		return
	}
	emails, err := s.subscribers.SubscriberEmails(ctx, course.ID)
	if err != nil {
		s.logger.Error("collect subscriber emails",
			slog.Int64("course_id", course.ID), slog.Any("error", err))
		return
	}
	if len(emails) == 0 {
		return
	}
	if err := s.notifier.NotifyCourseUpdate(ctx, course.Title, emails); err != nil {
		s.logger.Error("enqueue course update notification",
			slog.Int64("course_id", course.ID), slog.Any("error", err))
	}
}
