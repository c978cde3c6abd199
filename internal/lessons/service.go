package lessons

import (
	"context"
	"fmt"

	"github.com/atlas-lms/atlas/internal/authz"
)

// ErrCourseNotFound indicates the referenced course does not exist.
var ErrCourseNotFound = fmt.Errorf("referenced %w", ErrNotFound)

// Service implements lesson business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new lesson owned by the principal. The referenced course
// must exist; a missing course is a lookup error, not an authorization one.
func (s *Service) Create(ctx context.Context, p *authz.Principal, req CreateLessonRequest) (*Lesson, error) {
	if !authz.Can(p, authz.ActionCreate, authz.ObjectState{}) {
		return nil, authz.ErrDenied
	}

	exists, err := s.repo.CourseExists(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	lesson := Lesson{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		PreviewURL:  req.Preview,
		VideoURL:    req.VideoURL,
		Status:      authz.StatusPending,
		OwnerID:     p.UserID,
	}
	id, err := s.repo.Create(ctx, lesson)
	if err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Get returns a single lesson if visible to the principal.
func (s *Service) Get(ctx context.Context, p *authz.Principal, id int64) (*Lesson, error) {
	lesson, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Visible(p).Allows(lesson.State()) {
		return nil, ErrNotFound
	}
	return lesson, nil
}

// List returns visible lessons, optionally narrowed to one course.
func (s *Service) List(ctx context.Context, p *authz.Principal, filter ListFilter, limit, offset int) ([]Lesson, int, error) {
	return s.repo.List(ctx, authz.Visible(p), filter, limit, offset)
}

// Update applies the requested changes when policy permits.
func (s *Service) Update(ctx context.Context, p *authz.Principal, id int64, req UpdateLessonRequest) (*Lesson, error) {
	lesson, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(p, authz.ActionUpdate, lesson.State()) {
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
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if len(updates) == 0 {
		return lesson, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update lesson: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Approve marks the lesson approved; moderators and superusers only.
func (s *Service) Approve(ctx context.Context, p *authz.Principal, id int64) (*Lesson, error) {
	lesson, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Superuser && !p.Roles.Has(authz.RoleModerator)) {
		return nil, authz.ErrDenied
	}
	if lesson.Status != authz.StatusApproved {
		if err := s.repo.SetStatus(ctx, id, authz.StatusApproved); err != nil {
			return nil, fmt.Errorf("approve lesson: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the lesson when policy permits.
func (s *Service) Delete(ctx context.Context, p *authz.Principal, id int64) error {
	lesson, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !authz.Can(p, authz.ActionDelete, lesson.State()) {
		return authz.ErrDenied
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
