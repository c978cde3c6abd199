package users

import (
	"context"
	"fmt"
	"slices"

	"github.com/atlas-lms/atlas/internal/authz"
)

// Service implements account management rules. Role grants and revokes are
// superuser operations; profile edits are self-service.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Me returns the principal's own account.
func (s *Service) Me(ctx context.Context, p *authz.Principal) (*User, error) {
	if p == nil {
		return nil, authz.ErrDenied
	}
	return s.repo.Get(ctx, p.UserID)
}

// UpdateMe applies profile changes to the principal's own account.
func (s *Service) UpdateMe(ctx context.Context, p *authz.Principal, req UpdateProfileRequest) (*User, error) {
	if p == nil {
		return nil, authz.ErrDenied
	}

	updates := make(map[string]any)
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, p.UserID)
	}
	if err := s.repo.UpdateProfile(ctx, p.UserID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.repo.Get(ctx, p.UserID)
}

// Get returns any account; superusers only.
func (s *Service) Get(ctx context.Context, p *authz.Principal, id int64) (*User, error) {
	if p == nil || !p.Superuser {
		return nil, authz.ErrDenied
	}
	return s.repo.Get(ctx, id)
}

// List returns all accounts; superusers only.
func (s *Service) List(ctx context.Context, p *authz.Principal, limit, offset int) ([]User, int, error) {
	if p == nil || !p.Superuser {
		return nil, 0, authz.ErrDenied
	}
	return s.repo.List(ctx, limit, offset)
}

// GrantRole adds a role to the account. Granting an already-held role is a
// no-op.
func (s *Service) GrantRole(ctx context.Context, p *authz.Principal, id int64, role string) (*User, error) {
	if p == nil || !p.Superuser {
		return nil, authz.ErrDenied
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(user.Roles, role) {
		roles := append(slices.Clone(user.Roles), role)
		if err := s.repo.SetRoles(ctx, id, roles); err != nil {
			return nil, fmt.Errorf("grant role: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// RevokeRole removes a role from the account. Revoking a role the account
// does not hold is a no-op.
func (s *Service) RevokeRole(ctx context.Context, p *authz.Principal, id int64, role string) (*User, error) {
	if p == nil || !p.Superuser {
		return nil, authz.ErrDenied
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if slices.Contains(user.Roles, role) {
		roles := slices.DeleteFunc(slices.Clone(user.Roles), func(r string) bool { return r == role })
		if err := s.repo.SetRoles(ctx, id, roles); err != nil {
			return nil, fmt.Errorf("revoke role: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}
