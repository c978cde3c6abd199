package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lms/atlas/internal/authz"
)

type fakeRepo struct {
	users map[int64]*User
}

func newFakeRepo(users ...*User) *fakeRepo {
	repo := &fakeRepo{users: make(map[int64]*User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]User, int, error) {
	var all []User
	for id := int64(1); id <= int64(len(f.users))+10; id++ {
		if user, ok := f.users[id]; ok {
			all = append(all, *user)
		}
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeRepo) UpdateProfile(_ context.Context, id int64, updates map[string]any) error {
	user, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["phone"]; ok {
		user.Phone = v.(string)
	}
	if v, ok := updates["city"]; ok {
		user.City = v.(string)
	}
	return nil
}

func (f *fakeRepo) SetRoles(_ context.Context, id int64, roles []string) error {
	user, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Roles = roles
	return nil
}

func superuser(id int64) *authz.Principal {
	return &authz.Principal{UserID: id, Superuser: true, Roles: authz.Roles{}}
}

func regular(id int64) *authz.Principal {
	return &authz.Principal{UserID: id, Roles: authz.ResolveRoles([]string{"student"})}
}

func TestUpdateMeEditsOwnProfile(t *testing.T) {
	repo := newFakeRepo(&User{ID: 3, Email: "s@example.com", Roles: []string{"student"}})
	svc := NewService(repo)

	phone := "+1555000"
	city := "Lisbon"
	user, err := svc.UpdateMe(context.Background(), regular(3), UpdateProfileRequest{Phone: &phone, City: &city})
	require.NoError(t, err)
	require.Equal(t, "+1555000", user.Phone)
	require.Equal(t, "Lisbon", user.City)
}

func TestAdminEndpointsRequireSuperuser(t *testing.T) {
	repo := newFakeRepo(&User{ID: 3, Email: "s@example.com"})
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Get(ctx, regular(3), 3)
	require.ErrorIs(t, err, authz.ErrDenied)

	_, _, err = svc.List(ctx, regular(3), 10, 0)
	require.ErrorIs(t, err, authz.ErrDenied)

	_, err = svc.GrantRole(ctx, regular(3), 3, "teacher")
	require.ErrorIs(t, err, authz.ErrDenied)

	got, err := svc.Get(ctx, superuser(1), 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), got.ID)
}

func TestGrantAndRevokeRole(t *testing.T) {
	repo := newFakeRepo(&User{ID: 3, Email: "s@example.com", Roles: []string{"student"}})
	svc := NewService(repo)
	ctx := context.Background()
	admin := superuser(1)

	user, err := svc.GrantRole(ctx, admin, 3, "teacher")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"student", "teacher"}, user.Roles)

	// Granting again does not duplicate.
	user, err = svc.GrantRole(ctx, admin, 3, "teacher")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"student", "teacher"}, user.Roles)

	user, err = svc.RevokeRole(ctx, admin, 3, "teacher")
	require.NoError(t, err)
	require.Equal(t, []string{"student"}, user.Roles)

	// Revoking an absent role is a no-op.
	user, err = svc.RevokeRole(ctx, admin, 3, "moderator")
	require.NoError(t, err)
	require.Equal(t, []string{"student"}, user.Roles)
}

func TestGrantRoleUnknownUser(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.GrantRole(context.Background(), superuser(1), 99, "teacher")
	require.ErrorIs(t, err, ErrNotFound)
}
