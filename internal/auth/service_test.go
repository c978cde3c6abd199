package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lms/atlas/internal/authz"
	"github.com/atlas-lms/atlas/internal/shared"
)

type memoryRepo struct {
	nextID int64
	byMail map[string]*User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, byMail: make(map[string]*User)}
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := m.byMail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryRepo) Create(_ context.Context, user User) (int64, error) {
	user.ID = m.nextID
	m.nextID++
	m.byMail[user.Email] = &user
	return user.ID, nil
}

func newTestService() *Service {
	return NewService(newMemoryRepo(), NewTokenMaker("test-secret", time.Hour))
}

func TestRegisterAssignsStudentRole(t *testing.T) {
	svc := newTestService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "New@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", user.Email)
	require.Equal(t, []string{"student"}, user.Roles)
	require.True(t, user.IsActive)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "A@Example.com", Password: "pw123456"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	maker := NewTokenMaker("test-secret", time.Hour)
	svc := NewService(newMemoryRepo(), maker)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "pw123456"})
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "a@example.com", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.Parse(token)
	require.NoError(t, err)
	principal, err := claims.Principal()
	require.NoError(t, err)
	require.Equal(t, user.ID, principal.UserID)
	require.Equal(t, user.Email, principal.Email)
	require.True(t, principal.Roles.Has(authz.RoleStudent))
	require.False(t, principal.Superuser)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "pw123456"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "pw123456")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	maker := NewTokenMaker("test-secret", time.Hour)
	other := NewTokenMaker("other-secret", time.Hour)

	token, err := maker.Generate(&User{ID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = maker.Parse(token + "x")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	maker := NewTokenMaker("test-secret", -time.Minute)

	token, err := maker.Generate(&User{ID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	_, err = maker.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
