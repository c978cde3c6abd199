package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lms/atlas/internal/authz"
)

type fakeRepo struct {
	nextID   int64
	pairs    map[[2]int64]*Subscription
	courses  map[int64]string
	emails   map[int64][]string
	userMail map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:   1,
		pairs:    make(map[[2]int64]*Subscription),
		courses:  make(map[int64]string),
		emails:   make(map[int64][]string),
		userMail: make(map[int64]string),
	}
}

func (f *fakeRepo) Exists(_ context.Context, userID, courseID int64) (bool, error) {
	_, ok := f.pairs[[2]int64{userID, courseID}]
	return ok, nil
}

func (f *fakeRepo) Create(_ context.Context, userID, courseID int64) (*Subscription, error) {
	key := [2]int64{userID, courseID}
	if _, ok := f.pairs[key]; ok {
		return nil, ErrDuplicate
	}
	sub := &Subscription{ID: f.nextID, UserID: userID, CourseID: courseID, CreatedAt: time.Now()}
	f.nextID++
	f.pairs[key] = sub
	return sub, nil
}

func (f *fakeRepo) Delete(_ context.Context, userID, courseID int64) error {
	key := [2]int64{userID, courseID}
	if _, ok := f.pairs[key]; !ok {
		return ErrNotFound
	}
	delete(f.pairs, key)
	return nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID int64) ([]Subscription, error) {
	var subs []Subscription
	for _, sub := range f.pairs {
		if sub.UserID == userID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeRepo) SubscriberEmails(_ context.Context, courseID int64) ([]string, error) {
	var emails []string
	for _, sub := range f.pairs {
		if sub.CourseID == courseID {
			if mail, ok := f.userMail[sub.UserID]; ok {
				emails = append(emails, mail)
			}
		}
	}
	return emails, nil
}

func (f *fakeRepo) CourseStatus(_ context.Context, courseID int64) (string, error) {
	status, ok := f.courses[courseID]
	if !ok {
		return "", ErrCourseNotFound
	}
	return status, nil
}

func principal(id int64, roles ...authz.Role) *authz.Principal {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return &authz.Principal{UserID: id, Roles: authz.ResolveRoles(names)}
}

func TestToggleTwiceReturnsToStart(t *testing.T) {
	repo := newFakeRepo()
	repo.courses[1] = string(authz.StatusApproved)
	svc := NewService(nil, repo)
	student := principal(3, authz.RoleStudent)
	ctx := context.Background()

	result, err := svc.Toggle(ctx, student, 1)
	require.NoError(t, err)
	require.True(t, result.Subscribed)

	result, err = svc.Toggle(ctx, student, 1)
	require.NoError(t, err)
	require.False(t, result.Subscribed)

	subs, err := svc.List(ctx, student)
	require.NoError(t, err)
	require.Empty(t, subs)
}

func TestToggleUnknownCourse(t *testing.T) {
	svc := NewService(nil, newFakeRepo())
	_, err := svc.Toggle(context.Background(), principal(3, authz.RoleStudent), 99)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestStudentCannotFollowUnapprovedCourse(t *testing.T) {
	repo := newFakeRepo()
	repo.courses[1] = string(authz.StatusPending)
	svc := NewService(nil, repo)

	_, err := svc.Toggle(context.Background(), principal(3, authz.RoleStudent), 1)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestTeacherCanFollowPendingCourse(t *testing.T) {
	repo := newFakeRepo()
	repo.courses[1] = string(authz.StatusPending)
	svc := NewService(nil, repo)

	result, err := svc.Toggle(context.Background(), principal(7, authz.RoleTeacher), 1)
	require.NoError(t, err)
	require.True(t, result.Subscribed)
}

func TestToggleRequiresPrincipal(t *testing.T) {
	svc := NewService(nil, newFakeRepo())
	_, err := svc.Toggle(context.Background(), nil, 1)
	require.ErrorIs(t, err, authz.ErrDenied)
}

func TestSubscriberEmails(t *testing.T) {
	repo := newFakeRepo()
	repo.courses[1] = string(authz.StatusApproved)
	repo.userMail[3] = "student@example.com"
	repo.userMail[4] = "other@example.com"
	svc := NewService(nil, repo)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, principal(3, authz.RoleStudent), 1)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, principal(4, authz.RoleStudent), 1)
	require.NoError(t, err)

	emails, err := svc.SubscriberEmails(ctx, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"student@example.com", "other@example.com"}, emails)
}
