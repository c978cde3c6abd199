package quizzes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-lms/atlas/internal/authz"
)

type fakeRepo struct {
	nextID    int64
	quizzes   map[int64]*Quiz
	questions map[int64]*Question
	answers   map[int64]*Answer
	courses   map[int64]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:    1,
		quizzes:   make(map[int64]*Quiz),
		questions: make(map[int64]*Question),
		answers:   make(map[int64]*Answer),
		courses:   make(map[int64]bool),
	}
}

func (f *fakeRepo) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeRepo) GetQuiz(_ context.Context, id int64) (*Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *quiz
	return &copied, nil
}

func (f *fakeRepo) ListQuizzes(_ context.Context, scope authz.Scope, courseID *int64, limit, offset int) ([]Quiz, int, error) {
	var matched []Quiz
	for id := int64(1); id < f.nextID; id++ {
		quiz, ok := f.quizzes[id]
		if !ok || !scope.Allows(quiz.State()) {
			continue
		}
		if courseID != nil && quiz.CourseID != *courseID {
			continue
		}
		matched = append(matched, *quiz)
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeRepo) CreateQuiz(_ context.Context, quiz Quiz) (int64, error) {
	quiz.ID = f.id()
	f.quizzes[quiz.ID] = &quiz
	return quiz.ID, nil
}

func (f *fakeRepo) UpdateQuiz(_ context.Context, id int64, updates map[string]any) error {
	quiz, ok := f.quizzes[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["title"]; ok {
		quiz.Title = v.(string)
	}
	return nil
}

func (f *fakeRepo) SetQuizStatus(_ context.Context, id int64, status authz.Status) error {
	quiz, ok := f.quizzes[id]
	if !ok {
		return ErrNotFound
	}
	quiz.Status = status
	for _, question := range f.questions {
		if question.QuizID == id {
			question.QuizStatus = status
		}
	}
	for _, answer := range f.answers {
		if question, ok := f.questions[answer.QuestionID]; ok && question.QuizID == id {
			answer.QuizStatus = status
		}
	}
	return nil
}

func (f *fakeRepo) DeleteQuiz(_ context.Context, id int64) error {
	if _, ok := f.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(f.quizzes, id)
	return nil
}

func (f *fakeRepo) CourseExists(_ context.Context, courseID int64) (bool, error) {
	return f.courses[courseID], nil
}

func (f *fakeRepo) GetQuestion(_ context.Context, id int64) (*Question, error) {
	question, ok := f.questions[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	copied := *question
	return &copied, nil
}

func (f *fakeRepo) ListQuestions(_ context.Context, quizID int64) ([]Question, error) {
	var matched []Question
	for id := int64(1); id < f.nextID; id++ {
		if question, ok := f.questions[id]; ok && question.QuizID == quizID {
			matched = append(matched, *question)
		}
	}
	return matched, nil
}

func (f *fakeRepo) CreateQuestion(_ context.Context, q Question) (int64, error) {
	q.ID = f.id()
	if quiz, ok := f.quizzes[q.QuizID]; ok {
		q.QuizStatus = quiz.Status
	}
	f.questions[q.ID] = &q
	return q.ID, nil
}

func (f *fakeRepo) UpdateQuestion(_ context.Context, id int64, updates map[string]any) error {
	question, ok := f.questions[id]
	if !ok {
		return ErrQuestionNotFound
	}
	if v, ok := updates["text"]; ok {
		question.Text = v.(string)
	}
	if v, ok := updates["question_type"]; ok {
		question.Type = QuestionType(v.(string))
	}
	return nil
}

func (f *fakeRepo) DeleteQuestion(_ context.Context, id int64) error {
	if _, ok := f.questions[id]; !ok {
		return ErrQuestionNotFound
	}
	delete(f.questions, id)
	return nil
}

func (f *fakeRepo) GetAnswer(_ context.Context, id int64) (*Answer, error) {
	answer, ok := f.answers[id]
	if !ok {
		return nil, ErrAnswerNotFound
	}
	copied := *answer
	return &copied, nil
}

func (f *fakeRepo) ListAnswers(_ context.Context, questionID int64) ([]Answer, error) {
	var matched []Answer
	for id := int64(1); id < f.nextID; id++ {
		if answer, ok := f.answers[id]; ok && answer.QuestionID == questionID {
			matched = append(matched, *answer)
		}
	}
	return matched, nil
}

func (f *fakeRepo) CreateAnswer(_ context.Context, a Answer) (int64, error) {
	a.ID = f.id()
	if question, ok := f.questions[a.QuestionID]; ok {
		a.QuestionOwner = question.OwnerID
		a.QuizStatus = question.QuizStatus
	}
	f.answers[a.ID] = &a
	return a.ID, nil
}

func (f *fakeRepo) UpdateAnswer(_ context.Context, id int64, updates map[string]any) error {
	answer, ok := f.answers[id]
	if !ok {
		return ErrAnswerNotFound
	}
	if v, ok := updates["text"]; ok {
		answer.Text = v.(string)
	}
	if v, ok := updates["is_correct"]; ok {
		answer.IsCorrect = v.(bool)
	}
	return nil
}

func (f *fakeRepo) DeleteAnswer(_ context.Context, id int64) error {
	if _, ok := f.answers[id]; !ok {
		return ErrAnswerNotFound
	}
	delete(f.answers, id)
	return nil
}

func principal(id int64, roles ...authz.Role) *authz.Principal {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return &authz.Principal{UserID: id, Roles: authz.ResolveRoles(names)}
}

func buildQuiz(t *testing.T, svc *Service, repo *fakeRepo, owner *authz.Principal) *Quiz {
	t.Helper()
	repo.courses[1] = true
	quiz, err := svc.CreateQuiz(context.Background(), owner, CreateQuizRequest{CourseID: 1, Title: "final exam"})
	require.NoError(t, err)
	return quiz
}

func TestCreateQuizRequiresCourse(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	teacher := principal(7, authz.RoleTeacher)

	_, err := svc.CreateQuiz(context.Background(), teacher, CreateQuizRequest{CourseID: 9, Title: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	quiz := buildQuiz(t, svc, repo, teacher)
	require.Equal(t, authz.StatusPending, quiz.Status)
	require.Equal(t, int64(7), quiz.OwnerID)
}

func TestQuestionInheritsQuizVisibility(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	teacher := principal(7, authz.RoleTeacher)
	studentP := principal(3, authz.RoleStudent)
	ctx := context.Background()

	quiz := buildQuiz(t, svc, repo, teacher)
	question, err := svc.CreateQuestion(ctx, teacher, CreateQuestionRequest{QuizID: quiz.ID, Text: "2+2?"})
	require.NoError(t, err)
	require.Equal(t, QuestionMultipleChoice, question.Type)

	// Hidden from students while the quiz is pending.
	_, err = svc.GetQuestion(ctx, studentP, question.ID)
	require.ErrorIs(t, err, ErrQuestionNotFound)

	moderatorP := principal(9, authz.RoleModerator)
	_, err = svc.ApproveQuiz(ctx, moderatorP, quiz.ID)
	require.NoError(t, err)

	got, err := svc.GetQuestion(ctx, studentP, question.ID)
	require.NoError(t, err)
	require.Equal(t, question.ID, got.ID)
}

func TestAnswerFollowsQuestionOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	teacher := principal(7, authz.RoleTeacher)
	otherTeacher := principal(8, authz.RoleTeacher)
	ctx := context.Background()

	quiz := buildQuiz(t, svc, repo, teacher)
	question, err := svc.CreateQuestion(ctx, teacher, CreateQuestionRequest{QuizID: quiz.ID, Text: "2+2?"})
	require.NoError(t, err)

	// Only the owning teacher may attach answers while pending.
	_, err = svc.CreateAnswer(ctx, otherTeacher, CreateAnswerRequest{QuestionID: question.ID, Text: "4", IsCorrect: true})
	require.ErrorIs(t, err, authz.ErrDenied)

	answer, err := svc.CreateAnswer(ctx, teacher, CreateAnswerRequest{QuestionID: question.ID, Text: "4", IsCorrect: true})
	require.NoError(t, err)
	require.True(t, answer.IsCorrect)

	_, err = svc.UpdateAnswer(ctx, otherTeacher, answer.ID, UpdateAnswerRequest{Text: strptr("5")})
	require.ErrorIs(t, err, authz.ErrDenied)

	updated, err := svc.UpdateAnswer(ctx, teacher, answer.ID, UpdateAnswerRequest{Text: strptr("four")})
	require.NoError(t, err)
	require.Equal(t, "four", updated.Text)
}

func TestApproveQuizPolicy(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	teacher := principal(7, authz.RoleTeacher)
	ctx := context.Background()

	quiz := buildQuiz(t, svc, repo, teacher)

	_, err := svc.ApproveQuiz(ctx, teacher, quiz.ID)
	require.ErrorIs(t, err, authz.ErrDenied)

	approved, err := svc.ApproveQuiz(ctx, principal(9, authz.RoleModerator), quiz.ID)
	require.NoError(t, err)
	require.Equal(t, authz.StatusApproved, approved.Status)

	// Owner edits lock once approved; moderator edits continue.
	_, err = svc.UpdateQuiz(ctx, teacher, quiz.ID, UpdateQuizRequest{Title: strptr("v2")})
	require.ErrorIs(t, err, authz.ErrDenied)
	_, err = svc.UpdateQuiz(ctx, principal(9, authz.RoleModerator), quiz.ID, UpdateQuizRequest{Title: strptr("v2")})
	require.NoError(t, err)
}

func TestModeratorCannotDeleteQuiz(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	teacher := principal(7, authz.RoleTeacher)
	ctx := context.Background()

	quiz := buildQuiz(t, svc, repo, teacher)
	require.ErrorIs(t, svc.DeleteQuiz(ctx, principal(9, authz.RoleModerator), quiz.ID), authz.ErrDenied)
	require.NoError(t, svc.DeleteQuiz(ctx, teacher, quiz.ID))
}

func TestListQuizzesFiltersByCourseAndScope(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	teacher := principal(7, authz.RoleTeacher)
	ctx := context.Background()

	repo.courses[1] = true
	repo.courses[2] = true
	a, err := svc.CreateQuiz(ctx, teacher, CreateQuizRequest{CourseID: 1, Title: "a"})
	require.NoError(t, err)
	_, err = svc.CreateQuiz(ctx, teacher, CreateQuizRequest{CourseID: 2, Title: "b"})
	require.NoError(t, err)
	require.NoError(t, repo.SetQuizStatus(ctx, a.ID, authz.StatusApproved))

	courseID := int64(1)
	results, total, err := svc.ListQuizzes(ctx, teacher, &courseID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "a", results[0].Title)

	results, total, err = svc.ListQuizzes(ctx, principal(3, authz.RoleStudent), nil, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "a", results[0].Title)
}

func strptr(s string) *string { return &s }
