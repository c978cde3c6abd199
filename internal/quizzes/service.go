package quizzes

import (
	"context"
	"fmt"

	"github.com/atlas-lms/atlas/internal/authz"
)

// ErrCourseNotFound indicates the referenced course does not exist.
var ErrCourseNotFound = fmt.Errorf("referenced course: %w", ErrNotFound)

// Service implements quiz business rules. Questions and answers follow the
// owning quiz for visibility; their owner comes from the question record.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateQuiz inserts a new quiz owned by the principal.
func (s *Service) CreateQuiz(ctx context.Context, p *authz.Principal, req CreateQuizRequest) (*Quiz, error) {
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

	quiz := Quiz{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Status:      authz.StatusPending,
		OwnerID:     p.UserID,
	}
	id, err := s.repo.CreateQuiz(ctx, quiz)
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return s.repo.GetQuiz(ctx, id)
}

// GetQuiz returns a quiz if visible to the principal.
func (s *Service) GetQuiz(ctx context.Context, p *authz.Principal, id int64) (*Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Visible(p).Allows(quiz.State()) {
		return nil, ErrNotFound
	}
	return quiz, nil
}

// ListQuizzes returns visible quizzes, optionally narrowed to one course.
func (s *Service) ListQuizzes(ctx context.Context, p *authz.Principal, courseID *int64, limit, offset int) ([]Quiz, int, error) {
	return s.repo.ListQuizzes(ctx, authz.Visible(p), courseID, limit, offset)
}

// UpdateQuiz applies the requested changes when policy permits.
func (s *Service) UpdateQuiz(ctx context.Context, p *authz.Principal, id int64, req UpdateQuizRequest) (*Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(p, authz.ActionUpdate, quiz.State()) {
		return nil, authz.ErrDenied
	}

	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return quiz, nil
	}
	if err := s.repo.UpdateQuiz(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	return s.repo.GetQuiz(ctx, id)
}

// ApproveQuiz marks the quiz approved; moderators and superusers only.
func (s *Service) ApproveQuiz(ctx context.Context, p *authz.Principal, id int64) (*Quiz, error) {
	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || (!p.Superuser && !p.Roles.Has(authz.RoleModerator)) {
		return nil, authz.ErrDenied
	}
	if quiz.Status != authz.StatusApproved {
		if err := s.repo.SetQuizStatus(ctx, id, authz.StatusApproved); err != nil {
			return nil, fmt.Errorf("approve quiz: %w", err)
		}
	}
	return s.repo.GetQuiz(ctx, id)
}

// DeleteQuiz removes the quiz when policy permits.
func (s *Service) DeleteQuiz(ctx context.Context, p *authz.Principal, id int64) error {
	quiz, err := s.repo.GetQuiz(ctx, id)
	if err != nil {
		return err
	}
	if !authz.Can(p, authz.ActionDelete, quiz.State()) {
		return authz.ErrDenied
	}
	if err := s.repo.DeleteQuiz(ctx, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

// CreateQuestion adds a question to a quiz the principal may update.
func (s *Service) CreateQuestion(ctx context.Context, p *authz.Principal, req CreateQuestionRequest) (*Question, error) {
	quiz, err := s.repo.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(p, authz.ActionUpdate, quiz.State()) {
		return nil, authz.ErrDenied
	}

	qType := QuestionType(req.Type)
	if qType == "" {
		qType = QuestionMultipleChoice
	}
	question := Question{
		QuizID:  req.QuizID,
		Text:    req.Text,
		Type:    qType,
		OwnerID: p.UserID,
	}
	id, err := s.repo.CreateQuestion(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return s.repo.GetQuestion(ctx, id)
}

// GetQuestion returns a question if its quiz is visible to the principal.
func (s *Service) GetQuestion(ctx context.Context, p *authz.Principal, id int64) (*Question, error) {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Visible(p).Allows(question.State()) {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

// ListQuestions returns the questions of a visible quiz.
func (s *Service) ListQuestions(ctx context.Context, p *authz.Principal, quizID int64) ([]Question, error) {
	if _, err := s.GetQuiz(ctx, p, quizID); err != nil {
		return nil, err
	}
	return s.repo.ListQuestions(ctx, quizID)
}

// UpdateQuestion applies the requested changes when policy permits.
func (s *Service) UpdateQuestion(ctx context.Context, p *authz.Principal, id int64, req UpdateQuestionRequest) (*Question, error) {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(p, authz.ActionUpdate, question.State()) {
		return nil, authz.ErrDenied
	}

	updates := make(map[string]any)
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.Type != nil {
		updates["question_type"] = *req.Type
	}
	if len(updates) == 0 {
		return question, nil
	}
	if err := s.repo.UpdateQuestion(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return s.repo.GetQuestion(ctx, id)
}

// DeleteQuestion removes the question when policy permits.
func (s *Service) DeleteQuestion(ctx context.Context, p *authz.Principal, id int64) error {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if !authz.Can(p, authz.ActionDelete, question.State()) {
		return authz.ErrDenied
	}
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// CreateAnswer adds an answer to a question the principal may update.
func (s *Service) CreateAnswer(ctx context.Context, p *authz.Principal, req CreateAnswerRequest) (*Answer, error) {
	question, err := s.repo.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}
	if !authz.Can(p, authz.ActionUpdate, question.State()) {
		return nil, authz.ErrDenied
	}

	answer := Answer{
		QuestionID: req.QuestionID,
		Text:       req.Text,
		IsCorrect:  req.IsCorrect,
	}
	id, err := s.repo.CreateAnswer(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	return s.repo.GetAnswer(ctx, id)
}

// GetAnswer returns an answer if its quiz is visible to the principal.
func (s *Service) GetAnswer(ctx context.Context, p *authz.Principal, id int64) (*Answer, error) {
	answer, err := s.repo.GetAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Visible(p).Allows(answer.State()) {
		return nil, ErrAnswerNotFound
	}
	return answer, nil
}

// ListAnswers returns the answers of a visible question.
func (s *Service) ListAnswers(ctx context.Context, p *authz.Principal, questionID int64) ([]Answer, error) {
	if _, err := s.GetQuestion(ctx, p, questionID); err != nil {
		return nil, err
	}
	return s.repo.ListAnswers(ctx, questionID)
}

// UpdateAnswer applies the requested changes when policy permits.
func (s *Service) UpdateAnswer(ctx context.Context, p *authz.Principal, id int64, req UpdateAnswerRequest) (*Answer, error) {
	answer, err := s.repo.GetAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Can(p, authz.ActionUpdate, answer.State()) {
		return nil, authz.ErrDenied
	}

	updates := make(map[string]any)
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.IsCorrect != nil {
		updates["is_correct"] = *req.IsCorrect
	}
	if len(updates) == 0 {
		return answer, nil
	}
	if err := s.repo.UpdateAnswer(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	return s.repo.GetAnswer(ctx, id)
}

// DeleteAnswer removes the answer when policy permits.
func (s *Service) DeleteAnswer(ctx context.Context, p *authz.Principal, id int64) error {
	answer, err := s.repo.GetAnswer(ctx, id)
	if err != nil {
		return err
	}
	if !authz.Can(p, authz.ActionDelete, answer.State()) {
		return authz.ErrDenied
	}
	if err := s.repo.DeleteAnswer(ctx, id); err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	return nil
}
