package quizzes

type CreateQuizRequest struct {
	CourseID    int64   `json:"course" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
}

type CreateQuestionRequest struct {
	QuizID int64  `json:"test" validate:"required,gt=0"`
	Text   string `json:"text" validate:"required,max=1024"`
	Type   string `json:"question_type" validate:"omitempty,oneof=multiple_choice text"`
}

type UpdateQuestionRequest struct {
	Text *string `json:"text,omitempty" validate:"omitempty,max=1024"`
	Type *string `json:"question_type,omitempty" validate:"omitempty,oneof=multiple_choice text"`
}

type CreateAnswerRequest struct {
	QuestionID int64  `json:"question" validate:"required,gt=0"`
	Text       string `json:"text" validate:"required,max=512"`
	IsCorrect  bool   `json:"is_correct"`
}

type UpdateAnswerRequest struct {
	Text      *string `json:"text,omitempty" validate:"omitempty,max=512"`
	IsCorrect *bool   `json:"is_correct,omitempty"`
}
