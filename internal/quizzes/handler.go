package quizzes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/atlas-lms/atlas/internal/authz"
	"github.com/atlas-lms/atlas/internal/platform/httpx"
	"github.com/atlas-lms/atlas/internal/shared"
)

// Handler wires HTTP endpoints for quizzes, questions and answers.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: httpx.NewValidator(),
	}
}

// MountRoutes registers quiz routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listQuizzes)
	r.Post("/", h.createQuiz)
	r.Get("/{id}", h.getQuiz)
	r.Patch("/{id}", h.updateQuiz)
	r.Delete("/{id}", h.deleteQuiz)
	r.Post("/{id}/approve", h.approveQuiz)
	r.Get("/{id}/questions", h.listQuestions)
}

// MountQuestionRoutes registers question routes.
func (h *Handler) MountQuestionRoutes(r chi.Router) {
	r.Post("/", h.createQuestion)
	r.Get("/{id}", h.getQuestion)
	r.Patch("/{id}", h.updateQuestion)
	r.Delete("/{id}", h.deleteQuestion)
	r.Get("/{id}/answers", h.listAnswers)
}

// MountAnswerRoutes registers answer routes.
func (h *Handler) MountAnswerRoutes(r chi.Router) {
	r.Post("/", h.createAnswer)
	r.Get("/{id}", h.getAnswer)
	r.Patch("/{id}", h.updateAnswer)
	r.Delete("/{id}", h.deleteAnswer)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePage(r)

	var courseID *int64
	if v := r.URL.Query().Get("course_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid course_id filter")
			return
		}
		courseID = &id
	}

	results, total, err := h.service.ListQuizzes(r.Context(), shared.PrincipalFromContext(r.Context()), courseID, page.Size, page.Offset())
	if err != nil {
		h.logger.Error("list quizzes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewEnvelope(r, page, total, results))
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quiz id")
		return
	}
	quiz, err := h.service.GetQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "get quiz", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quiz)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req CreateQuizRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.respondServiceError(w, "create quiz", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quiz)
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quiz id")
		return
	}
	var req UpdateQuizRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	quiz, err := h.service.UpdateQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		h.respondServiceError(w, "update quiz", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quiz)
}

func (h *Handler) approveQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quiz id")
		return
	}
	quiz, err := h.service.ApproveQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "approve quiz", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quiz id")
		return
	}
	if err := h.service.DeleteQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondServiceError(w, "delete quiz", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quiz id")
		return
	}
	questions, err := h.service.ListQuestions(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "list questions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, questions)
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	question, err := h.service.CreateQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.respondServiceError(w, "create question", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, question)
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid question id")
		return
	}
	question, err := h.service.GetQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "get question", err)
		return
	}
	httpx.JSON(w, http.StatusOK, question)
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid question id")
		return
	}
	var req UpdateQuestionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	question, err := h.service.UpdateQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		h.respondServiceError(w, "update question", err)
		return
	}
	httpx.JSON(w, http.StatusOK, question)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid question id")
		return
	}
	if err := h.service.DeleteQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondServiceError(w, "delete question", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid question id")
		return
	}
	answers, err := h.service.ListAnswers(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "list answers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, answers)
}

func (h *Handler) createAnswer(w http.ResponseWriter, r *http.Request) {
	var req CreateAnswerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	answer, err := h.service.CreateAnswer(r.Context(), shared.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.respondServiceError(w, "create answer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, answer)
}

func (h *Handler) getAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid answer id")
		return
	}
	answer, err := h.service.GetAnswer(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "get answer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, answer)
}

func (h *Handler) updateAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid answer id")
		return
	}
	var req UpdateAnswerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	answer, err := h.service.UpdateAnswer(r.Context(), shared.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		h.respondServiceError(w, "update answer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, answer)
}

func (h *Handler) deleteAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid answer id")
		return
	}
	if err := h.service.DeleteAnswer(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondServiceError(w, "delete answer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrQuestionNotFound), errors.Is(err, ErrAnswerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, authz.ErrDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "permission denied")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
