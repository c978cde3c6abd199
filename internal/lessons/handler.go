package lessons

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

// Handler wires HTTP endpoints for lesson management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler. It panics if the custom validators fail
// to register, which only happens on a programming error.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	v := httpx.NewValidator()
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: v,
	}
}

// MountRoutes registers lesson routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/approve", h.approve)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePage(r)

	var filter ListFilter
	if v := r.URL.Query().Get("course_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid course_id filter")
			return
		}
		filter.CourseID = &id
	}

	results, total, err := h.service.List(r.Context(), shared.PrincipalFromContext(r.Context()), filter, page.Size, page.Offset())
	if err != nil {
		h.logger.Error("list lessons", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewEnvelope(r, page, total, results))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lesson id")
		return
	}
	lesson, err := h.service.Get(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "get lesson", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lesson)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	lesson, err := h.service.Create(r.Context(), shared.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.respondServiceError(w, "create lesson", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lesson)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lesson id")
		return
	}
	var req UpdateLessonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	lesson, err := h.service.Update(r.Context(), shared.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		h.respondServiceError(w, "update lesson", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lesson)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lesson id")
		return
	}
	lesson, err := h.service.Approve(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "approve lesson", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lesson)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lesson id")
		return
	}
	if err := h.service.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondServiceError(w, "delete lesson", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
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
