package payments

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

// Handler wires HTTP endpoints for payments.
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

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.record)
	r.Get("/{id}", h.get)
	r.Post("/checkout", h.checkout)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	payment, err := h.service.Checkout(r.Context(), shared.PrincipalFromContext(r.Context()), req.CourseID)
	if err != nil {
		h.respondServiceError(w, "checkout", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}

	payment, err := h.service.Record(r.Context(), shared.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.respondServiceError(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment id")
		return
	}
	payment, err := h.service.Get(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, "get payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
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
	if v := r.URL.Query().Get("payment_method"); v != "" {
		m := Method(v)
		if m != MethodCard && m != MethodCash && m != MethodTransfer {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment_method filter")
			return
		}
		filter.Method = &m
	}

	results, total, err := h.service.List(r.Context(), shared.PrincipalFromContext(r.Context()), filter, page.Size, page.Offset())
	if err != nil {
		h.respondServiceError(w, "list payments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewEnvelope(r, page, total, results))
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCourseNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, authz.ErrDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "permission denied")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
