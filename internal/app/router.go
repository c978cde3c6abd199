package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlas-lms/atlas/internal/auth"
	"github.com/atlas-lms/atlas/internal/courses"
	"github.com/atlas-lms/atlas/internal/lessons"
	"github.com/atlas-lms/atlas/internal/payments"
	"github.com/atlas-lms/atlas/internal/quizzes"
	"github.com/atlas-lms/atlas/internal/subscriptions"
	"github.com/atlas-lms/atlas/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthMiddleware      auth.Middleware
	AuthHandler         *auth.Handler
	UsersHandler        *users.Handler
	CoursesHandler      *courses.Handler
	LessonsHandler      *lessons.Handler
	QuizzesHandler      *quizzes.Handler
	SubscriptionHandler *subscriptions.Handler
	PaymentsHandler     *payments.Handler
}

// NewRouter constructs the chi.Router. Registration and login are open;
// everything else under the API requires a valid token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
		Auth:   params.AuthMiddleware,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/courses", params.CoursesHandler.MountRoutes)
		r.Route("/lessons", params.LessonsHandler.MountRoutes)
		r.Route("/tests", params.QuizzesHandler.MountRoutes)
		r.Route("/questions", params.QuizzesHandler.MountQuestionRoutes)
		r.Route("/answers", params.QuizzesHandler.MountAnswerRoutes)
		r.Route("/subscriptions", params.SubscriptionHandler.MountRoutes)
		r.Route("/payments", params.PaymentsHandler.MountRoutes)

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(auth.RequireSuperuser)
			params.UsersHandler.MountAdminRoutes(r)
		})
	})

	return r
}
