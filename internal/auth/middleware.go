package auth

import (
	"net/http"
	"strings"

	"github.com/atlas-lms/atlas/internal/platform/httpx"
	"github.com/atlas-lms/atlas/internal/shared"
)

// Middleware authenticates requests from bearer tokens and attaches the
// resulting principal to the request context.
type Middleware struct {
	Maker *TokenMaker
}

// Authenticate parses the Authorization header when present. Requests
// without a token pass through unauthenticated; RequireAuth gates the
// protected routes.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "malformed authorization header")
			return
		}
		claims, err := m.Maker.Parse(strings.TrimSpace(raw))
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}
		principal, err := claims.Principal()
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.PrincipalFromContext(r.Context()) == nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSuperuser rejects requests from non-superusers with 403.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		if p == nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		if !p.Superuser {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "superuser required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
