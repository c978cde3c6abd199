package shared

import (
	"context"

	"github.com/atlas-lms/atlas/internal/authz"
)

type principalContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, p *authz.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. Returns nil for
// unauthenticated requests.
func PrincipalFromContext(ctx context.Context) *authz.Principal {
	p, _ := ctx.Value(principalContextKey{}).(*authz.Principal)
	return p
}
