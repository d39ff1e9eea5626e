package auth

import (
	"context"

	"github.com/Dhoini/customer-service/internal/domain"
)

type principalKey struct{}

// WithPrincipal кладет вызывающего в контекст
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext достает вызывающего из контекста
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
