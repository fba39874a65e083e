package auth

import (
	"context"

	"github.com/listenupapp/bookclub-server/internal/domain"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity stores the resolved requester in ctx.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the requester stored by WithIdentity,
// or the anonymous identity.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if identity, ok := ctx.Value(identityKey).(domain.Identity); ok {
		return identity
	}
	return domain.Anonymous()
}
