package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

// Identity is the request-scoped caller passed into every operation. The
// engine carries no process-wide session state.
type Identity struct {
	UserID uuid.UUID
	Role   domain.Role
}

type identityKey struct{}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
