package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/logger"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const identityKey contextKey = "identity"

// ErrIdentityNotFound is returned when no authenticated identity exists in the
// request context. Handlers should return 401 when this error occurs.
var ErrIdentityNotFound = errors.New("identity not found in context")

// Identity is the signed-in caller as carried by the session.
type Identity struct {
	UserID   uuid.UUID `json:"userId"`
	Email    string    `json:"email"`
	TenantID uuid.UUID `json:"tenantId"`
}

// Valid reports whether both ids are set.
func (i Identity) Valid() bool {
	return i.UserID != uuid.Nil && i.TenantID != uuid.Nil
}

// IdentityFromCtx extracts the authenticated identity from the request context.
// Returns ErrIdentityNotFound if none is set (unauthenticated request).
func IdentityFromCtx(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || !id.Valid() {
		return Identity{}, ErrIdentityNotFound
	}
	return id, nil
}

// TenantIDFromCtx is a shortcut for handlers that only need the tenant scope.
func TenantIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	id, err := IdentityFromCtx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return id.TenantID, nil
}

// WithIdentity attaches id to ctx and binds tenant_id and user_id to every
// record logged with the returned context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = logger.WithAttrs(ctx, "tenant_id", id.TenantID.String(), "user_id", id.UserID.String())
	return context.WithValue(ctx, identityKey, id)
}
