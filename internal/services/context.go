package services

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const userIDKey ctxKey = "auth_user_id"

// WithUser attaches the authenticated caller to the request context.
// Identity always travels explicitly through the context; there is no
// ambient session singleton.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// CurrentUser returns the authenticated caller, if any.
func CurrentUser(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
