package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "auth_user_id"
	ctxRole   contextKey = "auth_role"
)

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok
}

// RoleFromContext returns the authenticated user's role, if any.
func RoleFromContext(ctx context.Context) (enums.UserRole, bool) {
	role, ok := ctx.Value(ctxRole).(enums.UserRole)
	return role, ok
}

// WithIdentity seeds the context with an authenticated identity. Exposed for
// handler tests that bypass the auth middleware.
func WithIdentity(ctx context.Context, userID uuid.UUID, role enums.UserRole) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
