package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/auth"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/rbac"
)

// ContextWithUser adds an authenticated user to the context the way the
// auth middleware does.
func ContextWithUser(ctx context.Context, user database.User) context.Context {
	ctx = context.WithValue(ctx, auth.UserIDKey, user.ID)
	ctx = context.WithValue(ctx, auth.UserClaimsKey, &auth.AuthenticatedUser{
		ID:    user.ID,
		Email: user.Email,
		Role:  rbac.Role(user.Role),
	})
	return ctx
}

// TimeNow returns a consistent time for testing
func TimeNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// NewUUID returns a deterministic UUID for testing
func NewUUID() uuid.UUID {
	return uuid.MustParse("12345678-1234-5678-9012-123456789012")
}
