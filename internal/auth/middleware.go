package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/rbac"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	UserClaimsKey contextKey = "user_claims"
)

type AuthenticatedUser struct {
	ID    uuid.UUID
	Email string
	Role  rbac.Role
}

type userLoader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

type Authenticator struct {
	jwtService *JWTService
	users      userLoader
}

func NewAuthenticator(jwtService *JWTService, users userLoader) *Authenticator {
	return &Authenticator{
		jwtService: jwtService,
		users:      users,
	}
}

// Middleware validates the bearer token, loads the user and stores both
// id and claims on the request context. Rejections are bare 401s; the
// api package never sees an unauthenticated request.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "authorization header missing")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			unauthorized(w, "invalid authorization header format")
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		claims, err := a.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		user, err := a.users.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			unauthorized(w, "user not found")
			return
		}

		authenticatedUser := &AuthenticatedUser{
			ID:    user.ID,
			Email: user.Email,
			Role:  rbac.Role(user.Role),
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserClaimsKey, authenticatedUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHENTICATED","message":"` + msg + `"}}`))
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(UserClaimsKey).(*AuthenticatedUser)
	return user, ok
}
