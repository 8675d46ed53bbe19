package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/config"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/logging"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLoginThrottled     = errors.New("too many failed login attempts")
	ErrRefreshInvalid     = errors.New("invalid or expired refresh token")
)

type UserDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
}

// AuthService handles password authentication and rotating refresh tokens.
type AuthService struct {
	store            *redisStore
	jwt              *JWTService
	users            UserDirectory
	refreshExpiry    time.Duration
	loginMaxAttempts int
	loginWindow      time.Duration
}

func NewAuthService(redisClient *redis.Client, jwtSvc *JWTService, users UserDirectory, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:            newRedisStore(redisClient),
		jwt:              jwtSvc,
		users:            users,
		refreshExpiry:    cfg.RefreshExpiry,
		loginMaxAttempts: cfg.LoginMaxAttempts,
		loginWindow:      cfg.LoginWindow,
	}
}

// Login verifies the password and returns a new access + refresh token
// pair. Failed attempts are counted per email; past the limit the
// account is throttled for the rest of the window. A bad email and a
// bad password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	attempts, err := s.store.incrLoginAttempts(ctx, email, s.loginWindow)
	if err != nil {
		return "", "", fmt.Errorf("counting login attempts: %w", err)
	}
	if attempts > int64(s.loginMaxAttempts) {
		return "", "", ErrLoginThrottled
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := s.store.clearLoginAttempts(ctx, email); err != nil {
		return "", "", fmt.Errorf("clearing login attempts: %w", err)
	}

	return s.issueTokenPair(ctx, user.ID)
}

// Refresh rotates the refresh token and returns a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error) {
	hash := hashString(refreshToken)

	userIDStr, err := s.store.getRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrRefreshInvalid
		}
		return "", "", fmt.Errorf("retrieving refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", fmt.Errorf("invalid user ID in refresh token: %w", err)
	}

	if err := s.store.deleteRefreshToken(ctx, hash); err != nil {
		return "", "", fmt.Errorf("deleting refresh token: %w", err)
	}

	newAccess, newRefresh, err = s.issueTokenPair(ctx, userID)
	if err != nil {
		return "", "", err
	}

	logging.Info("refresh token rotated", "user_id", userID)
	return newAccess, newRefresh, nil
}

// Logout invalidates the refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	hash := hashString(refreshToken)

	userIDStr, err := s.store.getRefreshToken(ctx, hash)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("looking up refresh token: %w", err)
	}

	if err := s.store.deleteRefreshToken(ctx, hash); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}

	if userIDStr != "" {
		logging.Info("user logged out", "user_id", userIDStr)
	}
	return nil
}

// issueTokenPair generates a JWT access token and a random refresh token.
func (s *AuthService) issueTokenPair(ctx context.Context, userID uuid.UUID) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("generating access token: %w", err)
	}

	rawRefresh, err := generateRefreshToken()
	if err != nil {
		return "", "", fmt.Errorf("generating refresh token: %w", err)
	}

	hash := hashString(rawRefresh)
	if err := s.store.storeRefreshToken(ctx, hash, userID.String(), s.refreshExpiry); err != nil {
		return "", "", fmt.Errorf("storing refresh token: %w", err)
	}

	return accessToken, rawRefresh, nil
}

// returns 32 random bytes as a hex string (64 chars).
func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
