package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/rbac"
)

// DatabaseService defines the interface for database operations
type DatabaseService interface {
	Pool() *pgxpool.Pool
	Close()
}

// BookingService drives the booking lifecycle.
type BookingService interface {
	Create(ctx context.Context, spotID, callerID uuid.UUID) (database.BookingDetail, error)
	End(ctx context.Context, bookingID, callerID uuid.UUID) (database.BookingDetail, error)
	FindAll(ctx context.Context, callerID uuid.UUID) ([]database.BookingDetail, error)
	FindOne(ctx context.Context, bookingID, callerID uuid.UUID) (database.BookingDetail, error)
	Remove(ctx context.Context, bookingID, callerID uuid.UUID) error
	Events(ctx context.Context, bookingID, callerID uuid.UUID) ([]database.BookingEvent, error)
}

// SpotService manages the spot directory.
type SpotService interface {
	Get(ctx context.Context, id uuid.UUID) (database.Spot, error)
	List(ctx context.Context) ([]database.Spot, error)
	Create(ctx context.Context, name string, callerID uuid.UUID) (database.Spot, error)
	Rename(ctx context.Context, id uuid.UUID, name string, callerID uuid.UUID) (database.Spot, error)
}

// UserService manages accounts and roles.
type UserService interface {
	Get(ctx context.Context, id, callerID uuid.UUID) (database.User, error)
	List(ctx context.Context, callerID uuid.UUID) ([]database.User, error)
	Create(ctx context.Context, email, password string, role rbac.Role, callerID uuid.UUID) (database.User, error)
	AssignRole(ctx context.Context, id uuid.UUID, role rbac.Role, callerID uuid.UUID) (database.User, error)
}

// AuthService issues and rotates token pairs.
type AuthService interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
	Logout(ctx context.Context, refreshToken string) error
}
