package database

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Spot struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Booking struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SpotID    uuid.UUID
	StartTime time.Time
	EndTime   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingDetail is a booking row with its user and spot joined in, the
// shape every read path returns.
type BookingDetail struct {
	Booking
	UserEmail string
	UserRole  string
	SpotName  string
}

type RolePermission struct {
	Role       string
	Permission string
}

type BookingEvent struct {
	ID         int64
	BookingID  uuid.UUID
	ActorID    uuid.UUID
	Action     string
	OccurredAt time.Time
}
