package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/rbac"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// UserBuilder provides a fluent interface for creating test users
type UserBuilder struct {
	email    string
	password string
	role     rbac.Role
	testDB   *TestDatabase
	t        *testing.T
}

// NewUser creates a new user builder
func (tdb *TestDatabase) NewUser(t *testing.T) *UserBuilder {
	return &UserBuilder{
		email:    "test@example.com",
		password: "test-password",
		role:     rbac.RoleUser,
		testDB:   tdb,
		t:        t,
	}
}

// WithEmail sets the user's email
func (ub *UserBuilder) WithEmail(email string) *UserBuilder {
	ub.email = email
	return ub
}

// WithPassword sets the user's password
func (ub *UserBuilder) WithPassword(password string) *UserBuilder {
	ub.password = password
	return ub
}

// AsAdmin assigns the admin role
func (ub *UserBuilder) AsAdmin() *UserBuilder {
	ub.role = rbac.RoleAdmin
	return ub
}

// WithRole assigns an arbitrary role
func (ub *UserBuilder) WithRole(role rbac.Role) *UserBuilder {
	ub.role = role
	return ub
}

// Create creates the user in the database
func (ub *UserBuilder) Create() database.User {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(ub.password), bcrypt.MinCost)
	require.NoError(ub.t, err, "Failed to hash password")

	user, err := ub.testDB.Queries().CreateUser(ctx, database.CreateUserParams{
		Email:        ub.email,
		PasswordHash: string(hash),
		Role:         string(ub.role),
	})
	require.NoError(ub.t, err, "Failed to create user")

	return user
}

// SpotBuilder provides a fluent interface for creating test spots
type SpotBuilder struct {
	name   string
	testDB *TestDatabase
	t      *testing.T
}

// NewSpot creates a new spot builder
func (tdb *TestDatabase) NewSpot(t *testing.T) *SpotBuilder {
	return &SpotBuilder{
		name:   "Test Spot",
		testDB: tdb,
		t:      t,
	}
}

// WithName sets the spot name
func (sb *SpotBuilder) WithName(name string) *SpotBuilder {
	sb.name = name
	return sb
}

// Create creates the spot in the database
func (sb *SpotBuilder) Create() database.Spot {
	spot, err := sb.testDB.Queries().CreateSpot(context.Background(), sb.name)
	require.NoError(sb.t, err, "Failed to create spot")
	return spot
}

// BookingBuilder provides a fluent interface for creating test bookings
type BookingBuilder struct {
	userID    uuid.UUID
	spotID    uuid.UUID
	startTime time.Time
	endTime   *time.Time
	testDB    *TestDatabase
	t         *testing.T
}

// NewBooking creates a new booking builder. User and spot must be set.
func (tdb *TestDatabase) NewBooking(t *testing.T) *BookingBuilder {
	return &BookingBuilder{
		startTime: time.Now().UTC().Add(-time.Hour),
		testDB:    tdb,
		t:         t,
	}
}

// ForUser sets the booking's owner
func (bb *BookingBuilder) ForUser(user database.User) *BookingBuilder {
	bb.userID = user.ID
	return bb
}

// OnSpot sets the booked spot
func (bb *BookingBuilder) OnSpot(spot database.Spot) *BookingBuilder {
	bb.spotID = spot.ID
	return bb
}

// StartingAt sets the start time
func (bb *BookingBuilder) StartingAt(start time.Time) *BookingBuilder {
	bb.startTime = start
	return bb
}

// Ended closes the booking at the given time
func (bb *BookingBuilder) Ended(end time.Time) *BookingBuilder {
	bb.endTime = &end
	return bb
}

// Create creates the booking in the database
func (bb *BookingBuilder) Create() database.Booking {
	ctx := context.Background()
	require.NotEqual(bb.t, uuid.Nil, bb.userID, "booking builder requires ForUser")
	require.NotEqual(bb.t, uuid.Nil, bb.spotID, "booking builder requires OnSpot")

	booking, err := bb.testDB.Queries().CreateBooking(ctx, database.CreateBookingParams{
		ID:        uuid.New(),
		UserID:    bb.userID,
		SpotID:    bb.spotID,
		StartTime: bb.startTime,
	})
	require.NoError(bb.t, err, "Failed to create booking")

	if bb.endTime != nil {
		booking, err = bb.testDB.Queries().EndBooking(ctx, database.EndBookingParams{
			ID:      booking.ID,
			EndTime: *bb.endTime,
		})
		require.NoError(bb.t, err, "Failed to end booking")
	}

	return booking
}
