package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/stretchr/testify/mock"
)

// MockBookingStore mocks the booking persistence surface
type MockBookingStore struct {
	mock.Mock
}

func NewMockBookingStore(t *testing.T) *MockBookingStore {
	m := &MockBookingStore{}
	m.Test(t)
	return m
}

func (m *MockBookingStore) CreateBooking(ctx context.Context, arg database.CreateBookingParams) (database.Booking, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Booking), args.Error(1)
}

func (m *MockBookingStore) GetBookingDetail(ctx context.Context, id uuid.UUID) (database.BookingDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.BookingDetail), args.Error(1)
}

func (m *MockBookingStore) ListBookingDetails(ctx context.Context) ([]database.BookingDetail, error) {
	args := m.Called(ctx)
	return args.Get(0).([]database.BookingDetail), args.Error(1)
}

func (m *MockBookingStore) ListBookingDetailsByUser(ctx context.Context, userID uuid.UUID) ([]database.BookingDetail, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]database.BookingDetail), args.Error(1)
}

func (m *MockBookingStore) EndBooking(ctx context.Context, arg database.EndBookingParams) (database.Booking, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Booking), args.Error(1)
}

func (m *MockBookingStore) DeleteBooking(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingStore) ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]database.BookingEvent, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]database.BookingEvent), args.Error(1)
}

// MockSpotDirectory mocks spot lookups
type MockSpotDirectory struct {
	mock.Mock
}

func NewMockSpotDirectory(t *testing.T) *MockSpotDirectory {
	m := &MockSpotDirectory{}
	m.Test(t)
	return m
}

func (m *MockSpotDirectory) GetSpot(ctx context.Context, id uuid.UUID) (database.Spot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.Spot), args.Error(1)
}

// MockUserDirectory mocks user lookups
type MockUserDirectory struct {
	mock.Mock
}

func NewMockUserDirectory(t *testing.T) *MockUserDirectory {
	m := &MockUserDirectory{}
	m.Test(t)
	return m
}

func (m *MockUserDirectory) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.User), args.Error(1)
}

// MockRecorder mocks the audit trail recorder
type MockRecorder struct {
	mock.Mock
}

func NewMockRecorder(t *testing.T) *MockRecorder {
	m := &MockRecorder{}
	m.Test(t)
	return m
}

func (m *MockRecorder) RecordBookingEvent(bookingID, actorID uuid.UUID, action string, occurredAt time.Time) error {
	args := m.Called(bookingID, actorID, action, occurredAt)
	return args.Error(0)
}

// Helper methods for setting up common mock expectations

// ExpectGetUser sets up a successful user lookup
func (m *MockUserDirectory) ExpectGetUser(user database.User) *mock.Call {
	return m.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
}

// ExpectGetSpot sets up a successful spot lookup
func (m *MockSpotDirectory) ExpectGetSpot(spot database.Spot) *mock.Call {
	return m.On("GetSpot", mock.Anything, spot.ID).Return(spot, nil)
}

// ExpectRecord accepts any booking event
func (m *MockRecorder) ExpectRecord() *mock.Call {
	return m.On("RecordBookingEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}
