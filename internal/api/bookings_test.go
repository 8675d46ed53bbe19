package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/api"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/domain"
	"github.com/parkvault/pv-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) Create(ctx context.Context, spotID, callerID uuid.UUID) (database.BookingDetail, error) {
	args := m.Called(ctx, spotID, callerID)
	return args.Get(0).(database.BookingDetail), args.Error(1)
}

func (m *mockBookingService) End(ctx context.Context, bookingID, callerID uuid.UUID) (database.BookingDetail, error) {
	args := m.Called(ctx, bookingID, callerID)
	return args.Get(0).(database.BookingDetail), args.Error(1)
}

func (m *mockBookingService) FindAll(ctx context.Context, callerID uuid.UUID) ([]database.BookingDetail, error) {
	args := m.Called(ctx, callerID)
	return args.Get(0).([]database.BookingDetail), args.Error(1)
}

func (m *mockBookingService) FindOne(ctx context.Context, bookingID, callerID uuid.UUID) (database.BookingDetail, error) {
	args := m.Called(ctx, bookingID, callerID)
	return args.Get(0).(database.BookingDetail), args.Error(1)
}

func (m *mockBookingService) Remove(ctx context.Context, bookingID, callerID uuid.UUID) error {
	args := m.Called(ctx, bookingID, callerID)
	return args.Error(0)
}

func (m *mockBookingService) Events(ctx context.Context, bookingID, callerID uuid.UUID) ([]database.BookingEvent, error) {
	args := m.Called(ctx, bookingID, callerID)
	return args.Get(0).([]database.BookingEvent), args.Error(1)
}

func bookingRouter(svc api.BookingService) chi.Router {
	server := api.NewServer(nil, svc, nil, nil, nil)
	r := chi.NewRouter()
	r.Get("/bookings", server.ListBookings)
	r.Post("/bookings", server.CreateBooking)
	r.Get("/bookings/{bookingID}", server.GetBookingByID)
	r.Post("/bookings/{bookingID}/end", server.EndBooking)
	r.Get("/bookings/{bookingID}/events", server.GetBookingEvents)
	r.Delete("/bookings/{bookingID}", server.DeleteBooking)
	return r
}

func doRequest(t *testing.T, r chi.Router, caller *database.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req = req.WithContext(testutil.ContextWithUser(req.Context(), *caller))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func sampleDetail(userID uuid.UUID) database.BookingDetail {
	return database.BookingDetail{
		Booking: database.Booking{
			ID:        uuid.New(),
			UserID:    userID,
			SpotID:    uuid.New(),
			StartTime: testutil.TimeNow(),
		},
		UserEmail: "caller@example.com",
		UserRole:  "user",
		SpotName:  "A1",
	}
}

func TestCreateBooking(t *testing.T) {
	caller := database.User{ID: uuid.New(), Email: "caller@example.com", Role: "user"}

	t.Run("returns 201 with the booking", func(t *testing.T) {
		svc := &mockBookingService{}
		spotID := uuid.New()
		detail := sampleDetail(caller.ID)
		svc.On("Create", mock.Anything, spotID, caller.ID).Return(detail, nil)

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings",
			map[string]string{"spot_id": spotID.String()})

		assert.Equal(t, http.StatusCreated, rec.Code)
		var got api.BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, detail.ID, got.ID)
		assert.True(t, got.Open)
	})

	t.Run("missing spot_id returns 400", func(t *testing.T) {
		svc := &mockBookingService{}

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, api.CodeValidationError, errorCode(t, rec))
	})

	t.Run("unknown spot returns 404", func(t *testing.T) {
		svc := &mockBookingService{}
		spotID := uuid.New()
		svc.On("Create", mock.Anything, spotID, caller.ID).
			Return(database.BookingDetail{}, &domain.NotFoundError{Kind: "spot", ID: spotID.String()})

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings",
			map[string]string{"spot_id": spotID.String()})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, api.CodeResourceNotFound, errorCode(t, rec))
	})

	t.Run("occupied spot returns 409", func(t *testing.T) {
		svc := &mockBookingService{}
		spotID := uuid.New()
		svc.On("Create", mock.Anything, spotID, caller.ID).
			Return(database.BookingDetail{}, &domain.ConflictError{Kind: "spot", Key: spotID.String()})

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings",
			map[string]string{"spot_id": spotID.String()})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, api.CodeConflict, errorCode(t, rec))
	})

	t.Run("no authenticated user returns 401", func(t *testing.T) {
		svc := &mockBookingService{}

		rec := doRequest(t, bookingRouter(svc), nil, http.MethodPost, "/bookings",
			map[string]string{"spot_id": uuid.New().String()})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestEndBooking(t *testing.T) {
	caller := database.User{ID: uuid.New(), Email: "caller@example.com", Role: "user"}

	t.Run("returns 200 with the closed booking", func(t *testing.T) {
		svc := &mockBookingService{}
		detail := sampleDetail(caller.ID)
		end := testutil.TimeNow().Add(time.Hour)
		detail.EndTime = &end
		svc.On("End", mock.Anything, detail.ID, caller.ID).Return(detail, nil)

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings/"+detail.ID.String()+"/end", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got api.BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.False(t, got.Open)
		assert.NotNil(t, got.EndTime)
	})

	t.Run("already ended returns 409", func(t *testing.T) {
		svc := &mockBookingService{}
		bookingID := uuid.New()
		svc.On("End", mock.Anything, bookingID, caller.ID).
			Return(database.BookingDetail{}, domain.ErrAlreadyEnded)

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings/"+bookingID.String()+"/end", nil)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, api.CodeAlreadyEnded, errorCode(t, rec))
	})

	t.Run("foreign booking returns 403", func(t *testing.T) {
		svc := &mockBookingService{}
		bookingID := uuid.New()
		svc.On("End", mock.Anything, bookingID, caller.ID).
			Return(database.BookingDetail{}, &domain.UnauthorizedError{Action: "end booking"})

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings/"+bookingID.String()+"/end", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, api.CodePermissionDenied, errorCode(t, rec))
	})

	t.Run("store outage returns 503", func(t *testing.T) {
		svc := &mockBookingService{}
		bookingID := uuid.New()
		svc.On("End", mock.Anything, bookingID, caller.ID).
			Return(database.BookingDetail{}, domain.ErrUnavailable)

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings/"+bookingID.String()+"/end", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, api.CodeUnavailable, errorCode(t, rec))
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		svc := &mockBookingService{}

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodPost, "/bookings/not-a-uuid/end", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListBookings(t *testing.T) {
	caller := database.User{ID: uuid.New(), Email: "caller@example.com", Role: "user"}

	t.Run("returns the caller's visible bookings", func(t *testing.T) {
		svc := &mockBookingService{}
		svc.On("FindAll", mock.Anything, caller.ID).
			Return([]database.BookingDetail{sampleDetail(caller.ID)}, nil)

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodGet, "/bookings", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []api.BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("role without permissions returns 403", func(t *testing.T) {
		svc := &mockBookingService{}
		svc.On("FindAll", mock.Anything, caller.ID).
			Return([]database.BookingDetail(nil), &domain.UnauthorizedError{Action: "view bookings"})

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodGet, "/bookings", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGetBookingEvents(t *testing.T) {
	caller := database.User{ID: uuid.New(), Email: "caller@example.com", Role: "user"}

	t.Run("returns the audit trail", func(t *testing.T) {
		svc := &mockBookingService{}
		bookingID := uuid.New()
		svc.On("Events", mock.Anything, bookingID, caller.ID).
			Return([]database.BookingEvent{
				{BookingID: bookingID, ActorID: caller.ID, Action: "created", OccurredAt: testutil.TimeNow()},
				{BookingID: bookingID, ActorID: caller.ID, Action: "ended", OccurredAt: testutil.TimeNow().Add(time.Hour)},
			}, nil)

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodGet, "/bookings/"+bookingID.String()+"/events", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []api.BookingEventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "created", got[0].Action)
	})

	t.Run("foreign booking returns 403", func(t *testing.T) {
		svc := &mockBookingService{}
		bookingID := uuid.New()
		svc.On("Events", mock.Anything, bookingID, caller.ID).
			Return([]database.BookingEvent(nil), &domain.UnauthorizedError{Action: "view booking events"})

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodGet, "/bookings/"+bookingID.String()+"/events", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestDeleteBooking(t *testing.T) {
	caller := database.User{ID: uuid.New(), Email: "caller@example.com", Role: "admin"}

	t.Run("returns 204 on success", func(t *testing.T) {
		svc := &mockBookingService{}
		bookingID := uuid.New()
		svc.On("Remove", mock.Anything, bookingID, caller.ID).Return(nil)

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodDelete, "/bookings/"+bookingID.String(), nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})

	t.Run("unknown booking returns 404", func(t *testing.T) {
		svc := &mockBookingService{}
		bookingID := uuid.New()
		svc.On("Remove", mock.Anything, bookingID, caller.ID).
			Return(&domain.NotFoundError{Kind: "booking", ID: bookingID.String()})

		rec := doRequest(t, bookingRouter(svc), &caller, http.MethodDelete, "/bookings/"+bookingID.String(), nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
