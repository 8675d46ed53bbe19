// Package bookings implements the booking lifecycle: a booking is opened
// on a spot, ended exactly once, and optionally removed. Every operation
// takes the caller's id explicitly and routes authorization through rbac.
package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/parkvault/pv-backend/internal/audit"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/domain"
	"github.com/parkvault/pv-backend/internal/logging"
	"github.com/parkvault/pv-backend/internal/rbac"
)

// Store is the persistence surface the lifecycle depends on. Implemented
// by *database.Queries.
type Store interface {
	CreateBooking(ctx context.Context, arg database.CreateBookingParams) (database.Booking, error)
	GetBookingDetail(ctx context.Context, id uuid.UUID) (database.BookingDetail, error)
	ListBookingDetails(ctx context.Context) ([]database.BookingDetail, error)
	ListBookingDetailsByUser(ctx context.Context, userID uuid.UUID) ([]database.BookingDetail, error)
	EndBooking(ctx context.Context, arg database.EndBookingParams) (database.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) (int64, error)
	ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]database.BookingEvent, error)
}

// SpotDirectory resolves spots referenced by new bookings.
type SpotDirectory interface {
	GetSpot(ctx context.Context, id uuid.UUID) (database.Spot, error)
}

// UserDirectory resolves the acting user so their role can be checked.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// Recorder receives lifecycle events for the audit trail. A failed
// record never fails the operation that produced it.
type Recorder interface {
	RecordBookingEvent(bookingID, actorID uuid.UUID, action string, occurredAt time.Time) error
}

var requireManage = rbac.RequiredAny{Full: rbac.ManageBookings, Own: rbac.ManageOwnBookings}

type Service struct {
	store Store
	spots SpotDirectory
	users UserDirectory
	authz *rbac.Authorizer
	audit Recorder
	now   func() time.Time
}

func NewService(store Store, spots SpotDirectory, users UserDirectory, authz *rbac.Authorizer, audit Recorder) *Service {
	return &Service{
		store: store,
		spots: spots,
		users: users,
		authz: authz,
		audit: audit,
		now:   time.Now,
	}
}

// Create opens a booking on a spot for the caller. Any authenticated
// user may book for themselves; no permission gate applies. A second
// open booking on the same spot fails with a conflict.
func (s *Service) Create(ctx context.Context, spotID, callerID uuid.UUID) (database.BookingDetail, error) {
	spot, err := s.spots.GetSpot(ctx, spotID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.BookingDetail{}, domain.NewNotFound("spot", spotID)
		}
		return database.BookingDetail{}, storeError("resolving spot", err)
	}

	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.BookingDetail{}, domain.NewNotFound("user", callerID)
		}
		return database.BookingDetail{}, storeError("resolving user", err)
	}

	booking, err := s.store.CreateBooking(ctx, database.CreateBookingParams{
		ID:        uuid.New(),
		UserID:    caller.ID,
		SpotID:    spot.ID,
		StartTime: s.now().UTC(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return database.BookingDetail{}, &domain.ConflictError{Kind: "spot", Key: spot.ID.String()}
		}
		return database.BookingDetail{}, storeError("creating booking", err)
	}

	s.record(booking.ID, caller.ID, audit.ActionCreated)

	return database.BookingDetail{
		Booking:   booking,
		UserEmail: caller.Email,
		UserRole:  caller.Role,
		SpotName:  spot.Name,
	}, nil
}

// End closes an open booking. Ending is not idempotent: a booking whose
// end time is already set fails with ErrAlreadyEnded, including when a
// concurrent caller won the race on the conditional update.
func (s *Service) End(ctx context.Context, bookingID, callerID uuid.UUID) (database.BookingDetail, error) {
	detail, err := s.store.GetBookingDetail(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.BookingDetail{}, domain.NewNotFound("booking", bookingID)
		}
		return database.BookingDetail{}, storeError("resolving booking", err)
	}

	if detail.EndTime != nil {
		return database.BookingDetail{}, domain.ErrAlreadyEnded
	}

	if err := s.authorize(ctx, callerID, detail.UserID, "end booking"); err != nil {
		return database.BookingDetail{}, err
	}

	booking, err := s.store.EndBooking(ctx, database.EndBookingParams{
		ID:      bookingID,
		EndTime: s.now().UTC(),
	})
	if err != nil {
		// The conditional update matched no row: a concurrent caller
		// closed the booking between our read and this write.
		if errors.Is(err, pgx.ErrNoRows) {
			return database.BookingDetail{}, domain.ErrAlreadyEnded
		}
		return database.BookingDetail{}, storeError("ending booking", err)
	}

	s.record(booking.ID, callerID, audit.ActionEnded)

	detail.Booking = booking
	return detail, nil
}

// FindAll lists bookings visible to the caller: everything with the
// full permission, only their own with the own-scoped one.
func (s *Service) FindAll(ctx context.Context, callerID uuid.UUID) ([]database.BookingDetail, error) {
	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound("user", callerID)
		}
		return nil, storeError("resolving user", err)
	}

	perms := s.authz.PermissionsFor(rbac.Role(caller.Role))
	switch {
	case perms.Has(rbac.ManageBookings):
		details, err := s.store.ListBookingDetails(ctx)
		if err != nil {
			return nil, storeError("listing bookings", err)
		}
		return details, nil
	case perms.Has(rbac.ManageOwnBookings):
		details, err := s.store.ListBookingDetailsByUser(ctx, caller.ID)
		if err != nil {
			return nil, storeError("listing bookings", err)
		}
		return details, nil
	default:
		return nil, &domain.UnauthorizedError{Action: "view bookings"}
	}
}

// FindOne returns a single booking, gated by the same full/own pair as
// End. Existence is resolved before authorization.
func (s *Service) FindOne(ctx context.Context, bookingID, callerID uuid.UUID) (database.BookingDetail, error) {
	if _, err := s.users.GetUserByID(ctx, callerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.BookingDetail{}, domain.NewNotFound("user", callerID)
		}
		return database.BookingDetail{}, storeError("resolving user", err)
	}

	detail, err := s.store.GetBookingDetail(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.BookingDetail{}, domain.NewNotFound("booking", bookingID)
		}
		return database.BookingDetail{}, storeError("resolving booking", err)
	}

	if err := s.authorize(ctx, callerID, detail.UserID, "view booking"); err != nil {
		return database.BookingDetail{}, err
	}

	return detail, nil
}

// Remove deletes a booking permanently. Removal is allowed on open
// bookings as well as ended ones, and is distinct from ending.
func (s *Service) Remove(ctx context.Context, bookingID, callerID uuid.UUID) error {
	detail, err := s.store.GetBookingDetail(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFound("booking", bookingID)
		}
		return storeError("resolving booking", err)
	}

	if err := s.authorize(ctx, callerID, detail.UserID, "delete booking"); err != nil {
		return err
	}

	affected, err := s.store.DeleteBooking(ctx, bookingID)
	if err != nil {
		return storeError("deleting booking", err)
	}
	if affected == 0 {
		return domain.NewNotFound("booking", bookingID)
	}

	s.record(bookingID, callerID, audit.ActionRemoved)
	return nil
}

// Events returns the audit trail for a booking, gated by the same
// full/own pair as FindOne. Events survive booking removal, so this
// only works while the booking itself still exists.
func (s *Service) Events(ctx context.Context, bookingID, callerID uuid.UUID) ([]database.BookingEvent, error) {
	detail, err := s.store.GetBookingDetail(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound("booking", bookingID)
		}
		return nil, storeError("resolving booking", err)
	}

	if err := s.authorize(ctx, callerID, detail.UserID, "view booking events"); err != nil {
		return nil, err
	}

	events, err := s.store.ListBookingEvents(ctx, bookingID)
	if err != nil {
		return nil, storeError("listing booking events", err)
	}
	return events, nil
}

// authorize loads the caller and applies the full/own booking pair. An
// unknown caller is a denial, not a lookup failure: the booking's
// existence was already established and must not leak further.
func (s *Service) authorize(ctx context.Context, callerID, ownerID uuid.UUID, action string) error {
	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.UnauthorizedError{Action: action}
		}
		return storeError("resolving user", err)
	}

	actor := rbac.Actor{ID: caller.ID, Role: rbac.Role(caller.Role)}
	if !s.authz.Authorize(actor, requireManage, ownerID) {
		return &domain.UnauthorizedError{Action: action}
	}
	return nil
}

func (s *Service) record(bookingID, actorID uuid.UUID, action string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.RecordBookingEvent(bookingID, actorID, action, s.now().UTC()); err != nil {
		logging.Warn("failed to record booking event",
			"booking_id", bookingID, "action", action, "error", err)
	}
}
