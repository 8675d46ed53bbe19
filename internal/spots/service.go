// Package spots owns the spot directory. Reads are open to any
// authenticated caller; creation and renaming are administrative.
package spots

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/domain"
	"github.com/parkvault/pv-backend/internal/rbac"
)

type Store interface {
	CreateSpot(ctx context.Context, name string) (database.Spot, error)
	GetSpot(ctx context.Context, id uuid.UUID) (database.Spot, error)
	ListSpots(ctx context.Context) ([]database.Spot, error)
	RenameSpot(ctx context.Context, arg database.RenameSpotParams) (database.Spot, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

type Service struct {
	store Store
	users UserDirectory
	authz *rbac.Authorizer
}

func NewService(store Store, users UserDirectory, authz *rbac.Authorizer) *Service {
	return &Service{store: store, users: users, authz: authz}
}

// Get resolves a single spot.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (database.Spot, error) {
	spot, err := s.store.GetSpot(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Spot{}, domain.NewNotFound("spot", id)
		}
		return database.Spot{}, storeError("resolving spot", err)
	}
	return spot, nil
}

// List returns all spots.
func (s *Service) List(ctx context.Context) ([]database.Spot, error) {
	spots, err := s.store.ListSpots(ctx)
	if err != nil {
		return nil, storeError("listing spots", err)
	}
	return spots, nil
}

// Create adds a spot. Requires the manage_spots permission; spot names
// are unique.
func (s *Service) Create(ctx context.Context, name string, callerID uuid.UUID) (database.Spot, error) {
	if err := s.authorize(ctx, callerID, "create spot"); err != nil {
		return database.Spot{}, err
	}

	spot, err := s.store.CreateSpot(ctx, name)
	if err != nil {
		if isUniqueViolation(err) {
			return database.Spot{}, &domain.ConflictError{Kind: "spot name", Key: name}
		}
		return database.Spot{}, storeError("creating spot", err)
	}
	return spot, nil
}

// Rename changes a spot's name. Requires the manage_spots permission.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string, callerID uuid.UUID) (database.Spot, error) {
	if err := s.authorize(ctx, callerID, "rename spot"); err != nil {
		return database.Spot{}, err
	}

	spot, err := s.store.RenameSpot(ctx, database.RenameSpotParams{ID: id, Name: name})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Spot{}, domain.NewNotFound("spot", id)
		}
		if isUniqueViolation(err) {
			return database.Spot{}, &domain.ConflictError{Kind: "spot name", Key: name}
		}
		return database.Spot{}, storeError("renaming spot", err)
	}
	return spot, nil
}

func (s *Service) authorize(ctx context.Context, callerID uuid.UUID, action string) error {
	caller, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.UnauthorizedError{Action: action}
		}
		return storeError("resolving user", err)
	}

	actor := rbac.Actor{ID: caller.ID, Role: rbac.Role(caller.Role)}
	if !s.authz.AuthorizeGlobal(actor, rbac.ManageSpots) {
		return &domain.UnauthorizedError{Action: action}
	}
	return nil
}

func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
