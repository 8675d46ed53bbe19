// Package users manages accounts and role assignment. The booking core
// only ever reads a user's role; writes here are administrative.
package users

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
	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	ListUsers(ctx context.Context) ([]database.User, error)
	UpdateUserRole(ctx context.Context, arg database.UpdateUserRoleParams) (database.User, error)
}

type Service struct {
	store      Store
	authz      *rbac.Authorizer
	bcryptCost int
}

func NewService(store Store, authz *rbac.Authorizer, bcryptCost int) *Service {
	return &Service{store: store, authz: authz, bcryptCost: bcryptCost}
}

// Get returns a user. Callers may look up themselves; anything else
// requires manage_users.
func (s *Service) Get(ctx context.Context, id, callerID uuid.UUID) (database.User, error) {
	if id != callerID {
		if err := s.authorize(ctx, callerID, "view user"); err != nil {
			return database.User{}, err
		}
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.User{}, domain.NewNotFound("user", id)
		}
		return database.User{}, storeError("resolving user", err)
	}
	return user, nil
}

// List returns all users. Requires manage_users.
func (s *Service) List(ctx context.Context, callerID uuid.UUID) ([]database.User, error) {
	if err := s.authorize(ctx, callerID, "list users"); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError("listing users", err)
	}
	return users, nil
}

// Create registers a user with a bcrypt-hashed password. Requires
// manage_users.
func (s *Service) Create(ctx context.Context, email, password string, role rbac.Role, callerID uuid.UUID) (database.User, error) {
	if err := s.authorize(ctx, callerID, "create user"); err != nil {
		return database.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return database.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, database.CreateUserParams{
		Email:        email,
		PasswordHash: string(hash),
		Role:         string(role),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return database.User{}, &domain.ConflictError{Kind: "email", Key: email}
		}
		return database.User{}, storeError("creating user", err)
	}
	return user, nil
}

// AssignRole sets a user's role. Assigning the role the user already
// holds is a no-op. Requires manage_users.
func (s *Service) AssignRole(ctx context.Context, id uuid.UUID, role rbac.Role, callerID uuid.UUID) (database.User, error) {
	if err := s.authorize(ctx, callerID, "assign role"); err != nil {
		return database.User{}, err
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.User{}, domain.NewNotFound("user", id)
		}
		return database.User{}, storeError("resolving user", err)
	}

	if user.Role == string(role) {
		return user, nil
	}

	updated, err := s.store.UpdateUserRole(ctx, database.UpdateUserRoleParams{ID: id, Role: string(role)})
	if err != nil {
		return database.User{}, storeError("updating role", err)
	}
	return updated, nil
}

func (s *Service) authorize(ctx context.Context, callerID uuid.UUID, action string) error {
	caller, err := s.store.GetUserByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.UnauthorizedError{Action: action}
		}
		return storeError("resolving user", err)
	}

	actor := rbac.Actor{ID: caller.ID, Role: rbac.Role(caller.Role)}
	if !s.authz.AuthorizeGlobal(actor, rbac.ManageUsers) {
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
