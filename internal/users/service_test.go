package users_test

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/parkvault/pv-backend/internal/domain"
	"github.com/parkvault/pv-backend/internal/rbac"
	"github.com/parkvault/pv-backend/internal/testutil"
	"github.com/parkvault/pv-backend/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var sharedDB *testutil.TestDatabase

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	t := &testing.T{}
	sharedDB = testutil.NewTestDatabase(t)
	sharedDB.RunMigrations(t)

	code := m.Run()

	if sharedDB.Pool() != nil {
		sharedDB.Pool().Close()
	}

	os.Exit(code)
}

func newTestService() *users.Service {
	authz := rbac.NewAuthorizer(rbac.DefaultCatalog())
	return users.NewService(sharedDB.Queries(), authz, bcrypt.MinCost)
}

func TestService_Get(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()

	t.Run("users can read themselves", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		user := sharedDB.NewUser(t).WithEmail("self@example.com").Create()

		got, err := svc.Get(ctx, user.ID, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "self@example.com", got.Email)
	})

	t.Run("reading another user requires manage_users", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()
		bob := sharedDB.NewUser(t).WithEmail("bob@example.com").Create()

		_, err := svc.Get(ctx, alice.ID, bob.ID)
		assert.True(t, domain.IsUnauthorized(err))
	})

	t.Run("admins can read anyone", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()

		got, err := svc.Get(ctx, alice.ID, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
	})

	t.Run("unknown target returns not found", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()

		_, err := svc.Get(ctx, uuid.New(), admin.ID)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestService_List(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()

	t.Run("admin lists everyone", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()
		sharedDB.NewUser(t).WithEmail("alice@example.com").Create()

		got, err := svc.List(ctx, admin.ID)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("plain user is denied", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		user := sharedDB.NewUser(t).WithEmail("user@example.com").Create()

		_, err := svc.List(ctx, user.ID)
		assert.True(t, domain.IsUnauthorized(err))
	})
}

func TestService_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()

	t.Run("admin creates a user with a hashed password", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()

		created, err := svc.Create(ctx, "new@example.com", "secret-password", rbac.RoleUser, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", created.Email)
		assert.Equal(t, "user", created.Role)
		assert.NotEqual(t, "secret-password", created.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret-password")))
	})

	t.Run("plain user is denied", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		user := sharedDB.NewUser(t).WithEmail("user@example.com").Create()

		_, err := svc.Create(ctx, "new@example.com", "secret-password", rbac.RoleUser, user.ID)
		assert.True(t, domain.IsUnauthorized(err))
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()
		sharedDB.NewUser(t).WithEmail("taken@example.com").Create()

		_, err := svc.Create(ctx, "taken@example.com", "secret-password", rbac.RoleUser, admin.ID)
		assert.True(t, domain.IsConflict(err))
	})
}

func TestService_AssignRole(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()

	t.Run("admin promotes a user", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()

		updated, err := svc.AssignRole(ctx, alice.ID, rbac.RoleAdmin, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "admin", updated.Role)
	})

	t.Run("assigning the current role is a no-op", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()

		updated, err := svc.AssignRole(ctx, alice.ID, rbac.RoleUser, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.UpdatedAt, updated.UpdatedAt)
	})

	t.Run("plain user is denied", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()
		bob := sharedDB.NewUser(t).WithEmail("bob@example.com").Create()

		_, err := svc.AssignRole(ctx, bob.ID, rbac.RoleAdmin, alice.ID)
		assert.True(t, domain.IsUnauthorized(err))
	})

	t.Run("unknown target returns not found", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		svc := newTestService()
		admin := sharedDB.NewUser(t).WithEmail("admin@example.com").AsAdmin().Create()

		_, err := svc.AssignRole(ctx, uuid.New(), rbac.RoleAdmin, admin.ID)
		assert.True(t, domain.IsNotFound(err))
	})
}
