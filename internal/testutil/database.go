package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDatabase wraps a real PostgreSQL database for testing
type TestDatabase struct {
	container testcontainers.Container
	pool      *pgxpool.Pool
	queries   *database.Queries
}

// NewTestDatabase creates a new test database using testcontainers
func NewTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "Failed to create connection pool")

	require.NoError(t, pool.Ping(ctx), "Failed to ping database")

	testDB := &TestDatabase{
		container: postgresContainer,
		pool:      pool,
		queries:   database.NewQueries(pool),
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	return testDB
}

// Queries returns the query layer bound to the test pool
func (tdb *TestDatabase) Queries() *database.Queries {
	return tdb.queries
}

// Pool returns the underlying connection pool
func (tdb *TestDatabase) Pool() *pgxpool.Pool {
	return tdb.pool
}

// RunMigrations runs the goose migrations against the test database
func (tdb *TestDatabase) RunMigrations(t *testing.T) {
	sqlDB := stdlib.OpenDBFromPool(tdb.pool)
	defer sqlDB.Close()

	goose.SetDialect("postgres")

	err := goose.Up(sqlDB, "../../db/migrations")
	require.NoError(t, err, "Failed to run goose migrations")
}

// Cleanup closes the database connection and terminates the container
func (tdb *TestDatabase) Cleanup() {
	ctx := context.Background()
	tdb.pool.Close()
	if err := tdb.container.Terminate(ctx); err != nil {
		// Log but don't fail tests on cleanup errors
	}
}

// CleanupDatabase truncates the data tables for test isolation. Role
// and permission seeds from the migrations survive.
func (tdb *TestDatabase) CleanupDatabase(t *testing.T) {
	ctx := context.Background()

	tables := []string{
		"booking_events",
		"bookings",
		"spots",
		"users",
	}

	for _, table := range tables {
		_, err := tdb.pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			t.Logf("Failed to truncate table %s: %v", table, err)
		}
	}
}
