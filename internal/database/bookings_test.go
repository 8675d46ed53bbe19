package database_test

import (
	"context"
	"errors"
	"flag"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func skipShort(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
}

func TestQueries_CreateBooking(t *testing.T) {
	skipShort(t)
	ctx := context.Background()

	t.Run("returns the stored row", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		user := sharedDB.NewUser(t).WithEmail("create@example.com").Create()
		spot := sharedDB.NewSpot(t).WithName("A1").Create()

		booking, err := sharedDB.Queries().CreateBooking(ctx, database.CreateBookingParams{
			ID:        uuid.New(),
			UserID:    user.ID,
			SpotID:    spot.ID,
			StartTime: time.Now().UTC(),
		})

		require.NoError(t, err)
		assert.Equal(t, user.ID, booking.UserID)
		assert.Equal(t, spot.ID, booking.SpotID)
		assert.Nil(t, booking.EndTime)
	})

	t.Run("second open booking on the same spot violates the partial index", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()
		bob := sharedDB.NewUser(t).WithEmail("bob@example.com").Create()
		spot := sharedDB.NewSpot(t).WithName("A1").Create()

		sharedDB.NewBooking(t).ForUser(alice).OnSpot(spot).Create()

		_, err := sharedDB.Queries().CreateBooking(ctx, database.CreateBookingParams{
			ID:        uuid.New(),
			UserID:    bob.ID,
			SpotID:    spot.ID,
			StartTime: time.Now().UTC(),
		})

		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23505", pgErr.Code)
	})

	t.Run("ended bookings free the spot", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()
		bob := sharedDB.NewUser(t).WithEmail("bob@example.com").Create()
		spot := sharedDB.NewSpot(t).WithName("A1").Create()

		sharedDB.NewBooking(t).ForUser(alice).OnSpot(spot).
			Ended(time.Now().UTC()).Create()

		_, err := sharedDB.Queries().CreateBooking(ctx, database.CreateBookingParams{
			ID:        uuid.New(),
			UserID:    bob.ID,
			SpotID:    spot.ID,
			StartTime: time.Now().UTC(),
		})
		require.NoError(t, err)
	})
}

func TestQueries_EndBooking(t *testing.T) {
	skipShort(t)
	ctx := context.Background()

	t.Run("sets the end time once", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		user := sharedDB.NewUser(t).WithEmail("end@example.com").Create()
		spot := sharedDB.NewSpot(t).WithName("A1").Create()
		booking := sharedDB.NewBooking(t).ForUser(user).OnSpot(spot).Create()

		ended, err := sharedDB.Queries().EndBooking(ctx, database.EndBookingParams{
			ID:      booking.ID,
			EndTime: time.Now().UTC(),
		})
		require.NoError(t, err)
		require.NotNil(t, ended.EndTime)

		_, err = sharedDB.Queries().EndBooking(ctx, database.EndBookingParams{
			ID:      booking.ID,
			EndTime: time.Now().UTC(),
		})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("exactly one of two racing enders succeeds", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		user := sharedDB.NewUser(t).WithEmail("race@example.com").Create()
		spot := sharedDB.NewSpot(t).WithName("A1").Create()
		booking := sharedDB.NewBooking(t).ForUser(user).OnSpot(spot).Create()

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := sharedDB.Queries().EndBooking(ctx, database.EndBookingParams{
					ID:      booking.ID,
					EndTime: time.Now().UTC(),
				})
				results[i] = err
			}(i)
		}
		wg.Wait()

		var successes, losses int
		for _, err := range results {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, pgx.ErrNoRows):
				losses++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, losses)
	})
}

func TestQueries_BookingDetails(t *testing.T) {
	skipShort(t)
	ctx := context.Background()

	t.Run("detail joins user and spot", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		user := sharedDB.NewUser(t).WithEmail("detail@example.com").AsAdmin().Create()
		spot := sharedDB.NewSpot(t).WithName("B2").Create()
		booking := sharedDB.NewBooking(t).ForUser(user).OnSpot(spot).Create()

		detail, err := sharedDB.Queries().GetBookingDetail(ctx, booking.ID)

		require.NoError(t, err)
		assert.Equal(t, "detail@example.com", detail.UserEmail)
		assert.Equal(t, "admin", detail.UserRole)
		assert.Equal(t, "B2", detail.SpotName)
	})

	t.Run("per-user listing filters other owners", func(t *testing.T) {
		sharedDB.CleanupDatabase(t)
		alice := sharedDB.NewUser(t).WithEmail("alice@example.com").Create()
		bob := sharedDB.NewUser(t).WithEmail("bob@example.com").Create()
		a1 := sharedDB.NewSpot(t).WithName("A1").Create()
		a2 := sharedDB.NewSpot(t).WithName("A2").Create()

		sharedDB.NewBooking(t).ForUser(alice).OnSpot(a1).Create()
		sharedDB.NewBooking(t).ForUser(bob).OnSpot(a2).Create()

		all, err := sharedDB.Queries().ListBookingDetails(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		own, err := sharedDB.Queries().ListBookingDetailsByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, alice.ID, own[0].UserID)
	})
}

func TestQueries_DeleteBooking(t *testing.T) {
	skipShort(t)
	ctx := context.Background()

	sharedDB.CleanupDatabase(t)
	user := sharedDB.NewUser(t).WithEmail("delete@example.com").Create()
	spot := sharedDB.NewSpot(t).WithName("A1").Create()
	booking := sharedDB.NewBooking(t).ForUser(user).OnSpot(spot).Create()

	affected, err := sharedDB.Queries().DeleteBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = sharedDB.Queries().DeleteBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	_, err = sharedDB.Queries().GetBookingDetail(ctx, booking.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestQueries_RolePermissions(t *testing.T) {
	skipShort(t)
	ctx := context.Background()

	rows, err := sharedDB.Queries().ListRolePermissions(ctx)
	require.NoError(t, err)

	grants := make(map[string][]string)
	for _, row := range rows {
		grants[row.Role] = append(grants[row.Role], row.Permission)
	}

	assert.Len(t, grants["admin"], 4)
	assert.Equal(t, []string{"manage_own_bookings"}, grants["user"])
}
