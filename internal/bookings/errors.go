package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/parkvault/pv-backend/internal/domain"
)

// storeError classifies infrastructure failures. Deadline and network
// timeouts become the retryable ErrUnavailable; anything else is wrapped
// as-is for the caller to log.
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
