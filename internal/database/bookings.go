package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const createBooking = `
INSERT INTO bookings (id, user_id, spot_id, start_time)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, spot_id, start_time, end_time, created_at, updated_at
`

type CreateBookingParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	SpotID    uuid.UUID
	StartTime time.Time
}

// CreateBooking inserts a new open booking. A unique partial index on
// (spot_id) WHERE end_time IS NULL rejects a second open booking on the
// same spot with a unique-violation error.
func (q *Queries) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	row := q.db.QueryRow(ctx, createBooking, arg.ID, arg.UserID, arg.SpotID, arg.StartTime)
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.SpotID, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const getBookingDetail = `
SELECT b.id, b.user_id, b.spot_id, b.start_time, b.end_time, b.created_at, b.updated_at,
       u.email, u.role, s.name
FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN spots s ON s.id = b.spot_id
WHERE b.id = $1
`

func (q *Queries) GetBookingDetail(ctx context.Context, id uuid.UUID) (BookingDetail, error) {
	row := q.db.QueryRow(ctx, getBookingDetail, id)
	var d BookingDetail
	err := row.Scan(
		&d.ID, &d.UserID, &d.SpotID, &d.StartTime, &d.EndTime, &d.CreatedAt, &d.UpdatedAt,
		&d.UserEmail, &d.UserRole, &d.SpotName,
	)
	return d, err
}

const listBookingDetails = `
SELECT b.id, b.user_id, b.spot_id, b.start_time, b.end_time, b.created_at, b.updated_at,
       u.email, u.role, s.name
FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN spots s ON s.id = b.spot_id
ORDER BY b.start_time DESC
`

func (q *Queries) ListBookingDetails(ctx context.Context) ([]BookingDetail, error) {
	rows, err := q.db.Query(ctx, listBookingDetails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}

const listBookingDetailsByUser = `
SELECT b.id, b.user_id, b.spot_id, b.start_time, b.end_time, b.created_at, b.updated_at,
       u.email, u.role, s.name
FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN spots s ON s.id = b.spot_id
WHERE b.user_id = $1
ORDER BY b.start_time DESC
`

func (q *Queries) ListBookingDetailsByUser(ctx context.Context, userID uuid.UUID) ([]BookingDetail, error) {
	rows, err := q.db.Query(ctx, listBookingDetailsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}

const endBooking = `
UPDATE bookings
SET end_time = $2, updated_at = $2
WHERE id = $1 AND end_time IS NULL
RETURNING id, user_id, spot_id, start_time, end_time, created_at, updated_at
`

type EndBookingParams struct {
	ID      uuid.UUID
	EndTime time.Time
}

// EndBooking closes a booking with a conditional update. When two callers
// race, the WHERE end_time IS NULL guard lets exactly one through; the
// loser gets pgx.ErrNoRows.
func (q *Queries) EndBooking(ctx context.Context, arg EndBookingParams) (Booking, error) {
	row := q.db.QueryRow(ctx, endBooking, arg.ID, arg.EndTime)
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.SpotID, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const deleteBooking = `
DELETE FROM bookings
WHERE id = $1
`

func (q *Queries) DeleteBooking(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteBooking, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanBookingDetails(rows pgx.Rows) ([]BookingDetail, error) {
	var details []BookingDetail
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.SpotID, &d.StartTime, &d.EndTime, &d.CreatedAt, &d.UpdatedAt,
			&d.UserEmail, &d.UserRole, &d.SpotName,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
