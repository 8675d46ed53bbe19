package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const createBookingEvent = `
INSERT INTO booking_events (booking_id, actor_id, action, occurred_at)
VALUES ($1, $2, $3, $4)
`

type CreateBookingEventParams struct {
	BookingID  uuid.UUID
	ActorID    uuid.UUID
	Action     string
	OccurredAt time.Time
}

func (q *Queries) CreateBookingEvent(ctx context.Context, arg CreateBookingEventParams) error {
	_, err := q.db.Exec(ctx, createBookingEvent, arg.BookingID, arg.ActorID, arg.Action, arg.OccurredAt)
	return err
}

const listBookingEvents = `
SELECT id, booking_id, actor_id, action, occurred_at
FROM booking_events
WHERE booking_id = $1
ORDER BY occurred_at
`

func (q *Queries) ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]BookingEvent, error) {
	rows, err := q.db.Query(ctx, listBookingEvents, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []BookingEvent
	for rows.Next() {
		var e BookingEvent
		if err := rows.Scan(&e.ID, &e.BookingID, &e.ActorID, &e.Action, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
