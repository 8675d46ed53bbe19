// Package audit records booking lifecycle transitions asynchronously.
// Services enqueue events on Redis; the worker persists them.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/parkvault/pv-backend/internal/config"
	"github.com/parkvault/pv-backend/internal/logging"
)

const TypeBookingEvent = "audit:booking_event"

// Booking lifecycle actions.
const (
	ActionCreated = "created"
	ActionEnded   = "ended"
	ActionRemoved = "removed"
)

type BookingEventPayload struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recorder enqueues audit events. Enqueue failures are surfaced to the
// caller, which logs and moves on; auditing never fails an operation.
type Recorder struct {
	client *asynq.Client
}

func NewRecorder(cfg *config.RedisConfig) (*Recorder, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis audit queue")

	return &Recorder{client: client}, nil
}

func (r *Recorder) RecordBookingEvent(bookingID, actorID uuid.UUID, action string, occurredAt time.Time) error {
	payload, err := json.Marshal(BookingEventPayload{
		BookingID:  bookingID,
		ActorID:    actorID,
		Action:     action,
		OccurredAt: occurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	_, err = r.client.Enqueue(asynq.NewTask(TypeBookingEvent, payload))
	return err
}

func (r *Recorder) Close() error {
	return r.client.Close()
}
