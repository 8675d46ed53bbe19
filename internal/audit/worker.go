package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/parkvault/pv-backend/internal/config"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/logging"
)

// EventStore is the slice of the query layer the worker writes through.
type EventStore interface {
	CreateBookingEvent(ctx context.Context, arg database.CreateBookingEventParams) error
}

type Worker struct {
	server *asynq.Server
	store  EventStore
}

func NewWorker(cfg *config.RedisConfig, store EventStore) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	return &Worker{
		server: server,
		store:  store,
	}
}

func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingEvent, w.HandleBookingEvent)

	return w.server.Start(mux)
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleBookingEvent(ctx context.Context, t *asynq.Task) error {
	var p BookingEventPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.store.CreateBookingEvent(ctx, database.CreateBookingEventParams{
		BookingID:  p.BookingID,
		ActorID:    p.ActorID,
		Action:     p.Action,
		OccurredAt: p.OccurredAt,
	}); err != nil {
		return fmt.Errorf("failed to persist booking event: %w", err)
	}

	logging.Debug("booking event recorded", "booking_id", p.BookingID, "action", p.Action)
	return nil
}
