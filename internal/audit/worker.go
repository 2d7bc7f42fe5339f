package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the publisher's inbox and persists them.
// It keeps background processing testable without wiring queue
// implementations.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(p *Publisher, logger *slog.Logger) *Worker {
	return &Worker{store: p.store, inbox: p.inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Append failures are
// logged and skipped so one bad event cannot halt the trail.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to append audit event",
					"request_id", event.RequestID,
					"stage", event.Stage,
					"error", err)
			}
		}
	}
}
