package audit

import (
	"context"
	"log/slog"
	"time"

	id "verigate/pkg/domain"
)

// Publisher hands audit events to the background worker over a buffered
// channel. Emit never blocks the verification path: when the inbox is full
// the event is dropped with a warning rather than stalling a pipeline run.
type Publisher struct {
	store  Store
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(store Store, bufferSize int, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		inbox:  make(chan Event, bufferSize),
		logger: logger,
	}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"request_id", event.RequestID,
			"stage", event.Stage)
	}
}

func (p *Publisher) List(ctx context.Context, requestID id.RequestID) ([]Event, error) {
	return p.store.ListByRequest(ctx, requestID)
}
