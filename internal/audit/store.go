package audit

import (
	"context"
	"sync"

	id "verigate/pkg/domain"
)

// Store is the append-only audit sink. Implementations must preserve append
// order per request.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRequest(ctx context.Context, requestID id.RequestID) ([]Event, error)
}

// InMemoryStore keeps the audit trail in memory for tests and single-node
// deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByRequest(_ context.Context, requestID id.RequestID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}
