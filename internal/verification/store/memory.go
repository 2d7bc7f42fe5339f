package store

import (
	"context"
	"sort"
	"sync"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
)

// InMemoryRequestStore keeps requests in a map. It favors clarity over
// performance and backs unit tests and single-node deployments without a
// database.
type InMemoryRequestStore struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.VerificationRequest
}

func NewInMemoryRequestStore() *InMemoryRequestStore {
	return &InMemoryRequestStore{requests: make(map[id.RequestID]*models.VerificationRequest)}
}

func (s *InMemoryRequestStore) Save(_ context.Context, req *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (s *InMemoryRequestStore) FindByID(_ context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if req, ok := s.requests[requestID]; ok {
		return cloneRequest(req), nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryRequestStore) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.VerificationRequest
	for _, req := range s.requests {
		if req.Subject.ID == subjectID {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// cloneRequest isolates stored state from caller mutation. Stage results and
// the verdict are immutable once recorded, so the clone shares them and only
// copies the mutable slices.
func cloneRequest(req *models.VerificationRequest) *models.VerificationRequest {
	c := *req
	c.Claims = append([]models.ProfessionalClaim(nil), req.Claims...)
	c.Events = append([]models.Event(nil), req.Events...)
	if req.LivePhoto != nil {
		live := *req.LivePhoto
		c.LivePhoto = &live
	}
	if req.CompletedAt != nil {
		t := *req.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// InMemoryVerdictCache is the no-Redis fallback for VerdictCache.
type InMemoryVerdictCache struct {
	mu       sync.RWMutex
	verdicts map[id.RequestID]*models.VerificationVerdict
}

func NewInMemoryVerdictCache() *InMemoryVerdictCache {
	return &InMemoryVerdictCache{verdicts: make(map[id.RequestID]*models.VerificationVerdict)}
}

func (c *InMemoryVerdictCache) Put(_ context.Context, requestID id.RequestID, v *models.VerificationVerdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts[requestID] = v
	return nil
}

func (c *InMemoryVerdictCache) Get(_ context.Context, requestID id.RequestID) (*models.VerificationVerdict, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.verdicts[requestID]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}
