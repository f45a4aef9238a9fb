package clientsync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	projections map[string]Projection // keyed by tokenID + "|" + mac
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projections: make(map[string]Projection)}
}

func projectionKey(tokenID string, mac string) string {
	return tokenID + "|" + mac
}

func (s *MemoryStore) Upsert(ctx context.Context, p Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectionKey(p.TokenID, p.MAC)
	existing, ok := s.projections[key]
	if ok {
		p.ID = existing.ID
	} else if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Online = true
	p.LastSyncedAt = time.Now()
	s.projections[key] = p
	return nil
}

func (s *MemoryStore) MarkOfflineExcept(ctx context.Context, businessID string, seenMACs []string) (int, error) {
	seen := make(map[string]bool, len(seenMACs))
	for _, mac := range seenMACs {
		seen[mac] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	flipped := 0
	for key, p := range s.projections {
		if p.BusinessID == businessID && p.Online && !seen[p.MAC] {
			p.Online = false
			p.LastSyncedAt = time.Now()
			s.projections[key] = p
			flipped++
		}
	}
	return flipped, nil
}

func (s *MemoryStore) ListByBusiness(ctx context.Context, businessID string) ([]Projection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var projections []Projection
	for _, p := range s.projections {
		if p.BusinessID == businessID {
			projections = append(projections, p)
		}
	}
	return projections, nil
}

func (s *MemoryStore) OnlineMACsForToken(ctx context.Context, tokenID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var macs []string
	for _, p := range s.projections {
		if p.TokenID == tokenID && p.Online {
			macs = append(macs, p.MAC)
		}
	}
	return macs, nil
}
