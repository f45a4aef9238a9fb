package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	packages map[string]Package
	tokens   map[string]Token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		packages: make(map[string]Package),
		tokens:   make(map[string]Token),
	}
}

func (s *MemoryStore) CreatePackage(ctx context.Context, p Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.packages[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPackage(ctx context.Context, businessID string, packageID string) (Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packages[packageID]
	if !ok || p.BusinessID != businessID {
		return Package{}, ErrPackageNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListPackages(ctx context.Context, businessID string) ([]Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var packages []Package
	for _, p := range s.packages {
		if p.BusinessID == businessID {
			packages = append(packages, p)
		}
	}
	return packages, nil
}

// PutToken seeds a token; used by tests and the sale persister fake.
func (s *MemoryStore) PutToken(t Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.tokens[t.ID] = t
}

func (s *MemoryStore) GetToken(ctx context.Context, id string) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[id]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	return t, nil
}

func (s *MemoryStore) GetTokenByUsername(ctx context.Context, businessID string, username string) (Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tokens {
		if t.BusinessID == businessID && t.Username == username {
			return t, nil
		}
	}
	return Token{}, ErrTokenNotFound
}

func (s *MemoryStore) UpdateTokenState(ctx context.Context, id string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return ErrTokenNotFound
	}
	t.State = state
	s.tokens[id] = t
	return nil
}

func (s *MemoryStore) PurgeToken(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return ErrTokenNotFound
	}
	if t.State != StateAvailable {
		return ErrTokenNotPurgeable
	}
	delete(s.tokens, id)
	return nil
}
