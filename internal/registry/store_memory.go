package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu           sync.RWMutex
	devices      map[string]Device
	integrations map[string]Integration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices:      make(map[string]Device),
		integrations: make(map[string]Integration),
	}
}

func (s *MemoryStore) CreateDevice(ctx context.Context, d Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	s.devices[d.ID] = d
	return nil
}

func (s *MemoryStore) GetDevice(ctx context.Context, id string) (Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	if !ok {
		return Device{}, ErrDeviceNotFound
	}
	return d, nil
}

func (s *MemoryStore) ListDevices(ctx context.Context) ([]Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	devices := make([]Device, 0, len(s.devices))
	for _, d := range s.devices {
		devices = append(devices, d)
	}
	return devices, nil
}

func (s *MemoryStore) UpdateDeviceStatus(ctx context.Context, id string, status DeviceStatus, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return ErrDeviceNotFound
	}
	d.Status = status
	d.LastHealthCheck = &checkedAt
	s.devices[id] = d
	return nil
}

func (s *MemoryStore) SaveIntegration(ctx context.Context, in Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.integrations {
		if existing.BusinessID == in.BusinessID && existing.Family == in.Family && existing.Active {
			existing.Active = false
			s.integrations[id] = existing
		}
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	in.Active = true
	s.integrations[in.ID] = in
	return nil
}

func (s *MemoryStore) ActiveIntegration(ctx context.Context, businessID string, family DeviceFamily) (Integration, Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, in := range s.integrations {
		if in.BusinessID == businessID && in.Family == family && in.Active {
			d, ok := s.devices[in.DeviceID]
			if !ok {
				return Integration{}, Device{}, ErrDeviceNotFound
			}
			return in, d, nil
		}
	}
	return Integration{}, Device{}, ErrIntegrationMissing
}

func (s *MemoryStore) IntegratedBusinessIDs(ctx context.Context, family DeviceFamily) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var ids []string
	for _, in := range s.integrations {
		if in.Family == family && in.Active && !seen[in.BusinessID] {
			seen[in.BusinessID] = true
			ids = append(ids, in.BusinessID)
		}
	}
	return ids, nil
}
