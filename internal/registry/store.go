package registry

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDeviceNotFound = errors.New("device not found")

	// ErrIntegrationMissing means the business has no active integration
	// for the requested device family.
	ErrIntegrationMissing = errors.New("business has no active device integration")
)

type Store interface {
	CreateDevice(ctx context.Context, d Device) error
	GetDevice(ctx context.Context, id string) (Device, error)
	ListDevices(ctx context.Context) ([]Device, error)
	UpdateDeviceStatus(ctx context.Context, id string, status DeviceStatus, checkedAt time.Time) error

	// SaveIntegration activates in, deactivating any previous active
	// integration for the same (business, family) pair.
	SaveIntegration(ctx context.Context, in Integration) error
	ActiveIntegration(ctx context.Context, businessID string, family DeviceFamily) (Integration, Device, error)
	IntegratedBusinessIDs(ctx context.Context, family DeviceFamily) ([]string, error)
}
