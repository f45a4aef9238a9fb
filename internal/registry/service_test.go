package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/gateway"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

type plainCodec struct{}

func (plainCodec) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (plainCodec) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

type fakeControllerProber struct {
	probes int
	err    error
}

func (f *fakeControllerProber) Probe(ctx context.Context, cfg ruckus.DeviceConfig) error {
	f.probes++
	return f.err
}

type fakeGatewayProber struct {
	probes int
	err    error
}

func (f *fakeGatewayProber) Probe(ctx context.Context, cfg gateway.DeviceConfig) error {
	f.probes++
	return f.err
}

func seedDevice(t *testing.T, store Store, id string, family DeviceFamily) {
	t.Helper()
	err := store.CreateDevice(context.Background(), Device{
		ID: id, Family: family, Address: "10.0.0.9",
		AdminUsername: "admin", AdminPasswordEnc: "pw", Status: StatusUnknown,
	})
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
}

func TestCheckDeviceMarksConnected(t *testing.T) {
	store := NewMemoryStore()
	seedDevice(t, store, "d1", FamilyController)
	controller := &fakeControllerProber{}
	checker := &HealthChecker{Store: store, Vault: plainCodec{}, Controller: controller, Gateway: &fakeGatewayProber{}}

	device, err := checker.CheckDevice(context.Background(), "d1")
	if err != nil {
		t.Fatalf("CheckDevice: %v", err)
	}
	if device.Status != StatusConnected {
		t.Fatalf("status = %s, want connected", device.Status)
	}
	if device.LastHealthCheck == nil || time.Since(*device.LastHealthCheck) > time.Minute {
		t.Fatal("health check timestamp not recorded")
	}
	if controller.probes != 1 {
		t.Fatalf("controller probes = %d, want 1", controller.probes)
	}
}

func TestCheckDeviceMarksDisconnectedOnProbeFailure(t *testing.T) {
	store := NewMemoryStore()
	seedDevice(t, store, "d1", FamilyController)
	checker := &HealthChecker{
		Store: store, Vault: plainCodec{},
		Controller: &fakeControllerProber{err: ruckus.ErrDeviceUnreachable},
		Gateway:    &fakeGatewayProber{},
	}

	device, err := checker.CheckDevice(context.Background(), "d1")
	if err != nil {
		t.Fatalf("CheckDevice: %v", err)
	}
	if device.Status != StatusDisconnected {
		t.Fatalf("status = %s, want disconnected", device.Status)
	}
}

func TestCheckDeviceDispatchesByFamily(t *testing.T) {
	store := NewMemoryStore()
	seedDevice(t, store, "gw", FamilyGateway)
	controller := &fakeControllerProber{}
	gw := &fakeGatewayProber{}
	checker := &HealthChecker{Store: store, Vault: plainCodec{}, Controller: controller, Gateway: gw}

	if _, err := checker.CheckDevice(context.Background(), "gw"); err != nil {
		t.Fatalf("CheckDevice: %v", err)
	}
	if gw.probes != 1 || controller.probes != 0 {
		t.Fatalf("probes gateway=%d controller=%d, want 1/0", gw.probes, controller.probes)
	}
}

func TestCheckDeviceUnknownID(t *testing.T) {
	checker := &HealthChecker{Store: NewMemoryStore(), Vault: plainCodec{}, Controller: &fakeControllerProber{}, Gateway: &fakeGatewayProber{}}
	if _, err := checker.CheckDevice(context.Background(), "missing"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestSaveIntegrationDeactivatesPrevious(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedDevice(t, store, "d1", FamilyController)
	seedDevice(t, store, "d2", FamilyController)

	if err := store.SaveIntegration(ctx, Integration{ID: "i1", BusinessID: "b1", DeviceID: "d1", Family: FamilyController}); err != nil {
		t.Fatalf("SaveIntegration: %v", err)
	}
	if err := store.SaveIntegration(ctx, Integration{ID: "i2", BusinessID: "b1", DeviceID: "d2", Family: FamilyController}); err != nil {
		t.Fatalf("SaveIntegration: %v", err)
	}

	integration, device, err := store.ActiveIntegration(ctx, "b1", FamilyController)
	if err != nil {
		t.Fatalf("ActiveIntegration: %v", err)
	}
	if integration.ID != "i2" || device.ID != "d2" {
		t.Fatalf("active integration = %s on %s, want i2 on d2", integration.ID, device.ID)
	}
}

func TestActiveIntegrationScopedByFamily(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedDevice(t, store, "d1", FamilyController)
	_ = store.SaveIntegration(ctx, Integration{ID: "i1", BusinessID: "b1", DeviceID: "d1", Family: FamilyController})

	if _, _, err := store.ActiveIntegration(ctx, "b1", FamilyGateway); !errors.Is(err, ErrIntegrationMissing) {
		t.Fatalf("expected ErrIntegrationMissing for other family, got %v", err)
	}
}

func TestCheckAllCountsOutcomes(t *testing.T) {
	store := NewMemoryStore()
	seedDevice(t, store, "d1", FamilyController)
	seedDevice(t, store, "d2", FamilyGateway)
	checker := &HealthChecker{
		Store: store, Vault: plainCodec{},
		Controller: &fakeControllerProber{},
		Gateway:    &fakeGatewayProber{err: errors.New("gateway down")},
	}

	healthy, unhealthy := checker.CheckAll(context.Background(), 2, 0)
	if healthy != 1 || unhealthy != 1 {
		t.Fatalf("healthy=%d unhealthy=%d, want 1/1", healthy, unhealthy)
	}
}
