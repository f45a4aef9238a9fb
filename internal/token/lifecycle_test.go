package token

import (
	"context"
	"errors"
	"testing"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

type fakeCommander struct {
	deletedUsernames []string
	blockedMACs      []string
	deleteErr        error
	blockErr         error
}

func (f *fakeCommander) DeleteGuestPass(ctx context.Context, cfg ruckus.DeviceConfig, username string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedUsernames = append(f.deletedUsernames, username)
	return nil
}

func (f *fakeCommander) SetMACBlock(ctx context.Context, cfg ruckus.DeviceConfig, mac string, blocked bool) error {
	if f.blockErr != nil {
		return f.blockErr
	}
	f.blockedMACs = append(f.blockedMACs, mac)
	return nil
}

type fakeIntegrations struct {
	missing bool
}

func (f *fakeIntegrations) ActiveIntegration(ctx context.Context, businessID string, family registry.DeviceFamily) (registry.Integration, registry.Device, error) {
	if f.missing {
		return registry.Integration{}, registry.Device{}, registry.ErrIntegrationMissing
	}
	return registry.Integration{BusinessID: businessID, Family: family},
		registry.Device{Address: "10.0.0.1", AdminUsername: "admin", AdminPasswordEnc: "enc"}, nil
}

type plainCodec struct{}

func (plainCodec) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

type fakeOnlineClients struct {
	macs []string
}

func (f *fakeOnlineClients) OnlineMACsForToken(ctx context.Context, tokenID string) ([]string, error) {
	return f.macs, nil
}

func newLifecycle(store Store, cmd *fakeCommander, clients *fakeOnlineClients) *Lifecycle {
	return &Lifecycle{
		Store:        store,
		Integrations: &fakeIntegrations{},
		Vault:        plainCodec{},
		Device:       cmd,
		Clients:      clients,
	}
}

func TestPurgeAvailableToken(t *testing.T) {
	store := NewMemoryStore()
	store.PutToken(Token{ID: "t1", BusinessID: "b1", Username: "u1", State: StateAvailable})
	cmd := &fakeCommander{}

	lc := newLifecycle(store, cmd, &fakeOnlineClients{})
	if err := lc.Purge(context.Background(), "b1", "t1"); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	if len(cmd.deletedUsernames) != 1 || cmd.deletedUsernames[0] != "u1" {
		t.Fatalf("device deletions = %v", cmd.deletedUsernames)
	}
	if _, err := store.GetToken(context.Background(), "t1"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("token still present after purge: %v", err)
	}
}

func TestPurgeRefusedForSoldToken(t *testing.T) {
	store := NewMemoryStore()
	store.PutToken(Token{ID: "t1", BusinessID: "b1", Username: "u1", State: StateSold})
	cmd := &fakeCommander{}

	lc := newLifecycle(store, cmd, &fakeOnlineClients{})
	if err := lc.Purge(context.Background(), "b1", "t1"); !errors.Is(err, ErrTokenNotPurgeable) {
		t.Fatalf("expected ErrTokenNotPurgeable, got %v", err)
	}
	if len(cmd.deletedUsernames) != 0 {
		t.Fatal("device touched for a non-purgeable token")
	}
}

func TestPurgeScopedToBusiness(t *testing.T) {
	store := NewMemoryStore()
	store.PutToken(Token{ID: "t1", BusinessID: "b1", Username: "u1", State: StateAvailable})

	lc := newLifecycle(store, &fakeCommander{}, &fakeOnlineClients{})
	if err := lc.Purge(context.Background(), "other-business", "t1"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound for foreign token, got %v", err)
	}
	if _, err := store.GetToken(context.Background(), "t1"); err != nil {
		t.Fatal("foreign purge attempt must not remove the token")
	}
}

func TestPurgeKeepsRowWhenDeviceDeleteFails(t *testing.T) {
	store := NewMemoryStore()
	store.PutToken(Token{ID: "t1", BusinessID: "b1", Username: "u1", State: StateAvailable})
	cmd := &fakeCommander{deleteErr: ruckus.ErrDeviceUnreachable}

	lc := newLifecycle(store, cmd, &fakeOnlineClients{})
	if err := lc.Purge(context.Background(), "b1", "t1"); !errors.Is(err, ruckus.ErrDeviceUnreachable) {
		t.Fatalf("expected device error, got %v", err)
	}
	if _, err := store.GetToken(context.Background(), "t1"); err != nil {
		t.Fatal("local row removed despite device failure")
	}
}

func TestDisableBlocksOnlineClients(t *testing.T) {
	store := NewMemoryStore()
	store.PutToken(Token{ID: "t1", BusinessID: "b1", Username: "u1", State: StateActive})
	cmd := &fakeCommander{}
	clients := &fakeOnlineClients{macs: []string{"aa:bb:cc:dd:ee:ff", "11:22:33:44:55:66"}}

	lc := newLifecycle(store, cmd, clients)
	blocked, err := lc.Disable(context.Background(), "b1", "t1")
	if err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if blocked != 2 {
		t.Fatalf("blocked = %d, want 2", blocked)
	}
	if len(cmd.blockedMACs) != 2 {
		t.Fatalf("device blocks = %v", cmd.blockedMACs)
	}

	tok, _ := store.GetToken(context.Background(), "t1")
	if tok.State != StateDisabled {
		t.Fatalf("state = %s, want disabled", tok.State)
	}
}

func TestDisableStateFlipsEvenWithNoClients(t *testing.T) {
	store := NewMemoryStore()
	store.PutToken(Token{ID: "t1", BusinessID: "b1", Username: "u1", State: StateSold})

	lc := newLifecycle(store, &fakeCommander{}, &fakeOnlineClients{})
	blocked, err := lc.Disable(context.Background(), "b1", "t1")
	if err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if blocked != 0 {
		t.Fatalf("blocked = %d, want 0", blocked)
	}
	tok, _ := store.GetToken(context.Background(), "t1")
	if tok.State != StateDisabled {
		t.Fatalf("state = %s, want disabled", tok.State)
	}
}
