package token

import (
	"context"
	"fmt"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/log"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

type DeviceCommander interface {
	DeleteGuestPass(ctx context.Context, cfg ruckus.DeviceConfig, username string) error
	SetMACBlock(ctx context.Context, cfg ruckus.DeviceConfig, mac string, blocked bool) error
}

type Integrations interface {
	ActiveIntegration(ctx context.Context, businessID string, family registry.DeviceFamily) (registry.Integration, registry.Device, error)
}

type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// OnlineClients reports which hardware addresses are currently online for a
// token. Satisfied by the connected-client projection store.
type OnlineClients interface {
	OnlineMACsForToken(ctx context.Context, tokenID string) ([]string, error)
}

// Lifecycle removes or disables tokens, keeping the controller in step with
// the local record.
type Lifecycle struct {
	Store        Store
	Integrations Integrations
	Vault        Decrypter
	Device       DeviceCommander
	Clients      OnlineClients
}

func (l *Lifecycle) controllerConfig(ctx context.Context, businessID string) (ruckus.DeviceConfig, error) {
	_, device, err := l.Integrations.ActiveIntegration(ctx, businessID, registry.FamilyController)
	if err != nil {
		return ruckus.DeviceConfig{}, err
	}
	password, err := l.Vault.Decrypt(device.AdminPasswordEnc)
	if err != nil {
		return ruckus.DeviceConfig{}, err
	}
	return ruckus.DeviceConfig{
		Address:  device.Address,
		Username: device.AdminUsername,
		Password: password,
	}, nil
}

// Purge removes an available token from the controller and then from the
// local store. The guest pass is removed from the device first; if that
// fails the local row stays untouched.
func (l *Lifecycle) Purge(ctx context.Context, businessID string, tokenID string) error {
	tok, err := l.Store.GetToken(ctx, tokenID)
	if err != nil {
		return err
	}
	if tok.BusinessID != businessID {
		return ErrTokenNotFound
	}
	if tok.State != StateAvailable {
		return ErrTokenNotPurgeable
	}

	cfg, err := l.controllerConfig(ctx, businessID)
	if err != nil {
		return err
	}
	if err := l.Device.DeleteGuestPass(ctx, cfg, tok.Username); err != nil {
		return fmt.Errorf("remove guest pass from device: %w", err)
	}
	return l.Store.PurgeToken(ctx, tokenID)
}

// Disable marks a token disabled and blocks every hardware address currently
// online on it. The state flip happens first so the token stops being
// sellable even when the device refuses some of the blocks. Returns how many
// addresses were blocked.
func (l *Lifecycle) Disable(ctx context.Context, businessID string, tokenID string) (int, error) {
	tok, err := l.Store.GetToken(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	if tok.BusinessID != businessID {
		return 0, ErrTokenNotFound
	}

	if err := l.Store.UpdateTokenState(ctx, tokenID, StateDisabled); err != nil {
		return 0, err
	}

	macs, err := l.Clients.OnlineMACsForToken(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	if len(macs) == 0 {
		return 0, nil
	}

	cfg, err := l.controllerConfig(ctx, businessID)
	if err != nil {
		return 0, err
	}

	blocked := 0
	logger := log.Job("token").WithField("token_id", tokenID)
	for _, mac := range macs {
		if err := l.Device.SetMACBlock(ctx, cfg, mac, true); err != nil {
			logger.WithField("mac", mac).Error("Failed to block client: " + err.Error())
			continue
		}
		blocked++
	}
	return blocked, nil
}
