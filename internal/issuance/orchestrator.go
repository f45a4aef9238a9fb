// Package issuance turns a purchase request into a minted guest pass plus a
// consistent ledger entry.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/token"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/log"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

var ErrInvalidAmount = errors.New("sale amount must not be negative")

// Packages is the slice of the token store the orchestrator needs.
type Packages interface {
	GetPackage(ctx context.Context, businessID string, packageID string) (token.Package, error)
}

// Integrations resolves the business's active controller integration.
type Integrations interface {
	ActiveIntegration(ctx context.Context, businessID string, family registry.DeviceFamily) (registry.Integration, registry.Device, error)
}

// Decrypter is implemented by pkg/vault.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// GuestPassMinter is implemented by the ruckus client.
type GuestPassMinter interface {
	CreateGuestPass(ctx context.Context, cfg ruckus.DeviceConfig, spec ruckus.GuestPassSpec) (ruckus.GuestPass, error)
}

// SalePersister writes the token, the sale and - for a paid sale - the
// deposit plus balance recomputation in one local transaction. Returns the
// account balance after the write (unchanged for free tokens).
type SalePersister interface {
	PersistSale(ctx context.Context, tok token.Token, sale token.Sale) (int64, error)
}

type SellRequest struct {
	BusinessID    string
	PackageID     string
	Amount        int64
	PaymentMethod string
	SellerID      string
	Channel       token.Channel
}

type SellResult struct {
	Token       token.Token `json:"token"`
	Sale        token.Sale  `json:"sale"`
	PackageName string      `json:"package_name"`
	NetworkName string      `json:"network_name"`
	Balance     int64       `json:"balance"`
}

type Orchestrator struct {
	Packages     Packages
	Integrations Integrations
	Vault        Decrypter
	Device       GuestPassMinter
	Persister    SalePersister
}

// Sell validates the purchase, mints the guest pass on the device and then
// persists token, sale and ledger entry in one local transaction.
//
// Steps before the mint have no side effects anywhere. The mint is the only
// external side effect and happens before any local row is written; there is
// no automatic retry on a transient mint failure since a retry could mint a
// second credential on the device.
func (o *Orchestrator) Sell(ctx context.Context, req SellRequest) (SellResult, error) {
	if req.Amount < 0 {
		return SellResult{}, ErrInvalidAmount
	}
	if req.Channel == "" {
		req.Channel = token.ChannelPOS
	}

	pkg, err := o.Packages.GetPackage(ctx, req.BusinessID, req.PackageID)
	if err != nil {
		return SellResult{}, err
	}

	_, device, err := o.Integrations.ActiveIntegration(ctx, req.BusinessID, registry.FamilyController)
	if err != nil {
		return SellResult{}, err
	}

	deviceUnit, err := token.DeviceDurationUnit(pkg.DurationUnit)
	if err != nil {
		return SellResult{}, err
	}

	password, err := o.Vault.Decrypt(device.AdminPasswordEnc)
	if err != nil {
		return SellResult{}, err
	}

	username := generateDirectSaleUsername()
	pass, err := o.Device.CreateGuestPass(ctx, ruckus.DeviceConfig{
		Address:  device.Address,
		Username: device.AdminUsername,
		Password: password,
	}, ruckus.GuestPassSpec{
		Username:     username,
		Duration:     pkg.DurationValue,
		DurationUnit: deviceUnit,
		MaxDevices:   pkg.MaxDevices,
		DownKbps:     pkg.DownKbps,
		UpKbps:       pkg.UpKbps,
		NetworkName:  pkg.NetworkName,
	})
	if err != nil {
		return SellResult{}, err
	}

	now := time.Now()
	tok := token.Token{
		ID:         uuid.NewString(),
		BusinessID: req.BusinessID,
		PackageID:  pkg.ID,
		Username:   pass.Username,
		Password:   pass.Password,
		State:      token.StateSold,
		SoldAt:     &now,
	}
	sale := token.Sale{
		ID:            uuid.NewString(),
		TokenID:       tok.ID,
		BusinessID:    req.BusinessID,
		SellerID:      req.SellerID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Channel:       req.Channel,
	}

	balance, err := o.Persister.PersistSale(ctx, tok, sale)
	if err != nil {
		// The credential exists on the device with no local record. The
		// device stays system-of-record; reconciliation sync will report
		// it as an unmatched active credential until an operator acts.
		log.Job("issuance").
			WithField("business_id", req.BusinessID).
			WithField("device", device.Address).
			WithField("guest_pass", pass.Username).
			Error("Guest pass minted on device but local persistence failed: " + err.Error())
		return SellResult{}, fmt.Errorf("guest pass %s minted on device but not recorded locally: %w", pass.Username, err)
	}

	return SellResult{
		Token:       tok,
		Sale:        sale,
		PackageName: pkg.Name,
		NetworkName: pkg.NetworkName,
		Balance:     balance,
	}, nil
}
