package clientsync

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/token"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/gateway"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/log"
)

type TokenResolver interface {
	GetTokenByUsername(ctx context.Context, businessID string, username string) (token.Token, error)
}

type Integrations interface {
	ActiveIntegration(ctx context.Context, businessID string, family registry.DeviceFamily) (registry.Integration, registry.Device, error)
	IntegratedBusinessIDs(ctx context.Context, family registry.DeviceFamily) ([]string, error)
}

type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

type ReportLister interface {
	ListActiveTokens(ctx context.Context, cfg gateway.DeviceConfig, offset int, limit int) (gateway.ActiveTokenPage, error)
}

// Service reconciles the local connected-client projections with what the
// gateway reports. Each pass walks the gateway's active token report in pages
// of at most gateway.MaxPageSize, paced so consecutive page requests never
// land back to back on the gateway firmware.
type Service struct {
	Store        Store
	Tokens       TokenResolver
	Integrations Integrations
	Vault        Decrypter
	Gateway      ReportLister

	pageDelay     time.Duration
	businessDelay time.Duration
	group         singleflight.Group
}

func NewService(store Store, tokens TokenResolver, integrations Integrations, vault Decrypter, gw ReportLister) *Service {
	return &Service{
		Store:         store,
		Tokens:        tokens,
		Integrations:  integrations,
		Vault:         vault,
		Gateway:       gw,
		pageDelay:     env.GetEnvDurationOrDefault("SYNC_PAGE_DELAY", 2*time.Second),
		businessDelay: env.GetEnvDurationOrDefault("SYNC_BUSINESS_DELAY", 5*time.Second),
	}
}

// SyncBusiness runs one reconciliation pass for a business. Concurrent calls
// for the same business collapse into a single pass sharing its result.
func (s *Service) SyncBusiness(ctx context.Context, businessID string) (Result, error) {
	v, err, _ := s.group.Do(businessID, func() (interface{}, error) {
		return s.syncBusiness(ctx, businessID)
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (s *Service) syncBusiness(ctx context.Context, businessID string) (Result, error) {
	_, device, err := s.Integrations.ActiveIntegration(ctx, businessID, registry.FamilyGateway)
	if err != nil {
		return Result{}, err
	}
	password, err := s.Vault.Decrypt(device.AdminPasswordEnc)
	if err != nil {
		return Result{}, err
	}
	cfg := gateway.DeviceConfig{
		Address:  device.Address,
		Username: device.AdminUsername,
		Password: password,
	}

	logger := log.Job("clientsync").WithField("business_id", businessID)
	pacer := rate.NewLimiter(rate.Every(s.pageDelay), 1)

	var result Result
	seenMACs := []string{}
	offset := 0
	for {
		if err := pacer.Wait(ctx); err != nil {
			return Result{}, err
		}
		page, err := s.Gateway.ListActiveTokens(ctx, cfg, offset, gateway.MaxPageSize)
		if err != nil {
			return Result{}, err
		}

		for _, active := range page.Tokens {
			result.ClientsChecked += len(active.Devices)

			local, err := s.Tokens.GetTokenByUsername(ctx, businessID, active.Code)
			if errors.Is(err, token.ErrTokenNotFound) {
				logger.Warn("Gateway reports token with no local record: " + active.Code)
				continue
			}
			if err != nil {
				return Result{}, err
			}

			for _, d := range active.Devices {
				if !d.Online {
					continue
				}
				mac, err := NormalizeMAC(d.MAC)
				if err != nil {
					logger.Warn("Gateway reports malformed hardware address: " + d.MAC)
					continue
				}
				p := Projection{
					BusinessID: businessID,
					TokenID:    local.ID,
					MAC:        mac,
					IP:         d.IP,
					Hostname:   d.Hostname,
					DeviceType: d.Type,
					RxBytes:    d.RxBytes,
					TxBytes:    d.TxBytes,
				}
				if err := s.Store.Upsert(ctx, p); err != nil {
					return Result{}, err
				}
				seenMACs = append(seenMACs, mac)
				result.ClientsUpdated++
			}
		}

		offset += len(page.Tokens)
		if !page.HasMore {
			break
		}
	}

	flipped, err := s.Store.MarkOfflineExcept(ctx, businessID, seenMACs)
	if err != nil {
		return Result{}, err
	}
	result.ClientsRemoved = flipped

	logger.WithField("checked", result.ClientsChecked).
		WithField("updated", result.ClientsUpdated).
		WithField("removed", result.ClientsRemoved).
		Info("Client sync pass finished")
	return result, nil
}

// SyncAll reconciles every business with an active gateway integration, one
// at a time with a pause between businesses. A failing business is logged and
// skipped; it never aborts the run.
func (s *Service) SyncAll(ctx context.Context) (RunResult, error) {
	businessIDs, err := s.Integrations.IntegratedBusinessIDs(ctx, registry.FamilyGateway)
	if err != nil {
		return RunResult{}, err
	}

	run := RunResult{Businesses: len(businessIDs)}
	for i, businessID := range businessIDs {
		if i > 0 && s.businessDelay > 0 {
			select {
			case <-ctx.Done():
				return run, ctx.Err()
			case <-time.After(s.businessDelay):
			}
		}
		if _, err := s.SyncBusiness(ctx, businessID); err != nil {
			log.Job("clientsync").WithField("business_id", businessID).
				Error("Client sync failed: " + err.Error())
			run.Failures++
		}
	}
	return run, nil
}
