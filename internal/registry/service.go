package registry

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/gateway"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/log"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

// CredentialCodec is implemented by pkg/vault.
type CredentialCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type ControllerProber interface {
	Probe(ctx context.Context, cfg ruckus.DeviceConfig) error
}

type GatewayProber interface {
	Probe(ctx context.Context, cfg gateway.DeviceConfig) error
}

// HealthChecker probes registered devices and keeps their connection status
// and last-health-check timestamp current.
type HealthChecker struct {
	Store      Store
	Vault      CredentialCodec
	Controller ControllerProber
	Gateway    GatewayProber
}

// CheckDevice probes one device and records the outcome.
func (h *HealthChecker) CheckDevice(ctx context.Context, deviceID string) (Device, error) {
	device, err := h.Store.GetDevice(ctx, deviceID)
	if err != nil {
		return Device{}, err
	}

	status := StatusConnected
	if err := h.probe(ctx, device); err != nil {
		log.Job("healthcheck").WithField("device", device.Address).Warn("Device unhealthy: " + err.Error())
		status = StatusDisconnected
	}

	checkedAt := time.Now()
	if err := h.Store.UpdateDeviceStatus(ctx, device.ID, status, checkedAt); err != nil {
		return Device{}, err
	}
	device.Status = status
	device.LastHealthCheck = &checkedAt
	return device, nil
}

func (h *HealthChecker) probe(ctx context.Context, device Device) error {
	password, err := h.Vault.Decrypt(device.AdminPasswordEnc)
	if err != nil {
		return err
	}

	switch device.Family {
	case FamilyGateway:
		return h.Gateway.Probe(ctx, gateway.DeviceConfig{
			Address:  device.Address,
			Username: device.AdminUsername,
			Password: password,
		})
	default:
		return h.Controller.Probe(ctx, ruckus.DeviceConfig{
			Address:  device.Address,
			Username: device.AdminUsername,
			Password: password,
		})
	}
}

// CheckAll probes every registered device with bounded concurrency and a
// small start jitter so a fleet does not get hit all at once.
func (h *HealthChecker) CheckAll(ctx context.Context, maxConcurrent int, jitterMax time.Duration) (healthy int64, unhealthy int64) {
	devices, err := h.Store.ListDevices(ctx)
	if err != nil {
		log.Job("healthcheck").Error("Failed to load devices: " + err.Error())
		return 0, 0
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	for _, device := range devices {
		wg.Add(1)
		sem <- struct{}{}
		go func(d Device) {
			defer wg.Done()
			defer func() { <-sem }()

			if jitterMax > 0 {
				time.Sleep(time.Duration(rand.Int64N(jitterMax.Milliseconds()+1)) * time.Millisecond)
			}

			checked, err := h.CheckDevice(ctx, d.ID)
			if err != nil {
				log.Job("healthcheck").WithField("device", d.Address).Error("Health check failed: " + err.Error())
				atomic.AddInt64(&unhealthy, 1)
				return
			}
			if checked.Status == StatusConnected {
				atomic.AddInt64(&healthy, 1)
			} else {
				atomic.AddInt64(&unhealthy, 1)
			}
		}(device)
	}
	wg.Wait()
	return healthy, unhealthy
}
