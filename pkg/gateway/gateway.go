// Package gateway reads the hotspot gateway's active token report.
//
// The gateway is a resource-constrained device family: requesting more than
// MaxPageSize tokens per call risks crashing its firmware, so the page size
// is clamped here and callers pace themselves between pages.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
)

// MaxPageSize is a hard ceiling imposed by the gateway firmware.
const MaxPageSize = 20

const tokensPath = "/api/hotspot/tokens"

// DeviceConfig identifies one gateway and its admin credentials.
type DeviceConfig struct {
	Address  string
	Username string
	Password string
}

// ConnectedDevice is one client the gateway currently sees on a token.
type ConnectedDevice struct {
	MAC      string `json:"mac"`
	Online   bool   `json:"online"`
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	Type     string `json:"type,omitempty"`
	RxBytes  int64  `json:"rx_bytes"`
	TxBytes  int64  `json:"tx_bytes"`
}

// ActiveToken is one active access token in the gateway's report.
type ActiveToken struct {
	Code    string            `json:"code"`
	Devices []ConnectedDevice `json:"devices"`
}

// ActiveTokenPage is one page of the report.
type ActiveTokenPage struct {
	Tokens  []ActiveToken `json:"tokens"`
	HasMore bool          `json:"has_more"`
}

type Client struct {
	httpClient *http.Client
	scheme     string
}

func NewClient() *Client {
	timeout := env.GetEnvDurationOrDefault("GATEWAY_REQUEST_TIMEOUT", 10*time.Second)
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		scheme:     env.GetEnvStringOrDefault("GATEWAY_SCHEME", "http"),
	}
}

// ListActiveTokens fetches one page of the active token report. The limit is
// clamped to MaxPageSize regardless of what the caller asks for.
func (c *Client) ListActiveTokens(ctx context.Context, cfg DeviceConfig, offset int, limit int) (ActiveTokenPage, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	endpoint := c.scheme + "://" + cfg.Address + tokensPath +
		"?status=active&offset=" + strconv.Itoa(offset) + "&limit=" + strconv.Itoa(limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ActiveTokenPage{}, err
	}
	req.SetBasicAuth(cfg.Username, cfg.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ActiveTokenPage{}, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ActiveTokenPage{}, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var page ActiveTokenPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return ActiveTokenPage{}, fmt.Errorf("gateway response malformed: %w", err)
	}
	return page, nil
}

// Probe verifies the gateway answers a minimal report request.
func (c *Client) Probe(ctx context.Context, cfg DeviceConfig) error {
	_, err := c.ListActiveTokens(ctx, cfg, 0, 1)
	return err
}
