package clientsync

import "time"

// Projection is the local mirror of one client the gateway has seen on a
// token, keyed by (token, normalized hardware address). Projections are
// never deleted; a client that disappears is flipped offline.
type Projection struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	TokenID      string    `json:"token_id"`
	MAC          string    `json:"mac"`
	Online       bool      `json:"online"`
	IP           string    `json:"ip"`
	Hostname     string    `json:"hostname,omitempty"`
	DeviceType   string    `json:"device_type,omitempty"`
	RxBytes      int64     `json:"rx_bytes"`
	TxBytes      int64     `json:"tx_bytes"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// Result summarizes one business sync pass.
type Result struct {
	ClientsChecked int `json:"clients_checked"`
	ClientsUpdated int `json:"clients_updated"`
	ClientsRemoved int `json:"clients_removed"`
}

// RunResult summarizes a full sync over every integrated business.
type RunResult struct {
	Businesses int `json:"businesses"`
	Failures   int `json:"failures"`
}
