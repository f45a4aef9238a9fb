package token

import "time"

type State string

const (
	StateAvailable State = "available"
	StateSold      State = "sold"
	StateActive    State = "active"
	StateExpired   State = "expired"
	StateDisabled  State = "disabled"
)

type Channel string

const (
	ChannelPOS    Channel = "POS"
	ChannelDirect Channel = "DIRECT"
)

// Package is the sellable configuration a token is minted from. Immutable
// once a token has been sold against it.
type Package struct {
	ID            string    `json:"id"`
	BusinessID    string    `json:"business_id"`
	Name          string    `json:"name"`
	DurationValue int       `json:"duration_value"`
	DurationUnit  string    `json:"duration_unit"`
	MaxDevices    int       `json:"max_devices"`
	DownKbps      int       `json:"down_kbps"`
	UpKbps        int       `json:"up_kbps"`
	NetworkName   string    `json:"network_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// Token is a minted credential pair and its lifecycle state.
type Token struct {
	ID         string     `json:"id"`
	BusinessID string     `json:"business_id"`
	PackageID  string     `json:"package_id"`
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	State      State      `json:"state"`
	SoldAt     *time.Time `json:"sold_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Sale is the immutable sale event. Exactly one exists per sold token.
type Sale struct {
	ID            string    `json:"id"`
	TokenID       string    `json:"token_id"`
	BusinessID    string    `json:"business_id"`
	SellerID      string    `json:"seller_id"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Channel       Channel   `json:"channel"`
	CreatedAt     time.Time `json:"created_at"`
}
