package registry

import "time"

// DeviceFamily distinguishes the two physical device families the platform
// integrates with.
type DeviceFamily string

const (
	// FamilyController is the wireless controller that mints guest passes.
	FamilyController DeviceFamily = "controller"
	// FamilyGateway is the resource-constrained hotspot gateway that
	// reports live connected clients.
	FamilyGateway DeviceFamily = "gateway"
)

type DeviceStatus string

const (
	StatusConnected    DeviceStatus = "connected"
	StatusDisconnected DeviceStatus = "disconnected"
	StatusUnknown      DeviceStatus = "unknown"
)

// Device is one registered physical device. AdminPasswordEnc stays encrypted
// at rest; only the issuance and health paths decrypt it, right before use.
type Device struct {
	ID               string       `json:"id"`
	Family           DeviceFamily `json:"family"`
	Address          string       `json:"address"`
	AdminUsername    string       `json:"admin_username"`
	AdminPasswordEnc string       `json:"-"`
	Status           DeviceStatus `json:"status"`
	LastHealthCheck  *time.Time   `json:"last_health_check,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Integration binds one business to one device.
type Integration struct {
	ID         string       `json:"id"`
	BusinessID string       `json:"business_id"`
	DeviceID   string       `json:"device_id"`
	Family     DeviceFamily `json:"device_family"`
	Active     bool         `json:"active"`
	CreatedAt  time.Time    `json:"created_at"`
}
