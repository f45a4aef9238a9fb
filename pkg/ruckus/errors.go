package ruckus

import "errors"

// ErrDeviceUnreachable covers transport failures, request timeouts and
// sessions the device keeps rejecting after a re-login.
var ErrDeviceUnreachable = errors.New("device unreachable")

// errSessionExpired is internal: the admin console dropped our session.
// It is retried once and never escapes this package.
var errSessionExpired = errors.New("admin session expired")

// DeviceError is an explicit failure reported by the device itself.
// The message is the device's own error text, surfaced verbatim.
type DeviceError struct {
	Message string
}

func (e *DeviceError) Error() string {
	return e.Message
}

// IsDeviceError reports whether err carries a device-reported failure.
func IsDeviceError(err error) (*DeviceError, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr, true
	}
	return nil, false
}
