package ruckus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// GuestPassSpec describes the guest pass to mint. DurationUnit is already in
// the device's native vocabulary (day/hour/week).
type GuestPassSpec struct {
	Username     string
	Duration     int
	DurationUnit string
	MaxDevices   int
	DownKbps     int
	UpKbps       int
	NetworkName  string
}

// GuestPass is the minted credential pair. The device generates the password.
type GuestPass struct {
	Username string
	Password string
}

var attrPattern = regexp.MustCompile(`([\w-]+)="([^"]*)"`)

var xmlAttrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func parseCommandResponse(resp *http.Response) (map[string]string, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	body := strings.TrimSpace(string(raw))

	attrs := make(map[string]string)
	for _, match := range attrPattern.FindAllStringSubmatch(body, -1) {
		attrs[match[1]] = match[2]
	}

	switch {
	case strings.HasPrefix(body, "<error"):
		message := attrs["message"]
		if message == "LOGIN_REQUIRED" {
			return nil, errSessionExpired
		}
		if message == "" {
			message = "device reported an unspecified error"
		}
		return nil, &DeviceError{Message: message}
	case strings.HasPrefix(body, "<response"):
		return attrs, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized command response", ErrDeviceUnreachable)
	}
}

// CreateGuestPass mints a guest pass on the device. The side effect lives on
// the device only; there is no local rollback path.
func (s *Session) CreateGuestPass(ctx context.Context, spec GuestPassSpec) (GuestPass, error) {
	body := fmt.Sprintf(
		`<ajax-request action='addobj' updater='guestpass' comp='guestpass'>`+
			`<guestpass username='%s' duration='%d' duration-unit='%s' max-devices='%d' rate-limit-down='%d' rate-limit-up='%d' wlan='%s'/>`+
			`</ajax-request>`,
		xmlAttrEscaper.Replace(spec.Username),
		spec.Duration,
		xmlAttrEscaper.Replace(spec.DurationUnit),
		spec.MaxDevices,
		spec.DownKbps,
		spec.UpKbps,
		xmlAttrEscaper.Replace(spec.NetworkName),
	)

	data, err := s.exec(ctx, body)
	if err != nil {
		return GuestPass{}, err
	}

	password := data["password"]
	if password == "" {
		return GuestPass{}, &DeviceError{Message: "device did not return a guest pass password"}
	}
	return GuestPass{Username: spec.Username, Password: password}, nil
}

// DeleteGuestPass removes a guest pass object from the device.
func (s *Session) DeleteGuestPass(ctx context.Context, username string) error {
	body := fmt.Sprintf(
		`<ajax-request action='delobj' updater='guestpass' comp='guestpass'><guestpass username='%s'/></ajax-request>`,
		xmlAttrEscaper.Replace(username),
	)
	_, err := s.exec(ctx, body)
	return err
}

// SetMACBlock adds or removes a hardware address on the deny ACL.
func (s *Session) SetMACBlock(ctx context.Context, mac string, blocked bool) error {
	action := "addobj"
	if !blocked {
		action = "delobj"
	}
	body := fmt.Sprintf(
		`<ajax-request action='%s' updater='acl' comp='acl'><deny mac='%s'/></ajax-request>`,
		action,
		xmlAttrEscaper.Replace(mac),
	)
	_, err := s.exec(ctx, body)
	return err
}

// Probe issues a cheap system command to verify login and liveness. Used by
// health checks.
func (s *Session) Probe(ctx context.Context) error {
	_, err := s.exec(ctx, `<ajax-request action='getstat' updater='system' comp='system'/>`)
	return err
}

// CreateGuestPass runs the mint inside the device's session lease.
func (c *Client) CreateGuestPass(ctx context.Context, cfg DeviceConfig, spec GuestPassSpec) (GuestPass, error) {
	var pass GuestPass
	err := c.WithSession(ctx, cfg, func(ctx context.Context, s *Session) error {
		var err error
		pass, err = s.CreateGuestPass(ctx, spec)
		return err
	})
	return pass, err
}

// DeleteGuestPass runs the deletion inside the device's session lease.
func (c *Client) DeleteGuestPass(ctx context.Context, cfg DeviceConfig, username string) error {
	return c.WithSession(ctx, cfg, func(ctx context.Context, s *Session) error {
		return s.DeleteGuestPass(ctx, username)
	})
}

// SetMACBlock runs the ACL edit inside the device's session lease.
func (c *Client) SetMACBlock(ctx context.Context, cfg DeviceConfig, mac string, blocked bool) error {
	return c.WithSession(ctx, cfg, func(ctx context.Context, s *Session) error {
		return s.SetMACBlock(ctx, mac, blocked)
	})
}
