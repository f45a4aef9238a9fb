package ruckus

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type fakeConsole struct {
	logins   atomic.Int64
	commands atomic.Int64

	// command bodies returned in order; the last one repeats.
	replies []string

	lastLoginForm  string
	lastCookie     string
	lastCSRF       string
	omitLoginToken bool
}

func (f *fakeConsole) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		raw, _ := io.ReadAll(r.Body)
		f.lastLoginForm = string(raw)
		if !f.omitLoginToken {
			w.Header().Set(csrfHeader, "csrf-abc123")
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "sess-1"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(commandPath, func(w http.ResponseWriter, r *http.Request) {
		n := f.commands.Add(1)
		f.lastCookie = r.Header.Get("Cookie")
		f.lastCSRF = r.Header.Get(csrfHeader)
		idx := int(n) - 1
		if idx >= len(f.replies) {
			idx = len(f.replies) - 1
		}
		io.WriteString(w, f.replies[idx])
	})
	return mux
}

func newConsoleClient(t *testing.T, f *fakeConsole) (*Client, DeviceConfig) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(), DeviceConfig{
		Address:  strings.TrimPrefix(srv.URL, "http://"),
		Username: "admin",
		Password: "secret",
	}
}

func TestCreateGuestPass(t *testing.T) {
	console := &fakeConsole{replies: []string{`<response action="addobj" password="wifi-pass-9"/>`}}
	client, cfg := newConsoleClient(t, console)

	pass, err := client.CreateGuestPass(context.Background(), cfg, GuestPassSpec{
		Username:     "ds-abc",
		Duration:     7,
		DurationUnit: "day",
		MaxDevices:   3,
		NetworkName:  "Guest WiFi",
	})
	if err != nil {
		t.Fatalf("CreateGuestPass: %v", err)
	}
	if pass.Username != "ds-abc" || pass.Password != "wifi-pass-9" {
		t.Fatalf("unexpected pass %+v", pass)
	}

	if !strings.Contains(console.lastLoginForm, "username=admin") || !strings.Contains(console.lastLoginForm, "ok=Log+In") {
		t.Fatalf("login form missing fields: %q", console.lastLoginForm)
	}
	if console.lastCookie != "JSESSIONID=sess-1" {
		t.Fatalf("command carried cookie %q", console.lastCookie)
	}
	if console.lastCSRF != "csrf-abc123" {
		t.Fatalf("command carried csrf %q", console.lastCSRF)
	}
}

func TestSessionReusedAcrossCommands(t *testing.T) {
	console := &fakeConsole{replies: []string{`<response/>`}}
	client, cfg := newConsoleClient(t, console)

	ctx := context.Background()
	if err := client.Probe(ctx, cfg); err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if err := client.Probe(ctx, cfg); err != nil {
		t.Fatalf("second probe: %v", err)
	}
	if got := console.logins.Load(); got != 1 {
		t.Fatalf("expected a single login for consecutive commands, got %d", got)
	}
}

func TestDeviceErrorMessageSurfacedVerbatim(t *testing.T) {
	console := &fakeConsole{replies: []string{`<error message="Guest Pass with this name already exists"/>`}}
	client, cfg := newConsoleClient(t, console)

	_, err := client.CreateGuestPass(context.Background(), cfg, GuestPassSpec{Username: "dup"})
	devErr, ok := IsDeviceError(err)
	if !ok {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if devErr.Message != "Guest Pass with this name already exists" {
		t.Fatalf("message altered: %q", devErr.Message)
	}
}

func TestExpiredSessionRetriedExactlyOnce(t *testing.T) {
	console := &fakeConsole{replies: []string{
		`<error message="LOGIN_REQUIRED"/>`,
		`<response password="p2"/>`,
	}}
	client, cfg := newConsoleClient(t, console)

	pass, err := client.CreateGuestPass(context.Background(), cfg, GuestPassSpec{Username: "u"})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if pass.Password != "p2" {
		t.Fatalf("unexpected password %q", pass.Password)
	}
	if got := console.logins.Load(); got != 2 {
		t.Fatalf("expected re-login, got %d logins", got)
	}
	if got := console.commands.Load(); got != 2 {
		t.Fatalf("expected exactly one retry, got %d commands", got)
	}
}

func TestSessionRejectedAfterReloginIsFatal(t *testing.T) {
	console := &fakeConsole{replies: []string{`<error message="LOGIN_REQUIRED"/>`}}
	client, cfg := newConsoleClient(t, console)

	err := client.DeleteGuestPass(context.Background(), cfg, "u")
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Fatalf("expected ErrDeviceUnreachable, got %v", err)
	}
	if got := console.commands.Load(); got != 2 {
		t.Fatalf("expected exactly two attempts, got %d", got)
	}
}

func TestLoginWithoutTokenRejected(t *testing.T) {
	console := &fakeConsole{replies: []string{`<response/>`}, omitLoginToken: true}
	client, cfg := newConsoleClient(t, console)

	err := client.Probe(context.Background(), cfg)
	if _, ok := IsDeviceError(err); !ok {
		t.Fatalf("expected DeviceError, got %v", err)
	}
}

func TestDeviceDownIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	client := NewClient()
	err := client.Probe(context.Background(), DeviceConfig{Address: addr, Username: "a", Password: "b"})
	if !errors.Is(err, ErrDeviceUnreachable) {
		t.Fatalf("expected ErrDeviceUnreachable, got %v", err)
	}
}
