// Package ruckus talks to the wireless controller's admin console.
//
// The console is stringly typed: a form login yields a session cookie plus an
// anti-forgery token, and every administrative command is an XML-ish POST
// answered with a <response .../> or <error .../> marker. All of that
// fragility stays inside this package; callers see typed operations and a
// closed set of outcomes (data, *DeviceError, ErrDeviceUnreachable).
package ruckus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
)

const (
	loginPath   = "/admin/login.jsp"
	commandPath = "/admin/_cmdstat.jsp"

	csrfHeader = "X-CSRF-Token"
)

// DeviceConfig identifies one physical controller and its admin credentials.
// Password is the decrypted plaintext; decryption happens upstream.
type DeviceConfig struct {
	Address  string
	Username string
	Password string
}

// Client holds at most one live admin session per device address. The
// console invalidates a session when a second login happens, so all calls
// against the same device serialize on the session lease.
type Client struct {
	httpClient *http.Client
	scheme     string

	mu       sync.Mutex
	sessions map[string]*Session
}

// Session is an authenticated lease on one device's admin console. It is
// only valid inside the WithSession callback that provided it.
type Session struct {
	cfg        DeviceConfig
	httpClient *http.Client
	scheme     string

	mu       sync.Mutex
	cookie   string
	csrf     string
	loggedIn bool
}

func NewClient() *Client {
	timeout := env.GetEnvDurationOrDefault("DEVICE_REQUEST_TIMEOUT", 15*time.Second)
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// A redirect to the login page means the session lapsed;
				// never follow it.
				return http.ErrUseLastResponse
			},
		},
		scheme:   env.GetEnvStringOrDefault("DEVICE_SCHEME", "http"),
		sessions: make(map[string]*Session),
	}
}

func (c *Client) session(cfg DeviceConfig) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[cfg.Address]
	if !ok {
		s = &Session{cfg: cfg, httpClient: c.httpClient, scheme: c.scheme}
		c.sessions[cfg.Address] = s
	}
	// Credentials may rotate between calls; the lease keyed by address stays.
	s.cfg = cfg
	return s
}

// WithSession acquires the per-device session lease, ensures the session is
// authenticated and runs action inside it. Concurrent callers against the
// same device queue here rather than racing logins.
func (c *Client) WithSession(ctx context.Context, cfg DeviceConfig, action func(ctx context.Context, s *Session) error) error {
	s := c.session(cfg)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn {
		if err := s.login(ctx); err != nil {
			return err
		}
	}
	return action(ctx, s)
}

func (s *Session) baseURL() string {
	return s.scheme + "://" + s.cfg.Address
}

func (s *Session) login(ctx context.Context) error {
	form := url.Values{
		"username": {s.cfg.Username},
		"password": {s.cfg.Password},
		"ok":       {"Log In"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DeviceError{Message: fmt.Sprintf("login rejected with status %d", resp.StatusCode)}
	}

	token := strings.TrimSpace(resp.Header.Get(csrfHeader))
	if token == "" {
		return &DeviceError{Message: "login rejected by device"}
	}

	var cookies []string
	for _, cookie := range resp.Cookies() {
		cookies = append(cookies, cookie.Name+"="+cookie.Value)
	}
	if len(cookies) == 0 {
		return &DeviceError{Message: "login response carried no session cookie"}
	}

	s.cookie = strings.Join(cookies, "; ")
	s.csrf = token
	s.loggedIn = true
	return nil
}

// exec runs one administrative command. When the console reports the session
// lapsed it re-authenticates once and retries the pending command exactly
// once; a second consecutive auth failure is fatal for this call.
func (s *Session) exec(ctx context.Context, body string) (map[string]string, error) {
	data, err := s.execOnce(ctx, body)
	if !errors.Is(err, errSessionExpired) {
		return data, err
	}

	s.loggedIn = false
	if err := s.login(ctx); err != nil {
		return nil, err
	}

	data, err = s.execOnce(ctx, body)
	if errors.Is(err, errSessionExpired) {
		return nil, fmt.Errorf("%w: session rejected immediately after re-login", ErrDeviceUnreachable)
	}
	return data, err
}

func (s *Session) execOnce(ctx context.Context, body string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+commandPath, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("Cookie", s.cookie)
	req.Header.Set(csrfHeader, s.csrf)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusFound {
		return nil, errSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: command returned status %d", ErrDeviceUnreachable, resp.StatusCode)
	}

	return parseCommandResponse(resp)
}

// Probe verifies the device accepts a login and answers a trivial command.
func (c *Client) Probe(ctx context.Context, cfg DeviceConfig) error {
	return c.WithSession(ctx, cfg, func(ctx context.Context, s *Session) error {
		return s.Probe(ctx)
	})
}
