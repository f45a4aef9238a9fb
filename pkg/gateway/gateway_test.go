package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListActiveTokensClampsLimit(t *testing.T) {
	var gotLimit, gotOffset, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		gotOffset = r.URL.Query().Get("offset")
		gotStatus = r.URL.Query().Get("status")
		io.WriteString(w, `{"tokens":[],"has_more":false}`)
	}))
	defer srv.Close()

	client := NewClient()
	cfg := DeviceConfig{Address: strings.TrimPrefix(srv.URL, "http://"), Username: "a", Password: "b"}

	cases := []struct {
		name      string
		limit     int
		wantLimit string
	}{
		{"over ceiling", 500, "20"},
		{"at ceiling", 20, "20"},
		{"under ceiling", 5, "5"},
		{"zero defaults to ceiling", 0, "20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := client.ListActiveTokens(context.Background(), cfg, 40, tc.limit); err != nil {
				t.Fatalf("ListActiveTokens: %v", err)
			}
			if gotLimit != tc.wantLimit {
				t.Fatalf("limit = %s, want %s", gotLimit, tc.wantLimit)
			}
			if gotOffset != "40" {
				t.Fatalf("offset = %s, want 40", gotOffset)
			}
			if gotStatus != "active" {
				t.Fatalf("status = %s, want active", gotStatus)
			}
		})
	}
}

func TestListActiveTokensDecodesReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "gw-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{
			"tokens": [
				{"code": "ds-abc", "devices": [
					{"mac": "AA:BB:CC:DD:EE:FF", "online": true, "ip": "10.0.0.5", "hostname": "phone", "rx_bytes": 1024, "tx_bytes": 2048}
				]}
			],
			"has_more": true
		}`)
	}))
	defer srv.Close()

	client := NewClient()
	cfg := DeviceConfig{Address: strings.TrimPrefix(srv.URL, "http://"), Username: "admin", Password: "gw-secret"}

	page, err := client.ListActiveTokens(context.Background(), cfg, 0, MaxPageSize)
	if err != nil {
		t.Fatalf("ListActiveTokens: %v", err)
	}
	if !page.HasMore {
		t.Fatal("expected has_more")
	}
	if len(page.Tokens) != 1 || page.Tokens[0].Code != "ds-abc" {
		t.Fatalf("unexpected tokens %+v", page.Tokens)
	}
	d := page.Tokens[0].Devices[0]
	if !d.Online || d.IP != "10.0.0.5" || d.RxBytes != 1024 {
		t.Fatalf("unexpected device %+v", d)
	}
}

func TestListActiveTokensErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient()
	cfg := DeviceConfig{Address: strings.TrimPrefix(srv.URL, "http://")}
	if _, err := client.ListActiveTokens(context.Background(), cfg, 0, 10); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
