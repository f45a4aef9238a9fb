package issuance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/token"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

func TestSellErrorResponses(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{"invalid amount", ErrInvalidAmount, http.StatusBadRequest, "Sale amount must not be negative"},
		{"missing package", token.ErrPackageNotFound, http.StatusNotFound, "Token package not found"},
		{"no integration", registry.ErrIntegrationMissing, http.StatusBadRequest, "Business has no active device integration"},
		{"bad duration unit", token.ErrUnmappedDurationUnit, http.StatusInternalServerError, "Token package has an invalid duration unit"},
		{"device error verbatim", &ruckus.DeviceError{Message: "Guest Pass limit reached"}, http.StatusBadGateway, "Guest Pass limit reached"},
		{"device unreachable", ruckus.ErrDeviceUnreachable, http.StatusBadGateway, "Device unreachable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/err", func(c *fiber.Ctx) error {
				return sellErrorResponse(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/err", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantCode)
			}
			var body router.Response
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", body.Message, tc.wantMessage)
			}
			if body.Status {
				t.Fatal("error response flagged as success")
			}
		})
	}
}
