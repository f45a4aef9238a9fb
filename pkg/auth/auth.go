package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
)

// AdminSecret protects device and integration management endpoints.
// REQUIRED: Application will panic if not set
var AdminSecret string

func init() {
	AdminSecret = env.MustGetEnvString("ADMIN_SECRET")
}

// AdminAuth checks the X-Admin-Secret header against ADMIN_SECRET.
func AdminAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := strings.TrimSpace(c.Get("X-Admin-Secret"))
		if provided == "" {
			return router.ResponseUnauthorized(c, "Missing X-Admin-Secret header")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(AdminSecret)) != 1 {
			return router.ResponseUnauthorized(c, "Invalid admin secret")
		}
		return c.Next()
	}
}

// SellerAuth validates the Bearer token and stores seller identity in locals.
// Authorization decisions beyond identity are made upstream of the handlers.
func SellerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return router.ResponseUnauthorized(c, "Missing Bearer token")
		}

		claims, err := ValidateSellerToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return router.ResponseUnauthorized(c, "Invalid token")
		}

		c.Locals("seller_id", claims.SellerID)
		c.Locals("business_id", claims.BusinessID)
		return c.Next()
	}
}
