package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	pkgAuth "github.com/wifindo/go-wifi-token-sales-rest-api/pkg/auth"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
)

type IssueSellerTokenRequest struct {
	SellerID   string `json:"seller_id" form:"seller_id"`
	BusinessID string `json:"business_id" form:"business_id"`
}

// IssueSellerToken mints a bearer token binding a seller to their business.
// Admin-only; sellers use the resulting token for every sales operation.
func IssueSellerToken(c *fiber.Ctx) error {
	var req IssueSellerTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	if strings.TrimSpace(req.SellerID) == "" || strings.TrimSpace(req.BusinessID) == "" {
		return router.ResponseBadRequest(c, "seller_id and business_id are required")
	}

	ttl := env.GetEnvDurationOrDefault("SELLER_TOKEN_TTL", 24*time.Hour)
	signed, err := pkgAuth.GenerateSellerToken(strings.TrimSpace(req.SellerID), strings.TrimSpace(req.BusinessID), ttl)
	if err != nil {
		return router.ResponseInternalError(c, "Failed to issue seller token")
	}

	return router.ResponseCreatedWithData(c, "Seller token issued", fiber.Map{
		"token":      signed,
		"expires_in": int64(ttl.Seconds()),
	})
}
