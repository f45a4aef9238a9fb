package issuance

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/token"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

var orchestrator *Orchestrator

// Init wires the package handlers. Called once during startup.
func Init(o *Orchestrator) {
	orchestrator = o
}

type SellTokenRequest struct {
	PackageID     string `json:"package_id" form:"package_id"`
	Amount        int64  `json:"amount" form:"amount"`
	PaymentMethod string `json:"payment_method" form:"payment_method"`
	Channel       string `json:"channel" form:"channel"`
}

func SellToken(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	var req SellTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	if strings.TrimSpace(req.PackageID) == "" {
		return router.ResponseBadRequest(c, "package_id is required")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return router.ResponseBadRequest(c, "payment_method is required")
	}

	channel := token.Channel(strings.ToUpper(strings.TrimSpace(req.Channel)))
	if channel != "" && channel != token.ChannelPOS && channel != token.ChannelDirect {
		return router.ResponseBadRequest(c, "Channel must be POS or DIRECT")
	}

	result, err := orchestrator.Sell(ctx, SellRequest{
		BusinessID:    c.Locals("business_id").(string),
		PackageID:     strings.TrimSpace(req.PackageID),
		Amount:        req.Amount,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		SellerID:      c.Locals("seller_id").(string),
		Channel:       channel,
	})
	if err != nil {
		return sellErrorResponse(c, err)
	}

	return router.ResponseCreatedWithData(c, "Token sold", result)
}

func sellErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return router.ResponseBadRequest(c, "Sale amount must not be negative")
	case errors.Is(err, token.ErrPackageNotFound):
		return router.ResponseNotFound(c, "Token package not found")
	case errors.Is(err, registry.ErrIntegrationMissing):
		return router.ResponseBadRequest(c, "Business has no active device integration")
	case errors.Is(err, token.ErrUnmappedDurationUnit):
		return router.ResponseInternalError(c, "Token package has an invalid duration unit")
	}

	// The device's own error text is the one thing surfaced verbatim.
	if devErr, ok := ruckus.IsDeviceError(err); ok {
		return router.ResponseBadGateway(c, devErr.Message)
	}
	if errors.Is(err, ruckus.ErrDeviceUnreachable) {
		return router.ResponseBadGateway(c, "Device unreachable")
	}

	return router.ResponseInternalError(c, "Token sale failed")
}
