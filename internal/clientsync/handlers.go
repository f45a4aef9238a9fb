package clientsync

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
)

var service *Service

// Init wires the package handlers. Called once during startup.
func Init(s *Service) {
	service = s
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// TriggerSync runs an on-demand reconciliation pass for one business.
func TriggerSync(c *fiber.Ctx) error {
	result, err := service.SyncBusiness(requestContext(c), c.Params("id"))
	if errors.Is(err, registry.ErrIntegrationMissing) {
		return router.ResponseBadRequest(c, "Business has no active gateway integration")
	}
	if err != nil {
		return router.ResponseBadGateway(c, "Client sync failed")
	}
	return router.ResponseSuccessWithData(c, "Success sync connected clients", result)
}

// ListClients returns the business's connected-client projections, online and
// offline alike.
func ListClients(c *fiber.Ctx) error {
	projections, err := service.Store.ListByBusiness(requestContext(c), c.Params("id"))
	if err != nil {
		return router.ResponseInternalError(c, "Failed to load connected clients")
	}
	if projections == nil {
		projections = []Projection{}
	}
	return router.ResponseSuccessWithData(c, "Success get connected clients", projections)
}
