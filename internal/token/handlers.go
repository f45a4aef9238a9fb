package token

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
)

var (
	store     Store
	lifecycle *Lifecycle
)

// Init wires the package handlers. Called once during startup.
func Init(s Store, l *Lifecycle) {
	store = s
	lifecycle = l
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

type CreatePackageRequest struct {
	BusinessID    string `json:"business_id" form:"business_id"`
	Name          string `json:"name" form:"name"`
	DurationValue int    `json:"duration_value" form:"duration_value"`
	DurationUnit  string `json:"duration_unit" form:"duration_unit"`
	MaxDevices    int    `json:"max_devices" form:"max_devices"`
	DownKbps      int    `json:"down_kbps" form:"down_kbps"`
	UpKbps        int    `json:"up_kbps" form:"up_kbps"`
	NetworkName   string `json:"network_name" form:"network_name"`
}

func CreatePackage(c *fiber.Ctx) error {
	var req CreatePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	if strings.TrimSpace(req.BusinessID) == "" || strings.TrimSpace(req.Name) == "" {
		return router.ResponseBadRequest(c, "business_id and name are required")
	}
	if req.DurationValue <= 0 {
		return router.ResponseBadRequest(c, "duration_value must be positive")
	}
	if _, err := DeviceDurationUnit(req.DurationUnit); err != nil {
		return router.ResponseBadRequest(c, "Unknown duration unit: "+req.DurationUnit)
	}
	if strings.TrimSpace(req.NetworkName) == "" {
		return router.ResponseBadRequest(c, "network_name is required")
	}

	pkg := Package{
		ID:            uuid.NewString(),
		BusinessID:    strings.TrimSpace(req.BusinessID),
		Name:          strings.TrimSpace(req.Name),
		DurationValue: req.DurationValue,
		DurationUnit:  req.DurationUnit,
		MaxDevices:    req.MaxDevices,
		DownKbps:      req.DownKbps,
		UpKbps:        req.UpKbps,
		NetworkName:   strings.TrimSpace(req.NetworkName),
	}
	if err := store.CreatePackage(requestContext(c), pkg); err != nil {
		return router.ResponseInternalError(c, "Failed to create token package")
	}
	return router.ResponseCreatedWithData(c, "Token package created", pkg)
}

func ListPackages(c *fiber.Ctx) error {
	packages, err := store.ListPackages(requestContext(c), c.Locals("business_id").(string))
	if err != nil {
		return router.ResponseInternalError(c, "Failed to load token packages")
	}
	if packages == nil {
		packages = []Package{}
	}
	return router.ResponseSuccessWithData(c, "Success get token packages", packages)
}

func PurgeToken(c *fiber.Ctx) error {
	err := lifecycle.Purge(requestContext(c), c.Locals("business_id").(string), c.Params("id"))
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return router.ResponseNotFound(c, "Wifi token not found")
	case errors.Is(err, ErrTokenNotPurgeable):
		return router.ResponseConflict(c, "Only available tokens can be purged")
	case errors.Is(err, registry.ErrIntegrationMissing):
		return router.ResponseBadRequest(c, "Business has no active device integration")
	}
	if devErr, ok := ruckus.IsDeviceError(err); ok {
		return router.ResponseBadGateway(c, devErr.Message)
	}
	if errors.Is(err, ruckus.ErrDeviceUnreachable) {
		return router.ResponseBadGateway(c, "Device unreachable")
	}
	if err != nil {
		return router.ResponseInternalError(c, "Failed to purge token")
	}
	return router.ResponseSuccess(c, "Token purged")
}

func DisableToken(c *fiber.Ctx) error {
	blocked, err := lifecycle.Disable(requestContext(c), c.Locals("business_id").(string), c.Params("id"))
	switch {
	case errors.Is(err, ErrTokenNotFound):
		return router.ResponseNotFound(c, "Wifi token not found")
	case errors.Is(err, registry.ErrIntegrationMissing):
		return router.ResponseBadRequest(c, "Business has no active device integration")
	}
	if err != nil {
		return router.ResponseInternalError(c, "Failed to disable token")
	}
	return router.ResponseSuccessWithData(c, "Token disabled", fiber.Map{
		"clients_blocked": blocked,
	})
}
