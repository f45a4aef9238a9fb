package registry

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
)

var (
	store   Store
	codec   CredentialCodec
	checker *HealthChecker
)

// Init wires the package handlers. Called once during startup, before the
// server starts accepting traffic.
func Init(s Store, c CredentialCodec, h *HealthChecker) {
	store = s
	codec = c
	checker = h
}

type RegisterDeviceRequest struct {
	Family        string `json:"family" form:"family"`
	Address       string `json:"address" form:"address"`
	AdminUsername string `json:"admin_username" form:"admin_username"`
	AdminPassword string `json:"admin_password" form:"admin_password"`
}

type BindIntegrationRequest struct {
	DeviceID string `json:"device_id" form:"device_id"`
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

func RegisterDevice(c *fiber.Ctx) error {
	ctx := requestContext(c)

	var req RegisterDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	family := DeviceFamily(strings.TrimSpace(req.Family))
	if family != FamilyController && family != FamilyGateway {
		return router.ResponseBadRequest(c, "Family must be controller or gateway")
	}
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.AdminUsername) == "" || req.AdminPassword == "" {
		return router.ResponseBadRequest(c, "Address, admin_username and admin_password are required")
	}

	encrypted, err := codec.Encrypt(req.AdminPassword)
	if err != nil {
		return router.ResponseInternalError(c, "Failed to store device credentials")
	}

	device := Device{
		ID:               uuid.NewString(),
		Family:           family,
		Address:          strings.TrimSpace(req.Address),
		AdminUsername:    strings.TrimSpace(req.AdminUsername),
		AdminPasswordEnc: encrypted,
		Status:           StatusUnknown,
	}
	if err := store.CreateDevice(ctx, device); err != nil {
		return router.ResponseInternalError(c, "Failed to register device")
	}

	return router.ResponseCreatedWithData(c, "Device registered", device)
}

func ListDevices(c *fiber.Ctx) error {
	devices, err := store.ListDevices(requestContext(c))
	if err != nil {
		return router.ResponseInternalError(c, "Failed to load devices")
	}
	return router.ResponseSuccessWithData(c, "Success get device list", devices)
}

func HealthCheckDevice(c *fiber.Ctx) error {
	device, err := checker.CheckDevice(requestContext(c), c.Params("id"))
	if errors.Is(err, ErrDeviceNotFound) {
		return router.ResponseNotFound(c, "Device not found")
	}
	if err != nil {
		return router.ResponseInternalError(c, "Health check failed")
	}
	return router.ResponseSuccessWithData(c, "Health check complete", device)
}

func BindIntegration(c *fiber.Ctx) error {
	ctx := requestContext(c)

	var req BindIntegrationRequest
	if err := c.BodyParser(&req); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	device, err := store.GetDevice(ctx, strings.TrimSpace(req.DeviceID))
	if errors.Is(err, ErrDeviceNotFound) {
		return router.ResponseNotFound(c, "Device not found")
	}
	if err != nil {
		return router.ResponseInternalError(c, "Failed to load device")
	}

	integration := Integration{
		ID:         uuid.NewString(),
		BusinessID: c.Params("id"),
		DeviceID:   device.ID,
		Family:     device.Family,
		Active:     true,
	}
	if err := store.SaveIntegration(ctx, integration); err != nil {
		return router.ResponseInternalError(c, "Failed to bind integration")
	}

	return router.ResponseCreatedWithData(c, "Integration active", integration)
}
