package index

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"
)

func Index(c *fiber.Ctx) error {
	return router.ResponseSuccess(c, "Wifi Token Sales REST is running")
}
