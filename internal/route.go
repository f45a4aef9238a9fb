package internal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/auth"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/router"

	ctlAuth "github.com/wifindo/go-wifi-token-sales-rest-api/internal/auth"
	ctlClientSync "github.com/wifindo/go-wifi-token-sales-rest-api/internal/clientsync"
	ctlIndex "github.com/wifindo/go-wifi-token-sales-rest-api/internal/index"
	ctlIssuance "github.com/wifindo/go-wifi-token-sales-rest-api/internal/issuance"
	ctlLedger "github.com/wifindo/go-wifi-token-sales-rest-api/internal/ledger"
	ctlRegistry "github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	ctlToken "github.com/wifindo/go-wifi-token-sales-rest-api/internal/token"
)

func Routes(app *fiber.App) {
	// Route for Index
	// ---------------------------------------------
	if router.BaseURL == "" {
		app.Get("/", ctlIndex.Index)
	} else {
		app.Get(router.BaseURL, ctlIndex.Index)
		app.Get(router.BaseURL+"/", ctlIndex.Index)
	}

	// ============================================================
	// ADMIN ROUTES (X-Admin-Secret authentication)
	// ============================================================
	adminMiddleware := auth.AdminAuth()

	// Device registry and health
	app.Post(router.BaseURL+"/devices", adminMiddleware, ctlRegistry.RegisterDevice)
	app.Get(router.BaseURL+"/devices", adminMiddleware, ctlRegistry.ListDevices)
	app.Post(router.BaseURL+"/devices/:id/healthcheck", adminMiddleware, ctlRegistry.HealthCheckDevice)

	// Business to device bindings
	app.Post(router.BaseURL+"/businesses/:id/integration", adminMiddleware, ctlRegistry.BindIntegration)

	// Token packages
	app.Post(router.BaseURL+"/packages", adminMiddleware, ctlToken.CreatePackage)

	// Connected client reconciliation
	app.Post(router.BaseURL+"/businesses/:id/sync", adminMiddleware, ctlClientSync.TriggerSync)
	app.Get(router.BaseURL+"/businesses/:id/clients", adminMiddleware, ctlClientSync.ListClients)

	// Expense accounts
	app.Get(router.BaseURL+"/accounts/:id/balance", adminMiddleware, ctlLedger.GetBalance)
	app.Post(router.BaseURL+"/accounts/:id/deposits", adminMiddleware, ctlLedger.RecordDeposit)
	app.Post(router.BaseURL+"/accounts/:id/payments", adminMiddleware, ctlLedger.RecordPayment)

	// Seller token issuance
	app.Post(router.BaseURL+"/sellers/token", adminMiddleware, ctlAuth.IssueSellerToken)

	// ============================================================
	// SELLER ROUTES (JWT Bearer token authentication)
	// ============================================================
	sellerMiddleware := auth.SellerAuth()

	app.Get(router.BaseURL+"/packages", sellerMiddleware, ctlToken.ListPackages)
	app.Post(router.BaseURL+"/tokens/sell", sellerMiddleware, ctlIssuance.SellToken)
	app.Delete(router.BaseURL+"/tokens/:id", sellerMiddleware, ctlToken.PurgeToken)
	app.Post(router.BaseURL+"/tokens/:id/disable", sellerMiddleware, ctlToken.DisableToken)
}
