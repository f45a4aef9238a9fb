package internal

import (
	"context"
	"time"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/clientsync"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/datastore"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/issuance"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/ledger"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/registry"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/token"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/gateway"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/log"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/ruckus"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/vault"
)

// Shared by Startup and Routines.
var (
	healthChecker *registry.HealthChecker
	syncService   *clientsync.Service
)

// Startup opens the datastore, wires every package's handlers and runs an
// initial device health pass. Must finish before the server starts listening.
func Startup() {
	logger := log.Job("startup")
	logger.Info("Running Startup Tasks")

	db, err := datastore.Open()
	if err != nil {
		logger.Fatal("Failed to open datastore: " + err.Error())
	}

	credentialVault, err := vault.FromEnv()
	if err != nil {
		logger.Fatal("Failed to load credential vault: " + err.Error())
	}

	controllerClient := ruckus.NewClient()
	gatewayClient := gateway.NewClient()

	registryStore := registry.NewSQLStore(db)
	tokenStore := token.NewSQLStore(db)
	ledgerStore := ledger.NewSQLStore(db)
	clientStore := clientsync.NewSQLStore(db)

	healthChecker = &registry.HealthChecker{
		Store:      registryStore,
		Vault:      credentialVault,
		Controller: controllerClient,
		Gateway:    gatewayClient,
	}

	orchestrator := &issuance.Orchestrator{
		Packages:     tokenStore,
		Integrations: registryStore,
		Vault:        credentialVault,
		Device:       controllerClient,
		Persister:    issuance.NewSQLSaleStore(db),
	}

	syncService = clientsync.NewService(clientStore, tokenStore, registryStore, credentialVault, gatewayClient)

	lifecycle := &token.Lifecycle{
		Store:        tokenStore,
		Integrations: registryStore,
		Vault:        credentialVault,
		Device:       controllerClient,
		Clients:      clientStore,
	}

	registry.Init(registryStore, credentialVault, healthChecker)
	token.Init(tokenStore, lifecycle)
	ledger.Init(ledgerStore)
	issuance.Init(orchestrator)
	clientsync.Init(syncService)

	maxConcurrent := env.GetEnvIntOrDefault("STARTUP_HEALTHCHECK_CONCURRENCY", 4)
	jitterMax := env.GetEnvDurationOrDefault("STARTUP_HEALTHCHECK_JITTER_MAX", 2*time.Second)

	healthy, unhealthy := healthChecker.CheckAll(context.Background(), maxConcurrent, jitterMax)
	logger.
		WithField("healthy", healthy).
		WithField("unhealthy", unhealthy).
		Info("Startup health pass complete")
}
