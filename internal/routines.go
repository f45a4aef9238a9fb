package internal

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/log"
)

// Routines schedules the periodic device health pass and the connected-client
// reconciliation sweep. Called once after Startup.
func Routines(c *cron.Cron) {
	logger := log.Job("routines")
	logger.Info("Running Routine Tasks")

	if isHealthCheckCronEnabled() {
		maxConcurrent := env.GetEnvIntOrDefault("HEALTHCHECK_CONCURRENCY", 4)
		jitterMax := env.GetEnvDurationOrDefault("HEALTHCHECK_JITTER_MAX", 2*time.Second)
		_, err := c.AddFunc(healthCheckCronSpec(), func() {
			healthy, unhealthy := healthChecker.CheckAll(context.Background(), maxConcurrent, jitterMax)
			log.Job("healthcheck").
				WithField("healthy", healthy).
				WithField("unhealthy", unhealthy).
				Info("Scheduled health pass complete")
		})
		if err != nil {
			logger.WithField("error", err.Error()).Error("Failed to add health check cron job")
		}
	} else {
		logger.Info("Health check cron disabled")
	}

	if isClientSyncCronEnabled() {
		timeout := env.GetEnvDurationOrDefault("SYNC_RUN_TIMEOUT", 10*time.Minute)
		_, err := c.AddFunc(clientSyncCronSpec(), func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			run, err := syncService.SyncAll(ctx)
			if err != nil {
				log.Job("clientsync").Error("Scheduled client sync failed: " + err.Error())
				return
			}
			log.Job("clientsync").
				WithField("businesses", run.Businesses).
				WithField("failures", run.Failures).
				Info("Scheduled client sync complete")
		})
		if err != nil {
			logger.WithField("error", err.Error()).Error("Failed to add client sync cron job")
		}
	} else {
		logger.Info("Client sync cron disabled; sync runs on demand only")
	}

	c.Start()
}

func isHealthCheckCronEnabled() bool {
	envValue, ok := os.LookupEnv("ENABLE_HEALTHCHECK_CRON")
	if !ok {
		// Default to true so device status stays current.
		return true
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(envValue))
	if err != nil {
		log.Job("routines").Warn("Invalid ENABLE_HEALTHCHECK_CRON value; defaulting to enabled")
		return true
	}
	return enabled
}

func healthCheckCronSpec() string {
	// robfig/cron with seconds field (6 parts). Default: every 5 minutes.
	spec := strings.TrimSpace(os.Getenv("HEALTHCHECK_CRON_SPEC"))
	if spec == "" {
		return "0 */5 * * * *"
	}
	return spec
}

func isClientSyncCronEnabled() bool {
	envValue, ok := os.LookupEnv("ENABLE_CLIENT_SYNC_CRON")
	if !ok {
		return true
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(envValue))
	if err != nil {
		log.Job("routines").Warn("Invalid ENABLE_CLIENT_SYNC_CRON value; defaulting to enabled")
		return true
	}
	return enabled
}

func clientSyncCronSpec() string {
	// Default: every 15 minutes. The gateway walk paces itself, so overlap
	// with an on-demand sync is already collapsed per business.
	spec := strings.TrimSpace(os.Getenv("CLIENT_SYNC_CRON_SPEC"))
	if spec == "" {
		return "0 */15 * * * *"
	}
	return spec
}
