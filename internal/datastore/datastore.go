// Package datastore owns the shared SQL pool and schema bootstrap.
package datastore

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wifindo/go-wifi-token-sales-rest-api/pkg/env"
)

var (
	db     *sql.DB
	dbOnce sync.Once
	dbErr  error
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY,
		family VARCHAR(20) NOT NULL,
		address TEXT NOT NULL,
		admin_username TEXT NOT NULL,
		admin_password_enc TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'unknown',
		last_health_check TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_devices_address ON devices(family, address)`,

	`CREATE TABLE IF NOT EXISTS business_integrations (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL,
		device_id UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		device_family VARCHAR(20) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	// At most one active integration per business per device family.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_integrations_active
		ON business_integrations(business_id, device_family) WHERE active`,

	`CREATE TABLE IF NOT EXISTS token_packages (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL,
		name TEXT NOT NULL,
		duration_value INT NOT NULL,
		duration_unit VARCHAR(30) NOT NULL,
		max_devices INT NOT NULL DEFAULT 1,
		down_kbps INT NOT NULL DEFAULT 0,
		up_kbps INT NOT NULL DEFAULT 0,
		network_name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS wifi_tokens (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL,
		package_id UUID NOT NULL REFERENCES token_packages(id),
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		state VARCHAR(20) NOT NULL DEFAULT 'available',
		sold_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_wifi_tokens_username ON wifi_tokens(business_id, username)`,

	`CREATE TABLE IF NOT EXISTS token_sales (
		id UUID PRIMARY KEY,
		token_id UUID NOT NULL UNIQUE REFERENCES wifi_tokens(id),
		business_id UUID NOT NULL,
		seller_id UUID NOT NULL,
		amount BIGINT NOT NULL,
		payment_method VARCHAR(30) NOT NULL,
		channel VARCHAR(10) NOT NULL DEFAULT 'POS',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS expense_accounts (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL,
		name TEXT NOT NULL,
		balance BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS deposits (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL REFERENCES expense_accounts(id),
		amount BIGINT NOT NULL,
		source VARCHAR(30) NOT NULL,
		reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL REFERENCES expense_accounts(id),
		amount BIGINT NOT NULL,
		purpose TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS connected_clients (
		id UUID PRIMARY KEY,
		business_id UUID NOT NULL,
		token_id UUID NOT NULL REFERENCES wifi_tokens(id),
		mac VARCHAR(17) NOT NULL,
		online BOOLEAN NOT NULL DEFAULT TRUE,
		ip TEXT NOT NULL DEFAULT '',
		hostname TEXT NOT NULL DEFAULT '',
		device_type TEXT NOT NULL DEFAULT '',
		rx_bytes BIGINT NOT NULL DEFAULT 0,
		tx_bytes BIGINT NOT NULL DEFAULT 0,
		last_synced_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(token_id, mac)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_connected_clients_business ON connected_clients(business_id, online)`,
}

// Open returns the shared pool, creating it and bootstrapping the schema on
// first use.
func Open() (*sql.DB, error) {
	dbOnce.Do(func() {
		dsn, err := env.GetEnvString("DATASTORE_URI")
		if err != nil {
			dbErr = errors.New("datastore configuration not initialized")
			return
		}

		pool, err := sql.Open("pgx", dsn)
		if err != nil {
			dbErr = err
			return
		}
		pool.SetMaxOpenConns(25)
		pool.SetMaxIdleConns(10)
		pool.SetConnMaxLifetime(10 * time.Minute)
		pool.SetConnMaxIdleTime(3 * time.Minute)
		if err = pool.Ping(); err != nil {
			dbErr = err
			return
		}

		for _, stmt := range schemaStatements {
			if _, err := pool.Exec(stmt); err != nil {
				dbErr = err
				return
			}
		}

		db = pool
	})
	return db, dbErr
}
