package clientsync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Upsert(ctx context.Context, p Projection) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connected_clients (id, business_id, token_id, mac, online, ip, hostname, device_type, rx_bytes, tx_bytes, last_synced_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		ON CONFLICT (token_id, mac) DO UPDATE
		SET online = TRUE,
		    ip = EXCLUDED.ip,
		    hostname = EXCLUDED.hostname,
		    device_type = EXCLUDED.device_type,
		    rx_bytes = EXCLUDED.rx_bytes,
		    tx_bytes = EXCLUDED.tx_bytes,
		    last_synced_at = CURRENT_TIMESTAMP
	`, p.ID, p.BusinessID, p.TokenID, p.MAC, p.IP, p.Hostname, p.DeviceType, p.RxBytes, p.TxBytes)
	return err
}

func (s *SQLStore) MarkOfflineExcept(ctx context.Context, businessID string, seenMACs []string) (int, error) {
	query := `
		UPDATE connected_clients
		SET online = FALSE, last_synced_at = CURRENT_TIMESTAMP
		WHERE business_id = $1 AND online`
	args := []interface{}{businessID}

	// The seen set is bounded by page size times pages, so inline
	// placeholders are fine.
	if len(seenMACs) > 0 {
		placeholders := make([]string, len(seenMACs))
		for i, mac := range seenMACs {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, mac)
		}
		query += " AND mac NOT IN (" + strings.Join(placeholders, ", ") + ")"
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (s *SQLStore) ListByBusiness(ctx context.Context, businessID string) ([]Projection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, business_id, token_id, mac, online, ip, hostname, device_type, rx_bytes, tx_bytes, last_synced_at
		FROM connected_clients
		WHERE business_id = $1
		ORDER BY last_synced_at DESC
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projections []Projection
	for rows.Next() {
		var p Projection
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.TokenID, &p.MAC, &p.Online, &p.IP, &p.Hostname, &p.DeviceType, &p.RxBytes, &p.TxBytes, &p.LastSyncedAt); err != nil {
			return nil, err
		}
		projections = append(projections, p)
	}
	return projections, rows.Err()
}

func (s *SQLStore) OnlineMACsForToken(ctx context.Context, tokenID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mac FROM connected_clients WHERE token_id = $1 AND online
	`, tokenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var macs []string
	for rows.Next() {
		var mac string
		if err := rows.Scan(&mac); err != nil {
			return nil, err
		}
		macs = append(macs, mac)
	}
	return macs, rows.Err()
}
