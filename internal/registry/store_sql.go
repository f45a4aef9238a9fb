package registry

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateDevice(ctx context.Context, d Device) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (id, family, address, admin_username, admin_password_enc, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, d.ID, d.Family, d.Address, d.AdminUsername, d.AdminPasswordEnc, d.Status)
	return err
}

func (s *SQLStore) GetDevice(ctx context.Context, id string) (Device, error) {
	var d Device
	var lastCheck sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, family, address, admin_username, admin_password_enc, status, last_health_check, created_at
		FROM devices
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Family, &d.Address, &d.AdminUsername, &d.AdminPasswordEnc, &d.Status, &lastCheck, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Device{}, ErrDeviceNotFound
	}
	if err != nil {
		return Device{}, err
	}
	if lastCheck.Valid {
		d.LastHealthCheck = &lastCheck.Time
	}
	return d, nil
}

func (s *SQLStore) ListDevices(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family, address, admin_username, admin_password_enc, status, last_health_check, created_at
		FROM devices
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		var lastCheck sql.NullTime
		if err := rows.Scan(&d.ID, &d.Family, &d.Address, &d.AdminUsername, &d.AdminPasswordEnc, &d.Status, &lastCheck, &d.CreatedAt); err != nil {
			return nil, err
		}
		if lastCheck.Valid {
			d.LastHealthCheck = &lastCheck.Time
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *SQLStore) UpdateDeviceStatus(ctx context.Context, id string, status DeviceStatus, checkedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE devices
		SET status = $1, last_health_check = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, status, checkedAt, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (s *SQLStore) SaveIntegration(ctx context.Context, in Integration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE business_integrations
		SET active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE business_id = $1 AND device_family = $2 AND active
	`, in.BusinessID, in.Family)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO business_integrations (id, business_id, device_id, device_family, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, in.ID, in.BusinessID, in.DeviceID, in.Family)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLStore) ActiveIntegration(ctx context.Context, businessID string, family DeviceFamily) (Integration, Device, error) {
	var in Integration
	var d Device
	var lastCheck sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.business_id, i.device_id, i.device_family, i.active, i.created_at,
		       d.id, d.family, d.address, d.admin_username, d.admin_password_enc, d.status, d.last_health_check, d.created_at
		FROM business_integrations i
		JOIN devices d ON d.id = i.device_id
		WHERE i.business_id = $1 AND i.device_family = $2 AND i.active
	`, businessID, family).Scan(
		&in.ID, &in.BusinessID, &in.DeviceID, &in.Family, &in.Active, &in.CreatedAt,
		&d.ID, &d.Family, &d.Address, &d.AdminUsername, &d.AdminPasswordEnc, &d.Status, &lastCheck, &d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Integration{}, Device{}, ErrIntegrationMissing
	}
	if err != nil {
		return Integration{}, Device{}, err
	}
	if lastCheck.Valid {
		d.LastHealthCheck = &lastCheck.Time
	}
	return in, d, nil
}

func (s *SQLStore) IntegratedBusinessIDs(ctx context.Context, family DeviceFamily) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT business_id
		FROM business_integrations
		WHERE device_family = $1 AND active
		ORDER BY created_at
	`, family)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
