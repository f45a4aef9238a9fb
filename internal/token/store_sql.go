package token

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreatePackage(ctx context.Context, p Package) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_packages (id, business_id, name, duration_value, duration_unit, max_devices, down_kbps, up_kbps, network_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
	`, p.ID, p.BusinessID, p.Name, p.DurationValue, p.DurationUnit, p.MaxDevices, p.DownKbps, p.UpKbps, p.NetworkName)
	return err
}

func (s *SQLStore) GetPackage(ctx context.Context, businessID string, packageID string) (Package, error) {
	var p Package
	err := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, name, duration_value, duration_unit, max_devices, down_kbps, up_kbps, network_name, created_at
		FROM token_packages
		WHERE id = $1 AND business_id = $2
	`, packageID, businessID).Scan(&p.ID, &p.BusinessID, &p.Name, &p.DurationValue, &p.DurationUnit, &p.MaxDevices, &p.DownKbps, &p.UpKbps, &p.NetworkName, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Package{}, ErrPackageNotFound
	}
	if err != nil {
		return Package{}, err
	}
	return p, nil
}

func (s *SQLStore) ListPackages(ctx context.Context, businessID string) ([]Package, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, business_id, name, duration_value, duration_unit, max_devices, down_kbps, up_kbps, network_name, created_at
		FROM token_packages
		WHERE business_id = $1
		ORDER BY created_at
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []Package
	for rows.Next() {
		var p Package
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.DurationValue, &p.DurationUnit, &p.MaxDevices, &p.DownKbps, &p.UpKbps, &p.NetworkName, &p.CreatedAt); err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

func (s *SQLStore) GetToken(ctx context.Context, id string) (Token, error) {
	return s.scanToken(s.db.QueryRowContext(ctx, `
		SELECT id, business_id, package_id, username, password, state, sold_at, created_at
		FROM wifi_tokens
		WHERE id = $1
	`, id))
}

func (s *SQLStore) GetTokenByUsername(ctx context.Context, businessID string, username string) (Token, error) {
	return s.scanToken(s.db.QueryRowContext(ctx, `
		SELECT id, business_id, package_id, username, password, state, sold_at, created_at
		FROM wifi_tokens
		WHERE business_id = $1 AND username = $2
	`, businessID, username))
}

func (s *SQLStore) scanToken(row *sql.Row) (Token, error) {
	var t Token
	var soldAt sql.NullTime
	err := row.Scan(&t.ID, &t.BusinessID, &t.PackageID, &t.Username, &t.Password, &t.State, &soldAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Token{}, ErrTokenNotFound
	}
	if err != nil {
		return Token{}, err
	}
	if soldAt.Valid {
		t.SoldAt = &soldAt.Time
	}
	return t, nil
}

func (s *SQLStore) UpdateTokenState(ctx context.Context, id string, state State) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE wifi_tokens
		SET state = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, state, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (s *SQLStore) PurgeToken(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var state State
	err = tx.QueryRowContext(ctx, `SELECT state FROM wifi_tokens WHERE id = $1 FOR UPDATE`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTokenNotFound
	}
	if err != nil {
		return err
	}
	if state != StateAvailable {
		return ErrTokenNotPurgeable
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM wifi_tokens WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}
