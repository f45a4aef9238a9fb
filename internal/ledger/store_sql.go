package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) EnsureAccount(ctx context.Context, businessID string) (Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, name, balance, created_at
		FROM expense_accounts
		WHERE business_id = $1 AND name = 'Token Sales'
	`, businessID).Scan(&a.ID, &a.BusinessID, &a.Name, &a.Balance, &a.CreatedAt)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Account{}, err
	}

	a = Account{ID: uuid.NewString(), BusinessID: businessID, Name: "Token Sales"}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO expense_accounts (id, business_id, name, balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at
	`, a.ID, a.BusinessID, a.Name).Scan(&a.CreatedAt)
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAccount(ctx context.Context, id string) (Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, business_id, name, balance, created_at
		FROM expense_accounts
		WHERE id = $1
	`, id).Scan(&a.ID, &a.BusinessID, &a.Name, &a.Balance, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

func (s *SQLStore) ApplyDeposit(ctx context.Context, d Deposit) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	balance, err := ApplyDepositTx(ctx, tx, d)
	if err != nil {
		return 0, err
	}
	return balance, tx.Commit()
}

func (s *SQLStore) ApplyPayment(ctx context.Context, p Payment) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, account_id, amount, purpose, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	`, p.ID, p.AccountID, p.Amount, p.Purpose, p.Reference); err != nil {
		return 0, err
	}

	balance, err := RecomputeBalanceTx(ctx, tx, p.AccountID)
	if err != nil {
		return balance, err
	}
	return balance, tx.Commit()
}

func (s *SQLStore) RecomputeBalance(ctx context.Context, accountID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	balance, err := RecomputeBalanceTx(ctx, tx, accountID)
	if err != nil {
		return balance, err
	}
	return balance, tx.Commit()
}

// ApplyDepositTx appends a deposit and recomputes the balance inside the
// caller's transaction. The issuance persister uses this so the deposit
// shares a transaction with the token and sale rows.
func ApplyDepositTx(ctx context.Context, tx *sql.Tx, d Deposit) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO deposits (id, account_id, amount, source, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	`, d.ID, d.AccountID, d.Amount, d.Source, d.Reference); err != nil {
		return 0, err
	}
	return RecomputeBalanceTx(ctx, tx, d.AccountID)
}

// RecomputeBalanceTx rewrites the cached balance as Σdeposits − Σpayments.
func RecomputeBalanceTx(ctx context.Context, tx *sql.Tx, accountID string) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `
		UPDATE expense_accounts
		SET balance =
			(SELECT COALESCE(SUM(amount), 0) FROM deposits WHERE account_id = $1) -
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE account_id = $1),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING balance
	`, accountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, err
	}
	if balance < 0 {
		return balance, fmt.Errorf("%w: account %s at %d", ErrNegativeBalance, accountID, balance)
	}
	return balance, nil
}
