package issuance

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/ledger"
	"github.com/wifindo/go-wifi-token-sales-rest-api/internal/token"
)

// SQLSaleStore persists the outcome of a sale. Token, sale, deposit and
// balance recomputation share one transaction; the deposit is skipped for
// free tokens.
type SQLSaleStore struct {
	db       *sql.DB
	accounts *ledger.SQLStore
}

func NewSQLSaleStore(db *sql.DB) *SQLSaleStore {
	return &SQLSaleStore{db: db, accounts: ledger.NewSQLStore(db)}
}

func (s *SQLSaleStore) PersistSale(ctx context.Context, tok token.Token, sale token.Sale) (int64, error) {
	account, err := s.accounts.EnsureAccount(ctx, tok.BusinessID)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wifi_tokens (id, business_id, package_id, username, password, state, sold_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, tok.ID, tok.BusinessID, tok.PackageID, tok.Username, tok.Password, tok.State, tok.SoldAt)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO token_sales (id, token_id, business_id, seller_id, amount, payment_method, channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
	`, sale.ID, sale.TokenID, sale.BusinessID, sale.SellerID, sale.Amount, sale.PaymentMethod, sale.Channel)
	if err != nil {
		return 0, err
	}

	balance := account.Balance
	if sale.Amount > 0 {
		balance, err = ledger.ApplyDepositTx(ctx, tx, ledger.Deposit{
			ID:        uuid.NewString(),
			AccountID: account.ID,
			Amount:    sale.Amount,
			Source:    ledger.SourceTokenSale,
			Reference: sale.ID,
		})
		if err != nil {
			return 0, err
		}
	}

	return balance, tx.Commit()
}
