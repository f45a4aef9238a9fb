package ledger

import "time"

type DepositSource string

const (
	SourceTokenSale DepositSource = "TOKEN_SALE"
	SourceManual    DepositSource = "MANUAL"
)

// Account carries a derived balance. The balance column is a cache of
// Σdeposits − Σpayments and is only ever written by recomputation.
type Account struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Balance    int64     `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

// Deposit is an append-only ledger credit.
type Deposit struct {
	ID        string        `json:"id"`
	AccountID string        `json:"account_id"`
	Amount    int64         `json:"amount"`
	Source    DepositSource `json:"source"`
	Reference string        `json:"reference"`
	CreatedAt time.Time     `json:"created_at"`
}

// Payment is an append-only ledger debit.
type Payment struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Amount    int64     `json:"amount"`
	Purpose   string    `json:"purpose"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
