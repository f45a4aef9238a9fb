package ledger

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("expense account not found")

	// ErrNegativeBalance flags an upstream consistency violation: the
	// recomputed balance went below zero. Never clamped, always surfaced.
	ErrNegativeBalance = errors.New("recomputed balance is negative")
)

type Store interface {
	// EnsureAccount returns the business's sales account, creating it on
	// first use.
	EnsureAccount(ctx context.Context, businessID string) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)

	// ApplyDeposit appends the deposit and recomputes the balance in the
	// same transaction, returning the new balance.
	ApplyDeposit(ctx context.Context, d Deposit) (int64, error)
	// ApplyPayment appends the payment and recomputes the balance in the
	// same transaction. A negative result rolls back and returns
	// ErrNegativeBalance.
	ApplyPayment(ctx context.Context, p Payment) (int64, error)

	// RecomputeBalance rebuilds the cached balance from source rows.
	RecomputeBalance(ctx context.Context, accountID string) (int64, error)
}
