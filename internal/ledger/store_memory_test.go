package ledger

import (
	"context"
	"errors"
	"testing"
)

func TestBalanceIsDepositsMinusPayments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	account, err := store.EnsureAccount(ctx, "b1")
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	if _, err := store.ApplyDeposit(ctx, Deposit{ID: "d1", AccountID: account.ID, Amount: 40, Source: SourceTokenSale}); err != nil {
		t.Fatalf("ApplyDeposit: %v", err)
	}
	balance, err := store.ApplyDeposit(ctx, Deposit{ID: "d2", AccountID: account.ID, Amount: 5, Source: SourceTokenSale})
	if err != nil {
		t.Fatalf("ApplyDeposit: %v", err)
	}
	if balance != 45 {
		t.Fatalf("balance = %d, want 45", balance)
	}

	balance, err = store.ApplyPayment(ctx, Payment{ID: "p1", AccountID: account.ID, Amount: 30})
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if balance != 15 {
		t.Fatalf("balance = %d, want 15", balance)
	}
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a, _ := store.EnsureAccount(ctx, "b1")
	b, _ := store.EnsureAccount(ctx, "b1")
	if a.ID != b.ID {
		t.Fatalf("EnsureAccount created a second account: %s vs %s", a.ID, b.ID)
	}
}

func TestPaymentRefusedWhenBalanceWouldGoNegative(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	account, _ := store.EnsureAccount(ctx, "b1")
	_, _ = store.ApplyDeposit(ctx, Deposit{ID: "d1", AccountID: account.ID, Amount: 10, Source: SourceManual})

	balance, err := store.ApplyPayment(ctx, Payment{ID: "p1", AccountID: account.ID, Amount: 25})
	if !errors.Is(err, ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}
	// The offending value is surfaced, never clamped to zero.
	if balance != -15 {
		t.Fatalf("surfaced balance = %d, want -15", balance)
	}

	// The refused payment must leave no trace.
	after, err := store.RecomputeBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("RecomputeBalance: %v", err)
	}
	if after != 10 {
		t.Fatalf("balance after refused payment = %d, want 10", after)
	}
}

func TestRecomputeBalanceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	account, _ := store.EnsureAccount(ctx, "b1")
	_, _ = store.ApplyDeposit(ctx, Deposit{ID: "d1", AccountID: account.ID, Amount: 7, Source: SourceTokenSale})

	for i := 0; i < 3; i++ {
		balance, err := store.RecomputeBalance(ctx, account.ID)
		if err != nil {
			t.Fatalf("RecomputeBalance: %v", err)
		}
		if balance != 7 {
			t.Fatalf("balance = %d, want 7", balance)
		}
	}
}

func TestUnknownAccount(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := store.GetAccount(ctx, "nope"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := store.ApplyDeposit(ctx, Deposit{AccountID: "nope", Amount: 1}); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
