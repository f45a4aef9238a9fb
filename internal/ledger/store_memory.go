package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used in tests and local development.
// It obeys the same balance law as the SQL store: the cached value is
// always recomputed from the deposit and payment rows.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
	deposits map[string][]Deposit
	payments map[string][]Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		deposits: make(map[string][]Deposit),
		payments: make(map[string][]Payment),
	}
}

func (s *MemoryStore) EnsureAccount(ctx context.Context, businessID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.BusinessID == businessID {
			return a, nil
		}
	}
	a := Account{ID: uuid.NewString(), BusinessID: businessID, Name: "Token Sales", CreatedAt: time.Now()}
	s.accounts[a.ID] = a
	return a, nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (s *MemoryStore) ApplyDeposit(ctx context.Context, d Deposit) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[d.AccountID]; !ok {
		return 0, ErrAccountNotFound
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	s.deposits[d.AccountID] = append(s.deposits[d.AccountID], d)
	return s.recomputeLocked(d.AccountID)
}

func (s *MemoryStore) ApplyPayment(ctx context.Context, p Payment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[p.AccountID]; !ok {
		return 0, ErrAccountNotFound
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.payments[p.AccountID] = append(s.payments[p.AccountID], p)
	balance, err := s.recomputeLocked(p.AccountID)
	if err != nil {
		// Roll the payment back, matching the SQL store's transaction.
		rows := s.payments[p.AccountID]
		s.payments[p.AccountID] = rows[:len(rows)-1]
		_, _ = s.recomputeLocked(p.AccountID)
		return balance, err
	}
	return balance, nil
}

func (s *MemoryStore) RecomputeBalance(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return 0, ErrAccountNotFound
	}
	return s.recomputeLocked(accountID)
}

// Deposits returns the recorded deposits for an account; test helper.
func (s *MemoryStore) Deposits(accountID string) []Deposit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Deposit(nil), s.deposits[accountID]...)
}

func (s *MemoryStore) recomputeLocked(accountID string) (int64, error) {
	var balance int64
	for _, d := range s.deposits[accountID] {
		balance += d.Amount
	}
	for _, p := range s.payments[accountID] {
		balance -= p.Amount
	}
	a := s.accounts[accountID]
	a.Balance = balance
	s.accounts[accountID] = a
	if balance < 0 {
		return balance, fmt.Errorf("%w: account %s at %d", ErrNegativeBalance, accountID, balance)
	}
	return balance, nil
}
