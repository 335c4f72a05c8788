package treasury

import (
	"context"
	"fmt"
	"sync"

	"lockedin_engine/internal/domain/funds"
)

// MemoryTreasury implements funds.Treasury over an in-memory balance map.
// Used by tests and the development environment; the custody account behaves
// like the postgres ledger's, so shortfall conditions are reproducible.
type MemoryTreasury struct {
	mu           sync.Mutex
	balances     map[string]int64
	feeRecipient string
}

func NewMemoryTreasury(feeRecipient string) *MemoryTreasury {
	return &MemoryTreasury{
		balances:     make(map[string]int64),
		feeRecipient: feeRecipient,
	}
}

// Credit adjusts an account balance by delta. Seeding helper for tests and
// development; delta may be negative.
func (t *MemoryTreasury) Credit(account string, delta int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[account] += delta
}

// Balance returns the current balance of an account.
func (t *MemoryTreasury) Balance(account string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

func (t *MemoryTreasury) transfer(from, to string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.balances[from] < amount {
		return funds.ErrInsufficientFunds
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}

func (t *MemoryTreasury) Deposit(_ context.Context, owner string, amount int64) error {
	return t.transfer(owner, CustodyAccountID, amount)
}

func (t *MemoryTreasury) Release(_ context.Context, owner string, amount int64) error {
	return t.transfer(CustodyAccountID, owner, amount)
}

func (t *MemoryTreasury) CollectFee(_ context.Context, amount int64) error {
	return t.transfer(CustodyAccountID, t.feeRecipient, amount)
}
