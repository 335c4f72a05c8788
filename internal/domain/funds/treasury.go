package funds

import (
	"context"
	"fmt"
)

// Custom errors surfaced by Treasury implementations.
var ErrInsufficientFunds = fmt.Errorf("account balance is insufficient for the transfer")

// Treasury moves the engine's single asset between external accounts and the
// engine's custody. Every call is synchronous and atomic: it either completes
// the transfer or leaves all balances untouched. Partial transfers do not
// exist at this boundary.
type Treasury interface {
	// Deposit moves amount from the owner's account into engine custody.
	Deposit(ctx context.Context, owner string, amount int64) error
	// Release moves amount from engine custody back to the owner's account.
	Release(ctx context.Context, owner string, amount int64) error
	// CollectFee moves amount from engine custody to the fee recipient.
	CollectFee(ctx context.Context, amount int64) error
}
