package treasury

import (
	"context"
	"database/sql"
	"fmt"

	"lockedin_engine/internal/domain/funds"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// CustodyAccountID is the ledger account holding all locked deposits.
const CustodyAccountID = "engine:custody"

// PostgresTreasury implements funds.Treasury over an 'accounts' balance
// table. Each transfer debits and credits inside one transaction, so a call
// either completes or leaves both balances untouched.
type PostgresTreasury struct {
	db           *sql.DB
	feeRecipient string
}

func NewPostgresTreasury(db *sql.DB, feeRecipient string) *PostgresTreasury {
	return &PostgresTreasury{db: db, feeRecipient: feeRecipient}
}

func (t *PostgresTreasury) transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive, got %d", amount)
	}

	txn, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transfer transaction: %w", err)
	}
	defer txn.Rollback()

	var balance int64
	err = txn.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE account_id = $1 FOR UPDATE`, from).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return funds.ErrInsufficientFunds
		}
		return fmt.Errorf("error reading balance of %s: %w", from, err)
	}
	if balance < amount {
		return funds.ErrInsufficientFunds
	}

	if _, err := txn.ExecContext(ctx, `UPDATE accounts SET balance = balance - $1 WHERE account_id = $2`, amount, from); err != nil {
		return fmt.Errorf("error debiting %s: %w", from, err)
	}
	if _, err := txn.ExecContext(ctx,
		`INSERT INTO accounts (account_id, balance) VALUES ($1, $2)
          ON CONFLICT (account_id) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`,
		to, amount); err != nil {
		return fmt.Errorf("error crediting %s: %w", to, err)
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("error committing transfer: %w", err)
	}
	return nil
}

func (t *PostgresTreasury) Deposit(ctx context.Context, owner string, amount int64) error {
	return t.transfer(ctx, owner, CustodyAccountID, amount)
}

func (t *PostgresTreasury) Release(ctx context.Context, owner string, amount int64) error {
	return t.transfer(ctx, CustodyAccountID, owner, amount)
}

func (t *PostgresTreasury) CollectFee(ctx context.Context, amount int64) error {
	return t.transfer(ctx, CustodyAccountID, t.feeRecipient, amount)
}
