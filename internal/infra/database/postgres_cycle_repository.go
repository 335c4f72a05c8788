package database

import (
	"context"
	"database/sql"
	"fmt"

	"lockedin_engine/internal/domain/billing"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrCycleNotFound = fmt.Errorf("cycle not found")

type PostgresCycleRepository struct {
	db *sql.DB
}

func NewPostgresCycleRepository(db *sql.DB) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db}
}

func (r *PostgresCycleRepository) Create(ctx context.Context, c *billing.Cycle) error {
	query := `INSERT INTO bill_cycles (owner_account, start_date, end_date, total_deposited, operating_fee, fee_percentage, is_active, last_adjustment_month)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Owner, c.StartDate, c.EndDate, c.TotalDeposited, c.OperatingFee,
		c.FeePercentage, c.IsActive, c.LastAdjustmentMonth,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating cycle: %w", err)
	}
	return nil
}

func (r *PostgresCycleRepository) GetByID(ctx context.Context, id int64) (*billing.Cycle, error) {
	query := `SELECT id, owner_account, start_date, end_date, total_deposited, operating_fee, fee_percentage, is_active, last_adjustment_month, created_at, updated_at
               FROM bill_cycles WHERE id = $1`
	c := &billing.Cycle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Owner, &c.StartDate, &c.EndDate, &c.TotalDeposited,
		&c.OperatingFee, &c.FeePercentage, &c.IsActive, &c.LastAdjustmentMonth,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting cycle by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCycleRepository) Update(ctx context.Context, c *billing.Cycle) error {
	query := `UPDATE bill_cycles
               SET is_active = $1, last_adjustment_month = $2, updated_at = NOW()
               WHERE id = $3
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, c.IsActive, c.LastAdjustmentMonth, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCycleNotFound
		}
		return fmt.Errorf("error updating cycle: %w", err)
	}
	return nil
}

// Helper to scan multiple rows
func scanCycles(rows *sql.Rows) ([]*billing.Cycle, error) {
	cycles := make([]*billing.Cycle, 0)
	for rows.Next() {
		c := &billing.Cycle{}
		if err := rows.Scan(
			&c.ID, &c.Owner, &c.StartDate, &c.EndDate, &c.TotalDeposited,
			&c.OperatingFee, &c.FeePercentage, &c.IsActive, &c.LastAdjustmentMonth,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning cycle row: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", err)
	}
	return cycles, nil
}

func (r *PostgresCycleRepository) ListByOwner(ctx context.Context, owner string) ([]*billing.Cycle, error) {
	query := `SELECT id, owner_account, start_date, end_date, total_deposited, operating_fee, fee_percentage, is_active, last_adjustment_month, created_at, updated_at
               FROM bill_cycles WHERE owner_account = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("error listing cycles by owner: %w", err)
	}
	defer rows.Close()
	return scanCycles(rows)
}

func (r *PostgresCycleRepository) ListActive(ctx context.Context) ([]*billing.Cycle, error) {
	query := `SELECT id, owner_account, start_date, end_date, total_deposited, operating_fee, fee_percentage, is_active, last_adjustment_month, created_at, updated_at
               FROM bill_cycles WHERE is_active = TRUE ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active cycles: %w", err)
	}
	defer rows.Close()
	return scanCycles(rows)
}

func (r *PostgresCycleRepository) ListAll(ctx context.Context) ([]*billing.Cycle, error) {
	query := `SELECT id, owner_account, start_date, end_date, total_deposited, operating_fee, fee_percentage, is_active, last_adjustment_month, created_at, updated_at
               FROM bill_cycles ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing all cycles: %w", err)
	}
	defer rows.Close()
	return scanCycles(rows)
}
