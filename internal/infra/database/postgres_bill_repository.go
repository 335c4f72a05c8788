package database

import (
	"context"
	"database/sql"
	"fmt"

	"lockedin_engine/internal/domain/billing"

	"github.com/lib/pq" // For pq.Array and driver registration
)

// Custom errors specific to the bill repository
var ErrBillNotFound = fmt.Errorf("bill not found")

type PostgresBillRepository struct {
	db *sql.DB
}

func NewPostgresBillRepository(db *sql.DB) *PostgresBillRepository {
	return &PostgresBillRepository{db: db}
}

func calendarToInt64(months []int) []int64 {
	out := make([]int64, len(months))
	for i, m := range months {
		out[i] = int64(m)
	}
	return out
}

func calendarFromInt64(months []int64) []int {
	if len(months) == 0 {
		return nil
	}
	out := make([]int, len(months))
	for i, m := range months {
		out[i] = int(m)
	}
	return out
}

func (r *PostgresBillRepository) Create(ctx context.Context, b *billing.Bill) error {
	query := `INSERT INTO bills (cycle_id, name, amount, due_date, is_paid, is_recurring, recurrence_calendar, category)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		b.CycleID, b.Name, b.Amount, b.DueDate, b.IsPaid, b.IsRecurring,
		pq.Array(calendarToInt64(b.RecurrenceCalendar)), b.Category,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating bill: %w", err)
	}
	return nil
}

// CreateBatch inserts all bills inside one transaction so that a batch either
// lands completely or not at all.
func (r *PostgresBillRepository) CreateBatch(ctx context.Context, bills []*billing.Bill) error {
	if len(bills) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for batch create: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO bills (cycle_id, name, amount, due_date, is_paid, is_recurring, recurrence_calendar, category)
                                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                                         RETURNING id, created_at, updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for batch create: %w", err)
	}
	defer stmt.Close()

	for _, b := range bills {
		err := stmt.QueryRowContext(ctx,
			b.CycleID, b.Name, b.Amount, b.DueDate, b.IsPaid, b.IsRecurring,
			pq.Array(calendarToInt64(b.RecurrenceCalendar)), b.Category,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error in batch create (bill %q for cycle %d): %w", b.Name, b.CycleID, err)
		}
	}

	return txn.Commit()
}

func (r *PostgresBillRepository) GetByID(ctx context.Context, id int64) (*billing.Bill, error) {
	query := `SELECT id, cycle_id, name, amount, due_date, is_paid, is_recurring, recurrence_calendar, category, created_at, updated_at
               FROM bills WHERE id = $1`
	b := &billing.Bill{}
	var calendar []int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.CycleID, &b.Name, &b.Amount, &b.DueDate, &b.IsPaid,
		&b.IsRecurring, pq.Array(&calendar), &b.Category, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBillNotFound
		}
		return nil, fmt.Errorf("error getting bill by ID: %w", err)
	}
	b.RecurrenceCalendar = calendarFromInt64(calendar)
	return b, nil
}

func (r *PostgresBillRepository) Update(ctx context.Context, b *billing.Bill) error {
	query := `UPDATE bills
               SET due_date = $1, is_paid = $2, updated_at = NOW()
               WHERE id = $3
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, b.DueDate, b.IsPaid, b.ID).Scan(&b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrBillNotFound
		}
		return fmt.Errorf("error updating bill: %w", err)
	}
	return nil
}

func (r *PostgresBillRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking deleted bill count: %w", err)
	}
	if affected == 0 {
		return ErrBillNotFound
	}
	return nil
}

// DeleteBatch removes all listed bills inside one transaction. If any ID is
// unknown the whole batch is rolled back.
func (r *PostgresBillRepository) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for batch delete: %w", err)
	}
	defer txn.Rollback()

	res, err := txn.ExecContext(ctx, `DELETE FROM bills WHERE id = ANY($1::bigint[])`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error in batch delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking batch delete count: %w", err)
	}
	if affected != int64(len(ids)) {
		return ErrBillNotFound
	}

	return txn.Commit()
}

// Helper to scan multiple rows
func scanBills(rows *sql.Rows) ([]*billing.Bill, error) {
	bills := make([]*billing.Bill, 0)
	for rows.Next() {
		b := &billing.Bill{}
		var calendar []int64
		if err := rows.Scan(
			&b.ID, &b.CycleID, &b.Name, &b.Amount, &b.DueDate, &b.IsPaid,
			&b.IsRecurring, pq.Array(&calendar), &b.Category, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning bill row: %w", err)
		}
		b.RecurrenceCalendar = calendarFromInt64(calendar)
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bill rows: %w", err)
	}
	return bills, nil
}

func (r *PostgresBillRepository) ListByCycle(ctx context.Context, cycleID int64) ([]*billing.Bill, error) {
	query := `SELECT id, cycle_id, name, amount, due_date, is_paid, is_recurring, recurrence_calendar, category, created_at, updated_at
               FROM bills WHERE cycle_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error listing bills by cycle: %w", err)
	}
	defer rows.Close()
	return scanBills(rows)
}
