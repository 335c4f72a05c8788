package app

import (
	"context"
	"testing"
	"time"

	"lockedin_engine/internal/domain/billing"
	idb "lockedin_engine/internal/infra/database"

	"github.com/stretchr/testify/require"
)

func day(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func TestAddBill(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	bill, err := f.bills.AddBill(ctx, testOwner, cycle.ID, NewBillRequest{
		Name:    "electricity",
		Amount:  120,
		DueDate: fixtureStart.Add(day(10)),
	})
	require.NoError(t, err)
	require.NotZero(t, bill.ID)
	require.Equal(t, cycle.ID, bill.CycleID)
	require.False(t, bill.IsPaid)
	require.False(t, bill.IsRecurring)
	require.Nil(t, bill.RecurrenceCalendar)
	require.Equal(t, billing.CategoryOther, bill.Category) // default
}

func TestAddBill_RecurringDerivesCalendar(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	bill, err := f.bills.AddBill(ctx, testOwner, cycle.ID, NewBillRequest{
		Name:        "rent",
		Amount:      300,
		DueDate:     time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC),
		IsRecurring: true,
		Category:    billing.CategoryHousing,
	})
	require.NoError(t, err)
	require.Equal(t, []int{11, 12, 1}, bill.RecurrenceCalendar)
	require.Equal(t, billing.CategoryHousing, bill.Category)
}

func TestAddBill_Validation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	valid := NewBillRequest{Name: "ok", Amount: 100, DueDate: fixtureStart.Add(day(10))}

	tests := []struct {
		name    string
		mutate  func(*NewBillRequest)
		wantErr error
	}{
		{
			name:    "zero amount",
			mutate:  func(r *NewBillRequest) { r.Amount = 0 },
			wantErr: billing.ErrInvalidAmount,
		},
		{
			name:    "due before cycle start",
			mutate:  func(r *NewBillRequest) { r.DueDate = fixtureStart.Add(-day(1)) },
			wantErr: billing.ErrInvalidDueDate,
		},
		{
			name:    "due after cycle end",
			mutate:  func(r *NewBillRequest) { r.DueDate = fixtureStart.Add(day(91)) },
			wantErr: billing.ErrInvalidDueDate,
		},
		{
			name:    "inside lead time",
			mutate:  func(r *NewBillRequest) { r.DueDate = fixtureStart.Add(day(6)) },
			wantErr: billing.ErrInvalidLeadTime,
		},
		{
			name: "day of month past 28",
			mutate: func(r *NewBillRequest) {
				r.DueDate = time.Date(2025, time.November, 29, 10, 0, 0, 0, time.UTC)
			},
			wantErr: billing.ErrInvalidDueDate,
		},
		{
			name: "calendar month out of range",
			mutate: func(r *NewBillRequest) {
				r.IsRecurring = true
				r.RecurrenceCalendar = []int{11, 13}
			},
			wantErr: billing.ErrInvalidRecurrence,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := f.bills.AddBill(ctx, testOwner, cycle.ID, req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAddBills_BatchIsAtomic(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	_, err := f.bills.AddBills(ctx, testOwner, cycle.ID, []NewBillRequest{
		{Name: "good", Amount: 100, DueDate: fixtureStart.Add(day(10))},
		{Name: "too soon", Amount: 100, DueDate: fixtureStart.Add(day(2))},
	})
	require.ErrorIs(t, err, billing.ErrInvalidLeadTime)

	// One malformed entry rejects the whole batch.
	bills, err := f.bills.GetCycleBills(ctx, testOwner, cycle.ID)
	require.NoError(t, err)
	require.Empty(t, bills)
}

func TestAddBills_Authorization(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	req := NewBillRequest{Name: "x", Amount: 100, DueDate: fixtureStart.Add(day(10))}

	_, err := f.bills.AddBill(ctx, "mallory", cycle.ID, req)
	require.ErrorIs(t, err, billing.ErrUnauthorized)

	_, err = f.cycles.AdminEndCycle(ctx, testAdmin, cycle.ID)
	require.NoError(t, err)
	_, err = f.bills.AddBill(ctx, testOwner, cycle.ID, req)
	require.ErrorIs(t, err, billing.ErrCycleNotActive)
}

// Admission never enforces allocation headroom; the advisory check does.
func TestCheckAllocation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000) // available 980

	rent := NewBillRequest{
		Name: "rent", Amount: 100,
		DueDate:     time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC),
		IsRecurring: true, // 3 occurrences = 300 planned
	}
	_, err := f.bills.AddBill(ctx, testOwner, cycle.ID, rent)
	require.NoError(t, err)

	fits := NewBillRequest{Name: "fits", Amount: 680, DueDate: fixtureStart.Add(day(10))}
	require.NoError(t, f.bills.CheckAllocation(ctx, cycle.ID, []NewBillRequest{fits}))

	over := NewBillRequest{Name: "over", Amount: 681, DueDate: fixtureStart.Add(day(10))}
	err = f.bills.CheckAllocation(ctx, cycle.ID, []NewBillRequest{over})
	require.ErrorIs(t, err, billing.ErrInsufficientAllocation)

	// AddBills itself accepts the over-allocated bill regardless.
	_, err = f.bills.AddBill(ctx, testOwner, cycle.ID, over)
	require.NoError(t, err)
}

func TestCancelBills_MonthlyGate(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		bill, err := f.bills.AddBill(ctx, testOwner, cycle.ID, NewBillRequest{
			Name: name, Amount: 100, DueDate: fixtureStart.Add(day(30)),
		})
		require.NoError(t, err)
		ids = append(ids, bill.ID)
	}

	// A batch of two counts as a single adjustment.
	require.NoError(t, f.bills.CancelBills(ctx, testOwner, ids[:2]))
	got, err := f.cycles.GetCycle(ctx, testOwner, cycle.ID)
	require.NoError(t, err)
	require.Equal(t, billing.ApproxMonth(f.now), got.LastAdjustmentMonth)

	// Second adjustment inside the same 30-day month bucket is rejected.
	err = f.bills.CancelBill(ctx, testOwner, ids[2])
	require.ErrorIs(t, err, billing.ErrAdjustmentLimitReached)

	// The next bucket opens the gate again.
	f.advance(day(30))
	require.NoError(t, f.bills.CancelBill(ctx, testOwner, ids[2]))

	bills, err := f.bills.GetCycleBills(ctx, testOwner, cycle.ID)
	require.NoError(t, err)
	require.Empty(t, bills)
}

func TestCancelBills_Validation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)
	other := f.newFundedCycle(t, testOwner, 3, 1000)

	billA, err := f.bills.AddBill(ctx, testOwner, cycle.ID, NewBillRequest{
		Name: "a", Amount: 100, DueDate: fixtureStart.Add(day(8)),
	})
	require.NoError(t, err)
	billB, err := f.bills.AddBill(ctx, testOwner, other.ID, NewBillRequest{
		Name: "b", Amount: 100, DueDate: fixtureStart.Add(day(8)),
	})
	require.NoError(t, err)

	err = f.bills.CancelBills(ctx, testOwner, nil)
	require.ErrorIs(t, err, idb.ErrBillNotFound)

	// Bills from two different cycles cannot share a batch.
	err = f.bills.CancelBills(ctx, testOwner, []int64{billA.ID, billB.ID})
	require.ErrorIs(t, err, billing.ErrCycleMismatch)

	err = f.bills.CancelBill(ctx, "mallory", billA.ID)
	require.ErrorIs(t, err, billing.ErrUnauthorized)

	// A settled bill cannot be cancelled.
	f.advance(day(8))
	require.NoError(t, f.payments.PayBill(ctx, testOwner, billA.ID))
	err = f.bills.CancelBill(ctx, testOwner, billA.ID)
	require.ErrorIs(t, err, billing.ErrBillAlreadyPaid)
}
