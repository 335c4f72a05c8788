package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"lockedin_engine/internal/infra/treasury"

	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(text string) error {
	n.messages = append(n.messages, text)
	return nil
}

func TestRunSweep_PaysDueAndPastDue(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	_, err := f.bills.AddBills(ctx, testOwner, cycle.ID, []NewBillRequest{
		{Name: "past due", Amount: 100, DueDate: fixtureStart.Add(day(7))},
		{Name: "due today", Amount: 100, DueDate: fixtureStart.Add(day(8))},
		{Name: "far out", Amount: 100, DueDate: fixtureStart.Add(day(20))},
	})
	require.NoError(t, err)

	f.advance(day(8)) // Nov 16: first bill a day overdue, second due today
	report, err := f.keeper.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.Processed)
	require.Equal(t, 2, report.Paid)
	require.Equal(t, 0, report.Failed)
	require.Equal(t, 0, report.DueSoon)
	require.Equal(t, int64(200), f.treasury.Balance(testOwner))

	// The sweep is idempotent: nothing left due today.
	report, err = f.keeper.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Processed)
	require.Equal(t, 0, report.Paid)
	require.Equal(t, int64(200), f.treasury.Balance(testOwner))
}

func TestRunSweep_AdvancesRecurringBills(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	bill, err := f.bills.AddBill(ctx, testOwner, cycle.ID, NewBillRequest{
		Name: "rent", Amount: 100,
		DueDate:     time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC),
		IsRecurring: true,
	})
	require.NoError(t, err)

	f.advance(day(7)) // Nov 15
	report, err := f.keeper.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Paid)

	got, err := f.bills.GetBill(ctx, testOwner, bill.ID)
	require.NoError(t, err)
	require.False(t, got.IsPaid)
	require.Equal(t, time.Date(2025, time.December, 15, 10, 0, 0, 0, time.UTC), got.DueDate)

	// The rolled-forward occurrence is not due, so a re-run pays nothing.
	report, err = f.keeper.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Paid)
}

func TestRunSweep_FailureIsolation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	_, err := f.bills.AddBills(ctx, testOwner, cycle.ID, []NewBillRequest{
		{Name: "covered", Amount: 100, DueDate: fixtureStart.Add(day(8))},
		{Name: "uncovered", Amount: 100, DueDate: fixtureStart.Add(day(8))},
	})
	require.NoError(t, err)

	// Custody can cover only the first bill; the second fails but does not
	// abort the sweep.
	f.treasury.Credit(treasury.CustodyAccountID, -880)

	f.advance(day(8))
	report, err := f.keeper.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, report.Processed)
	require.Equal(t, 1, report.Paid)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, int64(100), f.treasury.Balance(testOwner))
}

func TestRunSweep_DueSoonNotices(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	cycle := f.newFundedCycle(t, testOwner, 3, 1000)

	notifier := &recordingNotifier{}
	f.keeper.notifier = notifier

	_, err := f.bills.AddBills(ctx, testOwner, cycle.ID, []NewBillRequest{
		{Name: "tomorrow", Amount: 100, DueDate: fixtureStart.Add(day(8))},
		{Name: "next week", Amount: 100, DueDate: fixtureStart.Add(day(14))},
	})
	require.NoError(t, err)

	f.advance(day(7) + 12*time.Hour) // Nov 15 22:00: first bill due in 12h
	report, err := f.keeper.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Processed)
	require.Equal(t, 1, report.DueSoon)

	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "due soon")
	require.Contains(t, notifier.messages[0], "tomorrow")
	require.False(t, strings.Contains(notifier.messages[0], "next week"))
}

func TestRunSweep_NoActiveCycles(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	report, err := f.keeper.RunSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, &SweepReport{}, report)
}
