package app

import (
	"context"
	"io"
	"testing"
	"time"

	"lockedin_engine/internal/domain/billing"
	idb "lockedin_engine/internal/infra/database"
	"lockedin_engine/internal/infra/treasury"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testOwner = "alice"
	testAdmin = "admin"
	testFees  = "fees"
)

// fixtureStart anchors the injected clock: 2025-11-08 10:00 UTC. A 3-month
// cycle created then ends 2026-02-06 10:00 UTC.
var fixtureStart = time.Date(2025, time.November, 8, 10, 0, 0, 0, time.UTC)

// engineFixture wires every service over the in-memory stores with a mutable
// clock, so tests control the passage of time.
type engineFixture struct {
	cycleRepo *idb.MemoryCycleRepository
	billRepo  *idb.MemoryBillRepository
	treasury  *treasury.MemoryTreasury
	cycles    *CycleService
	bills     *BillService
	payments  *PaymentService
	keeper    *KeeperService
	now       time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := EngineConfig{
		AdminAccountID: testAdmin,
		FeeRecipient:   testFees,
		FeePercentage:  200,
	}
	f := &engineFixture{
		cycleRepo: idb.NewMemoryCycleRepository(),
		billRepo:  idb.NewMemoryBillRepository(),
		treasury:  treasury.NewMemoryTreasury(testFees),
		now:       fixtureStart,
	}
	clock := func() time.Time { return f.now }

	f.cycles = NewCycleService(f.cycleRepo, f.billRepo, f.treasury, cfg, log)
	f.cycles.now = clock
	f.bills = NewBillService(f.cycleRepo, f.billRepo, cfg, log)
	f.bills.now = clock
	f.payments = NewPaymentService(f.cycleRepo, f.billRepo, f.treasury, cfg, log)
	f.payments.now = clock
	f.keeper = NewKeeperService(f.cycleRepo, f.billRepo, f.payments, nil, cfg, 24*time.Hour, log)
	f.keeper.now = clock
	return f
}

func (f *engineFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// newFundedCycle seeds the owner's balance and opens a cycle with it.
func (f *engineFixture) newFundedCycle(t *testing.T, owner string, months int, amount int64) *billing.Cycle {
	t.Helper()
	f.treasury.Credit(owner, amount)
	cycle, err := f.cycles.CreateCycle(context.Background(), owner, months, amount)
	require.NoError(t, err)
	return cycle
}
