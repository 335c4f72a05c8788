package billing

import "time"

// SubunitsPerUnit is the fixed-point scale of every amount in the engine.
// All amounts are int64 subunit counts of the single supported asset.
const SubunitsPerUnit = 10_000_000

// Cycle represents a single time-locked period of deposited funds against
// which bills are scheduled. Corresponds to the 'bill_cycles' table.
type Cycle struct {
	ID                  int64
	Owner               string // external account identity of the depositor
	StartDate           time.Time
	EndDate             time.Time
	TotalDeposited      int64  // subunits, > 0
	OperatingFee        int64  // computed once at creation, non-refundable
	FeePercentage       uint32 // basis points, e.g. 200 = 2.00%
	IsActive            bool   // one-way true -> false
	LastAdjustmentMonth uint32 // approximate month of the last bill adjustment, 0 = never
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CalculateFee computes the operating fee for a deposit at the given
// basis-point rate.
func CalculateFee(amount int64, feeBps uint32) int64 {
	return amount * int64(feeBps) / 10000
}
