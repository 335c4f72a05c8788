package billing

// Available returns the funds a cycle can still commit to bills: the deposit
// less the non-refundable operating fee.
func Available(c *Cycle) int64 {
	return c.TotalDeposited - c.OperatingFee
}

// PlannedCost is the total a bill draws from its cycle over its lifetime.
// Recurring bills cost one amount per occurrence in their recurrence
// calendar; a one-time bill that is already paid no longer counts against
// headroom.
func PlannedCost(b *Bill) int64 {
	if b.IsRecurring {
		return b.Amount * int64(len(b.RecurrenceCalendar))
	}
	if b.IsPaid {
		return 0
	}
	return b.Amount
}

// TotalAllocation sums the planned cost of a cycle's bills.
func TotalAllocation(bills []*Bill) int64 {
	var total int64
	for _, b := range bills {
		total += PlannedCost(b)
	}
	return total
}

// ValidateAddition checks that the candidate bills fit into the cycle's
// remaining headroom alongside the existing ones. The check is advisory:
// AddBills does not run it, so any UI or automation must call it before
// submitting new bills.
func ValidateAddition(c *Cycle, existing []*Bill, candidates ...*Bill) error {
	total := TotalAllocation(existing)
	for _, b := range candidates {
		total += PlannedCost(b)
	}
	if total > Available(c) {
		return ErrInsufficientAllocation
	}
	return nil
}
