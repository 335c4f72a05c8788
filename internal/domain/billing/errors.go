package billing

import "fmt"

// Business errors reported by the engine. Validation errors are detected
// before any state mutation; ErrTransferFailed is the one condition that can
// occur mid-operation and callers can rely on prior state being restored.
var (
	ErrUnauthorized           = fmt.Errorf("caller is not allowed to perform this operation")
	ErrCycleNotActive         = fmt.Errorf("cycle is no longer active")
	ErrCycleAlreadyEnded      = fmt.Errorf("cycle has already been ended")
	ErrCycleNotEnded          = fmt.Errorf("cycle end date has not been reached")
	ErrBillAlreadyPaid        = fmt.Errorf("bill is already paid")
	ErrBillNotDueYet          = fmt.Errorf("bill is not due today")
	ErrInvalidDuration        = fmt.Errorf("cycle duration must be between 1 and 12 months")
	ErrInvalidAmount          = fmt.Errorf("amount must be positive")
	ErrInvalidDueDate         = fmt.Errorf("due date is outside the allowed range")
	ErrInvalidLeadTime        = fmt.Errorf("due date must be at least 7 days away")
	ErrInvalidRecurrence      = fmt.Errorf("recurrence calendar contains an invalid month")
	ErrAdjustmentLimitReached = fmt.Errorf("cycle already had a bill adjustment this month")
	ErrCycleMismatch          = fmt.Errorf("bills in a batch must belong to the same cycle")
	ErrInsufficientAllocation = fmt.Errorf("bill allocation exceeds the cycle's available funds")
	ErrTransferFailed         = fmt.Errorf("funds transfer failed")
)
