package app

import (
	"context"
	"fmt"
	"time"

	"lockedin_engine/internal/domain/billing"
	idb "lockedin_engine/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// NewBillRequest describes one bill to schedule against a cycle.
type NewBillRequest struct {
	Name        string
	Amount      int64
	DueDate     time.Time
	IsRecurring bool
	// RecurrenceCalendar may be left empty for a recurring bill; the engine
	// then derives it from the cycle span and the due date's day of month.
	RecurrenceCalendar []int
	Category           billing.Category
}

// BillService owns bill admission and cancellation, including the
// one-adjustment-per-month gate on cancellations.
type BillService struct {
	cycleRepo billing.CycleRepository
	billRepo  billing.BillRepository
	cfg       EngineConfig
	logger    *logrus.Logger
	now       func() time.Time
}

func NewBillService(
	cr billing.CycleRepository,
	br billing.BillRepository,
	cfg EngineConfig,
	logger *logrus.Logger,
) *BillService {
	return &BillService{
		cycleRepo: cr,
		billRepo:  br,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// AddBill schedules a single bill. See AddBills for the validation rules.
func (s *BillService) AddBill(ctx context.Context, caller string, cycleID int64, req NewBillRequest) (*billing.Bill, error) {
	bills, err := s.AddBills(ctx, caller, cycleID, []NewBillRequest{req})
	if err != nil {
		return nil, err
	}
	return bills[0], nil
}

// AddBills schedules a batch of bills atomically: every entry is validated
// before anything is stored, so one malformed bill rejects the whole batch.
// Cumulative allocation is deliberately NOT checked here; callers run
// CheckAllocation before submitting.
func (s *BillService) AddBills(ctx context.Context, caller string, cycleID int64, reqs []NewBillRequest) ([]*billing.Bill, error) {
	if len(reqs) == 0 {
		return nil, billing.ErrInvalidAmount
	}

	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Owner != caller {
		return nil, billing.ErrUnauthorized
	}
	if !cycle.IsActive {
		return nil, billing.ErrCycleNotActive
	}

	now := s.now()
	bills := make([]*billing.Bill, 0, len(reqs))
	for _, req := range reqs {
		bill, err := buildBill(cycle, req, now)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}

	if err := s.billRepo.CreateBatch(ctx, bills); err != nil {
		return nil, fmt.Errorf("failed to store bills for cycle %d: %w", cycleID, err)
	}

	s.logger.Infof("Added %d bill(s) to cycle %d for %s", len(bills), cycleID, caller)
	return bills, nil
}

func buildBill(cycle *billing.Cycle, req NewBillRequest, now time.Time) (*billing.Bill, error) {
	if req.Amount <= 0 {
		return nil, billing.ErrInvalidAmount
	}
	if req.DueDate.Before(cycle.StartDate) || req.DueDate.After(cycle.EndDate) {
		return nil, billing.ErrInvalidDueDate
	}
	if req.DueDate.Before(now.Add(billing.MinLeadTime)) {
		return nil, billing.ErrInvalidLeadTime
	}
	if !billing.ValidDayOfMonth(req.DueDate) {
		return nil, billing.ErrInvalidDueDate
	}

	calendar := req.RecurrenceCalendar
	if req.IsRecurring {
		for _, m := range calendar {
			if m < 1 || m > 12 {
				return nil, billing.ErrInvalidRecurrence
			}
		}
		if len(calendar) == 0 {
			calendar = billing.BuildRecurrenceCalendar(cycle.StartDate, cycle.EndDate, req.DueDate.Day())
			if len(calendar) == 0 {
				return nil, billing.ErrInvalidRecurrence
			}
		}
	} else {
		calendar = nil
	}

	category := req.Category
	if category == "" {
		category = billing.CategoryOther
	}

	return &billing.Bill{
		CycleID:            cycle.ID,
		Name:               req.Name,
		Amount:             req.Amount,
		DueDate:            req.DueDate,
		IsRecurring:        req.IsRecurring,
		RecurrenceCalendar: calendar,
		Category:           category,
	}, nil
}

// CheckAllocation runs the advisory allocation validator for a prospective
// set of bills: it rejects the set when existing plus new planned cost would
// exceed the cycle's available funds. AddBills itself never enforces this.
func (s *BillService) CheckAllocation(ctx context.Context, cycleID int64, reqs []NewBillRequest) error {
	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return err
	}
	existing, err := s.billRepo.ListByCycle(ctx, cycleID)
	if err != nil {
		return fmt.Errorf("failed to list bills for cycle %d: %w", cycleID, err)
	}

	now := s.now()
	candidates := make([]*billing.Bill, 0, len(reqs))
	for _, req := range reqs {
		bill, err := buildBill(cycle, req, now)
		if err != nil {
			return err
		}
		candidates = append(candidates, bill)
	}
	return billing.ValidateAddition(cycle, existing, candidates...)
}

// CancelBill removes a single bill, counting as the cycle's one adjustment
// for the current month.
func (s *BillService) CancelBill(ctx context.Context, caller string, billID int64) error {
	return s.CancelBills(ctx, caller, []int64{billID})
}

// CancelBills removes a batch of bills outright. All bills must belong to the
// same active cycle, none may be currently paid, and the whole batch counts
// as a single monthly adjustment. Freed amounts are not transferred anywhere;
// they simply become allocation headroom again.
func (s *BillService) CancelBills(ctx context.Context, caller string, billIDs []int64) error {
	if len(billIDs) == 0 {
		return idb.ErrBillNotFound
	}

	bills := make([]*billing.Bill, 0, len(billIDs))
	for _, id := range billIDs {
		bill, err := s.billRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		bills = append(bills, bill)
	}
	for _, b := range bills[1:] {
		if b.CycleID != bills[0].CycleID {
			return billing.ErrCycleMismatch
		}
	}

	cycle, err := s.cycleRepo.GetByID(ctx, bills[0].CycleID)
	if err != nil {
		return err
	}
	if cycle.Owner != caller {
		return billing.ErrUnauthorized
	}
	if !cycle.IsActive {
		return billing.ErrCycleNotActive
	}
	for _, b := range bills {
		if b.IsPaid {
			return billing.ErrBillAlreadyPaid
		}
	}

	currentMonth := billing.ApproxMonth(s.now())
	if cycle.LastAdjustmentMonth == currentMonth {
		return billing.ErrAdjustmentLimitReached
	}

	if err := s.billRepo.DeleteBatch(ctx, billIDs); err != nil {
		return fmt.Errorf("failed to delete bills: %w", err)
	}

	cycle.LastAdjustmentMonth = currentMonth
	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		return fmt.Errorf("failed to record adjustment on cycle %d: %w", cycle.ID, err)
	}

	s.logger.Infof("Cancelled %d bill(s) in cycle %d for %s", len(billIDs), cycle.ID, caller)
	return nil
}

// GetBill returns a bill to its cycle's owner or the admin.
func (s *BillService) GetBill(ctx context.Context, caller string, billID int64) (*billing.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	cycle, err := s.cycleRepo.GetByID(ctx, bill.CycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Owner != caller && !s.cfg.isAdmin(caller) {
		return nil, billing.ErrUnauthorized
	}
	return bill, nil
}

// GetCycleBills lists a cycle's bills for its owner or the admin.
func (s *BillService) GetCycleBills(ctx context.Context, caller string, cycleID int64) ([]*billing.Bill, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Owner != caller && !s.cfg.isAdmin(caller) {
		return nil, billing.ErrUnauthorized
	}
	return s.billRepo.ListByCycle(ctx, cycleID)
}
