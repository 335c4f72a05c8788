package app

import (
	"context"
	"fmt"
	"time"

	"lockedin_engine/internal/domain/billing"
	"lockedin_engine/internal/domain/funds"

	"github.com/sirupsen/logrus"
)

// PaymentService pays due bills and rolls recurring bills forward.
type PaymentService struct {
	cycleRepo billing.CycleRepository
	billRepo  billing.BillRepository
	treasury  funds.Treasury
	cfg       EngineConfig
	logger    *logrus.Logger
	now       func() time.Time
}

func NewPaymentService(
	cr billing.CycleRepository,
	br billing.BillRepository,
	t funds.Treasury,
	cfg EngineConfig,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		cycleRepo: cr,
		billRepo:  br,
		treasury:  t,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// PayBill is the owner-initiated, strict variant: it only succeeds on the
// bill's exact due day (same unix calendar day, not "on or after").
func (s *PaymentService) PayBill(ctx context.Context, caller string, billID int64) error {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return err
	}
	cycle, err := s.cycleRepo.GetByID(ctx, bill.CycleID)
	if err != nil {
		return err
	}
	if cycle.Owner != caller {
		return billing.ErrUnauthorized
	}
	if bill.IsPaid {
		return billing.ErrBillAlreadyPaid
	}
	if !cycle.IsActive {
		return billing.ErrCycleNotActive
	}
	if !billing.SameCalendarDay(s.now(), bill.DueDate) {
		return billing.ErrBillNotDueYet
	}
	return s.settle(ctx, bill, cycle)
}

// AdminPayBill is the privileged, keeper-facing variant: identical effects,
// no due-date restriction, enabling batch catch-up of past-due bills.
func (s *PaymentService) AdminPayBill(ctx context.Context, caller string, billID int64) error {
	if !s.cfg.isAdmin(caller) {
		return billing.ErrUnauthorized
	}
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return err
	}
	if bill.IsPaid {
		return billing.ErrBillAlreadyPaid
	}
	cycle, err := s.cycleRepo.GetByID(ctx, bill.CycleID)
	if err != nil {
		return err
	}
	if !cycle.IsActive {
		return billing.ErrCycleNotActive
	}
	return s.settle(ctx, bill, cycle)
}

// settle follows checks-effects-interactions: the advanced bill state is
// persisted before funds move, so a concurrent payment of the same occurrence
// is blocked while the transfer runs — by IsPaid=true for a terminal
// occurrence, or by the moved due date for a non-terminal recurring one. A
// failed transfer restores the prior snapshot, leaving no net state change.
func (s *PaymentService) settle(ctx context.Context, bill *billing.Bill, cycle *billing.Cycle) error {
	prior := *bill

	billing.AdvanceOccurrence(bill, cycle)
	if err := s.billRepo.Update(ctx, bill); err != nil {
		return fmt.Errorf("failed to persist bill %d state: %w", bill.ID, err)
	}

	if err := s.treasury.Release(ctx, cycle.Owner, bill.Amount); err != nil {
		restored := prior
		if rerr := s.billRepo.Update(ctx, &restored); rerr != nil {
			s.logger.Errorf("Could not restore bill %d after failed transfer: %v", bill.ID, rerr)
		}
		return fmt.Errorf("%w: paying bill %d: %v", billing.ErrTransferFailed, bill.ID, err)
	}

	s.logger.Infof("Bill %d paid: released %d to %s (recurring=%t, next due %s, terminal=%t)",
		bill.ID, bill.Amount, cycle.Owner, bill.IsRecurring,
		bill.DueDate.Format("2006-01-02"), bill.IsPaid)
	return nil
}
