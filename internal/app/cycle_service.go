package app

import (
	"context"
	"fmt"
	"time"

	"lockedin_engine/internal/domain/billing"
	"lockedin_engine/internal/domain/funds"

	"github.com/sirupsen/logrus"
)

// CycleService owns the cycle lifecycle: creation with deposit and fee
// deduction, and termination with surplus return.
type CycleService struct {
	cycleRepo billing.CycleRepository
	billRepo  billing.BillRepository
	treasury  funds.Treasury
	cfg       EngineConfig
	logger    *logrus.Logger
	now       func() time.Time
}

func NewCycleService(
	cr billing.CycleRepository,
	br billing.BillRepository,
	t funds.Treasury,
	cfg EngineConfig,
	logger *logrus.Logger,
) *CycleService {
	return &CycleService{
		cycleRepo: cr,
		billRepo:  br,
		treasury:  t,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateCycle locks a deposit for durationMonths (fixed 30-day month unit),
// deducts the operating fee, and activates the cycle.
func (s *CycleService) CreateCycle(ctx context.Context, owner string, durationMonths int, amount int64) (*billing.Cycle, error) {
	if durationMonths < 1 || durationMonths > 12 {
		return nil, billing.ErrInvalidDuration
	}
	if amount <= 0 {
		return nil, billing.ErrInvalidAmount
	}

	now := s.now()
	cycle := &billing.Cycle{
		Owner:          owner,
		StartDate:      now,
		EndDate:        now.Add(time.Duration(durationMonths) * billing.MonthDuration),
		TotalDeposited: amount,
		OperatingFee:   billing.CalculateFee(amount, s.cfg.FeePercentage),
		FeePercentage:  s.cfg.FeePercentage,
		IsActive:       true,
	}

	if err := s.cycleRepo.Create(ctx, cycle); err != nil {
		return nil, fmt.Errorf("failed to create cycle: %w", err)
	}

	// Funds move after the record exists; a failed leg deactivates the cycle
	// so no live cycle is ever backed by missing custody.
	if err := s.treasury.Deposit(ctx, owner, amount); err != nil {
		s.deactivate(ctx, cycle)
		return nil, fmt.Errorf("%w: deposit: %v", billing.ErrTransferFailed, err)
	}
	// A small deposit can round the fee down to zero; there is nothing to
	// collect then.
	if cycle.OperatingFee > 0 {
		if err := s.treasury.CollectFee(ctx, cycle.OperatingFee); err != nil {
			if rerr := s.treasury.Release(ctx, owner, amount); rerr != nil {
				s.logger.Errorf("Could not return deposit to %s after failed fee collection on cycle %d: %v", owner, cycle.ID, rerr)
			}
			s.deactivate(ctx, cycle)
			return nil, fmt.Errorf("%w: fee collection: %v", billing.ErrTransferFailed, err)
		}
	}

	s.logger.Infof("Cycle %d created for %s: deposited %d, fee %d, ends %s",
		cycle.ID, owner, amount, cycle.OperatingFee, cycle.EndDate.Format("2006-01-02"))
	return cycle, nil
}

func (s *CycleService) deactivate(ctx context.Context, cycle *billing.Cycle) {
	cycle.IsActive = false
	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		s.logger.Errorf("Could not deactivate cycle %d after failed transfer: %v", cycle.ID, err)
	}
}

// EndCycle terminates a cycle once its end date has passed. Owner-only. The
// surplus released back to the owner is returned.
func (s *CycleService) EndCycle(ctx context.Context, caller string, cycleID int64) (int64, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return 0, err
	}
	if cycle.Owner != caller {
		return 0, billing.ErrUnauthorized
	}
	if s.now().Before(cycle.EndDate) {
		return 0, billing.ErrCycleNotEnded
	}
	return s.endCycle(ctx, cycle)
}

// AdminEndCycle terminates a cycle at any time, without the end-date gate.
func (s *CycleService) AdminEndCycle(ctx context.Context, caller string, cycleID int64) (int64, error) {
	if !s.cfg.isAdmin(caller) {
		return 0, billing.ErrUnauthorized
	}
	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return 0, err
	}
	return s.endCycle(ctx, cycle)
}

// endCycle flips the cycle inactive and releases the surplus. The surplus
// counts only bills currently flagged paid, so allocated-but-unpaid funds go
// back to the owner.
func (s *CycleService) endCycle(ctx context.Context, cycle *billing.Cycle) (int64, error) {
	if !cycle.IsActive {
		return 0, billing.ErrCycleAlreadyEnded
	}

	bills, err := s.billRepo.ListByCycle(ctx, cycle.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list bills for cycle %d: %w", cycle.ID, err)
	}
	var totalPaid int64
	for _, b := range bills {
		if b.IsPaid {
			totalPaid += b.Amount
		}
	}
	surplus := cycle.TotalDeposited - cycle.OperatingFee - totalPaid

	cycle.IsActive = false
	if err := s.cycleRepo.Update(ctx, cycle); err != nil {
		return 0, fmt.Errorf("failed to close cycle %d: %w", cycle.ID, err)
	}

	if surplus > 0 {
		if err := s.treasury.Release(ctx, cycle.Owner, surplus); err != nil {
			// Reopen so the funds are not stranded in custody.
			cycle.IsActive = true
			if rerr := s.cycleRepo.Update(ctx, cycle); rerr != nil {
				s.logger.Errorf("Could not reopen cycle %d after failed surplus release: %v", cycle.ID, rerr)
			}
			return 0, fmt.Errorf("%w: surplus release: %v", billing.ErrTransferFailed, err)
		}
	}

	s.logger.Infof("Cycle %d ended: surplus %d released to %s", cycle.ID, surplus, cycle.Owner)
	return surplus, nil
}

// GetCycle returns a cycle to its owner or the admin.
func (s *CycleService) GetCycle(ctx context.Context, caller string, cycleID int64) (*billing.Cycle, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Owner != caller && !s.cfg.isAdmin(caller) {
		return nil, billing.ErrUnauthorized
	}
	return cycle, nil
}

// GetUserCycles lists an owner's cycles. Callable by that owner or the admin.
func (s *CycleService) GetUserCycles(ctx context.Context, caller, owner string) ([]*billing.Cycle, error) {
	if caller != owner && !s.cfg.isAdmin(caller) {
		return nil, billing.ErrUnauthorized
	}
	return s.cycleRepo.ListByOwner(ctx, owner)
}

// GetAllCycles lists every cycle in the ledger. Admin-only.
func (s *CycleService) GetAllCycles(ctx context.Context, caller string) ([]*billing.Cycle, error) {
	if !s.cfg.isAdmin(caller) {
		return nil, billing.ErrUnauthorized
	}
	return s.cycleRepo.ListAll(ctx)
}
