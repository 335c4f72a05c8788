package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lockedin_engine/internal/domain/billing"
	"lockedin_engine/internal/domain/notify"

	"github.com/sirupsen/logrus"
)

// SweepReport summarizes one keeper run.
type SweepReport struct {
	Processed int // due bills examined for payment
	Paid      int
	Failed    int
	DueSoon   int // unpaid bills inside the due-soon window, not yet due
}

func (r *SweepReport) String() string {
	return fmt.Sprintf("keeper sweep: processed=%d paid=%d failed=%d due_soon=%d",
		r.Processed, r.Paid, r.Failed, r.DueSoon)
}

// Keeper is the sweep surface the scheduler drives.
type Keeper interface {
	RunSweep(ctx context.Context) (*SweepReport, error)
}

// KeeperService is the periodic, idempotent sweep that discovers bills due
// today or past-due across every active cycle and pays them through the
// privileged payment path. Per-bill failures are isolated: they are logged,
// counted, and never abort the sweep. Re-running the sweep the same day pays
// nothing extra because the IsPaid flag blocks re-payment.
type KeeperService struct {
	cycleRepo     billing.CycleRepository
	billRepo      billing.BillRepository
	payments      *PaymentService
	notifier      notify.Notifier // optional, may be nil
	cfg           EngineConfig
	dueSoonWindow time.Duration
	logger        *logrus.Logger
	now           func() time.Time
}

func NewKeeperService(
	cr billing.CycleRepository,
	br billing.BillRepository,
	ps *PaymentService,
	n notify.Notifier,
	cfg EngineConfig,
	dueSoonWindow time.Duration,
	logger *logrus.Logger,
) *KeeperService {
	return &KeeperService{
		cycleRepo:     cr,
		billRepo:      br,
		payments:      ps,
		notifier:      n,
		cfg:           cfg,
		dueSoonWindow: dueSoonWindow,
		logger:        logger,
		now:           time.Now,
	}
}

// RunSweep enumerates active cycles sequentially, fetches each cycle's bills,
// and pays every unpaid bill whose due day is today or already past. Each
// payment is validated and executed independently; no cross-bill state is
// held during the sweep.
func (s *KeeperService) RunSweep(ctx context.Context) (*SweepReport, error) {
	cycles, err := s.cycleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active cycles: %w", err)
	}

	report := &SweepReport{}
	now := s.now()
	today := billing.DayStart(now)
	var notices []string

	for _, cycle := range cycles {
		bills, err := s.billRepo.ListByCycle(ctx, cycle.ID)
		if err != nil {
			s.logger.Errorf("Keeper: could not list bills for cycle %d: %v", cycle.ID, err)
			continue
		}
		for _, bill := range bills {
			if bill.IsPaid {
				continue
			}
			if billing.DayStart(bill.DueDate) > today {
				if bill.DueDate.Sub(now) <= s.dueSoonWindow {
					report.DueSoon++
					notices = append(notices, fmt.Sprintf("bill %d (%s) due %s",
						bill.ID, bill.Name, bill.DueDate.Format("2006-01-02")))
				}
				continue
			}

			report.Processed++
			if err := s.payments.AdminPayBill(ctx, s.cfg.AdminAccountID, bill.ID); err != nil {
				// A user paying concurrently or ending the cycle mid-sweep is
				// a benign race, not a failure.
				if errors.Is(err, billing.ErrBillAlreadyPaid) || errors.Is(err, billing.ErrCycleNotActive) {
					s.logger.Infof("Keeper: bill %d in cycle %d skipped: %v", bill.ID, cycle.ID, err)
					continue
				}
				report.Failed++
				s.logger.Errorf("Keeper: failed to pay bill %d in cycle %d: %v", bill.ID, cycle.ID, err)
				continue
			}
			report.Paid++
		}
	}

	s.logger.Info(report.String())
	s.sendNotices(report, notices)
	return report, nil
}

func (s *KeeperService) sendNotices(report *SweepReport, notices []string) {
	if s.notifier == nil {
		return
	}
	text := report.String()
	if len(notices) > 0 {
		text += "\ndue soon:\n- " + strings.Join(notices, "\n- ")
	}
	if err := s.notifier.Notify(text); err != nil {
		s.logger.Warnf("Keeper: could not deliver sweep notice: %v", err)
	}
}
