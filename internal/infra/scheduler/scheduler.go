package scheduler

import (
	"context"
	"time"

	"lockedin_engine/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// KeeperScheduler drives the daily keeper sweep over active billing cycles.
type KeeperScheduler struct {
	cronEngine    *cron.Cron
	keeper        app.Keeper
	logger        *logrus.Logger
	cronSpecSweep string
}

func NewKeeperScheduler(
	keeper app.Keeper,
	logger *logrus.Logger,
	cronSpecSweep string, // e.g., "0 10 * * *" (10:00 AM daily)
) *KeeperScheduler {
	return &KeeperScheduler{
		cronEngine:    cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		keeper:        keeper,
		logger:        logger,
		cronSpecSweep: cronSpecSweep,
	}
}

func (s *KeeperScheduler) Start() {
	s.logger.Info("Starting keeper scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecSweep, func() {
		s.logger.Info("Cron job triggered for keeper sweep.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		report, err := s.keeper.RunSweep(ctx)
		if err != nil {
			s.logger.Errorf("Keeper sweep failed: %v", err)
			return
		}
		s.logger.Infof("Keeper sweep finished: %s", report)
	})
	if err != nil {
		s.logger.Fatalf("Could not add keeper sweep cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Infof("Keeper scheduler started, sweep spec: %q", s.cronSpecSweep)
}

func (s *KeeperScheduler) Stop() {
	s.logger.Info("Stopping keeper scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Keeper scheduler gracefully stopped.")
}
