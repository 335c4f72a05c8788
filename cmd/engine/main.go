package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lockedin_engine/internal/app"
	"lockedin_engine/internal/domain/billing"
	"lockedin_engine/internal/domain/funds"
	"lockedin_engine/internal/domain/notify"
	"lockedin_engine/internal/infra/config"
	idb "lockedin_engine/internal/infra/database"
	"lockedin_engine/internal/infra/logger"
	"lockedin_engine/internal/infra/scheduler"
	"lockedin_engine/internal/infra/telegram"
	"lockedin_engine/internal/infra/treasury"
)

func main() {
	fmt.Println("Billing cycle engine starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Get()
	mainLogger.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Admin: %s", cfg.LogLevel, cfg.Environment, cfg.AdminAccountID)

	// Initialize storage. A development run without DATABASE_URL uses the
	// in-memory stores.
	var (
		cycleRepo    billing.CycleRepository
		billRepo     billing.BillRepository
		fundTreasury funds.Treasury
	)
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to database: %v", err)
		}
		defer db.Close()
		mainLogger.Info("Database connection established successfully.")

		cycleRepo = idb.NewPostgresCycleRepository(db)
		billRepo = idb.NewPostgresBillRepository(db)
		fundTreasury = treasury.NewPostgresTreasury(db, cfg.FeeRecipientID)
	} else {
		mainLogger.Warn("DATABASE_URL not set, using in-memory stores.")
		cycleRepo = idb.NewMemoryCycleRepository()
		billRepo = idb.NewMemoryBillRepository()
		fundTreasury = treasury.NewMemoryTreasury(cfg.FeeRecipientID)
	}
	mainLogger.Info("Cycle and bill repositories initialized.")

	engineCfg := app.EngineConfig{
		AdminAccountID: cfg.AdminAccountID,
		FeeRecipient:   cfg.FeeRecipientID,
		FeePercentage:  cfg.FeePercentageBps,
	}

	// The sweep daemon only drives payments; cycle and bill management go
	// through the app services embedded by callers.
	paymentService := app.NewPaymentService(cycleRepo, billRepo, fundTreasury, engineCfg, mainLogger)
	mainLogger.Info("Payment service initialized.")

	// Optional Telegram notifier for keeper sweep notices.
	var notifier notify.Notifier
	if cfg.TelegramToken != "" && cfg.KeeperChatID != 0 {
		notifier, err = telegram.NewTelebotNotifier(cfg.TelegramToken, cfg.KeeperChatID)
		if err != nil {
			mainLogger.Fatalf("Could not create Telegram notifier: %v", err)
		}
		mainLogger.Info("Telegram keeper notifier initialized.")
	}

	keeperService := app.NewKeeperService(cycleRepo, billRepo, paymentService, notifier, engineCfg, cfg.DueSoonWindow, mainLogger)

	keeperScheduler := scheduler.NewKeeperScheduler(keeperService, mainLogger, cfg.CronSpecKeeperSweep)
	keeperScheduler.Start()

	mainLogger.Info("Application setup complete. Keeper scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	keeperScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
