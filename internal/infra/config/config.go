package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the engine
type AppConfig struct {
	DatabaseURL         string
	AdminAccountID      string
	FeeRecipientID      string
	FeePercentageBps    uint32
	CronSpecKeeperSweep string
	DueSoonWindow       time.Duration
	LogLevel            string
	Environment         string
	TelegramToken       string // optional, for keeper notices
	KeeperChatID        int64  // optional, chat receiving keeper notices
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.Environment != "development" {
		// Development falls back to the in-memory stores without a database.
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.AdminAccountID = os.Getenv("ADMIN_ACCOUNT_ID")
	if cfg.AdminAccountID == "" {
		return nil, fmt.Errorf("ADMIN_ACCOUNT_ID is not set")
	}

	cfg.FeeRecipientID = os.Getenv("FEE_RECIPIENT_ACCOUNT_ID")
	if cfg.FeeRecipientID == "" {
		return nil, fmt.Errorf("FEE_RECIPIENT_ACCOUNT_ID is not set")
	}

	feeStr := os.Getenv("FEE_PERCENTAGE_BPS")
	if feeStr == "" {
		cfg.FeePercentageBps = 200 // Default: 2.00%
	} else {
		fee, err := strconv.ParseUint(feeStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid FEE_PERCENTAGE_BPS: %w", err)
		}
		cfg.FeePercentageBps = uint32(fee)
	}
	if cfg.FeePercentageBps < 100 || cfg.FeePercentageBps > 500 {
		return nil, fmt.Errorf("FEE_PERCENTAGE_BPS must be between 100 and 500, got %d", cfg.FeePercentageBps)
	}

	cfg.CronSpecKeeperSweep = os.Getenv("CRON_SPEC_KEEPER_SWEEP")
	if cfg.CronSpecKeeperSweep == "" {
		cfg.CronSpecKeeperSweep = "0 10 * * *" // Default: 10:00 AM daily
	}

	windowStr := os.Getenv("DUE_SOON_WINDOW_HOURS")
	if windowStr == "" {
		cfg.DueSoonWindow = 24 * time.Hour // Default lookahead for due-soon notices
	} else {
		hours, err := strconv.Atoi(windowStr)
		if err != nil || hours < 0 {
			return nil, fmt.Errorf("invalid DUE_SOON_WINDOW_HOURS: %q", windowStr)
		}
		cfg.DueSoonWindow = time.Duration(hours) * time.Hour
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatIDStr := os.Getenv("KEEPER_CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid KEEPER_CHAT_ID: %w", err)
		}
		cfg.KeeperChatID = chatID
	}

	return cfg, nil
}
