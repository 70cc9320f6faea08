package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the console
type Config struct {
	// Backend API
	APIBaseURL string
	WSURL      string

	// Poll intervals
	StatusInterval   time.Duration
	PositionInterval time.Duration
	AccountInterval  time.Duration
	RiskInterval     time.Duration
	TradesInterval   time.Duration
	RankingsInterval time.Duration

	// Rankings loop speeds up to this while a backtest is running
	RankingsBusyInterval time.Duration

	// Trade history page size
	TradesLimit int

	// Telegram (optional)
	TelegramToken  string
	TelegramChatID int64

	// Journal database
	DatabasePath string
	DatabaseURL  string

	// Mode
	Debug bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL: getEnv("SPYDESK_API_URL", "http://localhost:8000"),
		WSURL:      getEnv("SPYDESK_WS_URL", "ws://localhost:8000/ws"),

		StatusInterval:   getEnvDuration("STATUS_INTERVAL", 10*time.Second),
		PositionInterval: getEnvDuration("POSITION_INTERVAL", 10*time.Second),
		AccountInterval:  getEnvDuration("ACCOUNT_INTERVAL", 15*time.Second),
		RiskInterval:     getEnvDuration("RISK_INTERVAL", 15*time.Second),
		TradesInterval:   getEnvDuration("TRADES_INTERVAL", 30*time.Second),
		RankingsInterval: getEnvDuration("RANKINGS_INTERVAL", 30*time.Second),

		RankingsBusyInterval: getEnvDuration("RANKINGS_BUSY_INTERVAL", 5*time.Second),

		TradesLimit: getEnvInt("TRADES_LIMIT", 50),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		DatabasePath: getEnv("DATABASE_PATH", "spydesk.db"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		Debug: getEnvBool("DEBUG", false),
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}
