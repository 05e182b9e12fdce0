package bank

import (
	"log/slog"
	"os"
	"time"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/countdown"
)

// Config holds the timings of a Bank.
type Config struct {
	Timer           countdown.Config
	SettlementDelay time.Duration
	Now             func() time.Time
}

// DefaultConfig returns the demo timings.
func DefaultConfig() Config {
	return Config{
		Timer:           countdown.DefaultConfig(),
		SettlementDelay: 3 * time.Second,
		Now:             time.Now,
	}
}

// ConfigFromEnv overrides the defaults with SESSION_TIMEOUT, SESSION_TICK,
// SESSION_HIDE_DELAY and SETTLEMENT_DELAY when they are set.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Timer.Timeout = durationEnv("SESSION_TIMEOUT", cfg.Timer.Timeout)
	cfg.Timer.Tick = durationEnv("SESSION_TICK", cfg.Timer.Tick)
	cfg.Timer.HideDelay = durationEnv("SESSION_HIDE_DELAY", cfg.Timer.HideDelay)
	cfg.SettlementDelay = durationEnv("SETTLEMENT_DELAY", cfg.SettlementDelay)
	return cfg
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("ignoring invalid duration", "key", key, "value", raw)
		return fallback
	}
	return d
}
