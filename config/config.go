// Package config loads server configuration from the environment, with a
// .env file honored when present. Every knob has a default so the binary
// runs with no configuration at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	Addr      string
	TableName string

	SmallBlind    int
	BigBlind      int
	StartingStack int
	MaxSeats      int

	TurnTimeout   time.Duration
	NextHandDelay time.Duration

	AuditDir         string
	AuditDatabaseURL string

	HostToken string
	Debug     bool
}

// Load reads the environment (plus .env when present) into a Config.
func Load() (Config, error) {
	// missing .env is fine; the environment may be set directly
	_ = godotenv.Load()

	cfg := Config{
		Addr:             getString("ADDR", ":7777"),
		TableName:        getString("TABLE_NAME", "Main Table"),
		AuditDir:         getString("AUDIT_DIR", "audit-logs"),
		AuditDatabaseURL: getString("AUDIT_DATABASE_URL", ""),
		HostToken:        getString("HOST_TOKEN", ""),
	}

	var err error
	if cfg.SmallBlind, err = getInt("SMALL_BLIND", 10); err != nil {
		return cfg, err
	}
	if cfg.BigBlind, err = getInt("BIG_BLIND", 20); err != nil {
		return cfg, err
	}
	if cfg.StartingStack, err = getInt("STARTING_STACK", 1000); err != nil {
		return cfg, err
	}
	if cfg.MaxSeats, err = getInt("MAX_SEATS", 6); err != nil {
		return cfg, err
	}
	if cfg.TurnTimeout, err = getDuration("TURN_TIMEOUT", 30*time.Second); err != nil {
		return cfg, err
	}
	if cfg.NextHandDelay, err = getDuration("NEXT_HAND_DELAY", 5*time.Second); err != nil {
		return cfg, err
	}
	cfg.Debug = getString("DEBUG", "") != ""

	if cfg.SmallBlind <= 0 || cfg.BigBlind < cfg.SmallBlind {
		return cfg, fmt.Errorf("invalid blinds: small=%d big=%d", cfg.SmallBlind, cfg.BigBlind)
	}
	if cfg.StartingStack < cfg.BigBlind {
		return cfg, fmt.Errorf("starting stack %d below big blind %d", cfg.StartingStack, cfg.BigBlind)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
