/*
Package config loads server and CLI configuration.

SOURCES (highest precedence first):
  1. Command-line flags
  2. Environment variables
  3. A .env file in the working directory, if present
  4. Defaults

ENVIRONMENT:
  PORT           HTTP port (default 8080)
  DB_PATH        SQLite database path (default loans.db, ":memory:" allowed)
  REDIS_ADDR     Redis address for the holiday cache; empty uses memory
  ROUNDING_BASE  installment rounding base (default 500)
  MIN_PRINCIPAL  smallest principal accepted by the API (default 50000)
  LOG_LEVEL      debug|info|warn|error (default info)
  WARM_SCHEDULE  cron spec of the holiday cache warmer (default "@every 6h")
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Port         int
	DBPath       string
	RedisAddr    string
	RoundingBase decimal.Decimal
	MinPrincipal int64
	LogLevel     string
	WarmSchedule string
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads .env, then the environment, then parses args over it.
func Load(args []string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	return Parse(args)
}

// Parse builds a Config from the current environment and args.
func Parse(args []string) (*Config, error) {
	port, err := envInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	minPrincipal, err := envInt("MIN_PRINCIPAL", 50000)
	if err != nil {
		return nil, err
	}

	flags := flag.NewFlagSet("loan-engine", flag.ContinueOnError)
	cfg := &Config{}
	flags.IntVar(&cfg.Port, "port", port, "HTTP server port")
	flags.StringVar(&cfg.DBPath, "db", getEnv("DB_PATH", "loans.db"), "SQLite database path")
	flags.StringVar(&cfg.RedisAddr, "redis", getEnv("REDIS_ADDR", ""), "Redis address for the holiday cache (empty = in-memory)")
	base := flags.String("rounding-base", getEnv("ROUNDING_BASE", "500"), "installment rounding base")
	flags.Int64Var(&cfg.MinPrincipal, "min-principal", int64(minPrincipal), "smallest principal accepted")
	flags.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level")
	flags.StringVar(&cfg.WarmSchedule, "warm-schedule", getEnv("WARM_SCHEDULE", "@every 6h"), "holiday cache warm-up cron spec")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg.RoundingBase, err = decimal.NewFromString(*base)
	if err != nil {
		return nil, fmt.Errorf("invalid rounding base %q: %w", *base, err)
	}
	if !cfg.RoundingBase.IsPositive() {
		return nil, fmt.Errorf("rounding base must be positive, got %s", cfg.RoundingBase)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
