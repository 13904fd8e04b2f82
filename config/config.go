/*
Package config loads server configuration from the environment.

SOURCES (later wins):
  1. Built-in defaults
  2. .env file in the working directory, if present (github.com/joho/godotenv)
  3. Process environment
  4. Command-line flags, applied by cmd/server

VARIABLES:
  PORT               HTTP port (8080)
  DB_PATH            SQLite path, ":memory:" for in-memory (payroll.db)
  SHIFT_START        Standard shift start, HH:MM (08:00)
  SHIFT_END          Standard shift end, HH:MM (17:00)
  POLICY_FILE        Optional JSON policy document; replaces the shift and
                     statutory defaults when set
  PAYRUN_WORKERS     Parallel employees per pay run (4)
  CORS_ORIGINS       Comma-separated allowed origins
  SCHEDULER_ENABLED  Close each month's payroll automatically (false)
  SCHEDULER_INTERVAL How often the scheduler checks (1h)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/motorph/payroll-engine/deductions"
	"github.com/motorph/payroll-engine/engine"
	"github.com/motorph/payroll-engine/factory"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Payroll   PayrollConfig
	Scheduler SchedulerConfig
}

// AppConfig holds HTTP server configuration
type AppConfig struct {
	Port           int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Path string
}

// PayrollConfig holds the engine defaults
type PayrollConfig struct {
	ShiftStart string
	ShiftEnd   string
	PolicyFile string
	Workers    int
}

type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads the given .env files (".env" when none are named), then the
// environment. Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	config := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	config.App = AppConfig{
		Port:           port,
		AllowedOrigins: getEnvSlice("CORS_ORIGINS"),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "payroll.db"),
	}

	workers, err := strconv.Atoi(getEnv("PAYRUN_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYRUN_WORKERS: %w", err)
	}
	config.Payroll = PayrollConfig{
		ShiftStart: getEnv("SHIFT_START", "08:00"),
		ShiftEnd:   getEnv("SHIFT_END", "17:00"),
		PolicyFile: getEnv("POLICY_FILE", ""),
		Workers:    workers,
	}

	enabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ENABLED: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("SCHEDULER_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL: %w", err)
	}
	config.Scheduler = SchedulerConfig{Enabled: enabled, Interval: interval}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.App.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Payroll.Workers <= 0 {
		return fmt.Errorf("PAYRUN_WORKERS must be positive, got %d", c.Payroll.Workers)
	}
	start, err := engine.ParseClock(c.Payroll.ShiftStart)
	if err != nil {
		return fmt.Errorf("SHIFT_START: %w", err)
	}
	end, err := engine.ParseClock(c.Payroll.ShiftEnd)
	if err != nil {
		return fmt.Errorf("SHIFT_END: %w", err)
	}
	if _, err := engine.NewShift(start, end); err != nil {
		return fmt.Errorf("SHIFT_START/SHIFT_END: %w", err)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive, got %s", c.Scheduler.Interval)
	}
	return nil
}

// Policy returns the payroll policy: POLICY_FILE when set, otherwise the
// statutory MotorPH deductions over the configured shift.
func (c *Config) Policy(pf *factory.PolicyFactory) (*factory.Policy, error) {
	if c.Payroll.PolicyFile != "" {
		return pf.LoadPolicy(c.Payroll.PolicyFile)
	}
	return pf.ParsePolicy(deductions.StandardPolicyJSON(c.Payroll.ShiftStart, c.Payroll.ShiftEnd))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
