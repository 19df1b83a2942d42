// Package config loads the CRM server configuration from an optional YAML
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/crm-backend/modules/api"
	"github.com/example/crm-backend/modules/crm"
	"github.com/example/crm-backend/modules/ratelimit"
	"github.com/example/crm-backend/modules/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Database        DatabaseConfig  `yaml:"database"`
	HTTP            HTTPConfig      `yaml:"http"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	Jobs            JobsConfig      `yaml:"jobs"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	LogLevel        string          `yaml:"log_level"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path  string `yaml:"path"`
	Debug bool   `yaml:"debug"`
}

// HTTPConfig configures the REST listener.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// RateLimitConfig configures the optional Redis rate limiter. An empty
// RedisAddr disables it.
type RateLimitConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	ReadRequests  int           `yaml:"read_requests"`
	WriteRequests int           `yaml:"write_requests"`
	Window        time.Duration `yaml:"window"`
}

// JobsConfig configures the scheduled jobs. A zero interval disables a job.
type JobsConfig struct {
	Enabled           bool          `yaml:"enabled"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	LowStockInterval  time.Duration `yaml:"low_stock_interval"`
	RemindersInterval time.Duration `yaml:"reminders_interval"`
	HeartbeatLog      string        `yaml:"heartbeat_log"`
	LowStockLog       string        `yaml:"low_stock_log"`
	RemindersLog      string        `yaml:"reminders_log"`
	LowStockThreshold int           `yaml:"low_stock_threshold"`
	RestockAmount     int           `yaml:"restock_amount"`
	ReminderDays      int           `yaml:"reminder_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: "crm.db"},
		HTTP:     HTTPConfig{Port: 3000},
		RateLimit: RateLimitConfig{
			ReadRequests:  300,
			WriteRequests: 60,
			Window:        time.Minute,
		},
		Jobs: JobsConfig{
			Enabled:           true,
			HeartbeatInterval: 5 * time.Minute,
			LowStockInterval:  12 * time.Hour,
			RemindersInterval: 24 * time.Hour,
			HeartbeatLog:      "/tmp/crm_heartbeat_log.txt",
			LowStockLog:       "/tmp/low_stock_updates_log.txt",
			RemindersLog:      "/tmp/order_reminders_log.txt",
			LowStockThreshold: 10,
			RestockAmount:     10,
			ReminderDays:      7,
		},
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        "info",
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file; a missing file at an
// explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config file %s not found", path)
			}
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Database.Debug = getEnvBool("DB_DEBUG", c.Database.Debug)
	c.HTTP.Port = getEnvInt("HTTP_PORT", c.HTTP.Port)
	c.RateLimit.RedisAddr = getEnv("REDIS_ADDR", c.RateLimit.RedisAddr)
	c.Jobs.Enabled = getEnvBool("JOBS_ENABLED", c.Jobs.Enabled)
	c.Jobs.HeartbeatInterval = getEnvDuration("HEARTBEAT_INTERVAL", c.Jobs.HeartbeatInterval)
	c.Jobs.LowStockInterval = getEnvDuration("LOW_STOCK_INTERVAL", c.Jobs.LowStockInterval)
	c.Jobs.RemindersInterval = getEnvDuration("REMINDERS_INTERVAL", c.Jobs.RemindersInterval)
	c.Jobs.HeartbeatLog = getEnv("HEARTBEAT_LOG", c.Jobs.HeartbeatLog)
	c.Jobs.LowStockLog = getEnv("LOW_STOCK_LOG", c.Jobs.LowStockLog)
	c.Jobs.RemindersLog = getEnv("REMINDERS_LOG", c.Jobs.RemindersLog)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.RateLimit.RedisAddr != "" {
		if c.RateLimit.ReadRequests <= 0 || c.RateLimit.WriteRequests <= 0 {
			errs = append(errs, errors.New("rate_limit requests must be positive"))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("rate_limit.window must be positive"))
		}
	}
	if c.Jobs.HeartbeatInterval < 0 || c.Jobs.LowStockInterval < 0 || c.Jobs.RemindersInterval < 0 {
		errs = append(errs, errors.New("job intervals cannot be negative"))
	}
	if c.Jobs.LowStockThreshold <= 0 || c.Jobs.RestockAmount <= 0 {
		errs = append(errs, errors.New("jobs.low_stock_threshold and jobs.restock_amount must be positive"))
	}
	if c.Jobs.ReminderDays <= 0 {
		errs = append(errs, errors.New("jobs.reminder_days must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if c.LogLevel != "info" && c.LogLevel != "error" {
		errs = append(errs, fmt.Errorf("log_level %q must be info or error", c.LogLevel))
	}
	return errors.Join(errs...)
}

// CRM returns the crm module configuration.
func (c Config) CRM() crm.Config {
	return crm.Config{DBPath: c.Database.Path, Debug: c.Database.Debug}
}

// API returns the HTTP module configuration.
func (c Config) API() api.Config {
	return api.Config{Port: c.HTTP.Port}
}

// Scheduler returns the job configuration. Disabled jobs get a zero
// interval so the scheduler skips them.
func (c Config) Scheduler() scheduler.Config {
	j := c.Jobs
	cfg := scheduler.Config{
		HeartbeatInterval: j.HeartbeatInterval,
		LowStockInterval:  j.LowStockInterval,
		RemindersInterval: j.RemindersInterval,
		HeartbeatLog:      j.HeartbeatLog,
		LowStockLog:       j.LowStockLog,
		RemindersLog:      j.RemindersLog,
		LowStockThreshold: j.LowStockThreshold,
		RestockAmount:     j.RestockAmount,
		ReminderDays:      j.ReminderDays,
	}
	if !j.Enabled {
		cfg.HeartbeatInterval = 0
		cfg.LowStockInterval = 0
		cfg.RemindersInterval = 0
	}
	return cfg
}

// RateLimitEnabled returns the limiter configuration and whether it is enabled.
func (c Config) RateLimitEnabled() (ratelimit.Config, bool) {
	cfg := ratelimit.DefaultConfig(c.RateLimit.RedisAddr)
	cfg.Read = ratelimit.Rule{Requests: c.RateLimit.ReadRequests, Window: c.RateLimit.Window}
	cfg.Write = ratelimit.Rule{Requests: c.RateLimit.WriteRequests, Window: c.RateLimit.Window}
	return cfg, c.RateLimit.RedisAddr != ""
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
