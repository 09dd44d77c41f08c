// Package config has the configuration for the app
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names accepted in ENV
const (
	EnvDevelopment = "dev"
	EnvStaging     = "staging"
	EnvProduction  = "prod"
	EnvTest        = "test"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               string
	LogLevel          string
	LogDir            string
	LogRetentionDays  int
	DataDir           string // directory holding the reference TSV files
	ReloadTimes       string // gocron At() expression, e.g. "06:00;18:00"
	MaxRequestBody    int64  // Maximum request body size in bytes
	MaxHeaderSize     int64  // Maximum header size in bytes
	RateLimitRate     float64
	RateLimitCapacity int64
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               strings.ToLower(getEnvWithDefault("ENV", EnvDevelopment)),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionDays:  getIntEnvWithDefault("LOG_RETENTION_DAYS", 28),
		DataDir:           getEnvWithDefault("DATA_DIR", "reference"),
		ReloadTimes:       getEnvWithDefault("RELOAD_TIMES", "06:00;18:00"),
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 65536), // 64KB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 8192),   // 8KB default
		RateLimitRate:     getFloatEnvWithDefault("RATE_LIMIT_RATE", 5),
		RateLimitCapacity: getInt64EnvWithDefault("RATE_LIMIT_CAPACITY", 100),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ReloadTimeList splits ReloadTimes into its HH:MM entries
func (c *Config) ReloadTimeList() []string {
	var out []string
	for _, t := range strings.Split(c.ReloadTimes, ";") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}
	if err := validateOneOf(cfg.Env, []string{EnvDevelopment, EnvStaging, EnvProduction, EnvTest}); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}
	if err := validateOneOf(cfg.LogLevel, []string{"debug", "info", "warn", "error"}); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if cfg.LogRetentionDays <= 0 || cfg.LogRetentionDays > 365 {
		return fmt.Errorf("invalid LOG_RETENTION_DAYS: must be between 1 and 365, got: %d", cfg.LogRetentionDays)
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("invalid DATA_DIR: cannot be empty")
	}
	if err := validateReloadTimes(cfg.ReloadTimeList()); err != nil {
		return fmt.Errorf("invalid RELOAD_TIMES: %w", err)
	}
	if err := validateSizeLimit(cfg.MaxRequestBody); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}
	if err := validateSizeLimit(cfg.MaxHeaderSize); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}
	if cfg.RateLimitRate <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_RATE: must be positive, got: %v", cfg.RateLimitRate)
	}
	if cfg.RateLimitCapacity <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_CAPACITY: must be positive, got: %d", cfg.RateLimitCapacity)
	}
	return nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}
	if portNum < 1024 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1024 and 65535, got: %d", portNum)
	}
	return nil
}

func validateAddress(address string) error {
	if address == "localhost" {
		return nil
	}
	if net.ParseIP(address) == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}
	return nil
}

func validateOneOf(value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("must be one of: %v, got: %s", allowed, value)
}

func validateReloadTimes(times []string) error {
	if len(times) == 0 {
		return fmt.Errorf("at least one HH:MM time is required")
	}
	for _, t := range times {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("%q is not a HH:MM time", t)
		}
	}
	return nil
}

func validateSizeLimit(size int64) error {
	if size <= 0 {
		return fmt.Errorf("must be positive, got: %d", size)
	}
	if size > 10*1024*1024 { // 10MB
		return fmt.Errorf("is too large (max 10MB), got: %d bytes", size)
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_DAYS",
		"DATA_DIR",
		"RELOAD_TIMES",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"RATE_LIMIT_RATE",
		"RATE_LIMIT_CAPACITY",
	}
}
