// Package config loads the D3AI API configuration from environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment is the deployment environment.
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

func (e Environment) String() string { return string(e) }

// ParseEnvironment accepts the short names and their long forms.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of dev, staging, prod, test, got: %s", s)
}

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string // empty disables file logging
	LogRetentionWeeks int    // Number of weeks to keep log files
	MaxLogFileSize    int64  // Maximum log file size in bytes
	MaxRequestBody    int64  // Maximum request body size in bytes
	MaxHeaderSize     int64  // Maximum header size in bytes

	CatalogPath           string        // optional YAML catalog; built-in catalog when empty
	CatalogReloadInterval time.Duration // 0 disables periodic reload
	MatcherMode           string        // pairwise or corpus
	MaxGeneratedMolecules int

	RateLimitRate     float64 // tokens per second
	RateLimitCapacity int64
}

// StaleAfter is how long a reloadable catalog may go without a successful
// refresh before it is reported as stale.
const StaleAfter = 25 * time.Hour

// minReloadInterval keeps reloads from hammering the disk.
const minReloadInterval = time.Minute

// ReloadEnabled reports whether the catalog file is reloaded periodically.
func (c *Config) ReloadEnabled() bool {
	return c.CatalogPath != "" && c.CatalogReloadInterval > 0
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, c.Port)
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	var errs parseErrors
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogDir:            getEnvAllowEmpty("LOG_DIR", "logs"),
		LogRetentionWeeks: errs.intVar("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:    errs.int64Var("MAX_LOG_FILE_SIZE", 100*1024*1024), // 100MB default
		MaxRequestBody:    errs.int64Var("MAX_REQUEST_BODY", 1024*1024),      // 1MB default
		MaxHeaderSize:     errs.int64Var("MAX_HEADER_SIZE", 1024*1024),       // 1MB default

		CatalogPath:           os.Getenv("CATALOG_PATH"),
		CatalogReloadInterval: errs.durationVar("CATALOG_RELOAD_INTERVAL", 0),
		MatcherMode:           strings.ToLower(getEnvWithDefault("MATCHER_MODE", "pairwise")),
		MaxGeneratedMolecules: errs.intVar("MAX_GENERATED_MOLECULES", 100),

		RateLimitRate:     errs.floatVar("RATE_LIMIT_RATE", 3),
		RateLimitCapacity: errs.int64Var("RATE_LIMIT_CAPACITY", 1000),
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}
	cfg.Env = env

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}
	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}
	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}
	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}
	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}
	if err := validateReloadInterval(cfg.CatalogReloadInterval); err != nil {
		return fmt.Errorf("invalid CATALOG_RELOAD_INTERVAL: %w", err)
	}
	if cfg.MatcherMode != "pairwise" && cfg.MatcherMode != "corpus" {
		return fmt.Errorf("invalid MATCHER_MODE: must be pairwise or corpus, got: %s", cfg.MatcherMode)
	}
	if cfg.MaxGeneratedMolecules < 1 || cfg.MaxGeneratedMolecules > 1000 {
		return fmt.Errorf("invalid MAX_GENERATED_MOLECULES: must be between 1 and 1000, got: %d", cfg.MaxGeneratedMolecules)
	}
	if cfg.RateLimitRate <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_RATE: must be positive, got: %g", cfg.RateLimitRate)
	}
	if cfg.RateLimitCapacity <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_CAPACITY: must be positive, got: %d", cfg.RateLimitCapacity)
	}
	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress accepts loopback, private and unspecified (0.0.0.0, ::)
// addresses.
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}
	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}
	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	switch logLevel {
	case "debug", "info", "warn", "error":
		return nil
	case "":
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}
	return fmt.Errorf("LOG_LEVEL must be one of: [debug info warn error], got: %s", logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

func validateReloadInterval(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("must not be negative, got: %s", d)
	}
	if d > 0 && d < minReloadInterval {
		return fmt.Errorf("must be 0 (disabled) or at least %s, got: %s", minReloadInterval, d)
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty returns defaultValue only when key is unset, so an
// explicitly empty value can switch a feature off.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// parseErrors collects malformed numeric variables so Load reports all of
// them at once.
type parseErrors []string

func (p *parseErrors) intVar(key string, def int) int {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*p = append(*p, fmt.Sprintf("%s must be an integer, got: %s", key, value))
		return def
	}
	return n
}

func (p *parseErrors) int64Var(key string, def int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		*p = append(*p, fmt.Sprintf("%s must be an integer, got: %s", key, value))
		return def
	}
	return n
}

func (p *parseErrors) floatVar(key string, def float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*p = append(*p, fmt.Sprintf("%s must be a number, got: %s", key, value))
		return def
	}
	return f
}

func (p *parseErrors) durationVar(key string, def time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*p = append(*p, fmt.Sprintf("%s must be a duration such as 10m or 6h, got: %s", key, value))
		return def
	}
	return d
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"CATALOG_PATH",
		"CATALOG_RELOAD_INTERVAL",
		"MATCHER_MODE",
		"MAX_GENERATED_MOLECULES",
		"RATE_LIMIT_RATE",
		"RATE_LIMIT_CAPACITY",
	}
}
