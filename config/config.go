package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"dreamchain/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP API
	HTTPAddr string

	// Auth
	JWTSecret            string
	JWTTTL               time.Duration
	AuthRequireSignature bool

	// Blockchain RPC; empty disables chain lookups
	EthRPCURL string

	// NATS; empty disables event forwarding
	NATSServers string

	// Redis; empty disables the stats cache
	RedisURL      string
	StatsCacheTTL time.Duration

	// Rating reconciliation schedule (cron with seconds field); empty disables
	RatingReconcileCron string

	// Donations
	DefaultCurrency string

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load reads a .env file when present, then the process environment
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":3001"),

		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTTTL:               getDurationWithDefault("JWT_TTL", 24*time.Hour),
		AuthRequireSignature: getBoolWithDefault("AUTH_REQUIRE_SIGNATURE", true),

		EthRPCURL: os.Getenv("ETH_RPC_URL"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		RedisURL:      os.Getenv("REDIS_URL"),
		StatsCacheTTL: getDurationWithDefault("STATS_CACHE_TTL", 30*time.Second),

		RatingReconcileCron: getEnvAllowEmpty("RATING_RECONCILE_CRON", "0 */15 * * * *"),

		DefaultCurrency: strings.ToUpper(getEnvWithDefault("DEFAULT_CURRENCY", "USDC")),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}
	if config.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive")
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty returns the default only when the variable is unset, so an
// explicit empty value can switch a feature off
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.WithFields(log.Fields{
			"key":   key,
			"value": value,
		}).Warn("Invalid duration, using default")
		return defaultValue
	}
	return parsed
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.WithFields(log.Fields{
			"key":   key,
			"value": value,
		}).Warn("Invalid boolean, using default")
		return defaultValue
	}
	return parsed
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:            ":0",
		JWTSecret:           "test-secret",
		JWTTTL:              time.Hour,
		StatsCacheTTL:       time.Second,
		RatingReconcileCron: "0 */15 * * * *",
		DefaultCurrency:     "USDC",
		LogLevel:            "debug",
		LogFormat:           "text",
		Environment:         "test",
	}
}
