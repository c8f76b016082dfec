package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	Dispatch  DispatchConfig
	Rating    RatingConfig
	WebSocket WebSocketConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	Env             string
	Host            string
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	MaxConnections int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	AutoMigrate    bool
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

type NewRelicConfig struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

type DispatchConfig struct {
	LockKey      string
	LockTTL      time.Duration
	AutoDispatch bool
	// Schedule is a cron spec with a leading seconds field
	Schedule string
}

type RatingConfig struct {
	MinScore int
	MaxScore int
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("SERVER_ENV", "development"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ShutdownTimeout: parseDuration(getEnv("SERVER_SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", DriverPostgres),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			Name:           getEnv("DB_NAME", "delivery"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:   getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			MaxLifetime:    time.Duration(getEnvAsInt("DB_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
			AutoMigrate:    getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Enabled:     getEnvAsBool("REDIS_ENABLED", true),
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			MaxRetries:  getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 20),
			MinIdleConn: 2,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 3 * time.Second,
		},
		NewRelic: NewRelicConfig{
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			AppName:    getEnv("NEW_RELIC_APP_NAME", "GoComet-DeliveryDispatch"),
			Enabled:    getEnvAsBool("NEW_RELIC_ENABLED", false),
			LogLevel:   getEnv("NEW_RELIC_LOG_LEVEL", "info"),
		},
		Dispatch: DispatchConfig{
			LockKey:      getEnv("DISPATCH_LOCK_KEY", "dispatch:lock"),
			LockTTL:      parseDuration(getEnv("DISPATCH_LOCK_TTL", "30s"), 30*time.Second),
			AutoDispatch: getEnvAsBool("ENABLE_AUTO_DISPATCH", false),
			Schedule:     getEnv("DISPATCH_SCHEDULE", "*/30 * * * * *"),
		},
		Rating: RatingConfig{
			MinScore: getEnvAsInt("RATING_MIN_SCORE", 1),
			MaxScore: getEnvAsInt("RATING_MAX_SCORE", 5),
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  getEnvAsInt("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getEnvAsInt("WS_WRITE_BUFFER_SIZE", 1024),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Store.Driver)
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when REDIS_ENABLED is set")
	}
	if c.Rating.MinScore > c.Rating.MaxScore {
		return fmt.Errorf("RATING_MIN_SCORE (%d) exceeds RATING_MAX_SCORE (%d)", c.Rating.MinScore, c.Rating.MaxScore)
	}
	if c.Dispatch.LockTTL <= 0 {
		return fmt.Errorf("DISPATCH_LOCK_TTL must be positive")
	}
	if c.Dispatch.AutoDispatch && c.Dispatch.Schedule == "" {
		return fmt.Errorf("DISPATCH_SCHEDULE is required when ENABLE_AUTO_DISPATCH is set")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
