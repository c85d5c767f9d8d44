package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	Log       LogConfig
	Profit    ProfitConfig
	GPS       GPSConfig
	Stats     StatsConfig
	Assistant AssistantConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// ShiftTTL bounds how long an untouched running shift survives in cache.
	ShiftTTL    time.Duration
	SettingsTTL time.Duration
	// IdempotencyTTL is how long a response stays replayable; a request that
	// never finishes releases its key after IdempotencyPendingTTL.
	IdempotencyTTL        time.Duration
	IdempotencyPendingTTL time.Duration
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// ProfitConfig holds the profitability policy.
type ProfitConfig struct {
	AcceptableRatio   float64
	WorkdayHours      float64
	DefaultPeriodDays float64
	DefaultKmPerLiter float64
}

// GPSConfig holds position tracking configuration.
type GPSConfig struct {
	NoiseThresholdKm float64
}

// StatsConfig holds statistics configuration.
type StatsConfig struct {
	WindowDays int
	Timezone   string
}

// AssistantConfig holds the hosted model configuration.
type AssistantConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	ChatMaxTokens  int
	PhotoMaxTokens int
	Timeout        time.Duration
	WindowDays     int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "rutaflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Migrate:  getBoolEnv("DB_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getIntEnv("REDIS_DB", 0),
			ShiftTTL:    getDurationEnv("REDIS_SHIFT_TTL", 24*time.Hour),
			SettingsTTL: getDurationEnv("REDIS_SETTINGS_TTL", 10*time.Minute),

			IdempotencyTTL:        getDurationEnv("REDIS_IDEMPOTENCY_TTL", 24*time.Hour),
			IdempotencyPendingTTL: getDurationEnv("REDIS_IDEMPOTENCY_PENDING_TTL", 30*time.Second),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "rutaflow"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Profit: ProfitConfig{
			AcceptableRatio:   getFloatEnv("PROFIT_ACCEPTABLE_RATIO", 0.75),
			WorkdayHours:      getFloatEnv("PROFIT_WORKDAY_HOURS", 8),
			DefaultPeriodDays: getFloatEnv("PROFIT_DEFAULT_PERIOD_DAYS", 30),
			DefaultKmPerLiter: getFloatEnv("PROFIT_DEFAULT_KM_PER_LITER", 12),
		},
		GPS: GPSConfig{
			NoiseThresholdKm: getFloatEnv("GPS_NOISE_THRESHOLD_KM", 0.01),
		},
		Stats: StatsConfig{
			WindowDays: getIntEnv("STATS_WINDOW_DAYS", 30),
			Timezone:   getEnv("STATS_TIMEZONE", "America/Mexico_City"),
		},
		Assistant: AssistantConfig{
			BaseURL:        getEnv("ASSISTANT_BASE_URL", "https://api.anthropic.com/"),
			APIKey:         getEnv("ASSISTANT_API_KEY", ""),
			Model:          getEnv("ASSISTANT_MODEL", "claude-sonnet-4-20250514"),
			ChatMaxTokens:  getIntEnv("ASSISTANT_CHAT_MAX_TOKENS", 700),
			PhotoMaxTokens: getIntEnv("ASSISTANT_PHOTO_MAX_TOKENS", 200),
			Timeout:        getDurationEnv("ASSISTANT_TIMEOUT", 30*time.Second),
			WindowDays:     getIntEnv("ASSISTANT_WINDOW_DAYS", 30),
		},
	}
}

// Location resolves the stats timezone, falling back to UTC.
func (c StatsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
