package config

import (
	"os"
	"strconv"
	"time"
)

// Cache backends
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Google   GoogleConfig
	Velocity VelocityConfig
	Redis    RedisConfig
	Shopify  ShopifyConfig
	// StoresFile optionally replaces the built-in store registry
	StoresFile string
}

type ServerConfig struct {
	AppEnv string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type GoogleConfig struct {
	SpreadsheetID   string
	CredentialsPath string
}

type VelocityConfig struct {
	WindowDays   int
	CacheDir     string
	CacheBackend string
	CacheTTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ShopifyConfig struct {
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv: getEnv("APP_ENV", "dev"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Google: GoogleConfig{
			SpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
			CredentialsPath: getEnv("GOOGLE_CREDENTIALS_PATH", "credentials.json"),
		},
		Velocity: VelocityConfig{
			WindowDays:   getEnvInt("VELOCITY_WINDOW_DAYS", 30),
			CacheDir:     getEnv("VELOCITY_CACHE_DIR", "."),
			CacheBackend: getEnv("VELOCITY_CACHE_BACKEND", CacheBackendFile),
			CacheTTL:     getEnvDuration("VELOCITY_CACHE_TTL", 6*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Shopify: ShopifyConfig{
			RequestsPerSecond: getEnvFloat("SHOPIFY_REQUESTS_PER_SECOND", 2),
			Burst:             getEnvInt("SHOPIFY_BURST", 4),
			Timeout:           getEnvDuration("SHOPIFY_TIMEOUT", 30*time.Second),
		},
		StoresFile: getEnv("STORES_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
