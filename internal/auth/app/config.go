package app

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	httpapi "github.com/aussiebroadwan/vendorauth/internal/auth/http"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string // Optional: issuer claim for tokens (default: vendorauth)
	BootstrapToken string // Optional: token required to perform bootstrap; empty disables it
	BaseURL        string // Optional: portal origin used in verification and reset links

	Algorithm      string        // Optional: JWT signing algorithm (ES256, EdDSA) (default: EdDSA)
	NumKeys        int           // Optional: number of signing keys to generate (default: 3, max: 10)
	KeyStorageMode string        // Optional: key storage mode (ephemeral, persistent) (default: ephemeral)
	KeyGracePeriod time.Duration // Optional: grace period for retired keys (default: 30 days)
	MasterKeyPath  string        // Optional: path to master encryption key file (for persistent keys)
	AccessTTL      time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Optional: refresh token lifetime (default: 7 days)

	DatabaseFile    string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile      string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	HashMemoryKiB   int    // Optional: argon2id memory in KiB (default: 64 MiB)
	HashIterations  int    // Optional: argon2id passes (default: 3)
	HashConcurrency int    // Optional: simultaneous hash computations (default: GOMAXPROCS)

	RedisURL    string // Optional: redis:// URL; enables shared rate limit buckets
	AMQPURL     string // Optional: amqp:// URL; notifications are published instead of logged
	NotifyQueue string // Optional: queue notifications are published to (default: auth.notifications)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	RateLimits httpapi.RateLimits
}

// LoadConfig reads the environment, after overlaying a .env file from the
// working directory if there is one. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	cfg := Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "vendorauth"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),
		BaseURL:        getEnvOrDefault("APP_BASE_URL", "http://localhost:3000"),

		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", "EdDSA"),
		NumKeys:        getEnvIntOrDefault("AUTH_NUM_KEYS", 0), // 0 lets the KeyManager choose
		KeyStorageMode: getEnvOrDefault("AUTH_KEY_STORAGE_MODE", "ephemeral"),
		KeyGracePeriod: getEnvDurationOrDefault("AUTH_KEY_GRACE_PERIOD", 30*24*time.Hour),
		MasterKeyPath:  os.Getenv("AUTH_MASTER_KEY_PATH"),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:     getEnvDurationOrDefault("AUTH_REFRESH_TTL", 7*24*time.Hour),

		DatabaseFile:    getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:      getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		HashMemoryKiB:   getEnvIntOrDefault("AUTH_HASH_MEMORY_KIB", 0),
		HashIterations:  getEnvIntOrDefault("AUTH_HASH_ITERATIONS", 0),
		HashConcurrency: getEnvIntOrDefault("AUTH_HASH_CONCURRENCY", 0),

		RedisURL:    os.Getenv("REDIS_URL"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		NotifyQueue: getEnvOrDefault("NOTIFY_QUEUE", "auth.notifications"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	def := httpapi.DefaultRateLimits()
	cfg.RateLimits = httpapi.RateLimits{
		Strict:   httpx.ParseRateLimitFromEnv("STRICT", def.Strict),
		Moderate: httpx.ParseRateLimitFromEnv("MODERATE", def.Moderate),
		Lenient:  httpx.ParseRateLimitFromEnv("LENIENT", def.Lenient),
		Public:   httpx.ParseRateLimitFromEnv("PUBLIC", def.Public),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// "1h", "30m", "90s"
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
