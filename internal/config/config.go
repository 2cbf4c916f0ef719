package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (optional, shared rate-limit storage)
	RedisURL string

	// JWT
	JWTSecret     string
	JWTIssuer     string
	JWTExpiry     time.Duration
	AdminTokenTTL time.Duration

	// Bootstrap admin credential. Empty password disables it.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Event log
	EventLogPath     string
	EventLogMaxBytes int64

	// Stats
	StatsCacheTTL time.Duration

	// Rate limits per minute and IP. 0 disables.
	RateLimitMax     int
	AuthRateLimitMax int

	// Server
	Port        string
	CORSOrigins string
	LogLevel    string
	AppEnv      string
	SentryDSN   string
}

// Load reads configuration from the environment, after an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "complaint_desk"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "complaint-desk"),
		JWTExpiry:     parseDuration(getEnv("JWT_EXPIRY", "24h"), 24*time.Hour),
		AdminTokenTTL: parseDuration(getEnv("ADMIN_TOKEN_TTL", "2h"), 2*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		EventLogPath:     getEnv("EVENT_LOG_PATH", "log.txt"),
		EventLogMaxBytes: int64(getEnvInt("EVENT_LOG_MAX_BYTES", 2*1024*1024)),

		StatsCacheTTL: parseDuration(getEnv("STATS_CACHE_TTL", "60s"), 60*time.Second),

		RateLimitMax:     getEnvInt("RATE_LIMIT_MAX", 60),
		AuthRateLimitMax: getEnvInt("AUTH_RATE_LIMIT_MAX", 10),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
