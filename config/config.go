package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
// Precedence: process env over .env (loaded in main) over the defaults below.
// Resolved exactly once at startup.
type Config struct {
	// Feed
	FeedURL string
	Symbol  string

	// Buffer policy
	MinDelta      float64
	RetentionSecs int64

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	ListenAddr    string
	MetricsAddr   string

	// Tick ring between feed reader and session loop
	RingCapacity int

	LogLevel slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		FeedURL: getEnv("FEED_URL", "ws://localhost:9001/ws"),
		Symbol:  getEnv("SYMBOL", "AAPL"),

		MinDelta:      getEnvFloat("MIN_DELTA", 0.01),
		RetentionSecs: int64(getEnvInt("RETENTION_SECS", 3600)),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/history.db"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		RingCapacity: getEnvInt("RING_CAPACITY", 4096),

		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return f
}
