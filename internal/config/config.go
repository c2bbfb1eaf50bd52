// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// loads .env into the process environment on import
	_ "github.com/joho/godotenv/autoload"

	"github.com/jason-s-yu/daketi/internal/cache"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port            string
	LogLevel        string
	AnimationDelay  time.Duration
	RoomIdleTTL     time.Duration
	JanitorInterval time.Duration

	// RedisAddr enables the action historian when non-empty.
	RedisAddr          string
	RedisDB            int
	HistorianQueueName string

	// DatabaseURL enables the Postgres result store when non-empty.
	DatabaseURL string

	// historian consumer only
	HistorianBatchSize  int
	HistorianFlushDelay time.Duration
	GameInactivity      time.Duration
}

// Load reads every setting, applying defaults for unset variables.
// Malformed numbers or durations are an error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "debug"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		HistorianQueueName: getEnv("HISTORIAN_QUEUE_NAME", cache.DefaultQueueName),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
	}

	var err error
	delayMs, err := getEnvInt("ANIMATION_DELAY_MS", 1000)
	if err != nil {
		return nil, err
	}
	if delayMs < 0 {
		return nil, fmt.Errorf("ANIMATION_DELAY_MS must be non-negative, got %d", delayMs)
	}
	cfg.AnimationDelay = time.Duration(delayMs) * time.Millisecond

	if cfg.RoomIdleTTL, err = getEnvDuration("ROOM_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JanitorInterval, err = getEnvDuration("JANITOR_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.JanitorInterval <= 0 {
		return nil, fmt.Errorf("JANITOR_INTERVAL must be positive, got %s", cfg.JanitorInterval)
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.HistorianBatchSize, err = getEnvInt("HISTORIAN_BATCH_SIZE", 20); err != nil {
		return nil, err
	}
	flushMs, err := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	if err != nil {
		return nil, err
	}
	cfg.HistorianFlushDelay = time.Duration(flushMs) * time.Millisecond
	if cfg.GameInactivity, err = getEnvDuration("GAME_INACTIVITY_TIMEOUT", 10*time.Minute); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
