package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort      string
	PostgresDSN   string
	SessionSecret string
	SessionTTL    time.Duration
	RedisURL      string
	RateLimit     int
	RateWindow    time.Duration
	CORSOrigins   string
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:      getEnv("PORT", "3000"),
		PostgresDSN:   getEnv("DATABASE_URL", "host=localhost user=postgres password=password dbname=hackcampus port=5432 sslmode=disable"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getDuration("SESSION_TTL", 7*24*time.Hour),
		RedisURL:      getEnv("REDIS_URL", ""),
		RateLimit:     getInt("RATE_LIMIT", 30),
		RateWindow:    getDuration("RATE_WINDOW", time.Minute),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
	}

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
