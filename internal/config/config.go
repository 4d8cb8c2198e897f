package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	DatabaseURL string

	// Firebase
	FirebaseProjectID string

	// Scraper feed
	ScraperBaseURL  string
	ScraperAPIKey   string
	RefreshInterval time.Duration

	// Snapshot cache
	CacheBackend string // memory, redis
	CacheTTL     time.Duration
	RedisAddr    string

	// Rate limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env if present (development only); real env vars win
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		ScraperBaseURL:    getEnv("SCRAPER_BASE_URL", ""),
		ScraperAPIKey:     getEnv("SCRAPER_API_KEY", ""),
		RefreshInterval:   getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
		CacheBackend:      getEnv("CACHE_BACKEND", "memory"),
		CacheTTL:          getEnvDuration("CACHE_TTL", 12*time.Hour),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 10),
		AllowedOrigins: []string{
			"http://localhost:5173",
			"https://applytrack.app",
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ScraperBaseURL == "" {
		return nil, fmt.Errorf("SCRAPER_BASE_URL is required")
	}
	switch cfg.CacheBackend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("CACHE_BACKEND must be \"memory\" or \"redis\", got %q", cfg.CacheBackend)
	}

	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
