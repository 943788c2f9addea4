package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// UpstreamConfig holds odds API client configuration.
type UpstreamConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Workers int
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL      string
	Password string
}

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Redis    RedisConfig

	// PostgresDSN enables edge history persistence when set.
	PostgresDSN string

	// Sports is the list of sport keys refreshed in the background.
	Sports []string

	// Markets is the default market set scanned per game.
	Markets []string

	RefreshInterval time.Duration
	PageSize        int
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("ODDS_API_URL", "https://api.the-odds-api.com/v4"),
			APIKey:  os.Getenv("ODDS_API_KEY"),
			Timeout: getDuration("ODDS_API_TIMEOUT", 15*time.Second),
			Workers: getInt("FETCH_WORKERS", 4),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		Sports:          splitList(getEnv("SPORTS", "basketball_nba,americanfootball_nfl,baseball_mlb")),
		Markets:         splitList(getEnv("MARKETS", "h2h,spreads,totals")),
		RefreshInterval: getDuration("REFRESH_INTERVAL", 60*time.Second),
		PageSize:        getInt("PAGE_SIZE", 15),
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
