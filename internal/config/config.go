package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Transport selectors for the MCP server.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config contains runtime settings for the MCP server.
type Config struct {
	LogLevel  string
	Host      string // default 0.0.0.0
	Port      string // default PORT env or 8080
	Transport string // "http" or "stdio"

	RequestTimeout time.Duration // per-request fetch timeout
	MaxRetries     int           // fetch retries after the first attempt
	UserAgent      string        // client-identification header

	SessionTTL    time.Duration
	SweepInterval time.Duration

	SearchWorkers int           // bounded per-term parallelism
	SearchTimeout time.Duration // budget for a whole search call
}

// Load populates config from environment variables. A .env file in the
// working directory is honored when present. Invalid numeric values warn
// and fall back to their defaults rather than failing startup.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:  "info",
		Host:      "0.0.0.0",
		Port:      "8080",
		Transport: TransportHTTP,

		RequestTimeout: 10 * time.Second,
		MaxRetries:     3,

		SessionTTL:    time.Hour,
		SweepInterval: 10 * time.Minute,

		SearchWorkers: 4,
		SearchTimeout: 45 * time.Second,
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("MCP_HOST"); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		switch v {
		case TransportHTTP, TransportStdio:
			cfg.Transport = v
		default:
			return cfg, fmt.Errorf("invalid MCP_TRANSPORT %q (want %q or %q)", v, TransportHTTP, TransportStdio)
		}
	}

	cfg.UserAgent = os.Getenv("USER_AGENT")

	cfg.RequestTimeout = durationEnv("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.SearchTimeout = durationEnv("SEARCH_TIMEOUT", cfg.SearchTimeout)
	cfg.SessionTTL = durationEnv("SESSION_TTL", cfg.SessionTTL)
	cfg.SweepInterval = durationEnv("SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.MaxRetries = intEnv("MAX_RETRIES", cfg.MaxRetries)
	cfg.SearchWorkers = intEnv("SEARCH_WORKERS", cfg.SearchWorkers)

	return cfg, nil
}

// durationEnv reads name as a Go duration ("10s", "1h"); a bare number is
// treated as seconds. Invalid or non-positive values keep the default.
func durationEnv(name string, def time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}

	spec := raw
	if _, err := strconv.Atoi(raw); err == nil {
		spec += "s"
	}

	d, err := time.ParseDuration(spec)
	if err != nil || d <= 0 {
		log.Printf("invalid %s value %q; using default %s", name, raw, def)
		return def
	}
	return d
}

// intEnv reads a positive integer, keeping the default on bad input.
func intEnv(name string, def int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("invalid %s value %q; using default %d", name, raw, def)
		return def
	}
	return n
}
