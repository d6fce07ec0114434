package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment.
type Config struct {
	AllowedOrigins []string
	SessionMaxIdle time.Duration
}

// Load reads .env when present and assembles runtime configuration.
// Missing values fall back to permissive development defaults.
func Load() *Config {
	_ = godotenv.Load()

	origins := []string{"*"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	maxIdle := DefaultSessionMaxIdle
	if raw := os.Getenv("SESSION_MAX_IDLE"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			maxIdle = d
		}
	}

	return &Config{
		AllowedOrigins: origins,
		SessionMaxIdle: maxIdle,
	}
}
