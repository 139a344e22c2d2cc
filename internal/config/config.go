package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env                string
	HTTPPort           string
	BackendBaseURL     string
	UpstreamCookieName string
	SessionSecret      string
	RequestTimeout     time.Duration
	RateLimitPerMin    int
}

// Load returns application config populated from environment variables with
// sensible defaults. A .env file in the working directory is applied first
// when present.
func Load() App {
	_ = godotenv.Load()

	return App{
		Env:                getEnv("APP_ENV", "dev"),
		HTTPPort:           getEnv("HTTP_PORT", "8082"),
		BackendBaseURL:     getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
		UpstreamCookieName: getEnv("UPSTREAM_COOKIE_NAME", "session_id"),
		SessionSecret:      getEnv("SESSION_SECRET", "dev-session-secret-change"),
		RequestTimeout:     durationEnv("REQUEST_TIMEOUT", 10*time.Second),
		RateLimitPerMin:    intEnv("RATE_LIMIT_PER_MIN", 60),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
