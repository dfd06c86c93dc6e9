package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/DENNISVILL/makipartner/internal/utils"
)

// RateLimitRule is one endpoint scope's admission budget.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
}

// Config holds all application configuration.
type Config struct {
	AppName           string
	AppPort           string
	DBUrl             string
	RedisURL          string // optional; empty means durable-only rate limiting
	AccessSecret      []byte
	RefreshSecret     []byte
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	SweepProbability  float64
	RateLimits        map[string]RateLimitRule
	CORSAllowedOrigin string
}

// Defaults for time-based configuration.
const (
	DefaultAccessTokenTTL   = 1 * time.Hour
	DefaultRefreshTokenTTL  = 7 * 24 * time.Hour
	DefaultSweepProbability = 0.1
)

// Rate-limit scopes used as key prefixes and config map keys.
const (
	ScopeAuth           = "auth"
	ScopeMe             = "me"
	ScopeChangePassword = "change_password"
	ScopeHealth         = "health"
	ScopeInfo           = "info"
	ScopeBusiness       = "business"
)

func defaultRateLimits() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		ScopeAuth:           {Limit: 100, Window: time.Hour},
		ScopeMe:             {Limit: 50, Window: 5 * time.Minute},
		ScopeChangePassword: {Limit: 5, Window: 5 * time.Minute},
		ScopeHealth:         {Limit: 50, Window: time.Minute},
		ScopeInfo:           {Limit: 20, Window: time.Minute},
		ScopeBusiness:       {Limit: 30, Window: time.Minute},
	}
}

// LoadConfig reads the environment and returns a *Config. Missing required
// values are fatal at startup, never a request-time error.
func LoadConfig(appName string) *Config {
	// Best-effort: a .env file is a dev convenience, not a requirement.
	_ = godotenv.Load()

	utils.Logger.Info("Loading config for app: ", appName)

	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	accessSecret := os.Getenv("JWT_ACCESS_SECRET")
	if accessSecret == "" {
		utils.Logger.Fatal("JWT_ACCESS_SECRET env var is missing")
	}
	refreshSecret := os.Getenv("JWT_REFRESH_SECRET")
	if refreshSecret == "" {
		utils.Logger.Fatal("JWT_REFRESH_SECRET env var is missing")
	}
	if accessSecret == refreshSecret {
		utils.Logger.Fatal("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be distinct")
	}

	accessTTL := durationEnv("ACCESS_TOKEN_TTL", DefaultAccessTokenTTL)
	refreshTTL := durationEnv("REFRESH_TOKEN_TTL", DefaultRefreshTokenTTL)

	sweepProbability := DefaultSweepProbability
	if raw := os.Getenv("BLACKLIST_SWEEP_PROBABILITY"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil || p < 0 || p > 1 {
			utils.Logger.Fatalf("Invalid BLACKLIST_SWEEP_PROBABILITY %q: must be a number in [0,1]", raw)
		}
		sweepProbability = p
	}

	limits := defaultRateLimits()
	if raw := os.Getenv("RATE_LIMIT_DEFAULT_LIMIT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.Logger.Fatalf("Invalid RATE_LIMIT_DEFAULT_LIMIT %q", raw)
		}
		window := durationEnv("RATE_LIMIT_DEFAULT_WINDOW", time.Hour)
		for scope := range limits {
			limits[scope] = RateLimitRule{Limit: n, Window: window}
		}
	}

	return &Config{
		AppName:           appName,
		AppPort:           appPort,
		DBUrl:             dbUrl,
		RedisURL:          os.Getenv("REDIS_URL"),
		AccessSecret:      []byte(accessSecret),
		RefreshSecret:     []byte(refreshSecret),
		AccessTokenTTL:    accessTTL,
		RefreshTokenTTL:   refreshTTL,
		SweepProbability:  sweepProbability,
		RateLimits:        limits,
		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
	}
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		utils.Logger.Fatalf("Invalid %s %q: expected a positive Go duration", name, raw)
	}
	return d
}
