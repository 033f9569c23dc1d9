// Package config reads process settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"manoLogAPI/internal/aggregation"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port               string
	StorageDriver      string
	DatabaseURL        string
	ClerkSecretKey     string
	ClerkWebhookSecret string
	DayBoundary        *time.Location
	DefaultPolicy      aggregation.Policy

	SweepBatchSize     int
	SweepConcurrency   int
	SweepInterval      time.Duration
	AdvanceMaxAttempts int

	AdminToken  string
	MetricsUser string
	MetricsPass string
	PprofSecret string

	RateLimitRPS   float64
	RateLimitBurst int
}

func defaults() Config {
	return Config{
		Port:               "3333",
		StorageDriver:      StoragePostgres,
		DayBoundary:        time.UTC,
		DefaultPolicy:      aggregation.Latest,
		SweepBatchSize:     500,
		SweepConcurrency:   8,
		AdvanceMaxAttempts: 3,
		RateLimitRPS:       5,
		RateLimitBurst:     30,
	}
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := defaults()
	var errs []error

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int, min int) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < min {
			errs = append(errs, fmt.Errorf("%s must be an integer >= %d, got %q", key, min, v))
			return
		}
		*dst = n
	}

	str("PORT", &cfg.Port)
	str("STORAGE_DRIVER", &cfg.StorageDriver)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("CLERK_SECRET_KEY", &cfg.ClerkSecretKey)
	str("CLERK_WEBHOOK_SECRET", &cfg.ClerkWebhookSecret)
	str("ADMIN_TOKEN", &cfg.AdminToken)
	str("METRICS_USER", &cfg.MetricsUser)
	str("METRICS_PASS", &cfg.MetricsPass)
	str("PPROF_SECRET", &cfg.PprofSecret)

	num("STREAK_SWEEP_BATCH_SIZE", &cfg.SweepBatchSize, 1)
	num("STREAK_SWEEP_CONCURRENCY", &cfg.SweepConcurrency, 1)
	num("STREAK_ADVANCE_MAX_ATTEMPTS", &cfg.AdvanceMaxAttempts, 2)
	num("RATE_LIMIT_BURST", &cfg.RateLimitBurst, 1)

	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be a positive number, got %q", v))
		} else {
			cfg.RateLimitRPS = f
		}
	}

	if v := getenv("STREAK_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("STREAK_SWEEP_INTERVAL must be a non-negative duration, got %q", v))
		} else {
			cfg.SweepInterval = d
		}
	}

	if v := getenv("DAY_BOUNDARY_TZ"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DAY_BOUNDARY_TZ: %w", err))
		} else {
			cfg.DayBoundary = loc
		}
	}

	if v := getenv("DEFAULT_POLICY"); v != "" {
		p, err := aggregation.ParsePolicy(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEFAULT_POLICY: %w", err))
		} else {
			cfg.DefaultPolicy = p
		}
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is not set"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.StorageDriver))
	}

	if cfg.ClerkSecretKey == "" {
		errs = append(errs, errors.New("CLERK_SECRET_KEY environment variable is not set"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
