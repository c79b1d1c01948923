package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcalder/deckard/internal/scheduler"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	// Per-session caps on the due queue. Zero means unlimited.
	NewCardLimit int
	ReviewLimit  int

	Scheduler scheduler.Config
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	sched := scheduler.DefaultConfig()
	sched.LearningSteps = envDurationsOr("LEARNING_STEPS", sched.LearningSteps)
	sched.RelearnSteps = envDurationsOr("RELEARN_STEPS", sched.RelearnSteps)
	sched.GraduatingInterval = envIntOr("GRADUATING_INTERVAL_DAYS", sched.GraduatingInterval)
	sched.EasyInterval = envIntOr("EASY_INTERVAL_DAYS", sched.EasyInterval)
	sched.EasyBonus = envFloatOr("EASY_BONUS", sched.EasyBonus)
	sched.HardFactor = envFloatOr("HARD_FACTOR", sched.HardFactor)
	sched.LapseMultiplier = envFloatOr("LAPSE_MULTIPLIER", sched.LapseMultiplier)

	return Config{
		Addr:         envOr("ADDR", ":8080"),
		DBPath:       envOr("DB_PATH", "deckard.db"),
		LogLevel:     envOr("LOG_LEVEL", "INFO"),
		NewCardLimit: envIntOr("NEW_CARD_LIMIT", 20),
		ReviewLimit:  envIntOr("REVIEW_LIMIT", 200),
		Scheduler:    sched,
	}
}

// Validate checks that the loaded configuration is usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.NewCardLimit < 0 {
		return fmt.Errorf("NEW_CARD_LIMIT cannot be negative")
	}
	if c.ReviewLimit < 0 {
		return fmt.Errorf("REVIEW_LIMIT cannot be negative")
	}
	return c.Scheduler.Validate()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

// envDurationsOr parses a comma-separated duration list, e.g. "1m,10m".
func envDurationsOr(key string, def []time.Duration) []time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err != nil {
			log.Printf("invalid value for %s=%q, using default %v", key, v, def)
			return def
		}
		out = append(out, d)
	}
	return out
}
