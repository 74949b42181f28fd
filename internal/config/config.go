// Package config reads server settings from the environment, loading a .env
// file first when one is present.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stresslens/internal/health"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   []byte
	AppEnv      string

	EncryptionKey []byte
	BlindIndexKey []byte

	RedisAddr          string
	PredictionCacheTTL time.Duration

	Location         *time.Location
	TrendDefaultDays int
	StressScale      health.StressScale

	Otel OtelConfig
}

type OtelConfig struct {
	Enabled     bool
	Exporter    string
	Endpoint    string
	SampleRatio float64
}

func (c Config) Production() bool { return c.AppEnv == "production" }

// SealingEnabled reports whether both email keys were configured.
func (c Config) SealingEnabled() bool {
	return len(c.EncryptionKey) > 0 && len(c.BlindIndexKey) > 0
}

// Load reads .env (if any) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Errors name the offending variable.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:        get("PORT", "8080"),
		DatabaseURL: get("DATABASE_URL", ""),
		AppEnv:      strings.ToLower(get("APP_ENV", "development")),
		RedisAddr:   get("REDIS_ADDR", ""),
	}

	secret := get("JWT_SECRET", "")
	if secret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWTSecret = []byte(secret)

	var err error
	if cfg.EncryptionKey, err = hexKey("ENCRYPTION_KEY", get("ENCRYPTION_KEY", "")); err != nil {
		return Config{}, err
	}
	if cfg.BlindIndexKey, err = hexKey("BLIND_INDEX_KEY", get("BLIND_INDEX_KEY", "")); err != nil {
		return Config{}, err
	}
	if (cfg.EncryptionKey == nil) != (cfg.BlindIndexKey == nil) {
		return Config{}, fmt.Errorf("ENCRYPTION_KEY and BLIND_INDEX_KEY must be set together")
	}

	if cfg.PredictionCacheTTL, err = time.ParseDuration(get("PREDICTION_CACHE_TTL", "60s")); err != nil {
		return Config{}, fmt.Errorf("PREDICTION_CACHE_TTL: %w", err)
	}
	if cfg.PredictionCacheTTL < 0 {
		return Config{}, fmt.Errorf("PREDICTION_CACHE_TTL must not be negative")
	}

	if cfg.Location, err = time.LoadLocation(get("TIMEZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("TIMEZONE: %w", err)
	}

	if cfg.TrendDefaultDays, err = strconv.Atoi(get("TREND_DEFAULT_DAYS", strconv.Itoa(health.DefaultWindowDays))); err != nil {
		return Config{}, fmt.Errorf("TREND_DEFAULT_DAYS: %w", err)
	}
	if cfg.TrendDefaultDays < 1 || cfg.TrendDefaultDays > 365 {
		return Config{}, fmt.Errorf("TREND_DEFAULT_DAYS must be between 1 and 365")
	}

	if cfg.StressScale, err = health.ParseStressScale(get("STRESS_INPUT_SCALE", "")); err != nil {
		return Config{}, fmt.Errorf("STRESS_INPUT_SCALE: %w", err)
	}

	cfg.Otel = OtelConfig{
		Enabled:  truthy(get("OTEL_ENABLED", "")),
		Exporter: strings.ToLower(get("OTEL_EXPORTER", "stdout")),
		Endpoint: get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
	if cfg.Otel.Exporter != "stdout" && cfg.Otel.Exporter != "otlp" {
		return Config{}, fmt.Errorf("OTEL_EXPORTER must be stdout or otlp")
	}
	if cfg.Otel.SampleRatio, err = strconv.ParseFloat(get("OTEL_SAMPLER_RATIO", "1"), 64); err != nil {
		return Config{}, fmt.Errorf("OTEL_SAMPLER_RATIO: %w", err)
	}
	cfg.Otel.SampleRatio = min(1, max(0, cfg.Otel.SampleRatio))

	return cfg, nil
}

func hexKey(name, raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(key))
	}
	return key, nil
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
