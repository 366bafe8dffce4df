// Package config loads and validates runtime configuration at startup.
// Values come from the environment (or an optional config file via viper);
// fail-fast: if a required value is missing, the process exits.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the campaign service.
type Config struct {
	DatabaseURL string
	RedisURL    string

	QdrantURL         string
	EmbedderURL       string
	EmbedderModel     string
	EmbedderDimension int

	MatcherURL string

	TickInterval     time.Duration // how often the fleet tick fires
	CampaignTimeout  time.Duration // budget for one campaign's cycle
	CandidateTimeout time.Duration // budget for one candidate's I/O
	LockTTL          time.Duration // per-campaign lock expiry
}

// envBindings maps viper keys to their environment variables.
var envBindings = map[string]string{
	"database-url":       "DATABASE_URL",
	"redis-url":          "REDIS_URL",
	"qdrant-url":         "QDRANT_URL",
	"embedder-url":       "EMBEDDER_URL",
	"embedder-model":     "EMBEDDER_MODEL",
	"embedder-dimension": "EMBEDDER_DIMENSION",
	"matcher-url":        "MATCHER_URL",
	"tick-interval":      "TICK_INTERVAL",
	"campaign-timeout":   "CAMPAIGN_TIMEOUT",
	"candidate-timeout":  "CANDIDATE_TIMEOUT",
	"lock-ttl":           "LOCK_TTL",
}

// Load reads configuration and returns a validated Config.
func Load() (*Config, error) {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	viper.SetDefault("embedder-model", "text-embedding-3-small")
	viper.SetDefault("embedder-dimension", 1536)
	viper.SetDefault("tick-interval", "15m")
	viper.SetDefault("campaign-timeout", "2m")
	viper.SetDefault("candidate-timeout", "10s")
	viper.SetDefault("lock-ttl", "5m")

	cfg := &Config{
		DatabaseURL:       viper.GetString("database-url"),
		RedisURL:          viper.GetString("redis-url"),
		QdrantURL:         viper.GetString("qdrant-url"),
		EmbedderURL:       viper.GetString("embedder-url"),
		EmbedderModel:     viper.GetString("embedder-model"),
		EmbedderDimension: viper.GetInt("embedder-dimension"),
		MatcherURL:        viper.GetString("matcher-url"),
		TickInterval:      viper.GetDuration("tick-interval"),
		CampaignTimeout:   viper.GetDuration("campaign-timeout"),
		CandidateTimeout:  viper.GetDuration("candidate-timeout"),
		LockTTL:           viper.GetDuration("lock-ttl"),
	}

	for name, value := range map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
		"QDRANT_URL":   cfg.QdrantURL,
		"EMBEDDER_URL": cfg.EmbedderURL,
		"MATCHER_URL":  cfg.MatcherURL,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	if cfg.EmbedderDimension < 1 {
		return nil, fmt.Errorf("EMBEDDER_DIMENSION must be a positive integer, got %d", cfg.EmbedderDimension)
	}
	if cfg.TickInterval < time.Minute {
		return nil, fmt.Errorf("TICK_INTERVAL must be at least 1m, got %s", cfg.TickInterval)
	}
	if cfg.CampaignTimeout <= 0 || cfg.CandidateTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be positive")
	}
	if cfg.LockTTL < cfg.CampaignTimeout {
		return nil, fmt.Errorf("LOCK_TTL (%s) must cover CAMPAIGN_TIMEOUT (%s)", cfg.LockTTL, cfg.CampaignTimeout)
	}

	return cfg, nil
}
