package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tradeterm-lab/tradeterm/internal/store"
	"github.com/tradeterm-lab/tradeterm/pkg/errors"
)

// FeedKind selects which live-feed implementation backs selection fetches.
type FeedKind string

const (
	// FeedRouter classifies each asset through the catalogs and routes it to
	// the matching provider, falling back to the agent server.
	FeedRouter FeedKind = "router"
	// FeedAgent sends every fetch to the remote agent server.
	FeedAgent FeedKind = "agent"
	// FeedBinance fetches everything from Binance directly.
	FeedBinance FeedKind = "binance"
	// FeedPolygon fetches everything from Polygon directly.
	FeedPolygon FeedKind = "polygon"
	// FeedNone disables live fetches; only the local cache is shown.
	FeedNone FeedKind = "none"
)

// FeedConfig configures the live-feed layer.
type FeedConfig struct {
	Kind          FeedKind `yaml:"kind" validate:"omitempty,oneof=router agent binance polygon none"`
	AgentURL      string   `yaml:"agent_url" validate:"required_if=Kind agent"`
	PolygonAPIKey string   `yaml:"polygon_api_key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Config holds all application configuration.
type Config struct {
	CacheDir string                `yaml:"cache_dir" validate:"required"`
	Manifest []store.ManifestEntry `yaml:"manifest" validate:"omitempty,dive"`
	Feed     FeedConfig            `yaml:"feed"`
	Log      LogConfig             `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		CacheDir: "cache",
		Feed: FeedConfig{
			Kind: FeedNone,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "read config", err)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "parse config", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TRADETERM_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	if v := os.Getenv("TRADETERM_AGENT_URL"); v != "" {
		cfg.Feed.AgentURL = v
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Feed.PolygonAPIKey = v
	}

	if cfg.Feed.Kind == "" {
		cfg.Feed.Kind = FeedNone
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return cfg, nil
}
