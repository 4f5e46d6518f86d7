package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mcdev12/auction/go/internal/draft/orchestrator"
	"github.com/mcdev12/auction/go/internal/draft/outbox"
	"github.com/mcdev12/auction/go/internal/importer"
	"github.com/mcdev12/auction/go/internal/models"
	"gopkg.in/yaml.v3"
)

// Config is read from auction.yaml and then overridden by environment variables
type Config struct {
	LogLevel string                 `yaml:"log_level" env:"LOG_LEVEL"`
	Server   ServerConfig           `yaml:"server"`
	Auction  models.AuctionSettings `yaml:"auction"`
	Players  importer.Config        `yaml:"players"`
	NATS     NATSConfig             `yaml:"nats"`
	Archive  ArchiveConfig          `yaml:"archive"`
}

type ServerConfig struct {
	Port           string        `yaml:"port" env:"PORT"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	JWTSecret      string        `yaml:"-" env:"AUTH_JWT_SECRET"`
	TickInterval   time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	EnableMCP      bool          `yaml:"enable_mcp" env:"MCP_ENABLED"`
	SessionID      string        `yaml:"session_id" env:"AUCTION_SESSION_ID"`
}

type NATSConfig struct {
	Enabled   bool                   `yaml:"enabled" env:"NATS_ENABLED"`
	JetStream outbox.JetStreamConfig `yaml:"jetstream"`
}

// ArchiveConfig locates the SQLite event archive. An empty path disables it.
type ArchiveConfig struct {
	Path string `yaml:"path" env:"ARCHIVE_PATH"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:         "8080",
			TickInterval: orchestrator.DefaultTickInterval,
			EnableMCP:    true,
		},
		Auction: models.DefaultAuctionSettings(),
		Players: importer.DefaultConfig(),
		NATS:    NATSConfig{JetStream: outbox.DefaultJetStreamConfig()},
		Archive: ArchiveConfig{Path: "auction_events.db"},
	}
}

// loadConfig layers the YAML file at path (optional) and the environment over the defaults
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Server.TickInterval <= 0 {
		return cfg, fmt.Errorf("tick_interval must be positive")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
