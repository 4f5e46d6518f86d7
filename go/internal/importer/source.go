// Package importer loads the ordered player pool a draft starts from.
package importer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcdev12/auction/go/internal/models"
)

// Source yields the player pool in import order. The order is the order
// autocomplete lists players in.
type Source interface {
	Load(ctx context.Context) ([]models.Player, error)
}

// Config selects and configures a Source
type Config struct {
	Kind string `yaml:"kind" env:"PLAYERS_SOURCE"` // "csv" or "postgres"
	Path string `yaml:"path" env:"PLAYERS_CSV"`
}

// DefaultConfig reads players.csv from the working directory
func DefaultConfig() Config {
	return Config{Kind: "csv", Path: "players.csv"}
}

// New builds the Source named by cfg. db is only used by the postgres kind.
func New(cfg Config, db *sql.DB) (Source, error) {
	switch cfg.Kind {
	case "", "csv":
		return &CSVSource{Path: cfg.Path}, nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres player source needs a database")
		}
		return NewPostgresSource(db), nil
	default:
		return nil, fmt.Errorf("unknown player source %q", cfg.Kind)
	}
}
