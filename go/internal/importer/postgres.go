package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/auction/go/internal/models"
	"github.com/mcdev12/auction/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"
)

// Schema creates the player table read by PostgresSource and written by the seed tool
const Schema = `
CREATE TABLE IF NOT EXISTS auction_players (
    id           SERIAL PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    restricted   BOOLEAN NOT NULL DEFAULT FALSE,
    recent_score INTEGER,
    profile      JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const listPlayers = `
SELECT name, restricted, recent_score, profile
FROM auction_players
ORDER BY id`

// PlayerProfile is the optional JSONB stats blob attached to a player row
type PlayerProfile struct {
	WN8     *int   `json:"wn8,omitempty"`
	Battles *int   `json:"battles,omitempty"`
	Clan    string `json:"clan,omitempty"`
}

// PostgresSource reads the auction_players table in insertion order
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// playerQueries binds the list query to one transaction
type playerQueries struct {
	tx *sql.Tx
}

func newPlayerQueries(tx *sql.Tx) *playerQueries {
	return &playerQueries{tx: tx}
}

type playerRow struct {
	Name        string
	Restricted  bool
	RecentScore sql.NullInt32
	Profile     pqtype.NullRawMessage
}

func (q *playerQueries) ListPlayers(ctx context.Context) ([]playerRow, error) {
	rows, err := q.tx.QueryContext(ctx, listPlayers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []playerRow
	for rows.Next() {
		var r playerRow
		if err := rows.Scan(&r.Name, &r.Restricted, &r.RecentScore, &r.Profile); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Load implements Source
func (s *PostgresSource) Load(ctx context.Context) ([]models.Player, error) {
	var rows []playerRow
	err := sqlutil.ReadOnly(ctx, s.db, newPlayerQueries, func(q *playerQueries) error {
		var err error
		rows, err = q.ListPlayers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list auction players: %w", err)
	}

	players := make([]models.Player, 0, len(rows))
	for _, r := range rows {
		p, err := toModel(r)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	log.Info().Int("players", len(players)).Msg("player pool read from postgres")
	return players, nil
}

// toModel prefers the recent_score column and falls back to the profile's WN8
func toModel(r playerRow) (models.Player, error) {
	p := models.Player{
		Name:        r.Name,
		Restricted:  r.Restricted,
		RecentScore: sqlutil.FromSqlInt32Default(r.RecentScore, 0),
	}
	if r.RecentScore.Valid || !r.Profile.Valid {
		return p, nil
	}

	var profile PlayerProfile
	if err := json.Unmarshal(r.Profile.RawMessage, &profile); err != nil {
		return p, fmt.Errorf("player %s: decode profile: %w", r.Name, err)
	}
	if profile.WN8 != nil {
		p.RecentScore = *profile.WN8
	}
	return p, nil
}

// ProfileParam encodes a profile for the profile column
func ProfileParam(profile *PlayerProfile) (pqtype.NullRawMessage, error) {
	if profile == nil {
		return pqtype.NullRawMessage{}, nil
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}
