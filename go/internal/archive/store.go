// Package archive keeps an append-only log of auction events in SQLite so a
// finished draft can be reviewed after the process exits.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/sqlutil"
	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS auction_events (
		id           TEXT PRIMARY KEY,
		session_id   TEXT NOT NULL,
		event_type   TEXT NOT NULL,
		occurred_at  INTEGER NOT NULL,
		payload_json TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_auction_events_session ON auction_events (session_id, event_type)`,
}

// Store provides SQLite-backed persistence for auction events
type Store struct {
	sqlDB *sql.DB
}

// Open opens the archive at path and creates the schema if needed
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps inserts in relay order.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(context.Background(), sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func migrate(ctx context.Context, sqlDB *sql.DB) error {
	return sqlutil.Run(ctx, sqlDB, func(tx *sql.Tx) *sql.Tx { return tx }, func(tx *sql.Tx) error {
		for _, m := range migrations {
			if _, err := tx.ExecContext(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying SQLite connection
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Publish appends an event. Re-publishing the same event ID is a no-op, so
// relay retries are safe.
func (s *Store) Publish(ctx context.Context, event events.Envelope) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO auction_events (id, session_id, event_type, occurred_at, payload_json)
		 VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.SessionID, string(event.Type), event.Timestamp.UnixNano(), string(event.Data),
	)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", event.ID, err)
	}
	return nil
}

// Events returns a session's events in the order they were archived
func (s *Store) Events(ctx context.Context, sessionID string) ([]events.Envelope, error) {
	return s.query(ctx,
		`SELECT id, session_id, event_type, occurred_at, payload_json
		 FROM auction_events WHERE session_id = ? ORDER BY rowid`,
		sessionID,
	)
}

// Sales returns the settled rounds of a session in settlement order
func (s *Store) Sales(ctx context.Context, sessionID string) ([]events.RoundSettledPayload, error) {
	rows, err := s.query(ctx,
		`SELECT id, session_id, event_type, occurred_at, payload_json
		 FROM auction_events WHERE session_id = ? AND event_type = ? ORDER BY rowid`,
		sessionID, string(events.TypeRoundSettled),
	)
	if err != nil {
		return nil, err
	}

	sales := make([]events.RoundSettledPayload, 0, len(rows))
	for _, e := range rows {
		var p events.RoundSettledPayload
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, fmt.Errorf("decode sale %s: %w", e.ID, err)
		}
		sales = append(sales, p)
	}
	return sales, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]events.Envelope, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []events.Envelope
	for rows.Next() {
		var (
			e          events.Envelope
			eventType  string
			occurredAt int64
			payload    string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &eventType, &occurredAt, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = events.Type(eventType)
		e.Timestamp = time.Unix(0, occurredAt).UTC()
		e.Data = json.RawMessage(payload)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
