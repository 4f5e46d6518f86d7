package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auction/go/internal/archive"
	"github.com/mcdev12/auction/go/internal/dbconfig"
	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/draft/gateway"
	"github.com/mcdev12/auction/go/internal/draft/orchestrator"
	"github.com/mcdev12/auction/go/internal/draft/outbox"
	"github.com/mcdev12/auction/go/internal/importer"
	"github.com/mcdev12/auction/go/internal/mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Draft   *draft.Draft
	Relay   *outbox.Relay
	Clock   *orchestrator.AuctionClock
	Gateway *gateway.Service
	Health  *outbox.HealthChecker
	MCP     *mcp.Server // nil when disabled

	closers []func() error
}

// Close releases the archive, NATS and database connections
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Error().Err(err).Msg("failed to close resource")
		}
	}
}

// setupServices wires the draft to its event consumers:
// draft → (connection manager, relay → (log, archive, JetStream))
func setupServices(ctx context.Context, cfg Config) (*Services, error) {
	s := &Services{}
	fail := func(err error) (*Services, error) {
		s.Close()
		return nil, err
	}

	metrics := outbox.NewInMemoryMetrics()
	publishers := outbox.MultiPublisher{outbox.NewLogPublisher()}

	var history gateway.HistoryProvider
	if cfg.Archive.Path != "" {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return fail(fmt.Errorf("open event archive: %w", err))
		}
		s.closers = append(s.closers, store.Close)
		publishers = append(publishers, store)
		history = store
		log.Info().Str("path", cfg.Archive.Path).Msg("event archive enabled")
	}

	var natsConn outbox.ConnStatus
	if cfg.NATS.Enabled {
		js, err := outbox.NewJetStreamPublisher(ctx, cfg.NATS.JetStream)
		if err != nil {
			return fail(fmt.Errorf("connect JetStream: %w", err))
		}
		s.closers = append(s.closers, js.Close)
		publishers = append(publishers, js)
		natsConn = js.Conn()
	}

	s.Relay = outbox.NewRelay(publishers, outbox.DefaultConfig(), metrics)
	s.Health = outbox.NewHealthChecker(s.Relay, natsConn, metrics)

	connectionManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	d, err := draft.NewDraft(draft.Options{
		Settings:  cfg.Auction,
		Sink:      events.Fanout{connectionManager, s.Relay},
		SessionID: cfg.Server.SessionID,
	})
	if err != nil {
		return fail(fmt.Errorf("create draft: %w", err))
	}
	s.Draft = d

	if err := loadPlayers(ctx, cfg.Players, d, s); err != nil {
		return fail(err)
	}

	s.Clock = orchestrator.NewAuctionClock(d, clockwork.NewRealClock(), cfg.Server.TickInterval)
	s.Gateway = gateway.NewService(connectionManager, d, history, gateway.NewAuthenticator(cfg.Server.JWTSecret))
	s.Gateway.OnStart(s.Clock.Wake)

	if cfg.Server.EnableMCP {
		s.MCP = mcpserver.NewServer(d)
	}

	log.Info().Str("session_id", d.SessionID()).Msg("services ready")
	return s, nil
}

func loadPlayers(ctx context.Context, cfg importer.Config, d *draft.Draft, s *Services) error {
	var db *sql.DB
	if cfg.Kind == "postgres" {
		var err error
		db, err = setupDatabase(dbconfig.NewConfigFromEnv())
		if err != nil {
			return err
		}
		s.closers = append(s.closers, db.Close)
	}

	source, err := importer.New(cfg, db)
	if err != nil {
		return err
	}
	players, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	if _, err := d.LoadPlayers(players); err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	return nil
}
