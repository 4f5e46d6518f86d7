package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// DraftApp is everything the HTTP surface needs from the draft
type DraftApp interface {
	StateProvider
	CommandProvider
}

// Service is the presentation layer: HTTP commands and reads plus the live WebSocket stream
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	commandHandler    *CommandHandler
	rpcService        *RPCService
}

// NewService creates the gateway over app. The connection manager is created
// first by the caller because it is also the draft's event sink. history may be nil.
func NewService(connectionManager *ConnectionManager, app DraftApp, history HistoryProvider, auth *Authenticator) *Service {
	return &Service{
		connectionManager: connectionManager,
		wsHandler:         NewWebSocketHandler(connectionManager, app, auth),
		stateHandler:      NewStateHandler(app, history, auth),
		commandHandler:    NewCommandHandler(app, auth),
		rpcService:        NewRPCService(app, auth),
	}
}

// OnStart registers a hook run after the draft is started over HTTP or RPC
func (s *Service) OnStart(fn func()) {
	s.commandHandler.OnStart = fn
	s.rpcService.OnStart = fn
}

// Start runs the connection manager until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting draft gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("draft gateway service stopped")
	return nil
}

// RegisterRoutes registers the HTTP, Connect and WebSocket routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	s.commandHandler.RegisterCommandRoutes(mux)
	mux.Handle(s.rpcService.Handler())
	log.Info().Msg("draft gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
