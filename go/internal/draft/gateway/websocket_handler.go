package gateway

import (
	"net/http"
	"time"

	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

// SnapshotType tags the round summary sent to a client right after it connects
const SnapshotType events.Type = "RoundSnapshot"

// SnapshotProvider supplies the state a new client starts from
type SnapshotProvider interface {
	SessionID() string
	RoundSummary() draft.RoundSummary
}

// WebSocketHandler handles WebSocket upgrade requests for the live draft stream
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	snapshots         SnapshotProvider
	auth              *Authenticator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, snapshots SnapshotProvider, auth *Authenticator) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		snapshots:         snapshots,
		auth:              auth,
	}
}

// HandleDraftConnection handles GET /ws/draft. Spectators without an identity
// are allowed; the stream carries no private data.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Identify(r)
	if err != nil {
		userID = "anonymous"
	}
	sessionID := h.snapshots.SessionID()

	snapshot, err := events.New(sessionID, SnapshotType, time.Now(), h.snapshots.RoundSummary())
	if err != nil {
		log.Error().Err(err).Msg("failed to build snapshot")
		http.Error(w, "snapshot unavailable", http.StatusInternalServerError)
		return
	}

	if _, err := h.connectionManager.UpgradeConnection(w, r, userID, sessionID, snapshot); err != nil {
		// The client has already been answered.
		log.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("user_id", userID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats handles GET /ws/stats
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/draft", h.HandleDraftConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
