package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/mcdev12/auction/go/internal/settings"
)

const defaultSearchLimit = 25

// StateProvider is the read side of the draft
type StateProvider interface {
	SessionID() string
	Settings() models.AuctionSettings
	RoundSummary() draft.RoundSummary
	Captains() []draft.CaptainView
	Captain(externalID string) (draft.CaptainView, error)
	SearchPlayers(prefix string) []string
	Players() []draft.PoolEntry
	Results() []draft.TeamResult
	Picks() []events.RoundSettledPayload
	MaxBid(externalID string) (int, error)
}

// HistoryProvider returns the settled rounds of a session from durable storage
type HistoryProvider interface {
	Sales(ctx context.Context, sessionID string) ([]events.RoundSettledPayload, error)
}

// SettingsResponse pairs the settings with their display form
type SettingsResponse struct {
	Settings  models.AuctionSettings `json:"settings"`
	Formatted string                 `json:"formatted"`
	Warnings  []string               `json:"warnings,omitempty"`
}

// MeResponse is the caller's own captain view
type MeResponse struct {
	draft.CaptainView
	MaxBid int `json:"max_bid"`
}

// ResultsResponse lists every roster in captain registration order
type ResultsResponse struct {
	Completed bool               `json:"completed"`
	Teams     []draft.TeamResult `json:"teams"`
}

// SaleResponse is one settled round in the history
type SaleResponse struct {
	events.RoundSettledPayload
	Message string `json:"message"`
}

// StateHandler handles read-only HTTP requests
type StateHandler struct {
	state   StateProvider
	history HistoryProvider // optional; the in-memory picks are served without it
	auth    *Authenticator
}

func NewStateHandler(state StateProvider, history HistoryProvider, auth *Authenticator) *StateHandler {
	return &StateHandler{state: state, history: history, auth: auth}
}

// HandleGetConfig handles GET /api/config
func (h *StateHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.state.Settings()
	writeJSON(w, http.StatusOK, SettingsResponse{Settings: cfg, Formatted: settings.Format(cfg)})
}

// HandleGetRound handles GET /api/draft/round
func (h *StateHandler) HandleGetRound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.RoundSummary())
}

// HandleGetCaptains handles GET /api/captains
func (h *StateHandler) HandleGetCaptains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Captains())
}

// HandleGetMe handles GET /api/me
func (h *StateHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Identify(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.state.Captain(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	maxBid, err := h.state.MaxBid(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{CaptainView: view, MaxBid: maxBid})
}

// HandleSearchPlayers handles GET /api/players?prefix=&limit=
func (h *StateHandler) HandleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	names := h.state.SearchPlayers(r.URL.Query().Get("prefix"))
	if len(names) > limit {
		names = names[:limit]
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// HandleListPlayers handles GET /api/players/all: the whole pool with
// picked flags and owners
func (h *StateHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	players := h.state.Players()
	if players == nil {
		players = []draft.PoolEntry{}
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleGetTeams handles GET /api/teams
func (h *StateHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Results())
}

// HandleGetResults handles GET /api/draft/results
func (h *StateHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ResultsResponse{
		Completed: h.state.RoundSummary().Phase == models.DraftPhaseCompleted,
		Teams:     h.state.Results(),
	})
}

// HandleGetHistory handles GET /api/draft/history
func (h *StateHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	var sales []events.RoundSettledPayload
	if h.history == nil {
		sales = h.state.Picks()
	} else {
		var err error
		sales, err = h.history.Sales(r.Context(), h.state.SessionID())
		if err != nil {
			writeError(w, err)
			return
		}
	}
	out := make([]SaleResponse, len(sales))
	for i, s := range sales {
		out[i] = SaleResponse{RoundSettledPayload: s, Message: s.Message()}
	}
	writeJSON(w, http.StatusOK, out)
}

// RegisterStateRoutes registers read-only routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/config", h.HandleGetConfig)
	mux.HandleFunc("GET /api/captains", h.HandleGetCaptains)
	mux.HandleFunc("GET /api/me", h.HandleGetMe)
	mux.HandleFunc("GET /api/players", h.HandleSearchPlayers)
	mux.HandleFunc("GET /api/players/all", h.HandleListPlayers)
	mux.HandleFunc("GET /api/teams", h.HandleGetTeams)
	mux.HandleFunc("GET /api/draft/round", h.HandleGetRound)
	mux.HandleFunc("GET /api/draft/results", h.HandleGetResults)
	mux.HandleFunc("GET /api/draft/history", h.HandleGetHistory)
}
