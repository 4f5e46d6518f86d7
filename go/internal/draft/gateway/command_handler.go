package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/mcdev12/auction/go/internal/settings"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 16

// CommandProvider is the write side of the draft
type CommandProvider interface {
	AddCaptain(externalID, name string) (draft.CaptainView, error)
	UpdateSettings(req settings.UpdateRequest) (models.AuctionSettings, []string, error)
	Start() error
	Nominate(externalID, playerName string, startingBid *int) (draft.RoundSummary, error)
	Bid(externalID string, amount int) (draft.RoundSummary, error)
}

type AddCaptainRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type PickRequest struct {
	Player      string `json:"player"`
	StartingBid *int   `json:"starting_bid,omitempty"`
}

type BidRequest struct {
	Amount int `json:"amount"`
}

// CommandHandler handles state-changing HTTP requests
type CommandHandler struct {
	commands CommandProvider
	auth     *Authenticator

	// OnStart runs after a successful start so the auction clock can pick up the first round
	OnStart func()
}

func NewCommandHandler(commands CommandProvider, auth *Authenticator) *CommandHandler {
	return &CommandHandler{commands: commands, auth: auth}
}

// HandleAddCaptain handles POST /api/captains
func (h *CommandHandler) HandleAddCaptain(w http.ResponseWriter, r *http.Request) {
	var req AddCaptainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)
	if req.UserID == "" || req.Name == "" {
		writeBadRequest(w, "user_id and name are required")
		return
	}

	view, err := h.commands.AddCaptain(req.UserID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleUpdateConfig handles PATCH /api/config
func (h *CommandHandler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Empty() {
		writeBadRequest(w, "no settings to update")
		return
	}

	updated, warnings, err := h.commands.UpdateSettings(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{
		Settings:  updated,
		Formatted: settings.Format(updated),
		Warnings:  warnings,
	})
}

// HandleStart handles POST /api/draft/start
func (h *CommandHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := h.commands.Start(); err != nil {
		writeError(w, err)
		return
	}
	if h.OnStart != nil {
		h.OnStart()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// HandlePick handles POST /api/draft/pick
func (h *CommandHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Identify(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req PickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Player) == "" {
		writeBadRequest(w, "player is required")
		return
	}

	summary, err := h.commands.Nominate(userID, req.Player, req.StartingBid)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("player", req.Player).Msg("pick rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleBid handles POST /api/draft/bid
func (h *CommandHandler) HandleBid(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Identify(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req BidRequest
	if !decodeBody(w, r, &req) {
		return
	}

	summary, err := h.commands.Bid(userID, req.Amount)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Int("amount", req.Amount).Msg("bid rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RegisterCommandRoutes registers state-changing routes
func (h *CommandHandler) RegisterCommandRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/captains", h.HandleAddCaptain)
	mux.HandleFunc("PATCH /api/config", h.HandleUpdateConfig)
	mux.HandleFunc("POST /api/draft/start", h.HandleStart)
	mux.HandleFunc("POST /api/draft/pick", h.HandlePick)
	mux.HandleFunc("POST /api/draft/bid", h.HandleBid)
}

// decodeBody decodes a JSON body into v and writes a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeBadRequest(w, "request body is required")
		} else {
			writeBadRequest(w, "invalid request body: "+err.Error())
		}
		return false
	}
	return true
}
