package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	MaxBid  *int   `json:"max_bid,omitempty"`
	MinBid  *int   `json:"min_bid,omitempty"`
}

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{ErrUnauthenticated, "UNAUTHENTICATED", http.StatusUnauthorized},
	{draft.ErrDuplicateCaptain, "DUPLICATE_CAPTAIN", http.StatusConflict},
	{draft.ErrLockedField, "LOCKED_FIELD", http.StatusConflict},
	{draft.ErrInvalidSettings, "INVALID_SETTINGS", http.StatusBadRequest},
	{draft.ErrInvalidPreconditions, "INVALID_PRECONDITIONS", http.StatusPreconditionFailed},
	{draft.ErrAlreadyStarted, "ALREADY_STARTED", http.StatusConflict},
	{draft.ErrNotYourTurn, "NOT_YOUR_TURN", http.StatusForbidden},
	{draft.ErrWrongPhase, "WRONG_PHASE", http.StatusConflict},
	{draft.ErrBidOutOfRange, "BID_OUT_OF_RANGE", http.StatusUnprocessableEntity},
	{draft.ErrUnknownOrPickedPlayer, "UNKNOWN_OR_PICKED_PLAYER", http.StatusNotFound},
	{draft.ErrNoActiveAuction, "NO_ACTIVE_AUCTION", http.StatusConflict},
	{draft.ErrBidTooLow, "BID_TOO_LOW", http.StatusUnprocessableEntity},
	{draft.ErrInsufficientFunds, "INSUFFICIENT_FUNDS", http.StatusPaymentRequired},
	{draft.ErrUnknownCaptain, "UNKNOWN_CAPTAIN", http.StatusNotFound},
	{draft.ErrRosterFull, "ROSTER_FULL", http.StatusConflict},
}

// toErrorResponse maps a draft error to its status and body
func toErrorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	status := http.StatusInternalServerError
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			resp.Code, status = c.code, c.status
			break
		}
	}

	var funds *draft.InsufficientFundsError
	if errors.As(err, &funds) {
		resp.MaxBid = &funds.MaxBid
	}
	var rangeErr *draft.BidOutOfRangeError
	if errors.As(err, &rangeErr) {
		resp.MinBid = &rangeErr.Min
		resp.MaxBid = &rangeErr.Max
	}
	return status, resp
}

func writeError(w http.ResponseWriter, err error) {
	status, resp := toErrorResponse(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, resp)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "BAD_REQUEST", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
