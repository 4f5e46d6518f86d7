package events

import (
	"fmt"
	"time"

	"github.com/mcdev12/auction/go/internal/models"
)

// Event payload types that are shared between the draft, the outbox and the gateway

// CaptainAddedPayload is the payload for a CaptainAdded event
type CaptainAddedPayload struct {
	Name    string `json:"name"`
	Balance int    `json:"balance"`
}

// SettingsUpdatedPayload is the payload for a SettingsUpdated event
type SettingsUpdatedPayload struct {
	Settings   models.AuctionSettings `json:"settings"`
	Advisories []string               `json:"advisories,omitempty"`
}

// DraftStartedPayload is the payload for a DraftStarted event
type DraftStartedPayload struct {
	StartedAt       time.Time `json:"started_at"`
	TotalRounds     int       `json:"total_rounds"`
	TotalPicks      int       `json:"total_picks"`
	NominationOrder []string  `json:"nomination_order"`
}

// NominationStartedPayload is the payload for a NominationStarted event
type NominationStartedPayload struct {
	Round       int    `json:"round"`
	Pick        int    `json:"pick"`
	OverallPick int    `json:"overall_pick"`
	Captain     string `json:"captain"`
}

// PlayerNominatedPayload is the payload for a PlayerNominated event
type PlayerNominatedPayload struct {
	Round        int       `json:"round"`
	Pick         int       `json:"pick"`
	Captain      string    `json:"captain"`
	Player       string    `json:"player"`
	StartingBid  int       `json:"starting_bid"`
	StartedAt    time.Time `json:"started_at"`
	TimeoutAt    time.Time `json:"timeout_at"`
	RoundTimeSec int       `json:"round_time_sec"`
}

// BidPlacedPayload is the payload for a BidPlaced event
type BidPlacedPayload struct {
	Captain  string    `json:"captain"`
	Player   string    `json:"player"`
	Amount   int       `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// Message renders the bid announcement
func (p BidPlacedPayload) Message() string {
	return fmt.Sprintf("%s bid %d for %s", p.Captain, p.Amount, p.Player)
}

// BidExtendedPayload is the payload for a BidExtended event
type BidExtendedPayload struct {
	Player        string    `json:"player"`
	ExtendedBySec int       `json:"extended_by_sec"`
	TimeoutAt     time.Time `json:"timeout_at"`
}

// RoundTickPayload contains periodic countdown updates for live displays
type RoundTickPayload struct {
	Round            int    `json:"round"`
	Player           string `json:"player"`
	Leader           string `json:"leader"`
	CurrentBid       int    `json:"current_bid"`
	TimeRemainingSec int    `json:"time_remaining_sec"`
}

// RoundSettledPayload is the payload for a RoundSettled event
type RoundSettledPayload struct {
	Round            int       `json:"round"`
	Pick             int       `json:"pick"`
	OverallPick      int       `json:"overall_pick"`
	Captain          string    `json:"captain"`
	Player           string    `json:"player"`
	Amount           int       `json:"amount"`
	RemainingBalance int       `json:"remaining_balance"`
	SettledAt        time.Time `json:"settled_at"`
}

// Message renders the sale announcement
func (p RoundSettledPayload) Message() string {
	return fmt.Sprintf("%s bought %s for $%d", p.Captain, p.Player, p.Amount)
}

// TeamRoster is one captain's roster in acquisition order. Captain names
// need not be unique, so rosters are listed in registration order rather
// than keyed by name.
type TeamRoster struct {
	Captain string   `json:"captain"`
	Players []string `json:"players"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event
type DraftCompletedPayload struct {
	CompletedAt time.Time    `json:"completed_at"`
	Duration    string       `json:"duration"`
	TotalPicks  int          `json:"total_picks"`
	Teams       []TeamRoster `json:"teams"`
}
