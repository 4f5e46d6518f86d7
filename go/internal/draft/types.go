package draft

import (
	"math/rand"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/models"
)

// Options configures a new Draft
type Options struct {
	Settings  models.AuctionSettings
	Clock     clockwork.Clock // defaults to the real clock
	Rand      *rand.Rand      // nomination order shuffle; defaults to a time seeded source
	Sink      events.Sink     // defaults to events.Discard
	SessionID string          // defaults to a random UUID
}

// PlayerInfo describes the nominated player in a round summary
type PlayerInfo struct {
	Name        string `json:"name"`
	RecentScore int    `json:"recent_score"`
	ScoreColor  int    `json:"score_color"`
	Restricted  bool   `json:"restricted"`
}

// RoundSummary is the live projection of the current round
type RoundSummary struct {
	Phase            models.DraftPhase `json:"phase"`
	Round            int               `json:"round"`
	TotalRounds      int               `json:"total_rounds"`
	Nominator        string            `json:"nominator,omitempty"`
	TimeRemainingSec int               `json:"time_remaining_sec"`
	Player           *PlayerInfo       `json:"player,omitempty"`
	StartingBid      int               `json:"starting_bid"`
	Leader           string            `json:"leader,omitempty"`
	CurrentBid       int               `json:"current_bid"`
}

// CaptainView is the read projection of a captain
type CaptainView struct {
	Name            string   `json:"name"`
	Balance         int      `json:"balance"`
	RosterSize      int      `json:"roster_size"`
	RestrictedCount int      `json:"restricted_count"`
	Players         []string `json:"players"`
	Description     string   `json:"description"`
}

// TeamResult is one captain's roster in acquisition order
type TeamResult = events.TeamRoster

// PoolEntry is the read projection of a player in the pool
type PoolEntry struct {
	Name        string `json:"name"`
	Restricted  bool   `json:"restricted"`
	Picked      bool   `json:"picked"`
	Owner       string `json:"owner,omitempty"`
	RecentScore int    `json:"recent_score"`
	ScoreColor  int    `json:"score_color"`
}

// TickStatus reports what a tick did so the clock can decide whether to keep running
type TickStatus struct {
	Phase            models.DraftPhase
	TimeRemainingSec int
	Extended         bool
	Settled          *models.DraftPick
}

// Completed reports whether the draft has finished
func (s TickStatus) Completed() bool {
	return s.Phase == models.DraftPhaseCompleted
}
