package models

import (
	"time"
)

// DraftPick records one settled round of the auction.
type DraftPick struct {
	Round            int       `json:"round"`
	Pick             int       `json:"pick"`         // pick number in the round
	OverallPick      int       `json:"overall_pick"` // pick number overall
	Nominator        int       `json:"nominator"`    // captain index that nominated
	Winner           int       `json:"winner"`       // captain index that won
	Player           int       `json:"player"`       // player index
	Amount           int       `json:"amount"`
	RemainingBalance int       `json:"remaining_balance"` // winner's balance after paying
	PickedAt         time.Time `json:"picked_at"`
}
