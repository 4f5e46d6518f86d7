package models

// DraftPhase defines where the auction state machine currently is.
type DraftPhase string

const (
	DraftPhaseIdle       DraftPhase = "IDLE"
	DraftPhaseNominating DraftPhase = "NOMINATING"
	DraftPhaseBidding    DraftPhase = "BIDDING"
	DraftPhaseSettling   DraftPhase = "SETTLING"
	DraftPhaseCompleted  DraftPhase = "COMPLETED"
)

// AuctionSettings holds the tunable auction parameters.
type AuctionSettings struct {
	MinBid          int `json:"min_bid" yaml:"min_bid"`
	StartingBalance int `json:"starting_balance" yaml:"starting_balance"`
	TeamSize        int `json:"team_size" yaml:"team_size"`
	RoundTimeSec    int `json:"round_time_sec" yaml:"round_time_sec"`
	BidExtensionSec int `json:"bid_extension_sec" yaml:"bid_extension_sec"`
	RestrictedLimit int `json:"restricted_limit" yaml:"restricted_limit"`
}

// DefaultAuctionSettings returns the settings a fresh auction starts with.
func DefaultAuctionSettings() AuctionSettings {
	return AuctionSettings{
		MinBid:          10,
		StartingBalance: 200,
		TeamSize:        8,
		RoundTimeSec:    20,
		BidExtensionSec: 5,
		RestrictedLimit: 2,
	}
}
