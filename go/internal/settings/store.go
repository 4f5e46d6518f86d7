package settings

import (
	"fmt"

	"github.com/mcdev12/auction/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Store holds the auction settings. It is not safe for concurrent use on its
// own; the draft serializes every access.
type Store struct {
	current models.AuctionSettings
}

// NewStore creates a settings store seeded with initial values
func NewStore(initial models.AuctionSettings) (*Store, error) {
	if err := validate(initial); err != nil {
		return nil, err
	}
	return &Store{current: initial}, nil
}

// Get returns a copy of the current settings
func (s *Store) Get() models.AuctionSettings {
	return s.current
}

// Update applies a partial update. Starting balance and team size are frozen
// once started is true; a rejected update applies nothing. A restricted limit
// change while started is applied and reported through the returned advisories.
func (s *Store) Update(req UpdateRequest, started bool) (models.AuctionSettings, []string, error) {
	if started {
		if req.StartingBalance != nil {
			return s.current, nil, fmt.Errorf("starting_balance: %w", ErrLockedField)
		}
		if req.TeamSize != nil {
			return s.current, nil, fmt.Errorf("team_size: %w", ErrLockedField)
		}
	}

	next := s.current
	apply(&next.MinBid, req.MinBid)
	apply(&next.StartingBalance, req.StartingBalance)
	apply(&next.TeamSize, req.TeamSize)
	apply(&next.RoundTimeSec, req.RoundTimeSec)
	apply(&next.BidExtensionSec, req.BidExtensionSec)
	apply(&next.RestrictedLimit, req.RestrictedLimit)

	if err := validate(next); err != nil {
		return s.current, nil, err
	}

	var advisories []string
	if started && req.RestrictedLimit != nil {
		advisories = append(advisories, RestrictedLimitAdvisory)
		log.Warn().
			Int("restricted_limit", next.RestrictedLimit).
			Msg("restricted limit changed mid-draft")
	}

	s.current = next
	return s.current, advisories, nil
}

func apply(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func validate(s models.AuctionSettings) error {
	if s.MinBid <= 0 {
		return fmt.Errorf("%w: min_bid must be greater than 0", ErrInvalidSettings)
	}
	if s.StartingBalance < 0 {
		return fmt.Errorf("%w: starting_balance cannot be negative", ErrInvalidSettings)
	}
	if s.TeamSize < 0 {
		return fmt.Errorf("%w: team_size cannot be negative", ErrInvalidSettings)
	}
	if s.RoundTimeSec <= 0 {
		return fmt.Errorf("%w: round_time_sec must be greater than 0", ErrInvalidSettings)
	}
	if s.BidExtensionSec < 0 {
		return fmt.Errorf("%w: bid_extension_sec cannot be negative", ErrInvalidSettings)
	}
	if s.RestrictedLimit < 0 {
		return fmt.Errorf("%w: restricted_limit cannot be negative", ErrInvalidSettings)
	}
	return nil
}

// Format renders settings as a human readable block
func Format(s models.AuctionSettings) string {
	return fmt.Sprintf(
		"Min Bid: %d\nStarting Balance: %d\nTeam Size: %d\nRound Time: %d\nBid Add Time: %d\nLegio Limit: %d\n",
		s.MinBid, s.StartingBalance, s.TeamSize, s.RoundTimeSec, s.BidExtensionSec, s.RestrictedLimit,
	)
}
