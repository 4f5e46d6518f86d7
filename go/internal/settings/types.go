package settings

import "errors"

// ErrLockedField is returned when a field that is frozen at draft start is changed afterwards
var ErrLockedField = errors.New("field cannot be changed after the draft has started")

// ErrInvalidSettings is returned when an update would leave the settings unusable
var ErrInvalidSettings = errors.New("invalid settings")

// UpdateRequest represents a partial settings update. Nil fields are left untouched.
type UpdateRequest struct {
	MinBid          *int `json:"min_bid,omitempty"`
	StartingBalance *int `json:"starting_balance,omitempty"`
	TeamSize        *int `json:"team_size,omitempty"`
	RoundTimeSec    *int `json:"round_time_sec,omitempty"`
	BidExtensionSec *int `json:"bid_extension_sec,omitempty"`
	RestrictedLimit *int `json:"restricted_limit,omitempty"`
}

// Empty reports whether the request changes nothing
func (r UpdateRequest) Empty() bool {
	return r.MinBid == nil && r.StartingBalance == nil && r.TeamSize == nil &&
		r.RoundTimeSec == nil && r.BidExtensionSec == nil && r.RestrictedLimit == nil
}

// RestrictedLimitAdvisory is returned alongside a successful update that changes
// the restricted limit mid-draft.
const RestrictedLimitAdvisory = "restricted limit changed after draft start; counts already recorded are not rechecked"
