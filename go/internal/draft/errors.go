package draft

import (
	"errors"
	"fmt"

	"github.com/mcdev12/auction/go/internal/roster"
	"github.com/mcdev12/auction/go/internal/settings"
)

// Rule violations. Every one of them leaves the draft untouched.
var (
	ErrDuplicateCaptain      = roster.ErrDuplicateCaptain
	ErrUnknownCaptain        = roster.ErrUnknownCaptain
	ErrLockedField           = settings.ErrLockedField
	ErrInvalidSettings       = settings.ErrInvalidSettings
	ErrInvalidPreconditions  = errors.New("draft cannot start")
	ErrAlreadyStarted        = errors.New("draft already started")
	ErrWrongPhase            = errors.New("only pick before the round starts")
	ErrNotYourTurn           = errors.New("not your turn to nominate")
	ErrUnknownOrPickedPlayer = errors.New("unknown or already picked player")
	ErrBidOutOfRange         = errors.New("starting bid out of range")
	ErrNoActiveAuction       = errors.New("no auction running")
	ErrBidTooLow             = errors.New("under current top bid")
	ErrInsufficientFunds     = errors.New("not enough funds")
	ErrRosterFull            = errors.New("roster is already full")
)

// InsufficientFundsError carries the bidder's own max bid so it can be shown
// back to them. It matches ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	MaxBid int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("not enough funds, your max bid is: %d", e.MaxBid)
}

// Is reports whether target is ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// BidOutOfRangeError carries the accepted starting bid range for the nominator
type BidOutOfRangeError struct {
	Min int
	Max int
}

func (e *BidOutOfRangeError) Error() string {
	return fmt.Sprintf("starting bid must be between %d and %d", e.Min, e.Max)
}

// Is reports whether target is ErrBidOutOfRange
func (e *BidOutOfRangeError) Is(target error) bool {
	return target == ErrBidOutOfRange
}
