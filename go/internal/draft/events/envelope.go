package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type represents the type of draft event
type Type string

const (
	TypeCaptainAdded      Type = "CaptainAdded"
	TypeSettingsUpdated   Type = "SettingsUpdated"
	TypeDraftStarted      Type = "DraftStarted"
	TypeNominationStarted Type = "NominationStarted"
	TypePlayerNominated   Type = "PlayerNominated"
	TypeBidPlaced         Type = "BidPlaced"
	TypeBidExtended       Type = "BidExtended"
	TypeRoundTick         Type = "RoundTick"
	TypeRoundSettled      Type = "RoundSettled"
	TypeDraftCompleted    Type = "DraftCompleted"
)

// Envelope is the base structure for all draft events
type Envelope struct {
	ID        string          `json:"id"`         // Event UUID
	SessionID string          `json:"session_id"` // Auction session UUID
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New builds an envelope around a JSON encoded payload
func New(sessionID string, eventType Type, at time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: at.UTC(),
		Data:      data,
	}, nil
}

// Sink receives draft events. Emit is called while the draft holds its lock,
// so implementations must not block and must not call back into the draft.
type Sink interface {
	Emit(event Envelope)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(event Envelope)

// Emit implements Sink
func (f SinkFunc) Emit(event Envelope) { f(event) }

// Fanout delivers every event to each sink in order
type Fanout []Sink

// Emit implements Sink
func (f Fanout) Emit(event Envelope) {
	for _, s := range f {
		if s != nil {
			s.Emit(event)
		}
	}
}

// Discard drops all events
var Discard Sink = SinkFunc(func(Envelope) {})

// ParsePayload parses event data into the matching payload struct
func ParsePayload(event Envelope) (any, error) {
	var target any
	switch event.Type {
	case TypeCaptainAdded:
		target = &CaptainAddedPayload{}
	case TypeSettingsUpdated:
		target = &SettingsUpdatedPayload{}
	case TypeDraftStarted:
		target = &DraftStartedPayload{}
	case TypeNominationStarted:
		target = &NominationStartedPayload{}
	case TypePlayerNominated:
		target = &PlayerNominatedPayload{}
	case TypeBidPlaced:
		target = &BidPlacedPayload{}
	case TypeBidExtended:
		target = &BidExtendedPayload{}
	case TypeRoundTick:
		target = &RoundTickPayload{}
	case TypeRoundSettled:
		target = &RoundSettledPayload{}
	case TypeDraftCompleted:
		target = &DraftCompletedPayload{}
	default:
		return nil, nil // Unknown event type
	}
	if err := json.Unmarshal(event.Data, target); err != nil {
		return nil, err
	}
	return target, nil
}
