package outbox

import (
	"context"

	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

// LogPublisher writes events to the log. Used when no message bus is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event events.Envelope) error {
	log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("session_id", event.SessionID).
		RawJSON("data", event.Data).
		Msg("publishing event")
	return nil
}
