package outbox

import (
	"context"
	"errors"

	"github.com/mcdev12/auction/go/internal/draft/events"
)

// EventPublisher delivers a single event to a downstream system
type EventPublisher interface {
	Publish(ctx context.Context, event events.Envelope) error
}

// MultiPublisher publishes every event to each publisher in order. All
// publishers are attempted; their errors are joined.
type MultiPublisher []EventPublisher

// Publish implements EventPublisher
func (m MultiPublisher) Publish(ctx context.Context, event events.Envelope) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
