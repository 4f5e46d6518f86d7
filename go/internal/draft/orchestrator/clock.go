// Package orchestrator drives the auction countdown. The draft itself is
// passive; the AuctionClock ticks it at a fixed interval until it completes.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auction/go/internal/draft"
	"github.com/rs/zerolog/log"
)

// DefaultTickInterval is how often the countdown is advanced
const DefaultTickInterval = time.Second

// Ticker is what the clock needs from the draft
type Ticker interface {
	Tick() draft.TickStatus
}

// AuctionClock periodically ticks a draft. Bid extensions and round
// settlement happen inside Tick, so one goroutine owns all time-driven
// transitions.
type AuctionClock struct {
	draft      Ticker
	clock      clockwork.Clock
	interval   time.Duration
	instanceID string
	wakeCh     chan struct{}

	// OnTick is called after every tick, outside the draft lock
	OnTick func(draft.TickStatus)
}

// NewAuctionClock creates a clock for the given draft
func NewAuctionClock(d Ticker, clock clockwork.Clock, interval time.Duration) *AuctionClock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &AuctionClock{
		draft:      d,
		clock:      clock,
		interval:   interval,
		instanceID: uuid.New().String()[:8],
		wakeCh:     make(chan struct{}, 1),
	}
}

// Wake requests an immediate tick, for example right after the draft starts
func (c *AuctionClock) Wake() {
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

// Run ticks the draft until it completes or ctx is cancelled. It returns nil
// on completion and ctx.Err() on cancellation.
func (c *AuctionClock) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info().
		Str("instance_id", c.instanceID).
		Dur("interval", c.interval).
		Msg("auction clock started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("instance_id", c.instanceID).Msg("auction clock stopped")
			return ctx.Err()
		case <-ticker.Chan():
		case <-c.wakeCh:
		}

		status := c.draft.Tick()
		if status.Extended {
			log.Debug().Int("time_remaining_sec", status.TimeRemainingSec).Msg("bid extended round")
		}
		if c.OnTick != nil {
			c.OnTick(status)
		}
		if status.Completed() {
			log.Info().Str("instance_id", c.instanceID).Msg("draft completed, auction clock exiting")
			return nil
		}
	}
}
