package draft

import (
	"time"

	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Tick advances the countdown. A bid accepted since the previous tick pushes
// the deadline out by the bid extension before expiry is checked, so a round
// only closes after a quiet interval with no new bid. When the deadline has
// passed the round is settled and the next nomination (or completion) follows
// inside the same critical section.
func (d *Draft) Tick() TickStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	status := TickStatus{Phase: d.phase}
	if d.phase != models.DraftPhaseBidding {
		status.TimeRemainingSec = d.remaining(now)
		return status
	}

	if d.bidPlaced {
		ext := d.settings.Get().BidExtensionSec
		d.deadline = d.deadline.Add(seconds(ext))
		d.bidPlaced = false
		status.Extended = true

		d.emit(events.TypeBidExtended, events.BidExtendedPayload{
			Player:        d.registry.Player(*d.nominated).Name,
			ExtendedBySec: ext,
			TimeoutAt:     d.deadline,
		})
	}

	remaining := d.remaining(now)
	status.TimeRemainingSec = remaining
	if remaining > 0 {
		if remaining != d.lastShown {
			d.lastShown = remaining
			d.emit(events.TypeRoundTick, events.RoundTickPayload{
				Round:            d.round,
				Player:           d.registry.Player(*d.nominated).Name,
				Leader:           d.registry.Captain(*d.leader).Name,
				CurrentBid:       d.currentBid,
				TimeRemainingSec: remaining,
			})
		}
		return status
	}

	d.phase = models.DraftPhaseSettling
	status.Settled = d.settle(now)
	d.advance()
	status.Phase = d.phase
	return status
}

// remaining derives the countdown from the deadline. While awaiting a
// nomination the full round time is shown.
func (d *Draft) remaining(now time.Time) int {
	switch d.phase {
	case models.DraftPhaseNominating:
		return d.settings.Get().RoundTimeSec
	case models.DraftPhaseBidding:
		left := d.deadline.Sub(now)
		if left <= 0 {
			return 0
		}
		return int((left + time.Second - 1) / time.Second)
	default:
		return 0
	}
}

// advance moves to the next nominator that still has an open roster slot, or
// completes the draft once every roster is full or the pool is exhausted.
//
// A round is a block of as many sales as there are captains. Skipping a full
// roster does not open a new round, so the round stays within 1..teamSize:
// a nomination only happens while fewer than captains*teamSize slots are filled.
func (d *Draft) advance() {
	if d.rostersFull() || !d.poolHasAvailable() {
		d.complete()
		return
	}

	cfg := d.settings.Get()
	d.round = len(d.picks)/len(d.order) + 1
	for {
		d.turn = (d.turn + 1) % len(d.order)
		c := d.registry.Captain(d.nominator())
		if c.RosterSize() < cfg.TeamSize {
			break
		}
		log.Info().Int("round", d.round).Str("captain", c.Name).Msg("roster full, skipping nomination")
	}
	d.beginNomination()
}

// pickInRound is the 1-based position of the open sale within its round
func (d *Draft) pickInRound() int {
	return len(d.picks)%len(d.order) + 1
}

func (d *Draft) complete() {
	now := d.clock.Now()
	d.phase = models.DraftPhaseCompleted
	d.nominated = nil
	d.leader = nil
	d.bidPlaced = false
	d.deadline = time.Time{}

	duration := now.Sub(d.startedAt)
	log.Info().
		Int("picks", len(d.picks)).
		Dur("duration", duration).
		Msg("draft completed")

	d.emit(events.TypeDraftCompleted, events.DraftCompletedPayload{
		CompletedAt: now,
		Duration:    duration.String(),
		TotalPicks:  len(d.picks),
		Teams:       d.results(),
	})
}

func (d *Draft) rostersFull() bool {
	teamSize := d.settings.Get().TeamSize
	for i := 0; i < d.registry.CaptainCount(); i++ {
		if d.registry.Captain(i).RosterSize() < teamSize {
			return false
		}
	}
	return true
}

func (d *Draft) poolHasAvailable() bool {
	for i := 0; i < d.registry.PlayerCount(); i++ {
		if d.registry.Player(i).Available() {
			return true
		}
	}
	return false
}
