package draft

import (
	"fmt"
	"time"

	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/rs/zerolog/log"
)

// settle applies the closed round to the registry: the leader pays the
// current bid and receives the nominated player. This is the only place
// captain and player cross-references are written after creation.
func (d *Draft) settle(now time.Time) *models.DraftPick {
	winnerIdx, playerIdx, amount := *d.leader, *d.nominated, d.currentBid
	winner := d.registry.Captain(winnerIdx)
	player := d.registry.Player(playerIdx)
	cfg := d.settings.Get()

	// Bids are bounded by the budget policy, so these can only fail through a defect.
	if err := checkSettlement(winner, player, amount, cfg); err != nil {
		log.Error().
			Err(err).
			Str("captain", winner.Name).
			Str("player", player.Name).
			Int("amount", amount).
			Msg("settlement invariant violated, round discarded")
		return nil
	}

	winner.Balance -= amount
	winner.Roster = append(winner.Roster, playerIdx)
	player.Picked = true
	owner := winnerIdx
	player.Owner = &owner
	if player.Restricted {
		winner.RestrictedCount++
		if winner.RestrictedCount > cfg.RestrictedLimit {
			log.Warn().
				Str("captain", winner.Name).
				Int("restricted_count", winner.RestrictedCount).
				Int("restricted_limit", cfg.RestrictedLimit).
				Msg("captain is over the restricted limit")
		}
	}

	pick := models.DraftPick{
		Round:            d.round,
		Pick:             d.pickInRound(),
		OverallPick:      len(d.picks) + 1,
		Nominator:        d.nominator(),
		Winner:           winnerIdx,
		Player:           playerIdx,
		Amount:           amount,
		RemainingBalance: winner.Balance,
		PickedAt:         now,
	}
	d.picks = append(d.picks, pick)

	log.Info().
		Int("round", pick.Round).
		Int("overall_pick", pick.OverallPick).
		Str("captain", winner.Name).
		Str("player", player.Name).
		Int("amount", amount).
		Int("balance", winner.Balance).
		Msg("round settled")

	d.emit(events.TypeRoundSettled, d.sale(pick))
	return &pick
}

// sale renders a settled pick with names for announcements and history
func (d *Draft) sale(pick models.DraftPick) events.RoundSettledPayload {
	return events.RoundSettledPayload{
		Round:            pick.Round,
		Pick:             pick.Pick,
		OverallPick:      pick.OverallPick,
		Captain:          d.registry.Captain(pick.Winner).Name,
		Player:           d.registry.Player(pick.Player).Name,
		Amount:           pick.Amount,
		RemainingBalance: pick.RemainingBalance,
		SettledAt:        pick.PickedAt,
	}
}

func checkSettlement(winner *models.Captain, player *models.Player, amount int, cfg models.AuctionSettings) error {
	if amount > winner.Balance {
		return fmt.Errorf("amount %d exceeds balance %d", amount, winner.Balance)
	}
	if winner.RosterSize() >= cfg.TeamSize {
		return fmt.Errorf("roster already holds %d players", winner.RosterSize())
	}
	if !player.Available() {
		return fmt.Errorf("player already picked")
	}
	return nil
}
