package draft

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auction/go/internal/draft/budget"
	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/mcdev12/auction/go/internal/roster"
	"github.com/mcdev12/auction/go/internal/settings"
	"github.com/rs/zerolog/log"
)

// Draft is the single authoritative auction context. One mutex serializes
// every command, tick and read over the round state, the registry and the
// settings, so validation and mutation of a command happen as one step.
type Draft struct {
	mu sync.Mutex

	clock     clockwork.Clock
	rng       *rand.Rand
	sink      events.Sink
	sessionID string

	settings *settings.Store
	registry *roster.Registry

	phase     models.DraftPhase
	startedAt time.Time
	order     []int // captain indices, shuffled once at start
	round     int   // 1-based, len(picks)/len(order)+1
	turn      int   // position in order of the current nominator
	picks     []models.DraftPick

	nominated   *int // player index
	startingBid int
	currentBid  int
	leader      *int // captain index
	bidPlaced   bool
	deadline    time.Time
	lastShown   int // last whole second pushed as a RoundTick
}

// NewDraft creates an idle draft
func NewDraft(opts Options) (*Draft, error) {
	store, err := settings.NewStore(opts.Settings)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Sink == nil {
		opts.Sink = events.Discard
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.New().String()
	}

	return &Draft{
		clock:     opts.Clock,
		rng:       opts.Rand,
		sink:      opts.Sink,
		sessionID: opts.SessionID,
		settings:  store,
		registry:  roster.NewRegistry(),
		phase:     models.DraftPhaseIdle,
	}, nil
}

// SessionID identifies this auction session in published events
func (d *Draft) SessionID() string {
	return d.sessionID
}

// AddCaptain registers a captain. Captains can only join before the draft starts.
func (d *Draft) AddCaptain(externalID, name string) (CaptainView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != models.DraftPhaseIdle {
		return CaptainView{}, fmt.Errorf("add captain %s: %w", name, ErrAlreadyStarted)
	}

	balance := d.settings.Get().StartingBalance
	idx, err := d.registry.AddCaptain(externalID, name, balance)
	if err != nil {
		return CaptainView{}, err
	}

	log.Info().Str("captain", name).Str("external_id", externalID).Msg("captain added")
	d.emit(events.TypeCaptainAdded, events.CaptainAddedPayload{Name: name, Balance: balance})
	return d.captainView(idx), nil
}

// LoadPlayers appends imported players to the pool before the draft starts
func (d *Draft) LoadPlayers(players []models.Player) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != models.DraftPhaseIdle {
		return 0, fmt.Errorf("load players: %w", ErrAlreadyStarted)
	}
	added := d.registry.AddPlayers(players)
	log.Info().Int("added", added).Int("total", d.registry.PlayerCount()).Msg("players loaded")
	return added, nil
}

// Settings returns the current settings
func (d *Draft) Settings() models.AuctionSettings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings.Get()
}

// UpdateSettings applies a partial update; see settings.Store.Update for the locking rules
func (d *Draft) UpdateSettings(req settings.UpdateRequest) (models.AuctionSettings, []string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	started := d.phase != models.DraftPhaseIdle
	updated, advisories, err := d.settings.Update(req, started)
	if err != nil {
		return updated, nil, err
	}
	// Registered captains hold the starting balance until the draft starts.
	// From then on only settlement touches balances.
	if !started && req.StartingBalance != nil {
		d.registry.SetStartingBalance(updated.StartingBalance)
	}
	d.emit(events.TypeSettingsUpdated, events.SettingsUpdatedPayload{Settings: updated, Advisories: advisories})
	return updated, advisories, nil
}

// Start shuffles the captains into a nomination order and opens round 1
func (d *Draft) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != models.DraftPhaseIdle {
		return ErrAlreadyStarted
	}
	if err := d.validateStart(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreconditions, err)
	}

	cfg := d.settings.Get()
	captainCount := d.registry.CaptainCount()
	if need := cfg.TeamSize * captainCount; d.registry.PlayerCount() < need {
		log.Warn().
			Int("players", d.registry.PlayerCount()).
			Int("slots", need).
			Msg("fewer players than roster slots; draft will end when the pool runs out")
	}

	d.order = d.rng.Perm(captainCount)
	d.startedAt = d.clock.Now()
	d.round = 1
	d.turn = 0

	names := make([]string, len(d.order))
	for i, idx := range d.order {
		names[i] = d.registry.Captain(idx).Name
	}

	log.Info().
		Int("captains", captainCount).
		Int("players", d.registry.PlayerCount()).
		Int("team_size", cfg.TeamSize).
		Strs("order", names).
		Msg("draft started")

	d.emit(events.TypeDraftStarted, events.DraftStartedPayload{
		StartedAt:       d.startedAt,
		TotalRounds:     cfg.TeamSize,
		TotalPicks:      cfg.TeamSize * captainCount,
		NominationOrder: names,
	})

	d.beginNomination()
	return nil
}

// Nominate puts an unpicked player up for bidding. Only the round's designated
// nominator may call it, and only while the round awaits a nomination.
func (d *Draft) Nominate(externalID, playerName string, startingBid *int) (RoundSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.phase != models.DraftPhaseNominating {
		return RoundSummary{}, ErrWrongPhase
	}
	captainIdx, err := d.registry.CaptainIndex(externalID)
	if err != nil || captainIdx != d.nominator() {
		return RoundSummary{}, ErrNotYourTurn
	}
	playerIdx, ok := d.registry.PlayerIndex(playerName)
	if !ok || !d.registry.Player(playerIdx).Available() {
		return RoundSummary{}, fmt.Errorf("%s: %w", playerName, ErrUnknownOrPickedPlayer)
	}

	cfg := d.settings.Get()
	captain := d.registry.Captain(captainIdx)
	bid := cfg.MinBid
	if startingBid != nil {
		maxBid := budget.MaxBid(captain, cfg)
		if *startingBid < cfg.MinBid || *startingBid > maxBid {
			return RoundSummary{}, &BidOutOfRangeError{Min: cfg.MinBid, Max: maxBid}
		}
		bid = *startingBid
	}
	// The nominator wins by default, so the opening bid is capped at their balance.
	if bid > captain.Balance {
		return RoundSummary{}, &BidOutOfRangeError{Min: cfg.MinBid, Max: captain.Balance}
	}

	now := d.clock.Now()
	d.nominated = &playerIdx
	d.startingBid = bid
	d.currentBid = bid
	d.leader = &captainIdx
	d.bidPlaced = false
	d.deadline = now.Add(seconds(cfg.RoundTimeSec))
	d.lastShown = cfg.RoundTimeSec
	d.phase = models.DraftPhaseBidding

	player := d.registry.Player(playerIdx)
	log.Info().
		Int("round", d.round).
		Str("captain", captain.Name).
		Str("player", player.Name).
		Int("starting_bid", bid).
		Msg("player nominated")

	d.emit(events.TypePlayerNominated, events.PlayerNominatedPayload{
		Round:        d.round,
		Pick:         d.pickInRound(),
		Captain:      captain.Name,
		Player:       player.Name,
		StartingBid:  bid,
		StartedAt:    now,
		TimeoutAt:    d.deadline,
		RoundTimeSec: cfg.RoundTimeSec,
	})
	return d.summary(now), nil
}

// Bid raises the current bid. The last accepted bid is authoritative; a
// concurrent loser is validated against the already-updated current bid.
func (d *Draft) Bid(externalID string, amount int) (RoundSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	if d.phase != models.DraftPhaseBidding || d.remaining(now) <= 0 {
		return RoundSummary{}, ErrNoActiveAuction
	}
	captainIdx, err := d.registry.CaptainIndex(externalID)
	if err != nil {
		return RoundSummary{}, err
	}
	if amount <= d.currentBid {
		return RoundSummary{}, fmt.Errorf("%w of %d", ErrBidTooLow, d.currentBid)
	}

	cfg := d.settings.Get()
	captain := d.registry.Captain(captainIdx)
	if budget.SlotsRemaining(captain, cfg) <= 0 {
		return RoundSummary{}, ErrRosterFull
	}
	if !budget.CanAfford(captain, cfg, amount) {
		return RoundSummary{}, &InsufficientFundsError{MaxBid: budget.MaxBid(captain, cfg)}
	}

	d.currentBid = amount
	d.leader = &captainIdx
	d.bidPlaced = true

	player := d.registry.Player(*d.nominated)
	log.Info().
		Str("captain", captain.Name).
		Str("player", player.Name).
		Int("amount", amount).
		Msg("bid placed")

	d.emit(events.TypeBidPlaced, events.BidPlacedPayload{
		Captain:  captain.Name,
		Player:   player.Name,
		Amount:   amount,
		PlacedAt: now,
	})
	return d.summary(now), nil
}

// MaxBid returns the caller's own max bid
func (d *Draft) MaxBid(externalID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, err := d.registry.CaptainIndex(externalID)
	if err != nil {
		return 0, err
	}
	return budget.MaxBid(d.registry.Captain(idx), d.settings.Get()), nil
}

// Captain returns the view of the captain registered under externalID
func (d *Draft) Captain(externalID string) (CaptainView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, err := d.registry.CaptainIndex(externalID)
	if err != nil {
		return CaptainView{}, err
	}
	return d.captainView(idx), nil
}

// Phase returns the current state machine phase
func (d *Draft) Phase() models.DraftPhase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// RoundSummary returns the live projection of the current round
func (d *Draft) RoundSummary() RoundSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.summary(d.clock.Now())
}

// Captains lists every captain in registration order
func (d *Draft) Captains() []CaptainView {
	d.mu.Lock()
	defer d.mu.Unlock()

	views := make([]CaptainView, d.registry.CaptainCount())
	for i := range views {
		views[i] = d.captainView(i)
	}
	return views
}

// Players lists the whole pool in import order with each owner's name
func (d *Draft) Players() []PoolEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	players := d.registry.Players()
	out := make([]PoolEntry, len(players))
	for i, p := range players {
		out[i] = PoolEntry{
			Name:        p.Name,
			Restricted:  p.Restricted,
			Picked:      p.Picked,
			RecentScore: p.RecentScore,
			ScoreColor:  models.ScoreColor(p.RecentScore),
		}
		if p.Owner != nil {
			out[i].Owner = d.registry.Captain(*p.Owner).Name
		}
	}
	return out
}

// SearchPlayers returns unpicked player names starting with prefix
func (d *Draft) SearchPlayers(prefix string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.SearchAvailable(prefix)
}

// Results returns every captain's roster in registration order
func (d *Draft) Results() []TeamResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results()
}

// Picks returns the settled rounds so far in settlement order
func (d *Draft) Picks() []events.RoundSettledPayload {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]events.RoundSettledPayload, len(d.picks))
	for i, p := range d.picks {
		out[i] = d.sale(p)
	}
	return out
}

// beginNomination resets the round state and waits for the designated nominator.
// The wait has no timeout.
func (d *Draft) beginNomination() {
	cfg := d.settings.Get()
	d.phase = models.DraftPhaseNominating
	d.nominated = nil
	d.leader = nil
	d.startingBid = cfg.MinBid
	d.currentBid = cfg.MinBid
	d.bidPlaced = false
	d.deadline = time.Time{}

	captain := d.registry.Captain(d.nominator())
	log.Info().Int("round", d.round).Str("captain", captain.Name).Msg("awaiting nomination")

	d.emit(events.TypeNominationStarted, events.NominationStartedPayload{
		Round:       d.round,
		Pick:        d.pickInRound(),
		OverallPick: len(d.picks) + 1,
		Captain:     captain.Name,
	})
}

func (d *Draft) nominator() int {
	return d.order[d.turn]
}

func (d *Draft) validateStart() error {
	cfg := d.settings.Get()
	if d.registry.CaptainCount() == 0 {
		return fmt.Errorf("no captains")
	}
	if d.registry.PlayerCount() == 0 {
		return fmt.Errorf("no players")
	}
	if cfg.TeamSize <= 0 {
		return fmt.Errorf("team_size must be greater than 0")
	}
	if cfg.StartingBalance < cfg.TeamSize*cfg.MinBid {
		return fmt.Errorf("starting_balance %d cannot cover %d slots at min_bid %d",
			cfg.StartingBalance, cfg.TeamSize, cfg.MinBid)
	}
	return nil
}

func (d *Draft) summary(now time.Time) RoundSummary {
	cfg := d.settings.Get()
	s := RoundSummary{
		Phase:            d.phase,
		Round:            d.round,
		TotalRounds:      cfg.TeamSize,
		TimeRemainingSec: d.remaining(now),
		StartingBid:      d.startingBid,
		CurrentBid:       d.currentBid,
	}
	if d.phase == models.DraftPhaseNominating || d.phase == models.DraftPhaseBidding {
		s.Nominator = d.registry.Captain(d.nominator()).Name
	}
	if d.nominated != nil {
		p := d.registry.Player(*d.nominated)
		s.Player = &PlayerInfo{
			Name:        p.Name,
			RecentScore: p.RecentScore,
			ScoreColor:  models.ScoreColor(p.RecentScore),
			Restricted:  p.Restricted,
		}
	}
	if d.leader != nil {
		s.Leader = d.registry.Captain(*d.leader).Name
	}
	return s
}

func (d *Draft) captainView(idx int) CaptainView {
	c := d.registry.Captain(idx)
	return CaptainView{
		Name:            c.Name,
		Balance:         c.Balance,
		RosterSize:      c.RosterSize(),
		RestrictedCount: c.RestrictedCount,
		Players:         d.registry.Team(idx),
		Description:     d.registry.Describe(idx),
	}
}

func (d *Draft) results() []TeamResult {
	out := make([]TeamResult, d.registry.CaptainCount())
	for i := range out {
		out[i] = TeamResult{
			Captain: d.registry.Captain(i).Name,
			Players: d.registry.Team(i),
		}
	}
	return out
}

func (d *Draft) emit(eventType events.Type, payload any) {
	env, err := events.New(d.sessionID, eventType, d.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to build event")
		return
	}
	d.sink.Emit(env)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
