package draft

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/auction/go/internal/draft/events"
	"github.com/mcdev12/auction/go/internal/models"
	"github.com/mcdev12/auction/go/internal/settings"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (r *recorder) Emit(e events.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t events.Type) []events.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Envelope
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	d     *Draft
	clock *clockwork.FakeClock
	rec   *recorder
	ids   map[string]string // captain name -> external id
}

func newFixture(t *testing.T, cfg models.AuctionSettings, captains, players int) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	rec := &recorder{}
	d, err := NewDraft(Options{
		Settings:  cfg,
		Clock:     clock,
		Rand:      rand.New(rand.NewSource(7)),
		Sink:      rec,
		SessionID: "test-session",
	})
	if err != nil {
		t.Fatalf("NewDraft() error = %v", err)
	}

	f := &fixture{d: d, clock: clock, rec: rec, ids: make(map[string]string)}
	for i := 1; i <= captains; i++ {
		id, name := fmt.Sprintf("u%d", i), fmt.Sprintf("Captain %d", i)
		if _, err := d.AddCaptain(id, name); err != nil {
			t.Fatalf("AddCaptain(%s) error = %v", id, err)
		}
		f.ids[name] = id
	}
	pool := make([]models.Player, players)
	for i := range pool {
		pool[i] = models.Player{Name: fmt.Sprintf("player%02d", i), Restricted: i%4 == 0, RecentScore: i * 100}
	}
	if _, err := d.LoadPlayers(pool); err != nil {
		t.Fatalf("LoadPlayers() error = %v", err)
	}
	return f
}

// nominatorID returns the external id of the captain due to nominate
func (f *fixture) nominatorID(t *testing.T) string {
	t.Helper()
	name := f.d.RoundSummary().Nominator
	id, ok := f.ids[name]
	if !ok {
		t.Fatalf("no nominator in phase %s", f.d.Phase())
	}
	return id
}

// otherID returns any captain id that is not the given one
func (f *fixture) otherID(not string) string {
	for _, id := range f.ids {
		if id != not {
			return id
		}
	}
	return ""
}

func (f *fixture) firstAvailable(t *testing.T) string {
	t.Helper()
	names := f.d.SearchPlayers("")
	if len(names) == 0 {
		t.Fatalf("no players available")
	}
	return names[0]
}

// expire runs the clock past the deadline and ticks until the round closes
func (f *fixture) expire(t *testing.T) TickStatus {
	t.Helper()
	for i := 0; i < 1000; i++ {
		f.clock.Advance(time.Second)
		if st := f.d.Tick(); st.Settled != nil || st.Phase != models.DraftPhaseBidding {
			return st
		}
	}
	t.Fatalf("round never closed")
	return TickStatus{}
}

func intPtr(v int) *int { return &v }

func TestStartPreconditions(t *testing.T) {
	tests := []struct {
		name     string
		captains int
		players  int
		mutate   func(*models.AuctionSettings)
	}{
		{name: "no captains", captains: 0, players: 5},
		{name: "no players", captains: 2, players: 0},
		{name: "zero team size", captains: 2, players: 5, mutate: func(s *models.AuctionSettings) { s.TeamSize = 0 }},
		{name: "balance cannot cover min bids", captains: 2, players: 5, mutate: func(s *models.AuctionSettings) { s.StartingBalance = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.DefaultAuctionSettings()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			f := newFixture(t, cfg, tt.captains, tt.players)
			err := f.d.Start()
			if !errors.Is(err, ErrInvalidPreconditions) {
				t.Fatalf("Start() error = %v, want ErrInvalidPreconditions", err)
			}
			if f.d.Phase() != models.DraftPhaseIdle {
				t.Fatalf("phase = %s, want IDLE", f.d.Phase())
			}
		})
	}
}

func TestStartOpensFirstNomination(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 3, 30)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s := f.d.RoundSummary()
	if s.Phase != models.DraftPhaseNominating || s.Round != 1 {
		t.Fatalf("summary = %+v, want round 1 NOMINATING", s)
	}
	if s.Player != nil || s.Leader != "" {
		t.Fatalf("expected no nominee and no leader, got %+v", s)
	}
	if s.CurrentBid != 10 || s.StartingBid != 10 {
		t.Fatalf("bids = %d/%d, want 10/10", s.StartingBid, s.CurrentBid)
	}
	if s.TimeRemainingSec != 20 {
		t.Fatalf("time remaining = %d, want 20", s.TimeRemainingSec)
	}
	if got := len(f.rec.ofType(events.TypeDraftStarted)); got != 1 {
		t.Fatalf("DraftStarted events = %d, want 1", got)
	}
	if err := f.d.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
	if _, err := f.d.AddCaptain("late", "Late"); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("AddCaptain after start error = %v, want ErrAlreadyStarted", err)
	}
}

func TestAddCaptainDuplicate(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 1, 1)
	if _, err := f.d.AddCaptain("u1", "Someone Else"); !errors.Is(err, ErrDuplicateCaptain) {
		t.Fatalf("AddCaptain() error = %v, want ErrDuplicateCaptain", err)
	}
	if got := len(f.d.Captains()); got != 1 {
		t.Fatalf("captains = %d, want 1", got)
	}
}

func TestNominateNotYourTurn(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	other := f.otherID(f.nominatorID(t))
	_, err := f.d.Nominate(other, "player01", nil)
	if !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("Nominate() error = %v, want ErrNotYourTurn", err)
	}
	_, err = f.d.Nominate("stranger", "player01", nil)
	if !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("Nominate() by unknown user error = %v, want ErrNotYourTurn", err)
	}
	if s := f.d.RoundSummary(); s.Player != nil || s.Phase != models.DraftPhaseNominating {
		t.Fatalf("nomination leaked through: %+v", s)
	}
}

func TestNominateValidation(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)

	if _, err := f.d.Nominate("u1", "player01", nil); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("Nominate() before start error = %v, want ErrWrongPhase", err)
	}
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	nom := f.nominatorID(t)

	if _, err := f.d.Nominate(nom, "nobody", nil); !errors.Is(err, ErrUnknownOrPickedPlayer) {
		t.Fatalf("unknown player error = %v, want ErrUnknownOrPickedPlayer", err)
	}

	for _, bid := range []int{5, 121} {
		_, err := f.d.Nominate(nom, "player01", intPtr(bid))
		var rangeErr *BidOutOfRangeError
		if !errors.Is(err, ErrBidOutOfRange) || !errors.As(err, &rangeErr) {
			t.Fatalf("starting bid %d error = %v, want ErrBidOutOfRange", bid, err)
		}
		if rangeErr.Min != 10 || rangeErr.Max != 120 {
			t.Fatalf("range = [%d,%d], want [10,120]", rangeErr.Min, rangeErr.Max)
		}
	}
	if f.d.Phase() != models.DraftPhaseNominating {
		t.Fatalf("rejected nominations changed phase to %s", f.d.Phase())
	}

	s, err := f.d.Nominate(nom, "player01", intPtr(25))
	if err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	if s.Phase != models.DraftPhaseBidding || s.StartingBid != 25 || s.CurrentBid != 25 {
		t.Fatalf("summary = %+v, want BIDDING at 25", s)
	}
	if s.Player == nil || s.Player.Name != "player01" || s.Player.RecentScore != 100 {
		t.Fatalf("nominated player = %+v", s.Player)
	}
	if s.Leader != s.Nominator {
		t.Fatalf("leader = %q, want nominator %q", s.Leader, s.Nominator)
	}
	if s.TimeRemainingSec != 20 {
		t.Fatalf("time remaining = %d, want 20", s.TimeRemainingSec)
	}
	if _, err := f.d.Nominate(nom, "player02", nil); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("second nomination error = %v, want ErrWrongPhase", err)
	}
}

func TestBidRules(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	nom := f.nominatorID(t)
	other := f.otherID(nom)

	if _, err := f.d.Bid(other, 20); !errors.Is(err, ErrNoActiveAuction) {
		t.Fatalf("bid while nominating error = %v, want ErrNoActiveAuction", err)
	}
	if _, err := f.d.Nominate(nom, "player03", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	before := f.d.RoundSummary()

	tests := []struct {
		name   string
		id     string
		amount int
		want   error
	}{
		{name: "lower than current bid", id: other, amount: 5, want: ErrBidTooLow},
		{name: "equal to current bid", id: other, amount: 10, want: ErrBidTooLow},
		{name: "above max bid", id: other, amount: 121, want: ErrInsufficientFunds},
		{name: "unknown captain", id: "stranger", amount: 50, want: ErrUnknownCaptain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.d.Bid(tt.id, tt.amount)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Bid(%d) error = %v, want %v", tt.amount, err, tt.want)
			}
			after := f.d.RoundSummary()
			if after.CurrentBid != before.CurrentBid || after.Leader != before.Leader || after.Player.Name != before.Player.Name {
				t.Fatalf("rejected bid changed state: before %+v after %+v", before, after)
			}
		})
	}

	_, err := f.d.Bid(other, 121)
	var fundsErr *InsufficientFundsError
	if !errors.As(err, &fundsErr) || fundsErr.MaxBid != 120 {
		t.Fatalf("insufficient funds error = %v, want max bid 120", err)
	}

	s, err := f.d.Bid(other, 120)
	if err != nil {
		t.Fatalf("Bid(120) error = %v", err)
	}
	if s.CurrentBid != 120 || s.Leader == s.Nominator {
		t.Fatalf("summary after bid = %+v", s)
	}
	if got := f.rec.ofType(events.TypeBidPlaced); len(got) != 1 {
		t.Fatalf("BidPlaced events = %d, want 1", len(got))
	}
}

func TestBidRejectedAfterDeadline(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	nom := f.nominatorID(t)
	if _, err := f.d.Nominate(nom, "player01", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}

	// Deadline passed but the clock has not ticked yet.
	f.clock.Advance(21 * time.Second)
	if _, err := f.d.Bid(f.otherID(nom), 30); !errors.Is(err, ErrNoActiveAuction) {
		t.Fatalf("late bid error = %v, want ErrNoActiveAuction", err)
	}
}

func TestMaxBidScenarios(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	nom := f.nominatorID(t)
	other := f.otherID(nom)

	if got, _ := f.d.MaxBid(other); got != 120 {
		t.Fatalf("MaxBid() with empty roster = %d, want 120", got)
	}

	if _, err := f.d.Nominate(nom, "player01", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	if _, err := f.d.Bid(other, 50); err != nil {
		t.Fatalf("Bid() error = %v", err)
	}
	f.expire(t)

	if got, _ := f.d.MaxBid(other); got != 80 {
		t.Fatalf("MaxBid() after winning for 50 = %d, want 80", got)
	}
	if _, err := f.d.MaxBid("stranger"); !errors.Is(err, ErrUnknownCaptain) {
		t.Fatalf("MaxBid() unknown error = %v", err)
	}
}

func TestAntiSnipeExtension(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	nom := f.nominatorID(t)
	other := f.otherID(nom)
	if _, err := f.d.Nominate(nom, "player01", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}

	f.clock.Advance(10 * time.Second)
	if st := f.d.Tick(); st.TimeRemainingSec != 10 || st.Extended {
		t.Fatalf("tick before bid = %+v, want 10s without extension", st)
	}
	if _, err := f.d.Bid(other, 11); err != nil {
		t.Fatalf("Bid() error = %v", err)
	}

	st := f.d.Tick()
	if !st.Extended || st.TimeRemainingSec != 15 {
		t.Fatalf("tick after bid = %+v, want extension to 15s", st)
	}
	if again := f.d.Tick(); again.Extended {
		t.Fatalf("flag not cleared, extended twice")
	}

	// Extensions repeat without a cap.
	for i := 0; i < 5; i++ {
		f.clock.Advance(seconds(st.TimeRemainingSec - 1))
		if last := f.d.Tick(); last.TimeRemainingSec != 1 {
			t.Fatalf("tick before extension %d = %+v, want 1s", i, last)
		}
		id := nom
		if i%2 == 1 {
			id = other
		}
		if _, err := f.d.Bid(id, 12+i); err != nil {
			t.Fatalf("Bid(%d) error = %v", 12+i, err)
		}
		st = f.d.Tick()
		if !st.Extended || st.TimeRemainingSec != 6 {
			t.Fatalf("extension %d = %+v, want 6s", i, st)
		}
	}
	if f.d.Phase() != models.DraftPhaseBidding {
		t.Fatalf("round closed while bids kept arriving")
	}
	if got := len(f.rec.ofType(events.TypeBidExtended)); got != 6 {
		t.Fatalf("BidExtended events = %d, want 6", got)
	}
}

func TestDefaultWinAtStartingBid(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	nom := f.nominatorID(t)
	nomName := f.d.RoundSummary().Nominator
	if _, err := f.d.Nominate(nom, "player02", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}

	st := f.expire(t)
	if st.Settled == nil || st.Settled.Amount != 10 {
		t.Fatalf("settled = %+v, want win at 10", st.Settled)
	}

	var captain CaptainView
	for _, c := range f.d.Captains() {
		if c.Name == nomName {
			captain = c
		}
	}
	if captain.Balance != 190 || len(captain.Players) != 1 || captain.Players[0] != "player02" {
		t.Fatalf("nominator after default win = %+v", captain)
	}
	for _, p := range f.d.Players() {
		if p.Name == "player02" {
			if !p.Picked || p.Owner != nomName {
				t.Fatalf("player = %+v, want picked by %s", p, nomName)
			}
		}
	}
	if st.Phase != models.DraftPhaseNominating || f.d.RoundSummary().Player != nil {
		t.Fatalf("next round not opened: %+v", f.d.RoundSummary())
	}
	if got := f.rec.ofType(events.TypeRoundSettled); len(got) != 1 {
		t.Fatalf("RoundSettled events = %d, want 1", len(got))
	}
}

func TestRestrictedCountIsTrackedNotEnforced(t *testing.T) {
	cfg := models.DefaultAuctionSettings()
	cfg.RestrictedLimit = 0
	f := newFixture(t, cfg, 1, 10)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// player00 and player04 are restricted.
	for _, name := range []string{"player00", "player04"} {
		if _, err := f.d.Nominate("u1", name, nil); err != nil {
			t.Fatalf("Nominate(%s) error = %v", name, err)
		}
		f.expire(t)
	}
	if got := f.d.Captains()[0].RestrictedCount; got != 2 {
		t.Fatalf("restricted count = %d, want 2", got)
	}
}

func TestFullDraft(t *testing.T) {
	cfg := models.DefaultAuctionSettings()
	cfg.TeamSize = 3
	f := newFixture(t, cfg, 4, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	nominations := make(map[int]map[string]int) // round -> nominator -> count
	for f.d.Phase() != models.DraftPhaseCompleted {
		s := f.d.RoundSummary()
		nom := f.nominatorID(t)
		if nominations[s.Round] == nil {
			nominations[s.Round] = make(map[string]int)
		}
		nominations[s.Round][s.Nominator]++

		if _, err := f.d.Nominate(nom, f.firstAvailable(t), nil); err != nil {
			t.Fatalf("Nominate() error = %v", err)
		}
		// The nominator raises their own bid once; nobody else bids.
		if _, err := f.d.Bid(nom, 10+s.Round); err != nil {
			t.Fatalf("Bid() error = %v", err)
		}
		f.expire(t)
	}

	picks := f.d.Picks()
	if len(picks) != 3*4 {
		t.Fatalf("settlements = %d, want 12", len(picks))
	}
	if len(nominations) != 3 {
		t.Fatalf("rounds = %d, want 3", len(nominations))
	}
	for round, byCaptain := range nominations {
		if len(byCaptain) != 4 {
			t.Fatalf("round %d had %d nominators, want 4", round, len(byCaptain))
		}
		for name, n := range byCaptain {
			if n != 1 {
				t.Fatalf("round %d: %s nominated %d times", round, name, n)
			}
		}
	}

	spent := make(map[string]int)
	seen := make(map[string]bool)
	for i, p := range picks {
		if seen[p.Player] {
			t.Fatalf("player %s settled twice", p.Player)
		}
		seen[p.Player] = true
		spent[p.Captain] += p.Amount
		if p.OverallPick != i+1 || p.Round > cfg.TeamSize || p.Pick < 1 || p.Pick > 4 {
			t.Fatalf("sale %d numbered %+v", i, p)
		}
		if p.RemainingBalance < 0 {
			t.Fatalf("sale %d left a negative balance: %+v", i, p)
		}
	}
	for _, c := range f.d.Captains() {
		if c.RosterSize != 3 {
			t.Fatalf("%s roster = %d, want 3", c.Name, c.RosterSize)
		}
		if c.Balance != cfg.StartingBalance-spent[c.Name] {
			t.Fatalf("%s balance = %d, want %d", c.Name, c.Balance, cfg.StartingBalance-spent[c.Name])
		}
	}

	results := f.d.Results()
	if len(results) != 4 {
		t.Fatalf("results = %d teams, want 4", len(results))
	}
	if got := len(f.rec.ofType(events.TypeDraftCompleted)); got != 1 {
		t.Fatalf("DraftCompleted events = %d, want 1", got)
	}
	if _, err := f.d.Bid("u1", 500); !errors.Is(err, ErrNoActiveAuction) {
		t.Fatalf("bid after completion error = %v", err)
	}
}

func TestFullRosterSkipsNominationAndRejectsBids(t *testing.T) {
	cfg := models.DefaultAuctionSettings()
	cfg.TeamSize = 1
	f := newFixture(t, cfg, 2, 5)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	first := f.nominatorID(t)
	second := f.otherID(first)

	if _, err := f.d.Nominate(first, "player01", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	if _, err := f.d.Bid(second, 20); err != nil {
		t.Fatalf("Bid() error = %v", err)
	}
	f.expire(t)

	// The second captain is full, so the first nominates again in the same round.
	if got := f.nominatorID(t); got != first {
		t.Fatalf("nominator = %s, want %s", got, first)
	}
	if s := f.d.RoundSummary(); s.Round != 1 || s.TotalRounds != 1 {
		t.Fatalf("round after skip = %d of %d, want 1 of 1", s.Round, s.TotalRounds)
	}
	if _, err := f.d.Nominate(first, "player02", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	if _, err := f.d.Bid(second, 30); !errors.Is(err, ErrRosterFull) {
		t.Fatalf("bid with full roster error = %v, want ErrRosterFull", err)
	}
	f.expire(t)

	if f.d.Phase() != models.DraftPhaseCompleted {
		t.Fatalf("phase = %s, want COMPLETED", f.d.Phase())
	}
	if got := len(f.d.Picks()); got != 2 {
		t.Fatalf("settlements = %d, want 2", got)
	}
}

func TestConcurrentBidsAreTotallyOrdered(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 8, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := f.d.Nominate(f.nominatorID(t), "player01", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}

	var wg sync.WaitGroup
	for _, id := range f.ids {
		for amount := 11; amount <= 60; amount++ {
			wg.Add(1)
			go func(id string, amount int) {
				defer wg.Done()
				_, _ = f.d.Bid(id, amount)
			}(id, amount)
		}
	}
	wg.Wait()

	accepted := f.rec.ofType(events.TypeBidPlaced)
	last := 10
	for _, e := range accepted {
		p, err := events.ParsePayload(e)
		if err != nil {
			t.Fatalf("ParsePayload() error = %v", err)
		}
		amount := p.(*events.BidPlacedPayload).Amount
		if amount <= last {
			t.Fatalf("accepted bid %d after %d", amount, last)
		}
		last = amount
	}
	if got := f.d.RoundSummary().CurrentBid; got != 60 || last != 60 {
		t.Fatalf("current bid = %d (last accepted %d), want 60", got, last)
	}
}

func TestUpdateSettingsAfterStart(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)

	if _, _, err := f.d.UpdateSettings(settings.UpdateRequest{StartingBalance: intPtr(300)}); err != nil {
		t.Fatalf("UpdateSettings() before start error = %v", err)
	}
	for _, c := range f.d.Captains() {
		if c.Balance != 300 {
			t.Fatalf("%s balance before start = %d, want 300", c.Name, c.Balance)
		}
	}
	if _, err := f.d.AddCaptain("u3", "Captain 3"); err != nil {
		t.Fatalf("AddCaptain() error = %v", err)
	}
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for _, c := range f.d.Captains() {
		if c.Balance != 300 {
			t.Fatalf("%s balance = %d, want 300", c.Name, c.Balance)
		}
	}

	if _, _, err := f.d.UpdateSettings(settings.UpdateRequest{TeamSize: intPtr(4), RoundTimeSec: intPtr(30)}); !errors.Is(err, ErrLockedField) {
		t.Fatalf("team size change after start error = %v, want ErrLockedField", err)
	}
	if got := f.d.Settings().RoundTimeSec; got != 20 {
		t.Fatalf("locked update partially applied, round time = %d", got)
	}

	updated, advisories, err := f.d.UpdateSettings(settings.UpdateRequest{RestrictedLimit: intPtr(3)})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if updated.RestrictedLimit != 3 || len(advisories) != 1 {
		t.Fatalf("restricted limit update = %+v advisories %v", updated, advisories)
	}
}

func TestNominatePickedPlayer(t *testing.T) {
	f := newFixture(t, models.DefaultAuctionSettings(), 2, 20)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := f.d.Nominate(f.nominatorID(t), "player01", nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	f.expire(t)

	before := len(f.rec.ofType(events.TypePlayerNominated))
	_, err := f.d.Nominate(f.nominatorID(t), "player01", nil)
	if !errors.Is(err, ErrUnknownOrPickedPlayer) {
		t.Fatalf("Nominate() of a sold player error = %v, want ErrUnknownOrPickedPlayer", err)
	}
	if f.d.Phase() != models.DraftPhaseNominating {
		t.Fatalf("phase = %s, want NOMINATING", f.d.Phase())
	}
	if got := len(f.rec.ofType(events.TypePlayerNominated)); got != before {
		t.Fatalf("PlayerNominated events = %d, want %d", got, before)
	}
}

func TestOpeningBidCappedAtBalance(t *testing.T) {
	cfg := models.DefaultAuctionSettings()
	cfg.TeamSize = 2
	f := newFixture(t, cfg, 1, 5)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Spend down to 20, then raise the minimum above what is left.
	if _, err := f.d.Nominate("u1", "player01", intPtr(180)); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	f.expire(t)
	if got := f.d.Captains()[0].Balance; got != 20 {
		t.Fatalf("balance = %d, want 20", got)
	}
	if _, _, err := f.d.UpdateSettings(settings.UpdateRequest{MinBid: intPtr(30)}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	_, err := f.d.Nominate("u1", "player02", nil)
	var rangeErr *BidOutOfRangeError
	if !errors.As(err, &rangeErr) || !errors.Is(err, ErrBidOutOfRange) {
		t.Fatalf("Nominate() error = %v, want ErrBidOutOfRange", err)
	}
	if rangeErr.Min != 30 || rangeErr.Max != 20 {
		t.Fatalf("range = [%d,%d], want [30,20]", rangeErr.Min, rangeErr.Max)
	}
	if s := f.d.RoundSummary(); s.Phase != models.DraftPhaseNominating || s.Player != nil {
		t.Fatalf("capped nomination leaked through: %+v", s)
	}
}

func TestRoundStaysWithinTeamSizeAfterSkip(t *testing.T) {
	cfg := models.DefaultAuctionSettings()
	cfg.TeamSize = 2
	f := newFixture(t, cfg, 2, 10)
	if err := f.d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	first := f.nominatorID(t)
	second := f.otherID(first)

	// second wins both sales of round 1 and is full before first owns anyone.
	if _, err := f.d.Nominate(first, f.firstAvailable(t), nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	if _, err := f.d.Bid(second, 20); err != nil {
		t.Fatalf("Bid() error = %v", err)
	}
	f.expire(t)
	if _, err := f.d.Nominate(second, f.firstAvailable(t), nil); err != nil {
		t.Fatalf("Nominate() error = %v", err)
	}
	f.expire(t)

	for f.d.Phase() != models.DraftPhaseCompleted {
		s := f.d.RoundSummary()
		if s.Round < 1 || s.Round > s.TotalRounds {
			t.Fatalf("round = %d of %d", s.Round, s.TotalRounds)
		}
		if got := f.nominatorID(t); got != first {
			t.Fatalf("nominator = %s, want %s", got, first)
		}
		if _, err := f.d.Nominate(first, f.firstAvailable(t), nil); err != nil {
			t.Fatalf("Nominate() error = %v", err)
		}
		f.expire(t)
	}

	for _, e := range f.rec.ofType(events.TypeNominationStarted) {
		p, err := events.ParsePayload(e)
		if err != nil {
			t.Fatalf("ParsePayload() error = %v", err)
		}
		if round := p.(*events.NominationStartedPayload).Round; round > cfg.TeamSize {
			t.Fatalf("NominationStarted round = %d, want at most %d", round, cfg.TeamSize)
		}
	}
	if got := len(f.d.Picks()); got != 4 {
		t.Fatalf("settlements = %d, want 4", got)
	}
}

func TestCaptainsSharingANameKeepSeparateTeams(t *testing.T) {
	cfg := models.DefaultAuctionSettings()
	cfg.TeamSize = 1
	rec := &recorder{}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	d, err := NewDraft(Options{
		Settings: cfg,
		Clock:    clock,
		Rand:     rand.New(rand.NewSource(7)),
		Sink:     rec,
	})
	if err != nil {
		t.Fatalf("NewDraft() error = %v", err)
	}
	for _, id := range []string{"a1", "a2"} {
		if _, err := d.AddCaptain(id, "Alice"); err != nil {
			t.Fatalf("AddCaptain(%s) error = %v", id, err)
		}
	}
	if _, err := d.LoadPlayers([]models.Player{{Name: "Bravo"}, {Name: "Charlie"}, {Name: "Delta"}}); err != nil {
		t.Fatalf("LoadPlayers() error = %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, player := range []string{"Bravo", "Charlie"} {
		var nominated bool
		for _, id := range []string{"a1", "a2"} {
			if _, err := d.Nominate(id, player, nil); err == nil {
				nominated = true
				break
			}
		}
		if !nominated {
			t.Fatalf("nobody could nominate %s", player)
		}
		for d.Phase() == models.DraftPhaseBidding {
			clock.Advance(time.Second)
			d.Tick()
		}
	}

	if d.Phase() != models.DraftPhaseCompleted {
		t.Fatalf("phase = %s, want COMPLETED", d.Phase())
	}
	results := d.Results()
	if len(results) != 2 {
		t.Fatalf("results = %d teams, want 2", len(results))
	}
	for i, team := range results {
		if team.Captain != "Alice" || len(team.Players) != 1 {
			t.Fatalf("team %d = %+v", i, team)
		}
	}

	completed := rec.ofType(events.TypeDraftCompleted)
	if len(completed) != 1 {
		t.Fatalf("DraftCompleted events = %d, want 1", len(completed))
	}
	p, err := events.ParsePayload(completed[0])
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}
	if teams := p.(*events.DraftCompletedPayload).Teams; len(teams) != 2 {
		t.Fatalf("DraftCompleted teams = %+v, want 2 entries", teams)
	}
}
