package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcdev12/auction/go/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

var (
	// ErrDuplicateCaptain is returned when a captain with the same external identity already exists
	ErrDuplicateCaptain = errors.New("captain already added")
	// ErrUnknownCaptain is returned when no captain matches the requested identity
	ErrUnknownCaptain = errors.New("not in captain list")
)

// Registry owns the canonical captain and player tables. Captains and players
// reference each other by index only. It is not safe for concurrent use; the
// draft serializes access.
type Registry struct {
	captains []models.Captain
	players  []models.Player

	captainByExternalID map[string]int
	playerByName        map[string]int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		captainByExternalID: make(map[string]int),
		playerByName:        make(map[string]int),
	}
}

// AddCaptain registers a captain with an empty roster and returns its index
func (r *Registry) AddCaptain(externalID, name string, balance int) (int, error) {
	if externalID == "" {
		return 0, fmt.Errorf("external_id is required")
	}
	if name == "" {
		return 0, fmt.Errorf("name is required")
	}
	if _, exists := r.captainByExternalID[externalID]; exists {
		return 0, fmt.Errorf("%s: %w", name, ErrDuplicateCaptain)
	}

	idx := len(r.captains)
	r.captains = append(r.captains, models.Captain{
		Name:       name,
		ExternalID: externalID,
		Balance:    balance,
		Roster:     []int{},
	})
	r.captainByExternalID[externalID] = idx
	return idx, nil
}

// AddPlayers appends imported players in order. A repeated name keeps the
// first occurrence since the name is the lookup key.
func (r *Registry) AddPlayers(players []models.Player) int {
	added := 0
	for _, p := range players {
		if p.Name == "" {
			continue
		}
		if _, exists := r.playerByName[p.Name]; exists {
			log.Warn().Str("player", p.Name).Msg("duplicate player name in import, keeping first")
			continue
		}
		p.Picked = false
		p.Owner = nil
		r.playerByName[p.Name] = len(r.players)
		r.players = append(r.players, p)
		added++
	}
	return added
}

// SetStartingBalance sets every captain's balance. Only valid before the draft starts.
func (r *Registry) SetStartingBalance(balance int) {
	for i := range r.captains {
		r.captains[i].Balance = balance
	}
}

// CaptainCount returns the number of registered captains
func (r *Registry) CaptainCount() int {
	return len(r.captains)
}

// PlayerCount returns the number of imported players
func (r *Registry) PlayerCount() int {
	return len(r.players)
}

// Captain returns the captain at idx for in-place mutation by the owner of the registry
func (r *Registry) Captain(idx int) *models.Captain {
	return &r.captains[idx]
}

// Player returns the player at idx for in-place mutation by the owner of the registry
func (r *Registry) Player(idx int) *models.Player {
	return &r.players[idx]
}

// CaptainIndex resolves a captain by external identity
func (r *Registry) CaptainIndex(externalID string) (int, error) {
	idx, ok := r.captainByExternalID[externalID]
	if !ok {
		return 0, ErrUnknownCaptain
	}
	return idx, nil
}

// PlayerIndex resolves a player by exact name
func (r *Registry) PlayerIndex(name string) (int, bool) {
	idx, ok := r.playerByName[name]
	return idx, ok
}

// Captains returns a copy of all captains in registration order
func (r *Registry) Captains() []models.Captain {
	out := make([]models.Captain, len(r.captains))
	for i, c := range r.captains {
		c.Roster = append([]int(nil), c.Roster...)
		out[i] = c
	}
	return out
}

// Players returns a copy of all players in import order
func (r *Registry) Players() []models.Player {
	out := make([]models.Player, len(r.players))
	for i, p := range r.players {
		if p.Owner != nil {
			owner := *p.Owner
			p.Owner = &owner
		}
		out[i] = p
	}
	return out
}

// SearchAvailable returns unpicked player names starting with prefix under
// Unicode case folding
func (r *Registry) SearchAvailable(prefix string) []string {
	fold := cases.Fold()
	prefix = fold.String(prefix)
	var names []string
	for i := range r.players {
		p := &r.players[i]
		if !p.Available() {
			continue
		}
		if strings.HasPrefix(fold.String(p.Name), prefix) {
			names = append(names, p.Name)
		}
	}
	return names
}

// Team returns the ordered player names on a captain's roster
func (r *Registry) Team(captainIdx int) []string {
	c := &r.captains[captainIdx]
	names := make([]string, 0, len(c.Roster))
	for _, pIdx := range c.Roster {
		names = append(names, r.players[pIdx].Name)
	}
	return names
}

// Describe renders a captain's name, balance and roster for display
func (r *Registry) Describe(captainIdx int) string {
	c := &r.captains[captainIdx]
	players := "None"
	if team := r.Team(captainIdx); len(team) > 0 {
		players = strings.Join(team, ", ")
	}
	return fmt.Sprintf("Name: %s\nBalance: %d\nPlayers: %s", c.Name, c.Balance, players)
}
