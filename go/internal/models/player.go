package models

// Player represents an auctionable player in the pool
type Player struct {
	Name        string `json:"name"`
	Restricted  bool   `json:"restricted"` // counts against the per-roster restricted ("legio") limit
	Picked      bool   `json:"picked"`
	Owner       *int   `json:"owner,omitempty"` // captain index, nil until settled
	RecentScore int    `json:"recent_score"`    // display only
}

// Available reports whether the player can still be nominated
func (p *Player) Available() bool {
	return !p.Picked && p.Owner == nil
}

// scoreBand maps the upper bound of a recent-score band to its display colour.
type scoreBand struct {
	max   int
	color int
}

var scoreBands = []scoreBand{
	{0, 0x808080},
	{300, 0x930D0D},
	{450, 0xCD3333},
	{650, 0xCC7A00},
	{900, 0xCCB800},
	{1200, 0x849B24},
	{1600, 0x4D7326},
	{2000, 0x4099BF},
	{2450, 0x3972C6},
	{2900, 0x6844D4},
	{3400, 0x522B99},
	{4000, 0x411D73},
	{4700, 0x310D59},
}

// ScoreColor returns the RGB colour used to render a recent performance score
func ScoreColor(score int) int {
	if score < 0 {
		score = 0
	}
	for _, b := range scoreBands {
		if score <= b.max {
			return b.color
		}
	}
	return 0x24073D
}
