package models

// Captain owns a budget and a roster of players won at auction
type Captain struct {
	Name            string `json:"name"`
	ExternalID      string `json:"external_id"` // chat/user identity, unique per draft
	Balance         int    `json:"balance"`
	Roster          []int  `json:"roster"` // player indices in acquisition order
	RestrictedCount int    `json:"restricted_count"`
}

// RosterSize returns the number of players the captain has won
func (c *Captain) RosterSize() int {
	return len(c.Roster)
}
