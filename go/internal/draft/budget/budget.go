// Package budget computes how much a captain may legally bid.
//
// A captain must always keep at least the minimum bid in reserve for every
// roster slot not yet filled, including the slot currently being auctioned.
package budget

import "github.com/mcdev12/auction/go/internal/models"

// SlotsRemaining returns the number of roster slots the captain still has to fill
func SlotsRemaining(c *models.Captain, s models.AuctionSettings) int {
	return s.TeamSize - c.RosterSize()
}

// MaxBid returns balance - slotsRemaining*minBid. The result may be below the
// minimum bid, in which case the captain cannot bid at all.
func MaxBid(c *models.Captain, s models.AuctionSettings) int {
	return c.Balance - SlotsRemaining(c, s)*s.MinBid
}

// CanAfford reports whether amount is within the captain's max bid
func CanAfford(c *models.Captain, s models.AuctionSettings, amount int) bool {
	return amount <= MaxBid(c, s)
}
