package auction

import (
	"time"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// EffectiveStatus derives the auction phase from its window timestamps.
// Cancelled is the only stored status that overrides the derived value, so
// auctions flip from upcoming to active to ended without a scheduler touching
// the row.
func EffectiveStatus(a *models.Auction, now time.Time) enums.AuctionStatus {
	if a.Status == enums.AuctionStatusCancelled {
		return enums.AuctionStatusCancelled
	}
	switch {
	case now.Before(a.StartAt):
		return enums.AuctionStatusUpcoming
	case now.Before(a.EndAt):
		return enums.AuctionStatusActive
	default:
		return enums.AuctionStatusEnded
	}
}

// CanTransition reports whether the status change is allowed. Transitions
// only move forward; terminal statuses accept nothing.
func CanTransition(from, to enums.AuctionStatus) bool {
	if from.IsTerminal() {
		return false
	}
	switch from {
	case enums.AuctionStatusUpcoming:
		return to == enums.AuctionStatusActive || to == enums.AuctionStatusCancelled
	case enums.AuctionStatusActive:
		return to == enums.AuctionStatusEnded || to == enums.AuctionStatusCancelled
	default:
		return false
	}
}
