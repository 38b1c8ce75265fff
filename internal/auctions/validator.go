package auction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
)

// MinimumAcceptableBid returns the lowest amount the next bid may carry:
// the current high bid (or starting bid when none exists) plus the increment.
func MinimumAcceptableBid(a *models.Auction) decimal.Decimal {
	base := a.StartingBid
	if a.CurrentBid.Valid {
		base = a.CurrentBid.Decimal
	}
	return base.Add(a.IncrementAmount)
}

// ValidateBid checks a candidate amount against the auction state at the
// given instant. It returns nil when the bid is acceptable.
func ValidateBid(a *models.Auction, amount decimal.Decimal, now time.Time) error {
	switch status := EffectiveStatus(a, now); status {
	case enums.AuctionStatusActive:
	case enums.AuctionStatusUpcoming:
		return pkgerrors.New(pkgerrors.CodeAuctionNotActive, "auction has not started").
			WithDetails(map[string]string{"starts_at": a.StartAt.UTC().Format(time.RFC3339)})
	case enums.AuctionStatusEnded:
		return pkgerrors.New(pkgerrors.CodeAuctionNotActive, "auction has ended")
	case enums.AuctionStatusCancelled:
		return pkgerrors.New(pkgerrors.CodeAuctionNotActive, "auction was cancelled")
	default:
		return pkgerrors.New(pkgerrors.CodeAuctionNotActive, fmt.Sprintf("auction is %s", status))
	}

	if !amount.Round(2).Equal(amount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "bid amount supports at most two decimal places")
	}

	if minimum := MinimumAcceptableBid(a); amount.LessThan(minimum) {
		return pkgerrors.New(pkgerrors.CodeBidTooLow,
			fmt.Sprintf("bid must be at least %s", minimum.StringFixed(2))).
			WithDetails(map[string]string{"minimum_bid": minimum.StringFixed(2)})
	}
	return nil
}
