package auction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
)

func activeAuction(now time.Time) *models.Auction {
	return &models.Auction{
		ID:              uuid.New(),
		StartingBid:     decimal.NewFromInt(80),
		IncrementAmount: decimal.NewFromInt(5),
		Status:          enums.AuctionStatusUpcoming,
		StartAt:         now.Add(-time.Hour),
		EndAt:           now.Add(time.Hour),
	}
}

func TestMinimumAcceptableBid(t *testing.T) {
	now := time.Now()
	a := activeAuction(now)

	if got := MinimumAcceptableBid(a); !got.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("expected first minimum 85, got %s", got)
	}

	a.CurrentBid = decimal.NewNullDecimal(decimal.NewFromInt(85))
	if got := MinimumAcceptableBid(a); !got.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected minimum 90 after bid at 85, got %s", got)
	}
}

func TestValidateBid_FirstBidSequence(t *testing.T) {
	now := time.Now()
	a := activeAuction(now)

	// starting 80, increment 5: 82 is above starting but under the increment floor
	err := ValidateBid(a, decimal.NewFromInt(82), now)
	if !pkgerrors.IsCode(err, pkgerrors.CodeBidTooLow) {
		t.Fatalf("expected bid too low for 82, got %v", err)
	}

	if err := ValidateBid(a, decimal.NewFromInt(85), now); err != nil {
		t.Fatalf("expected 85 to pass, got %v", err)
	}

	// once 85 holds, another 85 must fail with the new minimum of 90
	a.CurrentBid = decimal.NewNullDecimal(decimal.NewFromInt(85))
	err = ValidateBid(a, decimal.NewFromInt(85), now)
	if !pkgerrors.IsCode(err, pkgerrors.CodeBidTooLow) {
		t.Fatalf("expected bid too low for repeat 85, got %v", err)
	}
	typed := pkgerrors.As(err)
	details, ok := typed.Details().(map[string]string)
	if !ok || details["minimum_bid"] != "90.00" {
		t.Fatalf("expected minimum_bid detail 90.00, got %v", typed.Details())
	}
}

func TestValidateBid_WindowChecks(t *testing.T) {
	now := time.Now()

	upcoming := activeAuction(now)
	upcoming.StartAt = now.Add(time.Hour)
	upcoming.EndAt = now.Add(2 * time.Hour)
	if err := ValidateBid(upcoming, decimal.NewFromInt(100), now); !pkgerrors.IsCode(err, pkgerrors.CodeAuctionNotActive) {
		t.Fatalf("expected not active for upcoming auction, got %v", err)
	}

	ended := activeAuction(now)
	ended.EndAt = now.Add(-time.Minute)
	if err := ValidateBid(ended, decimal.NewFromInt(100), now); !pkgerrors.IsCode(err, pkgerrors.CodeAuctionNotActive) {
		t.Fatalf("expected not active for ended auction, got %v", err)
	}

	cancelled := activeAuction(now)
	cancelled.Status = enums.AuctionStatusCancelled
	if err := ValidateBid(cancelled, decimal.NewFromInt(100), now); !pkgerrors.IsCode(err, pkgerrors.CodeAuctionNotActive) {
		t.Fatalf("expected not active for cancelled auction, got %v", err)
	}
}

func TestValidateBid_RejectsSubCentPrecision(t *testing.T) {
	now := time.Now()
	a := activeAuction(now)

	amount, _ := decimal.NewFromString("85.001")
	if err := ValidateBid(a, amount, now); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for sub-cent amount, got %v", err)
	}
}
