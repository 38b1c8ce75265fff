package auction

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// AuctionDTO represents the auction payload returned to clients.
type AuctionDTO struct {
	ID              uuid.UUID          `json:"id"`
	ProductID       uuid.UUID          `json:"product_id"`
	SellerID        uuid.UUID          `json:"seller_id"`
	Product         *ProductSummaryDTO `json:"product,omitempty"`
	Quantity        int                `json:"quantity"`
	StartingBid     string             `json:"starting_bid"`
	IncrementAmount string             `json:"increment_amount"`
	CurrentBid      *string            `json:"current_bid,omitempty"`
	CurrentBidderID *uuid.UUID         `json:"current_bidder_id,omitempty"`
	MinimumBid      string             `json:"minimum_bid"`
	BidCount        int                `json:"bid_count"`
	Status          string             `json:"status"`
	TimeRemaining   Countdown          `json:"time_remaining"`
	StartAt         time.Time          `json:"start_at"`
	EndAt           time.Time          `json:"end_at"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	SettledAt       *time.Time         `json:"settled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ProductSummaryDTO surfaces the listing fields auction cards need.
type ProductSummaryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Grade    string    `json:"grade"`
	Unit     string    `json:"unit"`
	Location string    `json:"location"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// BidDTO represents an accepted bid returned to clients.
type BidDTO struct {
	ID         uuid.UUID `json:"id"`
	AuctionID  uuid.UUID `json:"auction_id"`
	BidderID   uuid.UUID `json:"bidder_id"`
	Amount     string    `json:"amount"`
	NextMinBid string    `json:"next_min_bid"`
	BidCount   int       `json:"bid_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAuctionDTO builds a DTO from the persisted model, deriving the phase and
// countdown at the supplied instant.
func NewAuctionDTO(a *models.Auction, now time.Time) *AuctionDTO {
	dto := &AuctionDTO{
		ID:              a.ID,
		ProductID:       a.ProductID,
		SellerID:        a.SellerID,
		Quantity:        a.Quantity,
		StartingBid:     a.StartingBid.StringFixed(2),
		IncrementAmount: a.IncrementAmount.StringFixed(2),
		CurrentBidderID: a.CurrentBidderID,
		MinimumBid:      MinimumAcceptableBid(a).StringFixed(2),
		BidCount:        a.BidCount,
		Status:          EffectiveStatus(a, now).String(),
		StartAt:         a.StartAt,
		EndAt:           a.EndAt,
		CancelledAt:     a.CancelledAt,
		SettledAt:       a.SettledAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	if a.CurrentBid.Valid {
		amount := a.CurrentBid.Decimal.StringFixed(2)
		dto.CurrentBid = &amount
	}

	if EffectiveStatus(a, now) == enums.AuctionStatusUpcoming {
		dto.TimeRemaining = CountdownUntil(now, a.StartAt)
	} else {
		dto.TimeRemaining = CountdownUntil(now, a.EndAt)
	}

	if a.Product != nil {
		dto.Product = &ProductSummaryDTO{
			ID:       a.Product.ID,
			Name:     a.Product.Name,
			Category: a.Product.Category.String(),
			Grade:    a.Product.Grade.String(),
			Unit:     a.Product.Unit.String(),
			Location: a.Product.Location,
			ImageURL: a.Product.ImageURL,
		}
	}

	return dto
}

// NewBidDTO builds the response payload for a freshly accepted bid.
func NewBidDTO(bid *models.Bid, a *models.Auction) *BidDTO {
	return &BidDTO{
		ID:         bid.ID,
		AuctionID:  bid.AuctionID,
		BidderID:   bid.BidderID,
		Amount:     bid.Amount.StringFixed(2),
		NextMinBid: MinimumAcceptableBid(a).StringFixed(2),
		BidCount:   a.BidCount,
		CreatedAt:  bid.CreatedAt,
	}
}
