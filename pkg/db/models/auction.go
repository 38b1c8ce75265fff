package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// Auction is a timed listing for a fixed quantity of a product.
//
// Status only stores operator decisions (cancelled); the upcoming/active/ended
// phases are derived from StartAt/EndAt when the row is read. Version guards
// concurrent bid writes via conditional UPDATE.
type Auction struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	SellerID        uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Quantity        int                 `gorm:"column:quantity;not null"`
	StartingBid     decimal.Decimal     `gorm:"column:starting_bid;type:numeric(12,2);not null"`
	IncrementAmount decimal.Decimal     `gorm:"column:increment_amount;type:numeric(12,2);not null"`
	CurrentBid      decimal.NullDecimal `gorm:"column:current_bid;type:numeric(12,2)"`
	CurrentBidderID *uuid.UUID          `gorm:"column:current_bidder_id;type:uuid"`
	BidCount        int                 `gorm:"column:bid_count;not null;default:0"`
	Version         int64               `gorm:"column:version;not null;default:0"`
	Status          enums.AuctionStatus `gorm:"column:status;type:auction_status;not null;default:'upcoming'"`
	StartAt         time.Time           `gorm:"column:start_at;not null"`
	EndAt           time.Time           `gorm:"column:end_at;not null"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	SettledAt       *time.Time          `gorm:"column:settled_at"`
	Product         *Product            `gorm:"foreignKey:ProductID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
