package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is an accepted bid record. Rejected submissions are never persisted.
type Bid struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	AuctionID      uuid.UUID       `gorm:"column:auction_id;type:uuid;not null;index"`
	BidderID       uuid.UUID       `gorm:"column:bidder_id;type:uuid;not null"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	IdempotencyKey *string         `gorm:"column:idempotency_key;uniqueIndex:idx_bids_idempotency_key"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
