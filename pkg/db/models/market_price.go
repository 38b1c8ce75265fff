package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// MarketPrice is a daily reference price quote for a commodity at a mandi.
type MarketPrice struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Commodity     string                `gorm:"column:commodity;not null"`
	Category      enums.ProductCategory `gorm:"column:category;type:product_category;not null"`
	Market        string                `gorm:"column:market;not null"`
	Unit          enums.ProductUnit     `gorm:"column:unit;type:product_unit;not null"`
	PricePKR      decimal.Decimal       `gorm:"column:price_pkr;type:numeric(12,2);not null"`
	ChangePercent decimal.Decimal       `gorm:"column:change_percent;type:numeric(6,2);not null;default:0"`
	QuotedAt      time.Time             `gorm:"column:quoted_at;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
