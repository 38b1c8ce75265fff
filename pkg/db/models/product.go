package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// Product represents the canonical seller listing.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	SellerID    uuid.UUID             `gorm:"column:seller_id;type:uuid;not null"`
	Name        string                `gorm:"column:name;not null"`
	Description *string               `gorm:"column:description"`
	Category    enums.ProductCategory `gorm:"column:category;type:product_category;not null"`
	Grade       enums.ProductGrade    `gorm:"column:grade;type:product_grade;not null;default:'standard'"`
	Unit        enums.ProductUnit     `gorm:"column:unit;type:product_unit;not null"`
	PricePKR    decimal.Decimal       `gorm:"column:price_pkr;type:numeric(12,2);not null"`
	Location    string                `gorm:"column:location;not null"`
	ImageURL    *string               `gorm:"column:image_url"`
	IsActive    bool                  `gorm:"column:is_active;not null;default:true"`
	Inventory   *InventoryItem        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
