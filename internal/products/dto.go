package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID     `json:"id"`
	SellerID    uuid.UUID     `json:"seller_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Category    string        `json:"category"`
	Grade       string        `json:"grade"`
	Unit        string        `json:"unit"`
	PricePKR    string        `json:"price_pkr"`
	Location    string        `json:"location"`
	ImageURL    *string       `json:"image_url,omitempty"`
	IsActive    bool          `json:"is_active"`
	Inventory   *InventoryDTO `json:"inventory,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// InventoryDTO summarizes the stock position of a product.
type InventoryDTO struct {
	AvailableQty int `json:"available_qty"`
	ReservedQty  int `json:"reserved_qty"`
	FreeQty      int `json:"free_qty"`
}

// ProductListResult is the paginated catalog payload.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		SellerID:    product.SellerID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category.String(),
		Grade:       product.Grade.String(),
		Unit:        product.Unit.String(),
		PricePKR:    product.PricePKR.StringFixed(2),
		Location:    product.Location,
		ImageURL:    product.ImageURL,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Inventory != nil {
		dto.Inventory = &InventoryDTO{
			AvailableQty: product.Inventory.AvailableQty,
			ReservedQty:  product.Inventory.ReservedQty,
			FreeQty:      product.Inventory.AvailableQty - product.Inventory.ReservedQty,
		}
	}
	return dto
}
