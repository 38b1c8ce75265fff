package auction

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:auction_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.InventoryItem{},
		&models.Auction{},
		&models.Bid{},
		&models.Notification{},
		&models.OutboxEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, sellerID uuid.UUID) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SellerID: sellerID,
		Name:     "Premium Basmati Rice",
		Category: enums.ProductCategoryRice,
		Grade:    enums.ProductGradePremium,
		Unit:     enums.ProductUnitKg,
		PricePKR: decimal.NewFromInt(85),
		Location: "Lahore",
		IsActive: true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustCreateTestInventory(t *testing.T, tx *gorm.DB, productID uuid.UUID, available, reserved int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		ProductID:    productID,
		AvailableQty: available,
		ReservedQty:  reserved,
	}
	if err := tx.Create(item).Error; err != nil {
		t.Fatalf("create inventory: %v", err)
	}
	return item
}

func mustCreateTestAuction(t *testing.T, tx *gorm.DB, product *models.Product, now time.Time) *models.Auction {
	t.Helper()
	a := &models.Auction{
		ID:              uuid.New(),
		ProductID:       product.ID,
		SellerID:        product.SellerID,
		Quantity:        100,
		StartingBid:     decimal.NewFromInt(80),
		IncrementAmount: decimal.NewFromInt(5),
		Status:          enums.AuctionStatusUpcoming,
		StartAt:         now.Add(-time.Hour),
		EndAt:           now.Add(time.Hour),
	}
	if err := tx.Create(a).Error; err != nil {
		t.Fatalf("create auction: %v", err)
	}
	return a
}
