package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
)

// Seed inserts demo catalog, auction and market data for local development.
// It is a no-op when products already exist, so repeated boots stay clean.
func Seed(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	var count int64
	if err := client.DB().WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	sellerID := uuid.New()

	return client.WithTx(ctx, func(tx *gorm.DB) error {
		products := demoProducts(sellerID)
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return fmt.Errorf("seeding product %q: %w", products[i].Name, err)
			}
		}

		auctions := demoAuctions(products, now)
		for i := range auctions {
			if err := tx.Create(&auctions[i]).Error; err != nil {
				return fmt.Errorf("seeding auction for product %s: %w", auctions[i].ProductID, err)
			}
		}

		for _, quote := range demoMarketPrices(now) {
			if err := tx.Create(&quote).Error; err != nil {
				return fmt.Errorf("seeding market price %q: %w", quote.Commodity, err)
			}
		}

		if logg != nil {
			logg.Info(ctx, "dev fixtures seeded")
		}
		return nil
	})
}

func demoProducts(sellerID uuid.UUID) []models.Product {
	desc := func(s string) *string { return &s }
	return []models.Product{
		{
			ID:          uuid.New(),
			SellerID:    sellerID,
			Name:        "Premium Basmati Rice",
			Description: desc("Long grain basmati, aged 12 months"),
			Category:    enums.ProductCategoryRice,
			Grade:       enums.ProductGradePremium,
			Unit:        enums.ProductUnitKg,
			PricePKR:    decimal.NewFromInt(85),
			Location:    "Lahore",
			Inventory:   &models.InventoryItem{AvailableQty: 500},
		},
		{
			ID:          uuid.New(),
			SellerID:    sellerID,
			Name:        "Organic Wheat",
			Description: desc("Chemical-free wheat from Punjab farms"),
			Category:    enums.ProductCategoryWheat,
			Grade:       enums.ProductGradeA,
			Unit:        enums.ProductUnitKg,
			PricePKR:    decimal.NewFromInt(34),
			Location:    "Faisalabad",
			Inventory:   &models.InventoryItem{AvailableQty: 1200},
		},
		{
			ID:          uuid.New(),
			SellerID:    sellerID,
			Name:        "Yellow Corn",
			Description: desc("Feed-grade yellow corn, moisture below 14%"),
			Category:    enums.ProductCategoryCorn,
			Grade:       enums.ProductGradeStandard,
			Unit:        enums.ProductUnitKg,
			PricePKR:    decimal.NewFromInt(28),
			Location:    "Multan",
			Inventory:   &models.InventoryItem{AvailableQty: 800},
		},
		{
			ID:          uuid.New(),
			SellerID:    sellerID,
			Name:        "Red Chilli",
			Description: desc("Sun-dried Kunri red chilli"),
			Category:    enums.ProductCategorySpices,
			Grade:       enums.ProductGradePremium,
			Unit:        enums.ProductUnitKg,
			PricePKR:    decimal.NewFromInt(125),
			Location:    "Karachi",
			Inventory:   &models.InventoryItem{AvailableQty: 300},
		},
	}
}

func demoAuctions(products []models.Product, now time.Time) []models.Auction {
	if len(products) < 3 {
		return nil
	}
	return []models.Auction{
		{
			ID:              uuid.New(),
			ProductID:       products[0].ID,
			SellerID:        products[0].SellerID,
			Quantity:        100,
			StartingBid:     decimal.NewFromInt(80),
			IncrementAmount: decimal.NewFromInt(5),
			Status:          enums.AuctionStatusUpcoming,
			StartAt:         now.Add(-2 * time.Hour),
			EndAt:           now.Add(22 * time.Hour),
		},
		{
			ID:              uuid.New(),
			ProductID:       products[1].ID,
			SellerID:        products[1].SellerID,
			Quantity:        500,
			StartingBid:     decimal.NewFromInt(30),
			IncrementAmount: decimal.NewFromInt(2),
			Status:          enums.AuctionStatusUpcoming,
			StartAt:         now.Add(-1 * time.Hour),
			EndAt:           now.Add(46 * time.Hour),
		},
		{
			ID:              uuid.New(),
			ProductID:       products[2].ID,
			SellerID:        products[2].SellerID,
			Quantity:        250,
			StartingBid:     decimal.NewFromInt(25),
			IncrementAmount: decimal.NewFromInt(1),
			Status:          enums.AuctionStatusUpcoming,
			StartAt:         now.Add(6 * time.Hour),
			EndAt:           now.Add(30 * time.Hour),
		},
	}
}

func demoMarketPrices(now time.Time) []models.MarketPrice {
	quote := func(commodity string, category enums.ProductCategory, market string, price int64, change string) models.MarketPrice {
		changeDec, _ := decimal.NewFromString(change)
		return models.MarketPrice{
			ID:            uuid.New(),
			Commodity:     commodity,
			Category:      category,
			Market:        market,
			Unit:          enums.ProductUnitKg,
			PricePKR:      decimal.NewFromInt(price),
			ChangePercent: changeDec,
			QuotedAt:      now,
		}
	}
	return []models.MarketPrice{
		quote("Basmati Rice", enums.ProductCategoryRice, "Lahore Mandi", 85, "2.5"),
		quote("Wheat", enums.ProductCategoryWheat, "Faisalabad Mandi", 34, "-1.2"),
		quote("Yellow Corn", enums.ProductCategoryCorn, "Multan Mandi", 28, "0.8"),
		quote("Red Chilli", enums.ProductCategorySpices, "Karachi Mandi", 125, "4.1"),
	}
}
