package marketprice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

func insertQuote(t *testing.T, db *gorm.DB, commodity string, category enums.ProductCategory, market string, price int64, quotedAt time.Time) *models.MarketPrice {
	t.Helper()

	quote := &models.MarketPrice{
		ID:        uuid.New(),
		Commodity: commodity,
		Category:  category,
		Market:    market,
		Unit:      enums.ProductUnitKg,
		PricePKR:  decimal.NewFromInt(price),
		QuotedAt:  quotedAt,
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

func TestRepositoryListLatest_dedupesByCommodityAndMarket(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	insertQuote(t, db, "Basmati Rice", enums.ProductCategoryRice, "Lahore Mandi", 80, now.Add(-72*time.Hour))
	insertQuote(t, db, "Basmati Rice", enums.ProductCategoryRice, "Lahore Mandi", 82, now.Add(-48*time.Hour))
	latest := insertQuote(t, db, "Basmati Rice", enums.ProductCategoryRice, "Lahore Mandi", 85, now.Add(-time.Hour))
	karachi := insertQuote(t, db, "Basmati Rice", enums.ProductCategoryRice, "Karachi Mandi", 88, now.Add(-2*time.Hour))

	rows, err := repo.ListLatest(context.Background(), ListFilters{}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, latest.ID, rows[0].ID)
	assert.Equal(t, karachi.ID, rows[1].ID)
	assert.True(t, rows[0].PricePKR.Equal(decimal.NewFromInt(85)))
}

func TestRepositoryListLatest_filters(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	insertQuote(t, db, "Basmati Rice", enums.ProductCategoryRice, "Lahore Mandi", 85, now.Add(-time.Hour))
	wheat := insertQuote(t, db, "Durum Wheat", enums.ProductCategoryWheat, "Multan Mandi", 62, now.Add(-time.Hour))

	category := enums.ProductCategoryWheat
	rows, err := repo.ListLatest(context.Background(), ListFilters{Category: &category}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, wheat.ID, rows[0].ID)

	rows, err = repo.ListLatest(context.Background(), ListFilters{Market: "multan"}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Multan Mandi", rows[0].Market)

	rows, err = repo.ListLatest(context.Background(), ListFilters{Market: "hyderabad"}, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryListLatest_limitCap(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	insertQuote(t, db, "Basmati Rice", enums.ProductCategoryRice, "Lahore Mandi", 85, now.Add(-time.Hour))
	insertQuote(t, db, "Durum Wheat", enums.ProductCategoryWheat, "Lahore Mandi", 62, now.Add(-time.Hour))
	insertQuote(t, db, "Kinnow", enums.ProductCategoryFruits, "Lahore Mandi", 120, now.Add(-time.Hour))

	rows, err := repo.ListLatest(context.Background(), ListFilters{}, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
