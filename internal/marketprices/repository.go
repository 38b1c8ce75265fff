package marketprice

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
)

// Repository reads and writes the daily mandi price board.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListFilters describe the supported price board filters.
type ListFilters struct {
	Category *enums.ProductCategory
	Market   string
}

// Insert stores a quote row.
func (r *Repository) Insert(ctx context.Context, quote *models.MarketPrice) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// FindLatestBefore returns the newest quote for the commodity/market pair
// quoted strictly before the given instant, or nil when the pair has no
// earlier history.
func (r *Repository) FindLatestBefore(ctx context.Context, commodity, market string, before time.Time) (*models.MarketPrice, error) {
	var row models.MarketPrice
	err := r.db.WithContext(ctx).
		Where("commodity = ? AND market = ? AND quoted_at < ?", commodity, market, before).
		Order("quoted_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListLatest returns the newest quote per commodity/market pair matching the
// filters, most recently quoted first.
func (r *Repository) ListLatest(ctx context.Context, filters ListFilters, limit int) ([]models.MarketPrice, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	qb := r.db.WithContext(ctx).Model(&models.MarketPrice{}).
		Where(`NOT EXISTS (
			SELECT 1 FROM market_prices newer
			WHERE newer.commodity = market_prices.commodity
			  AND newer.market = market_prices.market
			  AND newer.quoted_at > market_prices.quoted_at
		)`)

	if filters.Category != nil {
		qb = qb.Where("category = ?", *filters.Category)
	}
	if market := strings.TrimSpace(filters.Market); market != "" {
		qb = qb.Where("LOWER(market) LIKE ?", "%"+strings.ToLower(market)+"%")
	}

	var rows []models.MarketPrice
	err := qb.Order("quoted_at DESC").Order("commodity ASC").Limit(limit).Find(&rows).Error
	return rows, err
}
