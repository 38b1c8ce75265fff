package auction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

// Repository wires together auction, bid, and inventory persistence.
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

// FindByID loads the auction with its product listing.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	var a models.Auction
	if err := r.db.WithContext(ctx).Preload("Product").First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new auction row.
func (r *Repository) Create(ctx context.Context, a *models.Auction) (*models.Auction, error) {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// Save persists the mutated auction row.
func (r *Repository) Save(ctx context.Context, a *models.Auction) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// CountLiveByProduct returns the number of not-yet-finished auctions
// referencing the product.
func (r *Repository) CountLiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Auction{}).
		Where("product_id = ?", productID).
		Where("status <> ?", enums.AuctionStatusCancelled).
		Where("settled_at IS NULL").
		Count(&count).Error
	return count, err
}

// ApplyBid performs the optimistic, version-guarded high-bid swap. It reports
// false when another writer advanced the version first.
func (r *Repository) ApplyBid(ctx context.Context, auctionID uuid.UUID, expectedVersion int64, amount decimal.Decimal, bidderID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE auctions
		SET current_bid = ?,
		    current_bidder_id = ?,
		    bid_count = bid_count + 1,
		    version = version + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`,
		amount, bidderID, auctionID, expectedVersion,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// InsertBid appends the accepted bid record.
func (r *Repository) InsertBid(ctx context.Context, bid *models.Bid) (*models.Bid, error) {
	if err := r.db.WithContext(ctx).Create(bid).Error; err != nil {
		return nil, err
	}
	return bid, nil
}

// ListBids returns the accepted bids for an auction, newest first.
func (r *Repository) ListBids(ctx context.Context, auctionID uuid.UUID, limit int) ([]models.Bid, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	var rows []models.Bid
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkCancelled stores the cancellation decision. The status guard keeps a
// double cancel from moving cancelled_at.
func (r *Repository) MarkCancelled(ctx context.Context, auctionID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ? AND status <> ? AND settled_at IS NULL", auctionID, enums.AuctionStatusCancelled).
		Updates(map[string]any{
			"status":       enums.AuctionStatusCancelled,
			"cancelled_at": at,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkSettled records settlement exactly once per auction.
func (r *Repository) MarkSettled(ctx context.Context, auctionID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ? AND settled_at IS NULL AND status <> ?", auctionID, enums.AuctionStatusCancelled).
		Updates(map[string]any{
			"status":     enums.AuctionStatusEnded,
			"settled_at": at,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReserveInventory moves quantity into the reserved pool, refusing when the
// free pool is too small.
func (r *Repository) ReserveInventory(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET reserved_qty = reserved_qty + ?, updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND available_qty - reserved_qty >= ?`,
		qty, productID, qty,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseInventory returns reserved quantity to the free pool.
func (r *Repository) ReleaseInventory(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET reserved_qty = reserved_qty - ?, updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND reserved_qty >= ?`,
		qty, productID, qty,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CommitInventory removes settled quantity from both pools.
func (r *Repository) CommitInventory(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = available_qty - ?, reserved_qty = reserved_qty - ?, updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND reserved_qty >= ? AND available_qty >= ?`,
		qty, qty, productID, qty, qty,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type auctionListQuery struct {
	Filters    AuctionListFilters
	Sort       ListSort
	Pagination pagination.Params
	Now        time.Time
}

// ListAuctions pages through auctions honoring the tab, category, and search
// filters. Time-keyed sorts use cursor pagination; price sorts serve a single
// capped page because the sort key shifts with every accepted bid.
func (r *Repository) ListAuctions(ctx context.Context, query auctionListQuery) ([]models.Auction, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.Auction{}).
		Preload("Product").
		Joins("JOIN products ON products.id = auctions.product_id")

	now := query.Now
	switch query.Filters.Tab {
	case TabActive:
		qb = qb.Where("auctions.status <> ?", enums.AuctionStatusCancelled).
			Where("auctions.start_at <= ? AND auctions.end_at > ?", now, now)
	case TabUpcoming:
		qb = qb.Where("auctions.status <> ?", enums.AuctionStatusCancelled).
			Where("auctions.start_at > ?", now)
	case TabEnded:
		qb = qb.Where("auctions.end_at <= ? OR auctions.status = ?", now, enums.AuctionStatusCancelled)
	}

	if query.Filters.Category != nil {
		qb = qb.Where("products.category = ?", *query.Filters.Category)
	}
	if search := strings.TrimSpace(query.Filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(products.name) LIKE ? OR LOWER(products.location) LIKE ?)", pattern, pattern)
	}

	switch query.Sort {
	case SortEndingSoon:
		if cursor != nil {
			qb = qb.Where("(auctions.end_at > ?) OR (auctions.end_at = ? AND auctions.id > ?)", cursor.Key, cursor.Key, cursor.ID)
		}
		qb = qb.Order("auctions.end_at ASC").Order("auctions.id ASC")
	case SortPriceAsc:
		qb = qb.Order("COALESCE(auctions.current_bid, auctions.starting_bid) ASC").Order("auctions.id ASC")
	case SortPriceDesc:
		qb = qb.Order("COALESCE(auctions.current_bid, auctions.starting_bid) DESC").Order("auctions.id ASC")
	default:
		if cursor != nil {
			qb = qb.Where("(auctions.created_at < ?) OR (auctions.created_at = ? AND auctions.id < ?)", cursor.Key, cursor.Key, cursor.ID)
		}
		qb = qb.Order("auctions.created_at DESC").Order("auctions.id DESC")
	}

	var rows []models.Auction
	if err := qb.Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		switch query.Sort {
		case SortEndingSoon:
			nextCursor = pagination.EncodeCursor(pagination.Cursor{Key: last.EndAt, ID: last.ID})
		case SortPriceAsc, SortPriceDesc:
			// price sorts stay single-page
		default:
			nextCursor = pagination.EncodeCursor(pagination.Cursor{Key: last.CreatedAt, ID: last.ID})
		}
	}

	return rows, nextCursor, nil
}
