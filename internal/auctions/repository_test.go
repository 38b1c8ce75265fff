package auction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

func TestApplyBidVersionGuard(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now()

	product := mustCreateTestProduct(t, conn, uuid.New())
	a := mustCreateTestAuction(t, conn, product, now)
	bidder := uuid.New()

	applied, err := repo.ApplyBid(ctx, a.ID, a.Version, decimal.NewFromInt(85), bidder)
	if err != nil {
		t.Fatalf("apply bid: %v", err)
	}
	if !applied {
		t.Fatal("expected first apply to succeed")
	}

	// same expected version again: the row moved on, so the swap must refuse
	applied, err = repo.ApplyBid(ctx, a.ID, a.Version, decimal.NewFromInt(90), bidder)
	if err != nil {
		t.Fatalf("apply bid: %v", err)
	}
	if applied {
		t.Fatal("expected stale version to be rejected")
	}

	reloaded, err := repo.FindByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("reload auction: %v", err)
	}
	if reloaded.Version != a.Version+1 {
		t.Fatalf("expected version %d, got %d", a.Version+1, reloaded.Version)
	}
	if !reloaded.CurrentBid.Valid || !reloaded.CurrentBid.Decimal.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("expected current bid 85, got %v", reloaded.CurrentBid)
	}
	if reloaded.BidCount != 1 {
		t.Fatalf("expected bid count 1, got %d", reloaded.BidCount)
	}
}

func TestMarkSettledIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now()

	product := mustCreateTestProduct(t, conn, uuid.New())
	a := mustCreateTestAuction(t, conn, product, now)

	applied, err := repo.MarkSettled(ctx, a.ID, now)
	if err != nil {
		t.Fatalf("mark settled: %v", err)
	}
	if !applied {
		t.Fatal("expected first settle to apply")
	}

	applied, err = repo.MarkSettled(ctx, a.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("mark settled again: %v", err)
	}
	if applied {
		t.Fatal("expected second settle to be a no-op")
	}
}

func TestMarkCancelledRefusesSettledAuction(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now()

	product := mustCreateTestProduct(t, conn, uuid.New())
	a := mustCreateTestAuction(t, conn, product, now)

	if _, err := repo.MarkSettled(ctx, a.ID, now); err != nil {
		t.Fatalf("mark settled: %v", err)
	}
	applied, err := repo.MarkCancelled(ctx, a.ID, now)
	if err != nil {
		t.Fatalf("mark cancelled: %v", err)
	}
	if applied {
		t.Fatal("expected cancel after settle to be refused")
	}
}

func TestInventoryGuards(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	productID := uuid.New()
	mustCreateTestInventory(t, conn, productID, 100, 0)

	applied, err := repo.ReserveInventory(ctx, productID, 80)
	if err != nil || !applied {
		t.Fatalf("expected reserve of 80 to apply, got applied=%v err=%v", applied, err)
	}

	// only 20 remain free
	applied, err = repo.ReserveInventory(ctx, productID, 30)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if applied {
		t.Fatal("expected over-reserve to be refused")
	}

	applied, err = repo.CommitInventory(ctx, productID, 80)
	if err != nil || !applied {
		t.Fatalf("expected commit to apply, got applied=%v err=%v", applied, err)
	}

	var item models.InventoryItem
	if err := conn.First(&item, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("reload inventory: %v", err)
	}
	if item.AvailableQty != 20 || item.ReservedQty != 0 {
		t.Fatalf("expected 20 available / 0 reserved, got %d / %d", item.AvailableQty, item.ReservedQty)
	}

	applied, err = repo.ReleaseInventory(ctx, productID, 5)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if applied {
		t.Fatal("expected release beyond reserved to be refused")
	}
}

func TestListAuctionsTabsAndCursor(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now()

	product := mustCreateTestProduct(t, conn, uuid.New())

	active := mustCreateTestAuction(t, conn, product, now)

	upcoming := mustCreateTestAuction(t, conn, product, now)
	if err := conn.Model(upcoming).Updates(map[string]any{
		"start_at": now.Add(time.Hour),
		"end_at":   now.Add(2 * time.Hour),
	}).Error; err != nil {
		t.Fatalf("update upcoming: %v", err)
	}

	ended := mustCreateTestAuction(t, conn, product, now)
	if err := conn.Model(ended).Updates(map[string]any{
		"start_at": now.Add(-3 * time.Hour),
		"end_at":   now.Add(-time.Hour),
	}).Error; err != nil {
		t.Fatalf("update ended: %v", err)
	}

	cases := []struct {
		tab  ListTab
		want uuid.UUID
	}{
		{TabActive, active.ID},
		{TabUpcoming, upcoming.ID},
		{TabEnded, ended.ID},
	}
	for _, tc := range cases {
		rows, _, err := repo.ListAuctions(ctx, auctionListQuery{
			Filters: AuctionListFilters{Tab: tc.tab},
			Sort:    SortNewest,
			Now:     now,
		})
		if err != nil {
			t.Fatalf("list %s: %v", tc.tab, err)
		}
		if len(rows) != 1 || rows[0].ID != tc.want {
			t.Fatalf("tab %s: expected single auction %s, got %d rows", tc.tab, tc.want, len(rows))
		}
		if rows[0].Product == nil {
			t.Fatalf("tab %s: expected product preloaded", tc.tab)
		}
	}

	all, cursor, err := repo.ListAuctions(ctx, auctionListQuery{
		Filters:    AuctionListFilters{Tab: TabAll},
		Sort:       SortNewest,
		Pagination: pagination.Params{Limit: 2},
		Now:        now,
	})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows on first page, got %d", len(all))
	}
	if cursor == "" {
		t.Fatal("expected next cursor for remaining row")
	}

	rest, cursor2, err := repo.ListAuctions(ctx, auctionListQuery{
		Filters:    AuctionListFilters{Tab: TabAll},
		Sort:       SortNewest,
		Pagination: pagination.Params{Limit: 2, Cursor: cursor},
		Now:        now,
	})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 row on second page, got %d", len(rest))
	}
	if cursor2 != "" {
		t.Fatalf("expected no further cursor, got %q", cursor2)
	}

	for _, first := range all {
		if first.ID == rest[0].ID {
			t.Fatal("second page repeated a first-page row")
		}
	}
}

func TestListAuctionsSearchFilter(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now()

	rice := mustCreateTestProduct(t, conn, uuid.New())
	mustCreateTestAuction(t, conn, rice, now)

	wheat := mustCreateTestProduct(t, conn, uuid.New())
	if err := conn.Model(wheat).Update("name", "Organic Wheat").Error; err != nil {
		t.Fatalf("rename product: %v", err)
	}
	wheatAuction := mustCreateTestAuction(t, conn, wheat, now)

	rows, _, err := repo.ListAuctions(ctx, auctionListQuery{
		Filters: AuctionListFilters{Tab: TabAll, Query: "wheat"},
		Sort:    SortNewest,
		Now:     now,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != wheatAuction.ID {
		t.Fatalf("expected only the wheat auction, got %d rows", len(rows))
	}
}
