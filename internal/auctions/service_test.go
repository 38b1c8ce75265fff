package auction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	notification "github.com/agrimandi/agrimandi-backend/internal/notifications"
	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/outbox"
)

type fakeProductLoader struct {
	conn *gorm.DB
}

func (f *fakeProductLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := f.conn.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

type fakeBidCache struct {
	mu      sync.Mutex
	cached  map[string]string
	deleted []string
}

func (f *fakeBidCache) CacheCurrentBid(_ context.Context, auctionID, amount string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached == nil {
		f.cached = map[string]string{}
	}
	f.cached[auctionID] = amount
	return nil
}

func (f *fakeBidCache) InvalidateCurrentBid(_ context.Context, auctionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, auctionID)
	return nil
}

type serviceHarness struct {
	conn  *gorm.DB
	svc   Service
	cache *fakeBidCache
	now   time.Time
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	conn := newTestDB(t)
	cache := &fakeBidCache{}
	now := time.Now()

	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(
		NewRepository(conn),
		db.NewFromConn(conn),
		&fakeProductLoader{conn: conn},
		outboxSvc,
		notification.NewRepository(conn),
		cache,
		nil,
		nil,
		ServiceOptions{Now: func() time.Time { return now }},
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &serviceHarness{conn: conn, svc: svc, cache: cache, now: now}
}

func (h *serviceHarness) notificationsFor(t *testing.T, userID uuid.UUID, kind enums.NotificationType) []models.Notification {
	t.Helper()
	var rows []models.Notification
	if err := h.conn.Where("user_id = ? AND type = ?", userID, kind).Find(&rows).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	return rows
}

func (h *serviceHarness) outboxEvents(t *testing.T, eventType enums.OutboxEventType) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	if err := h.conn.Where("event_type = ?", eventType).Find(&rows).Error; err != nil {
		t.Fatalf("load outbox events: %v", err)
	}
	return rows
}

func TestPlaceBidSequence(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	a := mustCreateTestAuction(t, h.conn, product, h.now)
	buyerOne := uuid.New()
	buyerTwo := uuid.New()

	// starting 80, increment 5: 82 clears the starting bid but not the floor
	_, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyerOne, Amount: decimal.NewFromInt(82)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeBidTooLow) {
		t.Fatalf("expected bid too low for 82, got %v", err)
	}

	dto, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyerOne, Amount: decimal.NewFromInt(85)})
	if err != nil {
		t.Fatalf("expected 85 to be accepted, got %v", err)
	}
	if dto.Amount != "85.00" || dto.NextMinBid != "90.00" || dto.BidCount != 1 {
		t.Fatalf("unexpected bid dto: %+v", dto)
	}

	_, err = h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyerTwo, Amount: decimal.NewFromInt(85)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeBidTooLow) {
		t.Fatalf("expected repeat 85 to fail, got %v", err)
	}
	typed := pkgerrors.As(err)
	if details, ok := typed.Details().(map[string]string); !ok || details["minimum_bid"] != "90.00" {
		t.Fatalf("expected minimum_bid 90.00 detail, got %v", typed.Details())
	}

	dto, err = h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyerTwo, Amount: decimal.NewFromInt(90)})
	if err != nil {
		t.Fatalf("expected 90 to be accepted, got %v", err)
	}
	if dto.NextMinBid != "95.00" || dto.BidCount != 2 {
		t.Fatalf("unexpected second bid dto: %+v", dto)
	}

	reloaded, err := NewRepository(h.conn).FindByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("reload auction: %v", err)
	}
	if !reloaded.CurrentBid.Decimal.Equal(decimal.NewFromInt(90)) || reloaded.BidCount != 2 || reloaded.Version != 2 {
		t.Fatalf("unexpected auction state: bid=%v count=%d version=%d",
			reloaded.CurrentBid, reloaded.BidCount, reloaded.Version)
	}
	if reloaded.CurrentBidderID == nil || *reloaded.CurrentBidderID != buyerTwo {
		t.Fatal("expected buyer two to hold the high bid")
	}

	if events := h.outboxEvents(t, enums.EventBidAccepted); len(events) != 2 {
		t.Fatalf("expected 2 bid_accepted events, got %d", len(events))
	}
	if h.cache.cached[a.ID.String()] != "90.00" {
		t.Fatalf("expected cached high bid 90.00, got %q", h.cache.cached[a.ID.String()])
	}
}

func TestPlaceBidSellerForbidden(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	a := mustCreateTestAuction(t, h.conn, product, h.now)

	_, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: a.SellerID, Amount: decimal.NewFromInt(85)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for seller self-bid, got %v", err)
	}
}

func TestPlaceBidIdempotencyKeyReplay(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	a := mustCreateTestAuction(t, h.conn, product, h.now)
	buyer := uuid.New()
	key := uuid.NewString()

	_, err := h.svc.PlaceBid(ctx, PlaceBidInput{
		AuctionID: a.ID, BidderID: buyer, Amount: decimal.NewFromInt(85), IdempotencyKey: &key,
	})
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err = h.svc.PlaceBid(ctx, PlaceBidInput{
		AuctionID: a.ID, BidderID: buyer, Amount: decimal.NewFromInt(90), IdempotencyKey: &key,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeIdempotency) {
		t.Fatalf("expected idempotency rejection on key replay, got %v", err)
	}
}

func TestPlaceBidUnknownAuction(t *testing.T) {
	h := newServiceHarness(t)
	_, err := h.svc.PlaceBid(context.Background(), PlaceBidInput{
		AuctionID: uuid.New(), BidderID: uuid.New(), Amount: decimal.NewFromInt(85),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateAuctionReservesInventory(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	sellerID := uuid.New()
	product := mustCreateTestProduct(t, h.conn, sellerID)
	mustCreateTestInventory(t, h.conn, product.ID, 500, 0)

	dto, err := h.svc.CreateAuction(ctx, sellerID, CreateAuctionInput{
		ProductID:       product.ID,
		Quantity:        200,
		StartingBid:     decimal.NewFromInt(80),
		IncrementAmount: decimal.NewFromInt(5),
		StartAt:         h.now.Add(time.Hour),
		EndAt:           h.now.Add(25 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}
	if dto.Status != enums.AuctionStatusUpcoming.String() {
		t.Fatalf("expected upcoming status, got %s", dto.Status)
	}
	if dto.MinimumBid != "85.00" {
		t.Fatalf("expected minimum bid 85.00, got %s", dto.MinimumBid)
	}

	var item models.InventoryItem
	if err := h.conn.First(&item, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload inventory: %v", err)
	}
	if item.ReservedQty != 200 {
		t.Fatalf("expected 200 reserved, got %d", item.ReservedQty)
	}

	if events := h.outboxEvents(t, enums.EventAuctionCreated); len(events) != 1 {
		t.Fatalf("expected 1 auction_created event, got %d", len(events))
	}

	// a second auction cannot claim more than the remaining free stock
	_, err = h.svc.CreateAuction(ctx, sellerID, CreateAuctionInput{
		ProductID:       product.ID,
		Quantity:        400,
		StartingBid:     decimal.NewFromInt(80),
		IncrementAmount: decimal.NewFromInt(5),
		StartAt:         h.now.Add(time.Hour),
		EndAt:           h.now.Add(25 * time.Hour),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on over-reserve, got %v", err)
	}
}

func TestCreateAuctionOwnershipChecks(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	mustCreateTestInventory(t, h.conn, product.ID, 100, 0)

	input := CreateAuctionInput{
		ProductID:       product.ID,
		Quantity:        50,
		StartingBid:     decimal.NewFromInt(80),
		IncrementAmount: decimal.NewFromInt(5),
		StartAt:         h.now.Add(time.Hour),
		EndAt:           h.now.Add(25 * time.Hour),
	}

	if _, err := h.svc.CreateAuction(ctx, uuid.New(), input); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	input.EndAt = input.StartAt
	if _, err := h.svc.CreateAuction(ctx, product.SellerID, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty window, got %v", err)
	}
}

func TestUpdateAuctionFrozenOnceStarted(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	started := mustCreateTestAuction(t, h.conn, product, h.now)

	newStart := h.now.Add(2 * time.Hour)
	_, err := h.svc.UpdateAuction(ctx, started.SellerID, started.ID, UpdateAuctionInput{StartAt: &newStart})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected frozen terms for running auction, got %v", err)
	}

	upcoming := mustCreateTestAuction(t, h.conn, product, h.now)
	if err := h.conn.Model(upcoming).Updates(map[string]any{
		"start_at": h.now.Add(time.Hour),
		"end_at":   h.now.Add(2 * time.Hour),
	}).Error; err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	newBid := decimal.NewFromInt(120)
	dto, err := h.svc.UpdateAuction(ctx, upcoming.SellerID, upcoming.ID, UpdateAuctionInput{StartingBid: &newBid})
	if err != nil {
		t.Fatalf("update upcoming auction: %v", err)
	}
	if dto.StartingBid != "120.00" || dto.MinimumBid != "125.00" {
		t.Fatalf("unexpected updated dto: %+v", dto)
	}
}

func TestCancelAuctionReleasesReservation(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	mustCreateTestInventory(t, h.conn, product.ID, 500, 100)
	a := mustCreateTestAuction(t, h.conn, product, h.now)

	if _, err := h.svc.CancelAuction(ctx, uuid.New(), a.ID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for stranger cancel, got %v", err)
	}

	dto, err := h.svc.CancelAuction(ctx, a.SellerID, a.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if dto.Status != enums.AuctionStatusCancelled.String() || dto.CancelledAt == nil {
		t.Fatalf("expected cancelled dto, got %+v", dto)
	}

	var item models.InventoryItem
	if err := h.conn.First(&item, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload inventory: %v", err)
	}
	if item.ReservedQty != 0 {
		t.Fatalf("expected reservation released, got %d", item.ReservedQty)
	}

	if events := h.outboxEvents(t, enums.EventAuctionCancelled); len(events) != 1 {
		t.Fatalf("expected 1 auction_cancelled event, got %d", len(events))
	}

	// terminal now: a repeat cancel and a late bid both refuse
	if _, err := h.svc.CancelAuction(ctx, a.SellerID, a.ID); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on double cancel, got %v", err)
	}
	_, err = h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: uuid.New(), Amount: decimal.NewFromInt(85)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeAuctionNotActive) {
		t.Fatalf("expected not active after cancel, got %v", err)
	}
}

func TestCloseAuctionWithWinner(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	mustCreateTestInventory(t, h.conn, product.ID, 500, 100)
	a := mustCreateTestAuction(t, h.conn, product, h.now)

	buyer := uuid.New()
	if _, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyer, Amount: decimal.NewFromInt(85)}); err != nil {
		t.Fatalf("seed bid: %v", err)
	}

	// window still open
	if _, err := h.svc.CloseAuction(ctx, a.ID); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict before end_at, got %v", err)
	}

	if err := h.conn.Model(&models.Auction{}).Where("id = ?", a.ID).
		Update("end_at", h.now.Add(-time.Minute)).Error; err != nil {
		t.Fatalf("force end: %v", err)
	}

	dto, err := h.svc.CloseAuction(ctx, a.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if dto.Status != enums.AuctionStatusEnded.String() || dto.SettledAt == nil {
		t.Fatalf("expected settled dto, got %+v", dto)
	}

	var item models.InventoryItem
	if err := h.conn.First(&item, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload inventory: %v", err)
	}
	if item.AvailableQty != 400 || item.ReservedQty != 0 {
		t.Fatalf("expected 400 available / 0 reserved, got %d / %d", item.AvailableQty, item.ReservedQty)
	}

	if events := h.outboxEvents(t, enums.EventAuctionSettled); len(events) != 1 {
		t.Fatalf("expected 1 auction_settled event, got %d", len(events))
	}
	if events := h.outboxEvents(t, enums.EventNotificationRequested); len(events) != 1 {
		t.Fatalf("expected 1 notification_requested event, got %d", len(events))
	}

	// settle again: idempotent, no extra events
	if _, err := h.svc.CloseAuction(ctx, a.ID); err != nil {
		t.Fatalf("repeat close: %v", err)
	}
	if events := h.outboxEvents(t, enums.EventAuctionSettled); len(events) != 1 {
		t.Fatalf("expected settle to stay single, got %d events", len(events))
	}
}

func TestCloseAuctionWithoutBidsReleasesStock(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	mustCreateTestInventory(t, h.conn, product.ID, 500, 100)
	a := mustCreateTestAuction(t, h.conn, product, h.now)

	if err := h.conn.Model(&models.Auction{}).Where("id = ?", a.ID).
		Update("end_at", h.now.Add(-time.Minute)).Error; err != nil {
		t.Fatalf("force end: %v", err)
	}

	if _, err := h.svc.CloseAuction(ctx, a.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	var item models.InventoryItem
	if err := h.conn.First(&item, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload inventory: %v", err)
	}
	if item.AvailableQty != 500 || item.ReservedQty != 0 {
		t.Fatalf("expected stock back in the free pool, got %d / %d", item.AvailableQty, item.ReservedQty)
	}
	if events := h.outboxEvents(t, enums.EventNotificationRequested); len(events) != 0 {
		t.Fatalf("expected no winner notification, got %d", len(events))
	}

	// the seller still learns the auction closed empty
	sellerRows := h.notificationsFor(t, a.SellerID, enums.NotificationTypeAuctionEnded)
	if len(sellerRows) != 1 {
		t.Fatalf("expected 1 auction_ended notification for seller, got %d", len(sellerRows))
	}
}

func TestPlaceBidNotifiesDisplacedBidder(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	a := mustCreateTestAuction(t, h.conn, product, h.now)
	buyerOne := uuid.New()
	buyerTwo := uuid.New()

	if _, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyerOne, Amount: decimal.NewFromInt(85)}); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	// opening bid displaces nobody
	if rows := h.notificationsFor(t, buyerOne, enums.NotificationTypeOutbid); len(rows) != 0 {
		t.Fatalf("expected no outbid rows after opening bid, got %d", len(rows))
	}

	if _, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyerTwo, Amount: decimal.NewFromInt(90)}); err != nil {
		t.Fatalf("second bid: %v", err)
	}
	rows := h.notificationsFor(t, buyerOne, enums.NotificationTypeOutbid)
	if len(rows) != 1 {
		t.Fatalf("expected 1 outbid notification for displaced bidder, got %d", len(rows))
	}
	if rows[0].Link == nil || *rows[0].Link != "/auctions/"+a.ID.String() {
		t.Fatalf("expected auction link on outbid row, got %v", rows[0].Link)
	}

	// raising your own high bid is not an outbid
	if _, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyerTwo, Amount: decimal.NewFromInt(95)}); err != nil {
		t.Fatalf("self raise: %v", err)
	}
	if rows := h.notificationsFor(t, buyerTwo, enums.NotificationTypeOutbid); len(rows) != 0 {
		t.Fatalf("expected no outbid rows for self raise, got %d", len(rows))
	}
}

func TestCloseAuctionStoresWinnerNotification(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	mustCreateTestInventory(t, h.conn, product.ID, 500, 100)
	a := mustCreateTestAuction(t, h.conn, product, h.now)

	buyer := uuid.New()
	if _, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyer, Amount: decimal.NewFromInt(85)}); err != nil {
		t.Fatalf("seed bid: %v", err)
	}
	if err := h.conn.Model(&models.Auction{}).Where("id = ?", a.ID).
		Update("end_at", h.now.Add(-time.Minute)).Error; err != nil {
		t.Fatalf("force end: %v", err)
	}

	if _, err := h.svc.CloseAuction(ctx, a.ID); err != nil {
		t.Fatalf("close: %v", err)
	}

	winnerRows := h.notificationsFor(t, buyer, enums.NotificationTypeAuctionWon)
	if len(winnerRows) != 1 {
		t.Fatalf("expected 1 auction_won notification, got %d", len(winnerRows))
	}
	sellerRows := h.notificationsFor(t, a.SellerID, enums.NotificationTypeAuctionEnded)
	if len(sellerRows) != 1 {
		t.Fatalf("expected 1 auction_ended notification for seller, got %d", len(sellerRows))
	}

	// repeat settle must not duplicate the rows
	if _, err := h.svc.CloseAuction(ctx, a.ID); err != nil {
		t.Fatalf("repeat close: %v", err)
	}
	if rows := h.notificationsFor(t, buyer, enums.NotificationTypeAuctionWon); len(rows) != 1 {
		t.Fatalf("expected winner notification to stay single, got %d", len(rows))
	}
}

func TestCancelAuctionNotifiesCurrentBidder(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	product := mustCreateTestProduct(t, h.conn, uuid.New())
	mustCreateTestInventory(t, h.conn, product.ID, 500, 100)
	a := mustCreateTestAuction(t, h.conn, product, h.now)

	buyer := uuid.New()
	if _, err := h.svc.PlaceBid(ctx, PlaceBidInput{AuctionID: a.ID, BidderID: buyer, Amount: decimal.NewFromInt(85)}); err != nil {
		t.Fatalf("seed bid: %v", err)
	}

	if _, err := h.svc.CancelAuction(ctx, a.SellerID, a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	rows := h.notificationsFor(t, buyer, enums.NotificationTypeAuctionEnded)
	if len(rows) != 1 {
		t.Fatalf("expected 1 cancellation notification for current bidder, got %d", len(rows))
	}
}
