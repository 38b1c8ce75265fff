package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/outbox"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:product_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.InventoryItem{},
		&models.OutboxEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

type fakeAuctionRefs struct {
	live map[uuid.UUID]int64
}

func (f *fakeAuctionRefs) CountLiveByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	return f.live[productID], nil
}

type productHarness struct {
	conn *gorm.DB
	svc  Service
	refs *fakeAuctionRefs
}

func newProductHarness(t *testing.T) *productHarness {
	t.Helper()
	conn := newTestDB(t)
	refs := &fakeAuctionRefs{live: map[uuid.UUID]int64{}}
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), refs, outboxSvc, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &productHarness{conn: conn, svc: svc, refs: refs}
}

func validCreateInput() CreateProductInput {
	return CreateProductInput{
		Name:         "Premium Basmati Rice",
		Category:     enums.ProductCategoryRice,
		Grade:        enums.ProductGradePremium,
		Unit:         enums.ProductUnitKg,
		PricePKR:     decimal.NewFromInt(85),
		Location:     "Lahore",
		AvailableQty: 500,
	}
}

func TestCreateProductWithInventory(t *testing.T) {
	h := newProductHarness(t)
	ctx := context.Background()
	sellerID := uuid.New()

	dto, err := h.svc.CreateProduct(ctx, sellerID, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if dto.PricePKR != "85.00" {
		t.Fatalf("expected price 85.00, got %s", dto.PricePKR)
	}
	if dto.Inventory == nil || dto.Inventory.AvailableQty != 500 || dto.Inventory.FreeQty != 500 {
		t.Fatalf("expected inventory 500/500 free, got %+v", dto.Inventory)
	}
	if !dto.IsActive {
		t.Fatal("expected new product to be active")
	}

	var events []models.OutboxEvent
	if err := h.conn.Where("event_type = ?", enums.EventProductCreated).Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 product_created event, got %d", len(events))
	}
}

func TestCreateProductValidation(t *testing.T) {
	h := newProductHarness(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateProductInput)
	}{
		{"emptyName", func(in *CreateProductInput) { in.Name = "  " }},
		{"zeroPrice", func(in *CreateProductInput) { in.PricePKR = decimal.Zero }},
		{"negativeQty", func(in *CreateProductInput) { in.AvailableQty = -1 }},
		{"badCategory", func(in *CreateProductInput) { in.Category = "plutonium" }},
		{"badUnit", func(in *CreateProductInput) { in.Unit = "barrel" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := h.svc.CreateProduct(ctx, uuid.New(), input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	h := newProductHarness(t)
	ctx := context.Background()
	sellerID := uuid.New()

	created, err := h.svc.CreateProduct(ctx, sellerID, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	newName := "Super Kernel Basmati"
	if _, err := h.svc.UpdateProduct(ctx, uuid.New(), created.ID, UpdateProductInput{Name: &newName}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for stranger update, got %v", err)
	}

	price := decimal.NewFromInt(95)
	updated, err := h.svc.UpdateProduct(ctx, sellerID, created.ID, UpdateProductInput{
		Name:     &newName,
		PricePKR: &price,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Name != newName || updated.PricePKR != "95.00" {
		t.Fatalf("unexpected updated dto: %+v", updated)
	}
}

func TestDeleteProductBlockedByLiveAuction(t *testing.T) {
	h := newProductHarness(t)
	ctx := context.Background()
	sellerID := uuid.New()

	created, err := h.svc.CreateProduct(ctx, sellerID, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	h.refs.live[created.ID] = 1
	if err := h.svc.DeleteProduct(ctx, sellerID, created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict while auction is live, got %v", err)
	}

	h.refs.live[created.ID] = 0
	if err := h.svc.DeleteProduct(ctx, sellerID, created.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := h.svc.GetProduct(ctx, created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSetInventoryGuardsReservedStock(t *testing.T) {
	h := newProductHarness(t)
	ctx := context.Background()
	sellerID := uuid.New()

	created, err := h.svc.CreateProduct(ctx, sellerID, validCreateInput())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := h.conn.Model(&models.InventoryItem{}).
		Where("product_id = ?", created.ID).
		Update("reserved_qty", 200).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	if _, err := h.svc.SetInventory(ctx, sellerID, created.ID, 100); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected conflict when undercutting reservations, got %v", err)
	}

	dto, err := h.svc.SetInventory(ctx, sellerID, created.ID, 800)
	if err != nil {
		t.Fatalf("set inventory: %v", err)
	}
	if dto.Inventory.AvailableQty != 800 || dto.Inventory.FreeQty != 600 {
		t.Fatalf("expected 800 available / 600 free, got %+v", dto.Inventory)
	}
}

func TestListProductsFilters(t *testing.T) {
	h := newProductHarness(t)
	ctx := context.Background()
	sellerID := uuid.New()

	if _, err := h.svc.CreateProduct(ctx, sellerID, validCreateInput()); err != nil {
		t.Fatalf("create rice: %v", err)
	}

	wheat := validCreateInput()
	wheat.Name = "Organic Wheat"
	wheat.Category = enums.ProductCategoryWheat
	wheat.Location = "Faisalabad"
	if _, err := h.svc.CreateProduct(ctx, sellerID, wheat); err != nil {
		t.Fatalf("create wheat: %v", err)
	}

	category := enums.ProductCategoryWheat
	result, err := h.svc.ListProducts(ctx, ListProductsInput{
		Filters: ListFilters{Category: &category},
	})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].Name != "Organic Wheat" {
		t.Fatalf("expected only the wheat listing, got %d products", len(result.Products))
	}

	result, err = h.svc.ListProducts(ctx, ListProductsInput{
		Filters: ListFilters{Query: "faisalabad"},
	})
	if err != nil {
		t.Fatalf("list by location: %v", err)
	}
	if len(result.Products) != 1 || result.Products[0].Location != "Faisalabad" {
		t.Fatalf("expected location match, got %d products", len(result.Products))
	}

	result, err = h.svc.ListProducts(ctx, ListProductsInput{
		Pagination: pagination.Params{Limit: 1},
	})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(result.Products) != 1 || result.NextCursor == "" {
		t.Fatalf("expected paged result with cursor, got %d products cursor=%q", len(result.Products), result.NextCursor)
	}
}
