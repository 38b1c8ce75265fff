package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	"github.com/agrimandi/agrimandi-backend/pkg/outbox"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

// Service exposes seller catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	SetInventory(ctx context.Context, sellerID, productID uuid.UUID, availableQty int) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Name         string
	Description  *string
	Category     enums.ProductCategory
	Grade        enums.ProductGrade
	Unit         enums.ProductUnit
	PricePKR     decimal.Decimal
	Location     string
	ImageURL     *string
	AvailableQty int
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *enums.ProductCategory
	Grade       *enums.ProductGrade
	Unit        *enums.ProductUnit
	PricePKR    *decimal.Decimal
	Location    *string
	ImageURL    *string
	IsActive    *bool
}

// ListProductsInput captures the inputs for the catalog listing.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

type auctionRefChecker interface {
	CountLiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	auctionRefs auctionRefChecker
	outbox      *outbox.Service
	logg        *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, auctionRefs auctionRefChecker, outboxSvc *outbox.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if auctionRefs == nil {
		return nil, fmt.Errorf("auction reference checker required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		auctionRefs: auctionRefs,
		outbox:      outboxSvc,
		logg:        logg,
	}, nil
}

// CreateProduct creates the listing together with its inventory row.
func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.PricePKR.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_pkr must be positive")
	}
	if input.AvailableQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "available_qty cannot be negative")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product category")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product unit")
	}
	grade := input.Grade
	if grade == "" {
		grade = enums.ProductGradeStandard
	}
	if !grade.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product grade")
	}

	product := &models.Product{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Name:        name,
		Description: input.Description,
		Category:    input.Category,
		Grade:       grade,
		Unit:        input.Unit,
		PricePKR:    input.PricePKR,
		Location:    strings.TrimSpace(input.Location),
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
		}
		item := &models.InventoryItem{ProductID: product.ID, AvailableQty: input.AvailableQty}
		if err := txRepo.CreateInventory(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating inventory")
		}
		product.Inventory = item
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductCreated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         &outbox.ActorRef{UserID: sellerID, Role: "seller"},
			Data: map[string]any{
				"product_id": product.ID.String(),
				"name":       product.Name,
				"category":   product.Category.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithProductID(ctx, product.ID.String()), "product created")
	}
	return NewProductDTO(product), nil
}

// GetProduct returns the listing with its stock position.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByIDWithInventory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return NewProductDTO(product), nil
}

// UpdateProduct applies the provided mutations after an ownership check.
func (s *service) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(product, input); err != nil {
		return nil, err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductUpdated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         &outbox.ActorRef{UserID: sellerID, Role: "seller"},
			Data:          map[string]any{"product_id": product.ID.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes a listing that no live auction references.
func (s *service) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	product, err := s.loadOwned(ctx, sellerID, productID)
	if err != nil {
		return err
	}

	live, err := s.auctionRefs.CountLiveByProduct(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking auction references")
	}
	if live > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "product has live auctions and cannot be deleted")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Delete(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductDeleted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         &outbox.ActorRef{UserID: sellerID, Role: "seller"},
			Data:          map[string]any{"product_id": product.ID.String()},
		})
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithProductID(ctx, productID.String()), "product deleted")
	}
	return nil
}

// ListProducts pages through the catalog.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, input.Filters, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewProductDTO(&rows[i]))
	}
	return &ProductListResult{Products: dtos, NextCursor: nextCursor}, nil
}

// SetInventory writes an absolute available quantity for the listing.
func (s *service) SetInventory(ctx context.Context, sellerID, productID uuid.UUID, availableQty int) (*ProductDTO, error) {
	if availableQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "available_qty cannot be negative")
	}
	if _, err := s.loadOwned(ctx, sellerID, productID); err != nil {
		return nil, err
	}

	applied, err := s.repo.SetAvailableQty(ctx, productID, availableQty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating inventory")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "available_qty cannot undercut reserved stock")
	}
	return s.GetProduct(ctx, productID)
}

func (s *service) loadOwned(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the listing owner can modify this product")
	}
	return product, nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown product category")
		}
		product.Category = *input.Category
	}
	if input.Grade != nil {
		if !input.Grade.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown product grade")
		}
		product.Grade = *input.Grade
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown product unit")
		}
		product.Unit = *input.Unit
	}
	if input.PricePKR != nil {
		if !input.PricePKR.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price_pkr must be positive")
		}
		product.PricePKR = *input.PricePKR
	}
	if input.Location != nil {
		product.Location = strings.TrimSpace(*input.Location)
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	return nil
}
