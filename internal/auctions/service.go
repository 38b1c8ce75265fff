package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db"
	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	"github.com/agrimandi/agrimandi-backend/pkg/metrics"
	"github.com/agrimandi/agrimandi-backend/pkg/outbox"
)

// Service exposes auction lifecycle and bidding operations.
type Service interface {
	CreateAuction(ctx context.Context, sellerID uuid.UUID, input CreateAuctionInput) (*AuctionDTO, error)
	GetAuction(ctx context.Context, id uuid.UUID) (*AuctionDTO, error)
	ListAuctions(ctx context.Context, input ListAuctionsInput) (*AuctionListResult, error)
	ListBids(ctx context.Context, auctionID uuid.UUID, limit int) ([]BidDTO, error)
	UpdateAuction(ctx context.Context, actorID, auctionID uuid.UUID, input UpdateAuctionInput) (*AuctionDTO, error)
	PlaceBid(ctx context.Context, input PlaceBidInput) (*BidDTO, error)
	CancelAuction(ctx context.Context, actorID, auctionID uuid.UUID) (*AuctionDTO, error)
	CloseAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error)
}

// CreateAuctionInput holds the validated payload to open an auction.
type CreateAuctionInput struct {
	ProductID       uuid.UUID
	Quantity        int
	StartingBid     decimal.Decimal
	IncrementAmount decimal.Decimal
	StartAt         time.Time
	EndAt           time.Time
}

// UpdateAuctionInput holds optional mutations for a not-yet-started auction.
type UpdateAuctionInput struct {
	StartingBid     *decimal.Decimal
	IncrementAmount *decimal.Decimal
	StartAt         *time.Time
	EndAt           *time.Time
}

// PlaceBidInput holds a single bid submission.
type PlaceBidInput struct {
	AuctionID      uuid.UUID
	BidderID       uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey *string
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type bidCache interface {
	CacheCurrentBid(ctx context.Context, auctionID, amount string, ttl time.Duration) error
	InvalidateCurrentBid(ctx context.Context, auctionID string) error
}

type notifier interface {
	InsertTx(tx *gorm.DB, row *models.Notification) error
}

// errVersionConflict signals that another bid advanced the auction version
// between the read and the conditional update. It never leaves the package.
var errVersionConflict = errors.New("auction version conflict")

type service struct {
	repo          *Repository
	dbClient      *db.Client
	productRepo   productLoader
	outbox        *outbox.Service
	notifications notifier
	cache         bidCache
	metrics       *metrics.BiddingMetrics
	logg          *logger.Logger
	now           func() time.Time
	maxRetries    int
	bidCacheTTL   time.Duration
}

// ServiceOptions tunes optional coordinator behavior.
type ServiceOptions struct {
	MaxSubmitRetries int
	CurrentBidTTL    time.Duration
	Now              func() time.Time
}

// NewService constructs an auction service instance.
func NewService(repo *Repository, dbClient *db.Client, productRepo productLoader, outboxSvc *outbox.Service, notifications notifier, cache bidCache, biddingMetrics *metrics.BiddingMetrics, logg *logger.Logger, opts ServiceOptions) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auction repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if opts.MaxSubmitRetries <= 0 {
		opts.MaxSubmitRetries = 3
	}
	if opts.CurrentBidTTL <= 0 {
		opts.CurrentBidTTL = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		repo:          repo,
		dbClient:      dbClient,
		productRepo:   productRepo,
		outbox:        outboxSvc,
		notifications: notifications,
		cache:         cache,
		metrics:       biddingMetrics,
		logg:          logg,
		now:           opts.Now,
		maxRetries:    opts.MaxSubmitRetries,
		bidCacheTTL:   opts.CurrentBidTTL,
	}, nil
}

// CreateAuction validates the window, reserves inventory, and opens the auction.
func (s *service) CreateAuction(ctx context.Context, sellerID uuid.UUID, input CreateAuctionInput) (*AuctionDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.StartingBid.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "starting_bid must be positive")
	}
	if !input.IncrementAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "increment_amount must be positive")
	}
	if !input.EndAt.After(input.StartAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_at must be after start_at")
	}
	now := s.now()
	if !input.EndAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_at must be in the future")
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the listing owner can open an auction")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product listing is inactive")
	}

	a := &models.Auction{
		ID:              uuid.New(),
		ProductID:       input.ProductID,
		SellerID:        sellerID,
		Quantity:        input.Quantity,
		StartingBid:     input.StartingBid,
		IncrementAmount: input.IncrementAmount,
		Status:          enums.AuctionStatusUpcoming,
		StartAt:         input.StartAt,
		EndAt:           input.EndAt,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		reserved, err := txRepo.ReserveInventory(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving inventory")
		}
		if !reserved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient available inventory")
		}
		if _, err := txRepo.Create(ctx, a); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating auction")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAuctionCreated,
			AggregateType: enums.AggregateAuction,
			AggregateID:   a.ID,
			Actor:         &outbox.ActorRef{UserID: sellerID, Role: "seller"},
			Data: map[string]any{
				"auction_id":   a.ID.String(),
				"product_id":   a.ProductID.String(),
				"quantity":     a.Quantity,
				"starting_bid": a.StartingBid.StringFixed(2),
				"start_at":     a.StartAt.UTC().Format(time.RFC3339),
				"end_at":       a.EndAt.UTC().Format(time.RFC3339),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	a.Product = product
	if s.logg != nil {
		s.logg.Info(s.logg.WithAuctionID(ctx, a.ID.String()), "auction created")
	}
	return NewAuctionDTO(a, now), nil
}

// GetAuction returns the auction with its derived phase and countdown.
func (s *service) GetAuction(ctx context.Context, id uuid.UUID) (*AuctionDTO, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction")
	}
	return NewAuctionDTO(a, s.now()), nil
}

// ListAuctions pages through auctions with tab/category/search filters.
func (s *service) ListAuctions(ctx context.Context, input ListAuctionsInput) (*AuctionListResult, error) {
	now := s.now()
	rows, nextCursor, err := s.repo.ListAuctions(ctx, auctionListQuery{
		Filters:    input.Filters,
		Sort:       input.Sort,
		Pagination: input.Pagination,
		Now:        now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing auctions")
	}

	dtos := make([]AuctionDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewAuctionDTO(&rows[i], now))
	}
	return &AuctionListResult{Auctions: dtos, NextCursor: nextCursor}, nil
}

// UpdateAuction edits bid-relevant parameters. Edits are only allowed before
// the auction starts; once bidding can happen the terms are frozen.
func (s *service) UpdateAuction(ctx context.Context, actorID, auctionID uuid.UUID, input UpdateAuctionInput) (*AuctionDTO, error) {
	a, err := s.repo.FindByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction")
	}
	if a.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can edit this auction")
	}
	now := s.now()
	if EffectiveStatus(a, now) != enums.AuctionStatusUpcoming {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "auction terms are frozen once bidding opens")
	}

	if input.StartingBid != nil {
		if !input.StartingBid.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "starting_bid must be positive")
		}
		a.StartingBid = *input.StartingBid
	}
	if input.IncrementAmount != nil {
		if !input.IncrementAmount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "increment_amount must be positive")
		}
		a.IncrementAmount = *input.IncrementAmount
	}
	if input.StartAt != nil {
		a.StartAt = *input.StartAt
	}
	if input.EndAt != nil {
		a.EndAt = *input.EndAt
	}
	if !a.EndAt.After(a.StartAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_at must be after start_at")
	}
	if !a.StartAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_at must remain in the future")
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating auction")
	}
	return NewAuctionDTO(a, now), nil
}

// ListBids returns the accepted bid history for an auction, newest first.
func (s *service) ListBids(ctx context.Context, auctionID uuid.UUID, limit int) ([]BidDTO, error) {
	a, err := s.repo.FindByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction")
	}

	rows, err := s.repo.ListBids(ctx, auctionID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bids")
	}
	dtos := make([]BidDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewBidDTO(&rows[i], a))
	}
	return dtos, nil
}

// PlaceBid coordinates a bid submission end to end. Validation happens against
// a fresh read, the high-bid swap is version-guarded, and a lost race retries
// against the new state up to the configured attempt budget.
func (s *service) PlaceBid(ctx context.Context, input PlaceBidInput) (*BidDTO, error) {
	started := s.now()
	ctx = s.withBidFields(ctx, input)

	dto, err := s.placeBidWithRetries(ctx, input)
	s.metrics.ObserveSubmitDuration(outcomeFor(err), s.now().Sub(started))
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}
	return dto, nil
}

func (s *service) placeBidWithRetries(ctx context.Context, input PlaceBidInput) (*BidDTO, error) {
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		a, err := s.repo.FindByID(ctx, input.AuctionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction")
		}
		if a.SellerID == input.BidderID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers cannot bid on their own auction")
		}
		if err := ValidateBid(a, input.Amount, s.now()); err != nil {
			return nil, err
		}

		bid := &models.Bid{
			ID:             uuid.New(),
			AuctionID:      a.ID,
			BidderID:       input.BidderID,
			Amount:         input.Amount,
			IdempotencyKey: input.IdempotencyKey,
		}

		err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			applied, err := txRepo.ApplyBid(ctx, a.ID, a.Version, input.Amount, input.BidderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying bid")
			}
			if !applied {
				return errVersionConflict
			}
			if _, err := txRepo.InsertBid(ctx, bid); err != nil {
				return err
			}
			if a.CurrentBidderID != nil && *a.CurrentBidderID != input.BidderID {
				err := s.notifyTx(tx, *a.CurrentBidderID, enums.NotificationTypeOutbid,
					"You have been outbid",
					fmt.Sprintf("A higher bid of PKR %s was placed on an auction you were winning.", input.Amount.StringFixed(2)),
					a.ID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing outbid notification")
				}
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBidAccepted,
				AggregateType: enums.AggregateBid,
				AggregateID:   bid.ID,
				Actor:         &outbox.ActorRef{UserID: input.BidderID, Role: "buyer"},
				Data: map[string]any{
					"bid_id":     bid.ID.String(),
					"auction_id": a.ID.String(),
					"amount":     input.Amount.StringFixed(2),
				},
			})
		})
		if err != nil {
			if errors.Is(err, errVersionConflict) {
				s.metrics.IncConflictRetry()
				continue
			}
			if db.IsUniqueViolation(err, "idempotency_key") {
				return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "bid already submitted with this idempotency key")
			}
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submitting bid")
		}

		// reflect the swap locally so the response carries post-bid state
		a.CurrentBid = decimal.NewNullDecimal(input.Amount)
		a.CurrentBidderID = &input.BidderID
		a.BidCount++
		a.Version++

		s.cacheBid(ctx, a)
		if s.metrics != nil && a.Product != nil {
			s.metrics.IncAccepted(a.Product.Category.String())
		}
		if s.logg != nil {
			s.logg.Info(ctx, "bid accepted")
		}
		return NewBidDTO(bid, a), nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeConflict, "auction is receiving heavy bidding, please retry")
}

// CancelAuction lets the seller withdraw a not-yet-finished auction and
// releases the reserved stock.
func (s *service) CancelAuction(ctx context.Context, actorID, auctionID uuid.UUID) (*AuctionDTO, error) {
	a, err := s.repo.FindByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction")
	}
	if a.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can cancel this auction")
	}
	now := s.now()
	if status := EffectiveStatus(a, now); status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("auction is already %s", status))
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		applied, err := txRepo.MarkCancelled(ctx, auctionID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling auction")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auction already finished")
		}
		if _, err := txRepo.ReleaseInventory(ctx, a.ProductID, a.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "releasing inventory")
		}
		if a.CurrentBidderID != nil {
			err := s.notifyTx(tx, *a.CurrentBidderID, enums.NotificationTypeAuctionEnded,
				"Auction cancelled",
				"The seller withdrew an auction you were winning. Your bid no longer stands.",
				a.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing cancellation notification")
			}
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAuctionCancelled,
			AggregateType: enums.AggregateAuction,
			AggregateID:   a.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: "seller"},
			Data: map[string]any{
				"auction_id": a.ID.String(),
				"product_id": a.ProductID.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	a.Status = enums.AuctionStatusCancelled
	a.CancelledAt = &now
	if s.cache != nil {
		_ = s.cache.InvalidateCurrentBid(ctx, a.ID.String())
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithAuctionID(ctx, a.ID.String()), "auction cancelled")
	}
	return NewAuctionDTO(a, now), nil
}

// CloseAuction settles an auction whose window has elapsed. Settlement is
// idempotent: a repeat call after settled_at is stamped returns the current
// state without side effects.
func (s *service) CloseAuction(ctx context.Context, auctionID uuid.UUID) (*AuctionDTO, error) {
	a, err := s.repo.FindByID(ctx, auctionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading auction")
	}
	now := s.now()
	if a.Status == enums.AuctionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled auctions are not settled")
	}
	if now.Before(a.EndAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "auction has not ended yet")
	}
	if a.SettledAt != nil {
		return NewAuctionDTO(a, now), nil
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		applied, err := txRepo.MarkSettled(ctx, auctionID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling auction")
		}
		if !applied {
			// another worker settled first; nothing left to do
			return nil
		}

		if a.CurrentBidderID != nil {
			if _, err := txRepo.CommitInventory(ctx, a.ProductID, a.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "committing inventory")
			}
			err := s.notifyTx(tx, *a.CurrentBidderID, enums.NotificationTypeAuctionWon,
				"You won the auction",
				fmt.Sprintf("Your bid of PKR %s won. The seller will arrange delivery of %d units.", a.CurrentBid.Decimal.StringFixed(2), a.Quantity),
				a.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing winner notification")
			}
			err = s.notifyTx(tx, a.SellerID, enums.NotificationTypeAuctionEnded,
				"Your auction has ended",
				fmt.Sprintf("The auction closed with a winning bid of PKR %s.", a.CurrentBid.Decimal.StringFixed(2)),
				a.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing seller notification")
			}
			notify := outbox.DomainEvent{
				EventType:     enums.EventNotificationRequested,
				AggregateType: enums.AggregateNotification,
				AggregateID:   a.ID,
				Data: map[string]any{
					"kind":        string(enums.NotificationTypeAuctionWon),
					"auction_id":  a.ID.String(),
					"winner_id":   a.CurrentBidderID.String(),
					"final_price": a.CurrentBid.Decimal.StringFixed(2),
				},
			}
			if err := s.outbox.Emit(ctx, tx, notify); err != nil {
				return err
			}
		} else {
			if _, err := txRepo.ReleaseInventory(ctx, a.ProductID, a.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "releasing inventory")
			}
			err := s.notifyTx(tx, a.SellerID, enums.NotificationTypeAuctionEnded,
				"Your auction has ended",
				"The auction closed without any bids. The reserved stock is available again.",
				a.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing seller notification")
			}
		}

		settled := outbox.DomainEvent{
			EventType:     enums.EventAuctionSettled,
			AggregateType: enums.AggregateAuction,
			AggregateID:   a.ID,
			Data: map[string]any{
				"auction_id": a.ID.String(),
				"product_id": a.ProductID.String(),
				"bid_count":  a.BidCount,
				"had_winner": a.CurrentBidderID != nil,
			},
		}
		return s.outbox.EmitIfNotExists(ctx, tx, settled)
	})
	if err != nil {
		return nil, err
	}

	a.Status = enums.AuctionStatusEnded
	a.SettledAt = &now
	if s.cache != nil {
		_ = s.cache.InvalidateCurrentBid(ctx, a.ID.String())
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithAuctionID(ctx, a.ID.String()), "auction settled")
	}
	return NewAuctionDTO(a, now), nil
}

// notifyTx writes an in-app notification inside the caller's transaction so
// the row lands atomically with the auction state change.
func (s *service) notifyTx(tx *gorm.DB, userID uuid.UUID, kind enums.NotificationType, title, message string, auctionID uuid.UUID) error {
	link := "/auctions/" + auctionID.String()
	return s.notifications.InsertTx(tx, &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Link:    &link,
	})
}

func (s *service) cacheBid(ctx context.Context, a *models.Auction) {
	if s.cache == nil || !a.CurrentBid.Valid {
		return
	}
	if err := s.cache.CacheCurrentBid(ctx, a.ID.String(), a.CurrentBid.Decimal.StringFixed(2), s.bidCacheTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithAuctionID(ctx, a.ID.String()), "caching current bid failed")
	}
}

func (s *service) withBidFields(ctx context.Context, input PlaceBidInput) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithFields(ctx, map[string]any{
		"auction_id": input.AuctionID.String(),
		"actor_id":   input.BidderID.String(),
		"amount":     input.Amount.StringFixed(2),
	})
}

func (s *service) recordRejection(err error) {
	if s.metrics == nil {
		return
	}
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejected(string(typed.Code()))
		return
	}
	s.metrics.IncRejected("internal")
}

func outcomeFor(err error) string {
	if err == nil {
		return "accepted"
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		return "conflict"
	}
	return "rejected"
}
