package marketprice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
)

// Service exposes the mandi reference price board.
type Service interface {
	RecordQuote(ctx context.Context, input QuoteInput) (*MarketPriceDTO, error)
	ListPrices(ctx context.Context, filters ListFilters, limit int) ([]MarketPriceDTO, error)
}

// QuoteInput holds a single price observation from a mandi.
type QuoteInput struct {
	Commodity string
	Category  enums.ProductCategory
	Market    string
	Unit      enums.ProductUnit
	PricePKR  decimal.Decimal
	QuotedAt  time.Time
}

// MarketPriceDTO is the price board row returned to clients.
type MarketPriceDTO struct {
	ID            uuid.UUID `json:"id"`
	Commodity     string    `json:"commodity"`
	Category      string    `json:"category"`
	Market        string    `json:"market"`
	Unit          string    `json:"unit"`
	PricePKR      string    `json:"price_pkr"`
	ChangePercent string    `json:"change_percent"`
	QuotedAt      time.Time `json:"quoted_at"`
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs a market price service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("market price repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// RecordQuote validates and stores a price observation. The change percent is
// derived from the previous quote for the same commodity/market pair; the
// first quote for a pair records a zero change.
func (s *service) RecordQuote(ctx context.Context, input QuoteInput) (*MarketPriceDTO, error) {
	commodity := strings.TrimSpace(input.Commodity)
	if commodity == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commodity is required")
	}
	market := strings.TrimSpace(input.Market)
	if market == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "market is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product category")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product unit")
	}
	if !input.PricePKR.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_pkr must be positive")
	}
	quotedAt := input.QuotedAt
	if quotedAt.IsZero() {
		quotedAt = s.now()
	}

	previous, err := s.repo.FindLatestBefore(ctx, commodity, market, quotedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading previous quote")
	}
	var change decimal.Decimal
	if previous != nil && previous.PricePKR.IsPositive() {
		change = input.PricePKR.Sub(previous.PricePKR).
			Div(previous.PricePKR).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	quote := &models.MarketPrice{
		ID:            uuid.New(),
		Commodity:     commodity,
		Category:      input.Category,
		Market:        market,
		Unit:          input.Unit,
		PricePKR:      input.PricePKR,
		ChangePercent: change,
		QuotedAt:      quotedAt,
	}
	if err := s.repo.Insert(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording quote")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"commodity": commodity,
			"market":    market,
		}), "market quote recorded")
	}
	return newDTO(quote), nil
}

// ListPrices returns the newest quote per commodity/market pair.
func (s *service) ListPrices(ctx context.Context, filters ListFilters, limit int) ([]MarketPriceDTO, error) {
	rows, err := s.repo.ListLatest(ctx, filters, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing market prices")
	}
	dtos := make([]MarketPriceDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *newDTO(&rows[i]))
	}
	return dtos, nil
}

func newDTO(quote *models.MarketPrice) *MarketPriceDTO {
	return &MarketPriceDTO{
		ID:            quote.ID,
		Commodity:     quote.Commodity,
		Category:      quote.Category.String(),
		Market:        quote.Market,
		Unit:          quote.Unit.String(),
		PricePKR:      quote.PricePKR.StringFixed(2),
		ChangePercent: quote.ChangePercent.StringFixed(2),
		QuotedAt:      quote.QuotedAt,
	}
}
