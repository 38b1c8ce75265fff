package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/agrimandi/agrimandi-backend/api/responses"
	"github.com/agrimandi/agrimandi-backend/api/validators"
	marketpricesvc "github.com/agrimandi/agrimandi-backend/internal/marketprices"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
)

const maxPriceBoardRows = 200

// ListMarketPrices serves the mandi reference price board.
func ListMarketPrices(svc marketpricesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, maxPriceBoardRows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := marketpricesvc.ListFilters{
			Market: strings.TrimSpace(r.URL.Query().Get("market")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseProductCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			filters.Category = &category
		}

		prices, err := svc.ListPrices(r.Context(), filters, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"prices": prices})
	}
}

// RecordMarketPrice ingests one price observation from a mandi feed.
func RecordMarketPrice(svc marketpricesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "market price service unavailable"))
			return
		}

		var payload recordQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toQuoteInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.RecordQuote(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

type recordQuoteRequest struct {
	Commodity string  `json:"commodity" validate:"required"`
	Category  string  `json:"category" validate:"required"`
	Market    string  `json:"market" validate:"required"`
	Unit      string  `json:"unit" validate:"required"`
	PricePKR  string  `json:"price_pkr" validate:"required"`
	QuotedAt  *string `json:"quoted_at,omitempty"`
}

func (r recordQuoteRequest) toQuoteInput() (marketpricesvc.QuoteInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return marketpricesvc.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	unit, err := enums.ParseProductUnit(strings.TrimSpace(r.Unit))
	if err != nil {
		return marketpricesvc.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
	}

	price, err := parseAmount(r.PricePKR, "price_pkr")
	if err != nil {
		return marketpricesvc.QuoteInput{}, err
	}

	input := marketpricesvc.QuoteInput{
		Commodity: strings.TrimSpace(r.Commodity),
		Category:  category,
		Market:    strings.TrimSpace(r.Market),
		Unit:      unit,
		PricePKR:  price,
	}
	if r.QuotedAt != nil {
		quotedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*r.QuotedAt))
		if err != nil {
			return marketpricesvc.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quoted_at")
		}
		input.QuotedAt = quotedAt
	}
	return input, nil
}
