package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agrimandi/agrimandi-backend/api/responses"
	"github.com/agrimandi/agrimandi-backend/api/validators"
	auctionsvc "github.com/agrimandi/agrimandi-backend/internal/auctions"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
)

// CreateAuction opens a bidding window against one of the seller's listings.
func CreateAuction(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}

		sellerID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAuctionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auction, err := svc.CreateAuction(r.Context(), sellerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, auction)
	}
}

// GetAuction returns one auction with its derived status and countdown.
func GetAuction(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := pathUUID(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auction, err := svc.GetAuction(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, auction)
	}
}

// ListAuctions serves the browse endpoint with tab, sort, and filter knobs.
func ListAuctions(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseListAuctionsInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAuctions(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UpdateAuction reschedules or reprices an auction that has not opened yet.
func UpdateAuction(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auctionID, err := pathUUID(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateAuctionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auction, err := svc.UpdateAuction(r.Context(), actorID, auctionID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, auction)
	}
}

// CancelAuction voids a non-terminal auction and releases its reservation.
func CancelAuction(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auctionID, err := pathUUID(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auction, err := svc.CancelAuction(r.Context(), actorID, auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, auction)
	}
}

// CloseAuction settles an auction whose window has elapsed.
func CloseAuction(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, err := pathUUID(r, "auctionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auction, err := svc.CloseAuction(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, auction)
	}
}

type createAuctionRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	StartingBid     string `json:"starting_bid" validate:"required"`
	IncrementAmount string `json:"increment_amount" validate:"required"`
	StartAt         string `json:"start_at" validate:"required"`
	EndAt           string `json:"end_at" validate:"required"`
}

func (r createAuctionRequest) toCreateInput() (auctionsvc.CreateAuctionInput, error) {
	productID, err := pathlessUUID(r.ProductID, "product_id")
	if err != nil {
		return auctionsvc.CreateAuctionInput{}, err
	}

	startingBid, err := parseAmount(r.StartingBid, "starting_bid")
	if err != nil {
		return auctionsvc.CreateAuctionInput{}, err
	}
	increment, err := parseAmount(r.IncrementAmount, "increment_amount")
	if err != nil {
		return auctionsvc.CreateAuctionInput{}, err
	}

	startAt, err := parseTimestamp(r.StartAt, "start_at")
	if err != nil {
		return auctionsvc.CreateAuctionInput{}, err
	}
	endAt, err := parseTimestamp(r.EndAt, "end_at")
	if err != nil {
		return auctionsvc.CreateAuctionInput{}, err
	}

	return auctionsvc.CreateAuctionInput{
		ProductID:       productID,
		Quantity:        r.Quantity,
		StartingBid:     startingBid,
		IncrementAmount: increment,
		StartAt:         startAt,
		EndAt:           endAt,
	}, nil
}

type updateAuctionRequest struct {
	StartingBid     *string `json:"starting_bid,omitempty"`
	IncrementAmount *string `json:"increment_amount,omitempty"`
	StartAt         *string `json:"start_at,omitempty"`
	EndAt           *string `json:"end_at,omitempty"`
}

func (r updateAuctionRequest) toUpdateInput() (auctionsvc.UpdateAuctionInput, error) {
	var input auctionsvc.UpdateAuctionInput

	if r.StartingBid != nil {
		amount, err := parseAmount(*r.StartingBid, "starting_bid")
		if err != nil {
			return auctionsvc.UpdateAuctionInput{}, err
		}
		input.StartingBid = &amount
	}
	if r.IncrementAmount != nil {
		amount, err := parseAmount(*r.IncrementAmount, "increment_amount")
		if err != nil {
			return auctionsvc.UpdateAuctionInput{}, err
		}
		input.IncrementAmount = &amount
	}
	if r.StartAt != nil {
		ts, err := parseTimestamp(*r.StartAt, "start_at")
		if err != nil {
			return auctionsvc.UpdateAuctionInput{}, err
		}
		input.StartAt = &ts
	}
	if r.EndAt != nil {
		ts, err := parseTimestamp(*r.EndAt, "end_at")
		if err != nil {
			return auctionsvc.UpdateAuctionInput{}, err
		}
		input.EndAt = &ts
	}
	return input, nil
}

func parseListAuctionsInput(r *http.Request) (*auctionsvc.ListAuctionsInput, error) {
	page, err := pageParams(r)
	if err != nil {
		return nil, err
	}

	tab, err := auctionsvc.ParseListTab(strings.TrimSpace(r.URL.Query().Get("tab")))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tab")
	}
	sort, err := auctionsvc.ParseListSort(strings.TrimSpace(r.URL.Query().Get("sort")))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}

	filters := auctionsvc.AuctionListFilters{
		Tab:   tab,
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filters.Category = &category
	}

	return &auctionsvc.ListAuctionsInput{
		Filters:    filters,
		Sort:       sort,
		Pagination: page,
	}, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return amount, nil
}

func parseTimestamp(raw, field string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return ts, nil
}
