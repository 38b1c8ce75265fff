package auction

import (
	"fmt"

	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

// ListSort enumerates the supported auction orderings.
type ListSort string

const (
	SortNewest     ListSort = "newest"
	SortEndingSoon ListSort = "ending_soon"
	SortPriceAsc   ListSort = "price_asc"
	SortPriceDesc  ListSort = "price_desc"
)

var validListSorts = []ListSort{SortNewest, SortEndingSoon, SortPriceAsc, SortPriceDesc}

// ParseListSort converts raw input into a ListSort, defaulting to newest.
func ParseListSort(value string) (ListSort, error) {
	if value == "" {
		return SortNewest, nil
	}
	for _, candidate := range validListSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort %q", value)
}

// ListTab enumerates the status tabs the listing endpoint serves.
type ListTab string

const (
	TabAll      ListTab = "all"
	TabActive   ListTab = "active"
	TabUpcoming ListTab = "upcoming"
	TabEnded    ListTab = "ended"
)

var validListTabs = []ListTab{TabAll, TabActive, TabUpcoming, TabEnded}

// ParseListTab converts raw input into a ListTab, defaulting to all.
func ParseListTab(value string) (ListTab, error) {
	if value == "" {
		return TabAll, nil
	}
	for _, candidate := range validListTabs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tab %q", value)
}

// AuctionListFilters describe the supported filter knobs for the browse endpoint.
type AuctionListFilters struct {
	Tab      ListTab
	Category *enums.ProductCategory
	Query    string
}

// ListAuctionsInput captures the inputs needed to paginate/filter auctions.
type ListAuctionsInput struct {
	Filters    AuctionListFilters
	Sort       ListSort
	Pagination pagination.Params
}

// AuctionListResult is the paginated listing payload.
type AuctionListResult struct {
	Auctions   []AuctionDTO `json:"auctions"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
