package enums

import "fmt"

// AuctionStatus maps to the auction_status enum in Postgres.
//
// Only "cancelled" is authoritative in storage; the other values are derived
// from the auction window timestamps at read time.
type AuctionStatus string

const (
	AuctionStatusUpcoming  AuctionStatus = "upcoming"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

var validAuctionStatuses = []AuctionStatus{
	AuctionStatusUpcoming,
	AuctionStatusActive,
	AuctionStatusEnded,
	AuctionStatusCancelled,
}

// String implements fmt.Stringer.
func (s AuctionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AuctionStatus.
func (s AuctionStatus) IsValid() bool {
	for _, candidate := range validAuctionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusEnded || s == AuctionStatusCancelled
}

// ParseAuctionStatus converts raw input into an AuctionStatus.
func ParseAuctionStatus(value string) (AuctionStatus, error) {
	for _, candidate := range validAuctionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auction status %q", value)
}
