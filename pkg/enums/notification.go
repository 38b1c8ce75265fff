package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOutbid         NotificationType = "outbid"
	NotificationTypeAuctionWon     NotificationType = "auction_won"
	NotificationTypeAuctionEnded   NotificationType = "auction_ended"
	NotificationTypeNewBid         NotificationType = "new_bid"
	NotificationTypeMarketUpdate   NotificationType = "market_update"
	NotificationTypeSystemAnnounce NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOutbid,
	NotificationTypeAuctionWon,
	NotificationTypeAuctionEnded,
	NotificationTypeNewBid,
	NotificationTypeMarketUpdate,
	NotificationTypeSystemAnnounce,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
