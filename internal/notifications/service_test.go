package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	svc, err := NewService(NewRepository(conn), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNotifyAndUnreadBadge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, NotifyInput{
			UserID:  userID,
			Type:    enums.NotificationTypeOutbid,
			Title:   "You have been outbid",
			Message: "Premium Basmati Rice is now at 90.00 PKR",
		})
		if err != nil {
			t.Fatalf("notify %d: %v", i, err)
		}
	}

	result, err := svc.ListNotifications(ctx, userID, false, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Notifications) != 3 || result.UnreadCount != 3 {
		t.Fatalf("expected 3 unread, got %d rows badge=%d", len(result.Notifications), result.UnreadCount)
	}

	// other users never see these rows
	other, err := svc.ListNotifications(ctx, uuid.New(), false, pagination.Params{})
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other.Notifications) != 0 || other.UnreadCount != 0 {
		t.Fatalf("expected empty feed for other user, got %d", len(other.Notifications))
	}
}

func TestNotifyValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Notify(ctx, NotifyInput{Type: enums.NotificationTypeOutbid, Title: "x"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}

	_, err = svc.Notify(ctx, NotifyInput{UserID: uuid.New(), Type: "carrier_pigeon", Title: "x"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}
}

func TestMarkReadOwnershipAndIdempotency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.Notify(ctx, NotifyInput{
		UserID:  userID,
		Type:    enums.NotificationTypeAuctionWon,
		Title:   "Auction won",
		Message: "You won 100 kg of Premium Basmati Rice",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	if _, err := svc.MarkRead(ctx, uuid.New(), created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for foreign mark-read, got %v", err)
	}

	read, err := svc.MarkRead(ctx, userID, created.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if read.ReadAt == nil {
		t.Fatal("expected read_at stamp")
	}

	again, err := svc.MarkRead(ctx, userID, created.ID)
	if err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if again.ReadAt == nil {
		t.Fatal("expected read_at to survive repeat call")
	}

	result, err := svc.ListNotifications(ctx, userID, true, pagination.Params{})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(result.Notifications) != 0 || result.UnreadCount != 0 {
		t.Fatalf("expected empty unread feed, got %d badge=%d", len(result.Notifications), result.UnreadCount)
	}
}
