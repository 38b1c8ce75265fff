package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrimandi/agrimandi-backend/pkg/db/models"
	"github.com/agrimandi/agrimandi-backend/pkg/enums"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	"github.com/agrimandi/agrimandi-backend/pkg/pagination"
)

// Service exposes in-app notification operations.
type Service interface {
	Notify(ctx context.Context, input NotifyInput) (*NotificationDTO, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, page pagination.Params) (*NotificationListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error)
}

// NotifyInput holds a single notification to deliver.
type NotifyInput struct {
	UserID  uuid.UUID
	Type    enums.NotificationType
	Title   string
	Message string
	Link    *string
}

// NotificationDTO is the notification payload returned to clients.
type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      *string    `json:"link,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationListResult is the paginated notification payload.
type NotificationListResult struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int64             `json:"unread_count"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs a notification service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Notify stores a notification for the user.
func (s *service) Notify(ctx context.Context, input NotifyInput) (*NotificationDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown notification type")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	row := &models.Notification{
		ID:      uuid.New(),
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   title,
		Message: strings.TrimSpace(input.Message),
		Link:    input.Link,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing notification")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"notification_type": string(input.Type),
			"recipient_id":      input.UserID.String(),
		}), "notification stored")
	}
	return newDTO(row), nil
}

// ListNotifications pages through the user's notifications with the unread badge count.
func (s *service) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, page pagination.Params) (*NotificationListResult, error) {
	rows, nextCursor, err := s.repo.ListForUser(ctx, userID, unreadOnly, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing notifications")
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting unread notifications")
	}

	dtos := make([]NotificationDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *newDTO(&rows[i]))
	}
	return &NotificationListResult{
		Notifications: dtos,
		UnreadCount:   unread,
		NextCursor:    nextCursor,
	}, nil
}

// MarkRead stamps the notification as read for its owner.
func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationDTO, error) {
	row, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading notification")
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "notification belongs to another user")
	}

	now := s.now()
	applied, err := s.repo.MarkRead(ctx, notificationID, userID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notification read")
	}
	if applied {
		row.ReadAt = &now
	}
	return newDTO(row), nil
}

func newDTO(row *models.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:        row.ID,
		Type:      string(row.Type),
		Title:     row.Title,
		Message:   row.Message,
		Link:      row.Link,
		ReadAt:    row.ReadAt,
		CreatedAt: row.CreatedAt,
	}
}
