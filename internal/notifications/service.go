package notifications

import (
	"context"
	"fmt"

	"github.com/flixsy/backend/internal/metrics"
	"github.com/flixsy/backend/internal/models"
	"gorm.io/gorm"
)

// Service creates and reads notification rows. Delivery is poll-based only;
// nothing here pushes.
type Service struct {
	db *gorm.DB
}

// NewService creates a notification service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create inserts a notification row on the given handle. Callers inside a
// transaction pass their tx so the notification commits or rolls back with
// the action that caused it. actorID is nil for system notifications.
func Create(tx *gorm.DB, recipientID uint, actorID *uint, typ models.NotificationType, message, link string) error {
	n := models.Notification{
		UserID:  recipientID,
		ActorID: actorID,
		Type:    typ,
		Message: message,
		Link:    link,
	}
	if err := tx.Create(&n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	metrics.Get().NotificationsCreated.WithLabelValues(string(typ)).Inc()
	return nil
}

// Item is a notification annotated with its actor's public fields.
type Item struct {
	models.Notification
	ActorUsername string `json:"actor_username,omitempty"`
	ActorPic      string `json:"actor_pic,omitempty"`
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uint, limit, offset int) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Table("notifications").
		Select("notifications.*, users.username AS actor_username, users.profile_pic AS actor_pic").
		Joins("LEFT JOIN users ON users.id = notifications.actor_id").
		Where("notifications.user_id = ?", userID).
		Order("notifications.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// UnreadCount returns the number of unread notifications for badge display.
func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flags a single notification as read. Scoped to the owner so a
// user cannot mark someone else's notification.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification for the user.
func (s *Service) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
