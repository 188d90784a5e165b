package store

import (
	"fmt"
	"time"

	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationStore owns the append-only audit trail of send attempts and the
// user-facing notification feed built on top of it.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(n *models.Notification) error {
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("create notification record: %w", err)
	}
	return nil
}

// ListByUser returns a page of the user's notifications, newest first, along
// with the total and unread counts.
func (s *NotificationStore) ListByUser(userID uuid.UUID, page, limit int) ([]models.Notification, int64, int64, error) {
	offset := (page - 1) * limit

	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list notifications: %w", err)
	}

	var total, unread int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)
	s.db.Model(&models.Notification{}).Where("user_id = ? AND read = ?", userID, false).Count(&unread)

	return notifications, total, unread, nil
}

// MarkRead marks one notification as read. Returns gorm.ErrRecordNotFound if
// the notification does not belong to the user.
func (s *NotificationStore) MarkRead(userID, notifID uuid.UUID) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notifID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(userID uuid.UUID) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// RecentlySent reports whether any of the given kinds was sent (or at least
// attempted) to the user within the window. Used to dedup reminders.
func (s *NotificationStore) RecentlySent(userID uuid.UUID, kinds []notification.Kind, within time.Duration, now time.Time) (bool, error) {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND kind IN ? AND created_at > ?", userID, names, now.Add(-within)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check recent notifications: %w", err)
	}
	return count > 0, nil
}
