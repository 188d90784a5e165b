package store

import (
	"errors"
	"testing"
	"time"

	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestListByUserPaginationAndCounts(t *testing.T) {
	s := NewNotificationStore(testDB(t))
	userID := uuid.New()
	other := uuid.New()

	for i := 0; i < 5; i++ {
		n := models.Notification{UserID: userID, Kind: "daily_summary", Title: "t", Body: "b", Status: models.StatusSent}
		if err := s.Create(&n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.Create(&models.Notification{UserID: other, Kind: "daily_summary", Status: models.StatusSent}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	items, total, unread, err := s.ListByUser(userID, 1, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("page size = %d, want 3", len(items))
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if unread != 5 {
		t.Errorf("unread = %d, want 5", unread)
	}

	items, _, _, err = s.ListByUser(userID, 2, 3)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(items))
	}
}

func TestMarkRead(t *testing.T) {
	s := NewNotificationStore(testDB(t))
	userID := uuid.New()

	n := models.Notification{UserID: userID, Kind: "daily_summary", Status: models.StatusSent}
	if err := s.Create(&n); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.MarkRead(userID, n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	_, _, unread, err := s.ListByUser(userID, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread = %d, want 0", unread)
	}

	// Someone else's notification is not found.
	if err := s.MarkRead(uuid.New(), n.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("foreign mark read err = %v, want record not found", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	s := NewNotificationStore(testDB(t))
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := s.Create(&models.Notification{UserID: userID, Kind: "water_reminder", Status: models.StatusSent}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.MarkAllRead(userID); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	_, _, unread, err := s.ListByUser(userID, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread = %d, want 0", unread)
	}
}

func TestRecentlySent(t *testing.T) {
	db := testDB(t)
	s := NewNotificationStore(db)
	userID := uuid.New()
	now := time.Now()

	n := models.Notification{UserID: userID, Kind: string(notification.KindStreakReminder), Status: models.StatusSent}
	if err := s.Create(&n); err != nil {
		t.Fatalf("create: %v", err)
	}

	kinds := []notification.Kind{notification.KindStreakReminder}

	sent, err := s.RecentlySent(userID, kinds, 48*time.Hour, now)
	if err != nil {
		t.Fatalf("recently sent: %v", err)
	}
	if !sent {
		t.Error("expected recent send to be found")
	}

	// Outside the window it no longer counts.
	stale := now.Add(-72 * time.Hour)
	if err := db.Model(&n).Update("created_at", stale).Error; err != nil {
		t.Fatalf("age record: %v", err)
	}
	sent, err = s.RecentlySent(userID, kinds, 48*time.Hour, now)
	if err != nil {
		t.Fatalf("recently sent: %v", err)
	}
	if sent {
		t.Error("send outside window should not count")
	}

	// Other kinds do not count either.
	sent, err = s.RecentlySent(userID, []notification.Kind{notification.KindWaterReminder}, 48*time.Hour, now)
	if err != nil {
		t.Fatalf("recently sent: %v", err)
	}
	if sent {
		t.Error("different kind should not count")
	}
}
