package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/duyn/calofit-api/internal/config"
	"github.com/duyn/calofit-api/internal/database"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeTransport scripts per-attempt and per-token outcomes.
type fakeTransport struct {
	mu         sync.Mutex
	calls      int
	failFirst  int             // attempts that error at the transport level
	failTokens map[string]bool // tokens that fail inside a completed attempt
}

func (f *fakeTransport) Send(ctx context.Context, tokens []string, msg Message) (*BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFirst {
		return nil, errors.New("transport unavailable")
	}

	res := &BatchResult{}
	for _, t := range tokens {
		if f.failTokens[t] {
			res.FailureCount++
			res.Failed = append(res.Failed, TokenError{Token: t, Reason: "unregistered"})
		} else {
			res.SuccessCount++
			res.Succeeded = append(res.Succeeded, t)
		}
	}
	return res, nil
}

type notifierFixture struct {
	db        *gorm.DB
	transport *fakeTransport
	notifier  *Notifier
	tokens    *store.TokenStore
	records   *store.NotificationStore
	userID    uuid.UUID
}

func newNotifierFixture(t *testing.T) *notifierFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	transport := &fakeTransport{failTokens: map[string]bool{}}
	tokens := store.NewTokenStore(db)
	records := store.NewNotificationStore(db)
	users := store.NewUserStore(db)

	opts := config.NotifyConfig{
		BatchSize:   500,
		MaxRetries:  2,
		BaseDelay:   time.Millisecond,
		BatchPause:  0,
		SendTimeout: time.Second,
		QueueSize:   16,
	}
	n := NewNotifier(transport, tokens, records, users, opts)
	// Midday, outside the default quiet window.
	n.Now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	return &notifierFixture{
		db:        db,
		transport: transport,
		notifier:  n,
		tokens:    tokens,
		records:   records,
		userID:    uuid.New(),
	}
}

func (f *notifierFixture) recordCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	f.db.Model(&models.Notification{}).Where("user_id = ?", f.userID).Count(&count)
	return count
}

func (f *notifierFixture) lastRecord(t *testing.T) models.Notification {
	t.Helper()
	var rec models.Notification
	if err := f.db.Where("user_id = ?", f.userID).Order("created_at DESC").First(&rec).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	return rec
}

func TestSendToUserDeliversAndRecords(t *testing.T) {
	f := newNotifierFixture(t)
	if _, err := f.tokens.Register(f.userID, "tok-1", "ios"); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID:    f.userID,
		Kind:      notification.KindDailySummary,
		Variables: map[string]any{"total_calories": 1800},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := f.recordCount(t); got != 1 {
		t.Fatalf("record count = %d, want exactly 1", got)
	}
	rec := f.lastRecord(t)
	if rec.Status != models.StatusSent {
		t.Errorf("status = %q, want sent", rec.Status)
	}
	if rec.SuccessCount != 1 || rec.FailureCount != 0 {
		t.Errorf("counts = %d/%d, want 1/0", rec.SuccessCount, rec.FailureCount)
	}
	if rec.Title == "" || rec.Body == "" {
		t.Error("record should carry rendered title and body")
	}
}

func TestSendToUserQuietHoursSkip(t *testing.T) {
	f := newNotifierFixture(t)
	f.notifier.Now = func() time.Time { return time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC) }
	if _, err := f.tokens.Register(f.userID, "tok-1", "ios"); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID: f.userID,
		Kind:   notification.KindWaterReminder,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if f.transport.calls != 0 {
		t.Errorf("transport calls = %d, want 0 during quiet hours", f.transport.calls)
	}
	if got := f.recordCount(t); got != 1 {
		t.Fatalf("record count = %d, want exactly 1", got)
	}
	rec := f.lastRecord(t)
	if rec.Status != models.StatusSkippedQuietHours {
		t.Errorf("status = %q, want skipped_quiet_hours", rec.Status)
	}
	if rec.Title == "" {
		t.Error("suppressed record should still carry the rendered title")
	}
}

func TestSendToUserIgnoreQuietHours(t *testing.T) {
	f := newNotifierFixture(t)
	f.notifier.Now = func() time.Time { return time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC) }
	if _, err := f.tokens.Register(f.userID, "tok-1", "ios"); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID:           f.userID,
		Kind:             notification.KindAuthLogin,
		IgnoreQuietHours: true,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if rec := f.lastRecord(t); rec.Status != models.StatusSent {
		t.Errorf("status = %q, want sent despite quiet hours", rec.Status)
	}
}

func TestSendToUserNoTokens(t *testing.T) {
	f := newNotifierFixture(t)

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID: f.userID,
		Kind:   notification.KindDailySummary,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if f.transport.calls != 0 {
		t.Errorf("transport calls = %d, want 0 without tokens", f.transport.calls)
	}
	if got := f.recordCount(t); got != 1 {
		t.Fatalf("record count = %d, want exactly 1", got)
	}
	if rec := f.lastRecord(t); rec.Status != models.StatusNoDeviceTokens {
		t.Errorf("status = %q, want no_device_tokens", rec.Status)
	}
}

func TestSendToUserUnknownKind(t *testing.T) {
	f := newNotifierFixture(t)

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID: f.userID,
		Kind:   notification.Kind("bogus"),
	})
	if !errors.Is(err, ErrNoTemplate) {
		t.Fatalf("err = %v, want ErrNoTemplate", err)
	}
	if got := f.recordCount(t); got != 1 {
		t.Fatalf("record count = %d, want exactly 1", got)
	}
	if rec := f.lastRecord(t); rec.Status != models.StatusFailed {
		t.Errorf("status = %q, want failed", rec.Status)
	}
}

func TestSendToUserPartialDelivery(t *testing.T) {
	f := newNotifierFixture(t)
	for _, tok := range []string{"tok-good", "tok-bad"} {
		if _, err := f.tokens.Register(f.userID, tok, "ios"); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	f.transport.failTokens["tok-bad"] = true

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID: f.userID,
		Kind:   notification.KindDailySummary,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	rec := f.lastRecord(t)
	if rec.Status != models.StatusPartialSent {
		t.Errorf("status = %q, want partial_sent", rec.Status)
	}
	if rec.SuccessCount != 1 || rec.FailureCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", rec.SuccessCount, rec.FailureCount)
	}
	if rec.Failures == nil {
		t.Error("partial record should carry a failure sample")
	}

	// Token health followed the outcome.
	var bad models.DeviceToken
	if err := f.db.Where("token = ?", "tok-bad").First(&bad).Error; err != nil {
		t.Fatalf("load token: %v", err)
	}
	if bad.FailureCount != 1 {
		t.Errorf("bad token failures = %d, want 1", bad.FailureCount)
	}
	var good models.DeviceToken
	if err := f.db.Where("token = ?", "tok-good").First(&good).Error; err != nil {
		t.Fatalf("load token: %v", err)
	}
	if good.FailureCount != 0 || good.LastSuccessAt == nil {
		t.Error("good token should have a clean count and a success timestamp")
	}
}

func TestSendToUserRetriesThenSucceeds(t *testing.T) {
	f := newNotifierFixture(t)
	f.transport.failFirst = 2
	if _, err := f.tokens.Register(f.userID, "tok-1", "ios"); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID: f.userID,
		Kind:   notification.KindDailySummary,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if f.transport.calls != 3 {
		t.Errorf("transport calls = %d, want 3 (two retries)", f.transport.calls)
	}
	if rec := f.lastRecord(t); rec.Status != models.StatusSent {
		t.Errorf("status = %q, want sent after retry", rec.Status)
	}
}

func TestSendToUserAllRetriesExhausted(t *testing.T) {
	f := newNotifierFixture(t)
	f.transport.failFirst = 100
	if _, err := f.tokens.Register(f.userID, "tok-1", "ios"); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := f.notifier.SendToUser(context.Background(), SendRequest{
		UserID: f.userID,
		Kind:   notification.KindDailySummary,
	})
	if err == nil {
		t.Fatal("expected error when every batch fails")
	}

	if f.transport.calls != 3 {
		t.Errorf("transport calls = %d, want 3 (initial + two retries)", f.transport.calls)
	}
	if got := f.recordCount(t); got != 1 {
		t.Fatalf("record count = %d, want exactly 1", got)
	}
	rec := f.lastRecord(t)
	if rec.Status != models.StatusFailed {
		t.Errorf("status = %q, want failed", rec.Status)
	}
	if rec.FailureCount != 1 {
		t.Errorf("failure count = %d, want 1", rec.FailureCount)
	}

	// The exhausted batch still counts one failure against the token.
	var tok models.DeviceToken
	if err := f.db.Where("token = ?", "tok-1").First(&tok).Error; err != nil {
		t.Fatalf("load token: %v", err)
	}
	if tok.FailureCount != 1 {
		t.Errorf("token failures = %d, want 1", tok.FailureCount)
	}
}

func TestFanOutBatching(t *testing.T) {
	f := newNotifierFixture(t)
	f.notifier.opts.BatchSize = 2

	tokens := []string{"a", "b", "c", "d", "e"}
	out := f.notifier.fanOut(context.Background(), tokens, Message{Title: "t", Body: "b"})

	if f.transport.calls != 3 {
		t.Errorf("transport calls = %d, want 3 batches for 5 tokens at size 2", f.transport.calls)
	}
	if out.successCount != 5 {
		t.Errorf("success = %d, want 5", out.successCount)
	}
	if len(out.tokenResults) != 5 {
		t.Errorf("token results = %d, want 5", len(out.tokenResults))
	}
}

func TestBuildDataStampsKindAndCaps(t *testing.T) {
	f := newNotifierFixture(t)

	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	data := f.notifier.buildData(SendRequest{
		Kind: notification.KindDailySummary,
		Data: map[string]string{"date": "2025-06-15", "big": string(long)},
	})

	if data["kind"] != string(notification.KindDailySummary) {
		t.Errorf("kind = %q, want stamped", data["kind"])
	}
	if data["date"] != "2025-06-15" {
		t.Errorf("date = %q, want passthrough", data["date"])
	}
	if len(data["big"]) != 1024 {
		t.Errorf("oversized value length = %d, want capped at 1024", len(data["big"]))
	}
}

func TestEnqueueWorkerDelivers(t *testing.T) {
	f := newNotifierFixture(t)
	if _, err := f.tokens.Register(f.userID, "tok-1", "ios"); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.notifier.Start(ctx)

	f.notifier.Enqueue(SendRequest{
		UserID: f.userID,
		Kind:   notification.KindAuthLogin,
	})

	// The worker drains the queue before exiting.
	time.Sleep(50 * time.Millisecond)
	cancel()
	f.notifier.Stop()

	if got := f.recordCount(t); got != 1 {
		t.Fatalf("record count = %d, want 1", got)
	}
	if rec := f.lastRecord(t); rec.Status != models.StatusSent {
		t.Errorf("status = %q, want sent", rec.Status)
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	f := newNotifierFixture(t)
	f.notifier.queue = make(chan SendRequest, 1)

	// Worker not started; second enqueue must not block.
	f.notifier.Enqueue(SendRequest{UserID: f.userID, Kind: notification.KindAuthLogin})
	done := make(chan struct{})
	go func() {
		f.notifier.Enqueue(SendRequest{UserID: f.userID, Kind: notification.KindAuthLogin})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
