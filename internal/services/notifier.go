package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/duyn/calofit-api/internal/config"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/store"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// ErrNoTemplate is returned when a send is attempted for a kind with no
// registered template. The audit record is still written.
var ErrNoTemplate = errors.New("no template registered for kind")

const (
	maxDataKeys      = 20
	maxDataValueLen  = 1024
	maxFailureSample = 20
)

// SendRequest asks the Notifier to deliver one notification to all of a
// user's active devices.
type SendRequest struct {
	UserID    uuid.UUID
	Kind      notification.Kind
	Variables map[string]any
	Data      map[string]string

	// IgnoreQuietHours forces delivery regardless of the user's quiet
	// window. Used for direct feedback on user actions (auth, AI results).
	IgnoreQuietHours bool

	// QuietOverride takes precedence over the user's profile window.
	QuietOverride *notification.QuietHours
}

// Notifier is the delivery engine: it renders the template, honors quiet
// hours, fans out to the user's device tokens in bounded batches with
// retries, writes exactly one audit record per request, and feeds delivery
// outcomes back into token health. Errors on the delivery path are absorbed
// and logged; business-logic callers are never failed by a notification.
type Notifier struct {
	transport Transport
	tokens    *store.TokenStore
	records   *store.NotificationStore
	users     *store.UserStore
	opts      config.NotifyConfig

	queue chan SendRequest
	wg    sync.WaitGroup

	// Now is the clock used for quiet-hours evaluation and token-health
	// timestamps. Overridable in tests.
	Now func() time.Time
}

func NewNotifier(transport Transport, tokens *store.TokenStore, records *store.NotificationStore, users *store.UserStore, opts config.NotifyConfig) *Notifier {
	return &Notifier{
		transport: transport,
		tokens:    tokens,
		records:   records,
		users:     users,
		opts:      opts,
		queue:     make(chan SendRequest, opts.QueueSize),
		Now:       time.Now,
	}
}

// Start launches the background worker that drains the fire-and-forget
// queue. Call Stop (after canceling ctx) to wait for in-flight sends.
func (n *Notifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			select {
			case <-ctx.Done():
				// Drain what's already queued before exiting.
				for {
					select {
					case req := <-n.queue:
						n.process(context.Background(), req)
					default:
						return
					}
				}
			case req := <-n.queue:
				n.process(ctx, req)
			}
		}
	}()
}

// Stop waits for the worker to finish.
func (n *Notifier) Stop() {
	n.wg.Wait()
}

// Enqueue submits a request for background delivery. It never blocks: when
// the queue is full the request is dropped with a log line, which is the
// accepted degradation for reminder traffic.
func (n *Notifier) Enqueue(req SendRequest) {
	select {
	case n.queue <- req:
	default:
		slog.Warn("notification queue full, dropping",
			"user_id", req.UserID, "kind", req.Kind)
	}
}

func (n *Notifier) process(ctx context.Context, req SendRequest) {
	if err := n.SendToUser(ctx, req); err != nil {
		slog.Error("notification delivery failed",
			"user_id", req.UserID, "kind", req.Kind, "error", err)
	}
}

// SendToUser runs the full delivery pipeline synchronously and reports the
// first hard error (for the admin/test surface). Exactly one audit record is
// written per call, whatever branch is taken.
func (n *Notifier) SendToUser(ctx context.Context, req SendRequest) error {
	now := n.Now()

	profile, err := n.users.GetProfile(req.UserID)
	if err != nil {
		// Degrade to defaults; quiet hours and timezone fall back.
		slog.Error("load profile for notification", "user_id", req.UserID, "error", err)
		profile = nil
	}

	localNow, window := n.resolveQuietWindow(now, profile, req.QuietOverride)

	if !req.IgnoreQuietHours && window.Contains(localNow) {
		title, body, _ := notification.Render(req.Kind, req.Variables)
		n.writeRecord(req, title, body, models.StatusSkippedQuietHours, nil)
		slog.Debug("notification suppressed by quiet hours",
			"user_id", req.UserID, "kind", req.Kind, "hour", localNow.Hour())
		return nil
	}

	title, body, ok := notification.Render(req.Kind, req.Variables)
	if !ok {
		// A missing template must never silently drop the audit trail.
		slog.Warn("missing notification template", "kind", req.Kind)
		n.writeRecord(req, title, body, models.StatusFailed, nil)
		return ErrNoTemplate
	}

	tokens, err := n.tokens.ListActive(req.UserID)
	if err != nil {
		// Store failure degrades to "no tokens".
		slog.Error("list device tokens", "user_id", req.UserID, "error", err)
		tokens = nil
	}
	if len(tokens) == 0 {
		n.writeRecord(req, title, body, models.StatusNoDeviceTokens, nil)
		return nil
	}

	addrs := make([]string, len(tokens))
	for i, t := range tokens {
		addrs[i] = t.Token
	}

	outcome := n.fanOut(ctx, addrs, Message{Title: title, Body: body, Data: n.buildData(req)})

	status := models.StatusSent
	switch {
	case outcome.successCount == 0:
		status = models.StatusFailed
	case outcome.failureCount > 0:
		status = models.StatusPartialSent
	}

	n.writeRecord(req, title, body, status, outcome)

	if err := n.tokens.RecordOutcome(outcome.tokenResults, now); err != nil {
		slog.Error("update token health", "user_id", req.UserID, "error", err)
	}

	slog.Info("notification processed",
		"user_id", req.UserID, "kind", req.Kind, "status", status,
		"success", outcome.successCount, "failed", outcome.failureCount)

	if status == models.StatusFailed {
		return errors.New("all delivery batches failed")
	}
	return nil
}

// resolveQuietWindow picks override > profile > default and evaluates "now"
// in the user's timezone when one is known.
func (n *Notifier) resolveQuietWindow(now time.Time, profile *models.HealthProfile, override *notification.QuietHours) (time.Time, notification.QuietHours) {
	tz := ""
	window := notification.DefaultQuietHours
	if profile != nil {
		tz = profile.Timezone
		if profile.QuietStartHour != nil && profile.QuietEndHour != nil {
			window = notification.QuietHours{
				StartHour: *profile.QuietStartHour,
				EndHour:   *profile.QuietEndHour,
			}
		}
	}
	if override != nil {
		window = *override
	}
	return notification.InZone(now, tz), window
}

type fanOutResult struct {
	successCount int
	failureCount int
	failures     []TokenError
	tokenResults []store.TokenResult
}

// fanOut partitions tokens into transport-sized batches and sends each with
// bounded retries and exponential backoff. A batch succeeds as soon as one
// attempt completes at the transport level; token failures inside a completed
// attempt are terminal for this round.
func (n *Notifier) fanOut(ctx context.Context, tokens []string, msg Message) *fanOutResult {
	out := &fanOutResult{}

	for start := 0; start < len(tokens); start += n.opts.BatchSize {
		end := start + n.opts.BatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		if start > 0 && n.opts.BatchPause > 0 {
			// Small pause between batches to smooth transport load.
			select {
			case <-ctx.Done():
			case <-time.After(n.opts.BatchPause):
			}
		}

		res, err := n.sendBatch(ctx, batch, msg)
		if err != nil {
			// Whole batch exhausted its retries: every token failed once.
			out.failureCount += len(batch)
			for _, t := range batch {
				out.tokenResults = append(out.tokenResults, store.TokenResult{Token: t, Failures: 1})
				if len(out.failures) < maxFailureSample {
					out.failures = append(out.failures, TokenError{Token: t, Reason: err.Error()})
				}
			}
			continue
		}

		out.successCount += res.SuccessCount
		out.failureCount += res.FailureCount
		for _, t := range res.Succeeded {
			out.tokenResults = append(out.tokenResults, store.TokenResult{Token: t})
		}
		for _, f := range res.Failed {
			out.tokenResults = append(out.tokenResults, store.TokenResult{Token: f.Token, Failures: 1})
			if len(out.failures) < maxFailureSample {
				out.failures = append(out.failures, f)
			}
		}
	}

	return out
}

func (n *Notifier) sendBatch(ctx context.Context, batch []string, msg Message) (*BatchResult, error) {
	backoff := retry.WithMaxRetries(uint64(n.opts.MaxRetries), retry.NewExponential(n.opts.BaseDelay))

	var result *BatchResult
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, n.opts.SendTimeout)
		defer cancel()

		res, err := n.transport.Send(attemptCtx, batch, msg)
		if err != nil {
			// Timeouts and transport errors are retryable.
			return retry.RetryableError(err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// buildData bounds the payload map (max 20 keys, values capped at 1024
// chars) and stamps the notification kind.
func (n *Notifier) buildData(req SendRequest) map[string]string {
	data := map[string]string{"kind": string(req.Kind)}

	keys := make([]string, 0, len(req.Data))
	for k := range req.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if len(data) >= maxDataKeys {
			break
		}
		v := req.Data[k]
		if len(v) > maxDataValueLen {
			v = v[:maxDataValueLen]
		}
		data[k] = v
	}
	return data
}

// writeRecord appends the audit record. A store failure here is logged but
// not propagated: the record is observability, not a delivery precondition.
func (n *Notifier) writeRecord(req SendRequest, title, body, status string, outcome *fanOutResult) {
	record := models.Notification{
		UserID: req.UserID,
		Kind:   string(req.Kind),
		Title:  title,
		Body:   body,
		Status: status,
	}

	if len(req.Data) > 0 {
		if raw, err := json.Marshal(n.buildData(req)); err == nil {
			s := string(raw)
			record.Data = &s
		}
	}

	if outcome != nil {
		record.SuccessCount = outcome.successCount
		record.FailureCount = outcome.failureCount
		if len(outcome.failures) > 0 {
			if raw, err := json.Marshal(outcome.failures); err == nil {
				s := string(raw)
				record.Failures = &s
			}
		}
	}

	if err := n.records.Create(&record); err != nil {
		slog.Error("write notification record",
			"user_id", req.UserID, "kind", req.Kind, "status", status, "error", err)
	}
}
