package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/duyn/calofit-api/internal/config"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/duyn/calofit-api/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const workoutTolerance = 5 * time.Minute

// Passes owns the per-cadence notification passes the scheduler runs.
type Passes struct {
	users    *store.UserStore
	metrics  *store.MetricsStore
	records  *store.NotificationStore
	tokens   *store.TokenStore
	notifier *services.Notifier
	cfg      config.SchedulerConfig
}

func NewPasses(users *store.UserStore, metrics *store.MetricsStore, records *store.NotificationStore, tokens *store.TokenStore, notifier *services.Notifier, cfg config.SchedulerConfig) *Passes {
	return &Passes{
		users:    users,
		metrics:  metrics,
		records:  records,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Jobs returns the pass schedule. Cadences follow the product's day: streak
// nudge at 20:00, summary at 21:00, re-engagement mid-morning, cleanup in
// the quiet of the night.
func (p *Passes) Jobs() []Job {
	return []Job{
		{ID: "daily-summary", DailyAt: "21:00", Run: p.DailySummaryPass},
		{ID: "streak-reminder", DailyAt: "20:00", Run: p.StreakPass},
		{ID: "re-engagement", DailyAt: "10:00", Run: p.ReEngagementPass},
		{ID: "token-cleanup", DailyAt: "03:30", Run: p.TokenCleanupPass},
		{ID: "workout-reminder", Every: time.Minute, Run: p.WorkoutPass},
		{ID: "water-reminder", Every: 30 * time.Minute, Run: p.WaterPass},
	}
}

// forEachUser fans a pass out over users with bounded concurrency. Per-user
// errors are logged and never abort the rest of the pass.
func (p *Passes) forEachUser(ctx context.Context, job string, ids []uuid.UUID, fn func(ctx context.Context, id uuid.UUID) error) {
	g := new(errgroup.Group)
	g.SetLimit(p.cfg.ChunkSize)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				slog.Error("scheduler pass user failed", "job", job, "user_id", id, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

// localDay returns the user's local clock and calendar day for now.
func (p *Passes) localDay(profile *models.HealthProfile, now time.Time) (time.Time, string) {
	tz := ""
	if profile != nil {
		tz = profile.Timezone
	}
	local := notification.InZone(now, tz)
	return local, local.Format("2006-01-02")
}

// DailySummaryPass sends every profiled user their day's recap.
func (p *Passes) DailySummaryPass(ctx context.Context, now time.Time) {
	ids, err := p.users.ListProfiledUserIDs()
	if err != nil {
		slog.Error("daily summary: enumerate users", "error", err)
		return
	}

	p.forEachUser(ctx, "daily-summary", ids, func(ctx context.Context, id uuid.UUID) error {
		profile, err := p.users.GetProfile(id)
		if err != nil {
			return err
		}
		_, date := p.localDay(profile, now)

		totals, err := p.metrics.DailyTotals(id, date)
		if err != nil {
			return err
		}

		in := notification.DailySummaryInput{
			TotalCalories:  totals.TotalCalories,
			TotalWaterML:   totals.TotalWaterML,
			CaloriesBurned: totals.CaloriesBurned,
		}
		if profile != nil {
			in.TargetCalories = profile.TargetCalories
			in.TargetWaterML = profile.TargetWaterML
		}

		return p.notifier.SendToUser(ctx, services.SendRequest{
			UserID: id,
			Kind:   notification.KindDailySummary,
			Variables: map[string]any{
				"total_calories":  in.TotalCalories,
				"target_calories": in.TargetCalories,
				"total_water":     in.TotalWaterML,
				"target_water":    in.TargetWaterML,
				"summary_note":    notification.SummaryNote(in),
			},
			Data: map[string]string{"date": date},
		})
	})
}

// StreakPass nudges users who have a streak at risk: nothing logged today
// while yesterday continued a run of at least two active days.
func (p *Passes) StreakPass(ctx context.Context, now time.Time) {
	ids, err := p.users.ListProfiledUserIDs()
	if err != nil {
		slog.Error("streak pass: enumerate users", "error", err)
		return
	}

	p.forEachUser(ctx, "streak-reminder", ids, func(ctx context.Context, id uuid.UUID) error {
		profile, err := p.users.GetProfile(id)
		if err != nil {
			return err
		}
		local, date := p.localDay(profile, now)

		activeToday, err := p.metrics.HasActivityOn(id, date)
		if err != nil {
			return err
		}
		history, err := p.metrics.ActivityHistory(id, local, notification.MaxStreakLookback)
		if err != nil {
			return err
		}

		strength, ok := notification.EvaluateStreakReminder(notification.StreakLength(history), activeToday)
		if !ok {
			return nil
		}

		recent, err := p.records.RecentlySent(id, []notification.Kind{notification.KindStreakReminder}, p.cfg.StreakDedupWindow, now)
		if err != nil || recent {
			return err
		}

		return p.notifier.SendToUser(ctx, services.SendRequest{
			UserID: id,
			Kind:   notification.KindStreakReminder,
			Variables: map[string]any{
				"streak_days":       notification.StreakLength(history),
				"reminder_strength": string(strength),
			},
		})
	})
}

// ReEngagementPass reaches out to users who have not logged in for the
// inactivity threshold.
func (p *Passes) ReEngagementPass(ctx context.Context, now time.Time) {
	cutoff := now.AddDate(0, 0, -p.cfg.InactivityDays)
	users, err := p.users.ListInactiveSince(cutoff)
	if err != nil {
		slog.Error("re-engagement: enumerate users", "error", err)
		return
	}

	ids := make([]uuid.UUID, len(users))
	byID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		ids[i] = users[i].ID
		byID[users[i].ID] = &users[i]
	}

	p.forEachUser(ctx, "re-engagement", ids, func(ctx context.Context, id uuid.UUID) error {
		days, ok := notification.ShouldReEngage(byID[id].LastLoginAt, now, p.cfg.InactivityDays)
		if !ok {
			return nil
		}
		return p.notifier.SendToUser(ctx, services.SendRequest{
			UserID:    id,
			Kind:      notification.KindReEngagement,
			Variables: map[string]any{"inactive_days": days},
		})
	})
}

// WorkoutPass fires workout reminders for users whose preferred time is now
// (within tolerance) and who have not exercised today.
func (p *Passes) WorkoutPass(ctx context.Context, now time.Time) {
	ids, err := p.users.ListProfiledUserIDs()
	if err != nil {
		slog.Error("workout pass: enumerate users", "error", err)
		return
	}

	p.forEachUser(ctx, "workout-reminder", ids, func(ctx context.Context, id uuid.UUID) error {
		profile, err := p.users.GetProfile(id)
		if err != nil || profile == nil || profile.WorkoutReminderTime == "" {
			return err
		}
		local, date := p.localDay(profile, now)

		workedOut, err := p.metrics.HasWorkoutOn(id, date)
		if err != nil {
			return err
		}
		if !notification.WorkoutReminderDue(profile.WorkoutReminderTime, local, workoutTolerance, workedOut) {
			return nil
		}

		recent, err := p.records.RecentlySent(id, []notification.Kind{notification.KindWorkoutReminder}, p.cfg.WorkoutDedupWindow, now)
		if err != nil || recent {
			return err
		}

		totals, err := p.metrics.DailyTotals(id, date)
		if err != nil {
			return err
		}

		return p.notifier.SendToUser(ctx, services.SendRequest{
			UserID: id,
			Kind:   notification.KindWorkoutReminder,
			Variables: map[string]any{
				"calories_burned":        totals.CaloriesBurned,
				"target_calories_burned": profile.TargetBurnedCalories,
			},
		})
	})
}

// WaterPass runs the smart water reminder for profiled users.
func (p *Passes) WaterPass(ctx context.Context, now time.Time) {
	ids, err := p.users.ListProfiledUserIDs()
	if err != nil {
		slog.Error("water pass: enumerate users", "error", err)
		return
	}

	p.forEachUser(ctx, "water-reminder", ids, func(ctx context.Context, id uuid.UUID) error {
		profile, err := p.users.GetProfile(id)
		if err != nil || profile == nil || profile.TargetWaterML <= 0 {
			return err
		}
		local, date := p.localDay(profile, now)

		totals, err := p.metrics.DailyTotals(id, date)
		if err != nil {
			return err
		}
		lastLog, err := p.metrics.LastWaterLogAt(id, date)
		if err != nil {
			return err
		}

		interval := time.Duration(profile.WaterIntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = 2 * time.Hour
		}

		reminder, ok := notification.EvaluateWaterReminder(notification.WaterReminderInput{
			DailyGoalML:     profile.TargetWaterML,
			CurrentIntakeML: totals.TotalWaterML,
			LastLogAt:       lastLog,
			Interval:        interval,
			Now:             local,
		})
		if !ok {
			return nil
		}

		// One reminder per interval, even if the user never logs.
		recent, err := p.records.RecentlySent(id, []notification.Kind{notification.KindWaterReminder}, interval, now)
		if err != nil || recent {
			return err
		}

		return p.notifier.SendToUser(ctx, services.SendRequest{
			UserID: id,
			Kind:   notification.KindWaterReminder,
			Variables: map[string]any{
				"hours_since_last": reminder.HoursSinceLast,
				"current_water":    totals.TotalWaterML,
				"target_water":     profile.TargetWaterML,
				"suggested_ml":     reminder.SuggestedML,
			},
		})
	})
}

// TokenCleanupPass purges tokens that have been dead past the retention
// window.
func (p *Passes) TokenCleanupPass(ctx context.Context, now time.Time) {
	removed, err := p.tokens.PurgeStale(p.cfg.RetentionDays, now)
	if err != nil {
		slog.Error("token cleanup failed", "error", err)
		return
	}
	slog.Info("stale token cleanup", "removed", removed, "retention_days", p.cfg.RetentionDays)
}
