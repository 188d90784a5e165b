package notification

import (
	"fmt"
	"math"
	"time"
)

// Decision logic: pure functions over point-in-time metrics. None of these
// touch the store or the transport; callers gather inputs and act on the
// returned values.

const (
	// Calorie-warning thresholds carried over from the original product
	// tuning; their rationale is undocumented, so they stay as-is.
	calorieOverRatio   = 1.10
	calorieUnderRatio  = 0.50
	calorieEveningHour = 20

	summaryOverRatio    = 1.10
	summaryUnderRatio   = 0.80
	summaryWaterRatio   = 0.70
	suggestedWaterSipML = 250

	// MaxStreakLookback caps the backward scan for streak computation.
	MaxStreakLookback = 30

	StreakGentleMin = 2
	StreakStrongMin = 7
)

// WaterReminderInput is a snapshot of a user's hydration state.
type WaterReminderInput struct {
	DailyGoalML     int
	CurrentIntakeML int
	LastLogAt       *time.Time
	Interval        time.Duration
	Now             time.Time
}

// WaterReminder is the payload for a water_reminder notification.
type WaterReminder struct {
	HoursSinceLast int
	SuggestedML    int
}

// EvaluateWaterReminder decides whether to nudge the user to drink. No goal
// configured or goal already met means no action; otherwise remind when the
// last log is older than the interval (or there is no log at all).
func EvaluateWaterReminder(in WaterReminderInput) (WaterReminder, bool) {
	if in.DailyGoalML <= 0 {
		return WaterReminder{}, false
	}
	if in.CurrentIntakeML >= in.DailyGoalML {
		return WaterReminder{}, false
	}

	hoursSince := 0
	if in.LastLogAt != nil {
		since := in.Now.Sub(*in.LastLogAt)
		if since < in.Interval {
			return WaterReminder{}, false
		}
		hoursSince = int(math.Round(since.Hours()))
	}

	remaining := in.DailyGoalML - in.CurrentIntakeML
	suggested := remaining
	if suggested > suggestedWaterSipML {
		suggested = suggestedWaterSipML
	}

	return WaterReminder{HoursSinceLast: hoursSince, SuggestedML: suggested}, true
}

// CalorieStatus classifies today's running intake against the target.
type CalorieStatus string

const (
	CalorieOver  CalorieStatus = "over"
	CalorieUnder CalorieStatus = "under"
)

// CalorieWarning describes an over/under intake warning.
type CalorieWarning struct {
	Status  CalorieStatus
	Percent int
}

// EvaluateCalorieWarning classifies the current intake. "over" above 110% of
// target at any time; "under" below 50% but only in the evening (20:00+),
// when there is still a realistic chance to eat. now must be in the user's
// timezone. A missing target means the decision cannot be evaluated.
func EvaluateCalorieWarning(currentCalories, targetCalories int, now time.Time) (CalorieWarning, bool) {
	if targetCalories <= 0 {
		return CalorieWarning{}, false
	}

	ratio := float64(currentCalories) / float64(targetCalories)
	percent := int(math.Round(ratio * 100))

	if ratio > calorieOverRatio {
		return CalorieWarning{Status: CalorieOver, Percent: percent}, true
	}
	if now.Hour() >= calorieEveningHour && ratio < calorieUnderRatio {
		return CalorieWarning{Status: CalorieUnder, Percent: percent}, true
	}
	return CalorieWarning{}, false
}

// StreakLength counts consecutive active days scanning backward from
// yesterday. history[0] is yesterday, history[1] the day before, and so on;
// counting stops at the first inactive day.
func StreakLength(history []bool) int {
	streak := 0
	for _, active := range history {
		if !active {
			break
		}
		streak++
	}
	return streak
}

// StreakStrength grades how insistent a streak reminder should be.
type StreakStrength string

const (
	StreakGentle StreakStrength = "gentle"
	StreakStrong StreakStrength = "strong"
)

// EvaluateStreakReminder decides whether to remind a user about an unlogged
// day. Fires only when today has no activity yet and the streak is worth
// protecting (>= 2 days); >= 7 days warrants the strong variant.
func EvaluateStreakReminder(streakDays int, activeToday bool) (StreakStrength, bool) {
	if activeToday || streakDays < StreakGentleMin {
		return "", false
	}
	if streakDays >= StreakStrongMin {
		return StreakStrong, true
	}
	return StreakGentle, true
}

// DailySummaryInput holds a day's totals next to the user's targets.
type DailySummaryInput struct {
	TotalCalories  int
	TargetCalories int
	TotalWaterML   int
	TargetWaterML  int
	CaloriesBurned int
}

// SummaryNote picks the note appended to the daily summary: cautionary above
// 110% of the calorie target, deficiency below 80%, encouraging otherwise,
// with a hydration note tacked on when water is under 70% of target.
func SummaryNote(in DailySummaryInput) string {
	note := "A great day! Keep it up tomorrow 💪"

	if in.TargetCalories > 0 {
		total := float64(in.TotalCalories)
		target := float64(in.TargetCalories)
		if total > summaryOverRatio*target {
			note = "You went a bit over your calorie goal today. Try more movement and cleaner meals tomorrow."
		} else if total < summaryUnderRatio*target {
			note = "You ate quite a bit less than your goal. Prolonged under-eating catches up with you."
		}
	}

	if in.TargetWaterML > 0 && float64(in.TotalWaterML) < summaryWaterRatio*float64(in.TargetWaterML) {
		note += " And remember to drink enough water 💧"
	}

	return note
}

// InactiveDays returns the whole days since the last login, or -1 when the
// user has never logged in.
func InactiveDays(lastLoginAt *time.Time, now time.Time) int {
	if lastLoginAt == nil {
		return -1
	}
	return int(now.Sub(*lastLoginAt).Hours() / 24)
}

// ShouldReEngage reports whether the user has been away long enough to earn a
// re-engagement nudge.
func ShouldReEngage(lastLoginAt *time.Time, now time.Time, thresholdDays int) (int, bool) {
	days := InactiveDays(lastLoginAt, now)
	if days < thresholdDays {
		return 0, false
	}
	return days, true
}

// WorkoutReminderDue reports whether now falls within tolerance of the
// user's preferred workout time (as "HH:MM") and no workout has been logged
// today. now must be in the user's timezone.
func WorkoutReminderDue(preferred string, now time.Time, tolerance time.Duration, workedOutToday bool) bool {
	if preferred == "" || workedOutToday {
		return false
	}

	var hh, mm int
	if _, err := fmt.Sscanf(preferred, "%d:%d", &hh, &mm); err != nil {
		return false
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return false
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
	diff := now.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
