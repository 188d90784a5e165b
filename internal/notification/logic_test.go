package notification

import (
	"strings"
	"testing"
	"time"
)

func TestEvaluateWaterReminder(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)
	threeHoursAgo := now.Add(-3 * time.Hour)
	oneHourAgo := now.Add(-1 * time.Hour)

	tests := []struct {
		name string
		in   WaterReminderInput
		want WaterReminder
		fire bool
	}{
		{
			name: "no goal configured",
			in:   WaterReminderInput{DailyGoalML: 0, Now: now},
			fire: false,
		},
		{
			name: "goal already met",
			in:   WaterReminderInput{DailyGoalML: 2000, CurrentIntakeML: 2000, Now: now},
			fire: false,
		},
		{
			name: "recent log suppresses",
			in: WaterReminderInput{
				DailyGoalML: 2000, CurrentIntakeML: 500,
				LastLogAt: &oneHourAgo, Interval: 2 * time.Hour, Now: now,
			},
			fire: false,
		},
		{
			name: "stale log fires",
			in: WaterReminderInput{
				DailyGoalML: 2000, CurrentIntakeML: 500,
				LastLogAt: &threeHoursAgo, Interval: 2 * time.Hour, Now: now,
			},
			want: WaterReminder{HoursSinceLast: 3, SuggestedML: 250},
			fire: true,
		},
		{
			name: "never logged fires with zero hours",
			in:   WaterReminderInput{DailyGoalML: 2000, CurrentIntakeML: 0, Interval: 2 * time.Hour, Now: now},
			want: WaterReminder{HoursSinceLast: 0, SuggestedML: 250},
			fire: true,
		},
		{
			name: "suggestion capped by remaining",
			in: WaterReminderInput{
				DailyGoalML: 2000, CurrentIntakeML: 1900,
				LastLogAt: &threeHoursAgo, Interval: 2 * time.Hour, Now: now,
			},
			want: WaterReminder{HoursSinceLast: 3, SuggestedML: 100},
			fire: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fire := EvaluateWaterReminder(tt.in)
			if fire != tt.fire {
				t.Fatalf("fire = %v, want %v", fire, tt.fire)
			}
			if fire && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEvaluateCalorieWarning(t *testing.T) {
	noon := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 15, 20, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		current int
		target  int
		now     time.Time
		status  CalorieStatus
		percent int
		fire    bool
	}{
		{"no target", 1000, 0, noon, "", 0, false},
		{"within range at noon", 1000, 2000, noon, "", 0, false},
		{"over fires any time", 2300, 2000, noon, CalorieOver, 115, true},
		{"exactly 110 percent does not fire", 2200, 2000, noon, "", 0, false},
		{"under before evening stays silent", 400, 2000, noon, "", 0, false},
		{"under in evening fires", 400, 2000, evening, CalorieUnder, 20, true},
		{"exactly 50 percent in evening stays silent", 1000, 2000, evening, "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fire := EvaluateCalorieWarning(tt.current, tt.target, tt.now)
			if fire != tt.fire {
				t.Fatalf("fire = %v, want %v", fire, tt.fire)
			}
			if !fire {
				return
			}
			if got.Status != tt.status {
				t.Errorf("status = %q, want %q", got.Status, tt.status)
			}
			if got.Percent != tt.percent {
				t.Errorf("percent = %d, want %d", got.Percent, tt.percent)
			}
		})
	}
}

func TestStreakLength(t *testing.T) {
	tests := []struct {
		name    string
		history []bool
		want    int
	}{
		{"empty", nil, 0},
		{"inactive yesterday", []bool{false, true, true}, 0},
		{"stops at first gap", []bool{true, true, false, true}, 2},
		{"unbroken", []bool{true, true, true}, 3},
	}
	for _, tt := range tests {
		if got := StreakLength(tt.history); got != tt.want {
			t.Errorf("%s: StreakLength = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestEvaluateStreakReminder(t *testing.T) {
	tests := []struct {
		name        string
		streak      int
		activeToday bool
		strength    StreakStrength
		fire        bool
	}{
		{"already active today", 10, true, "", false},
		{"streak too short", 1, false, "", false},
		{"gentle at two days", 2, false, StreakGentle, true},
		{"gentle at six days", 6, false, StreakGentle, true},
		{"strong at seven days", 7, false, StreakStrong, true},
		{"strong at thirty days", 30, false, StreakStrong, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fire := EvaluateStreakReminder(tt.streak, tt.activeToday)
			if fire != tt.fire {
				t.Fatalf("fire = %v, want %v", fire, tt.fire)
			}
			if fire && got != tt.strength {
				t.Errorf("strength = %q, want %q", got, tt.strength)
			}
		})
	}
}

func TestSummaryNote(t *testing.T) {
	over := SummaryNote(DailySummaryInput{TotalCalories: 2500, TargetCalories: 2000, TotalWaterML: 2000, TargetWaterML: 2000})
	if !strings.Contains(over, "over your calorie goal") {
		t.Errorf("over note = %q", over)
	}

	under := SummaryNote(DailySummaryInput{TotalCalories: 1000, TargetCalories: 2000, TotalWaterML: 2000, TargetWaterML: 2000})
	if !strings.Contains(under, "less than your goal") {
		t.Errorf("under note = %q", under)
	}

	good := SummaryNote(DailySummaryInput{TotalCalories: 2000, TargetCalories: 2000, TotalWaterML: 2000, TargetWaterML: 2000})
	if !strings.Contains(good, "great day") {
		t.Errorf("good note = %q", good)
	}

	dry := SummaryNote(DailySummaryInput{TotalCalories: 2000, TargetCalories: 2000, TotalWaterML: 500, TargetWaterML: 2000})
	if !strings.Contains(dry, "water") {
		t.Errorf("low-water note = %q", dry)
	}

	noTargets := SummaryNote(DailySummaryInput{TotalCalories: 900})
	if !strings.Contains(noTargets, "great day") {
		t.Errorf("no-target note = %q", noTargets)
	}
}

func TestShouldReEngage(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	fourDaysAgo := now.Add(-4 * 24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	if days, ok := ShouldReEngage(&fourDaysAgo, now, 3); !ok || days != 4 {
		t.Errorf("four days away: got (%d, %v), want (4, true)", days, ok)
	}
	if _, ok := ShouldReEngage(&yesterday, now, 3); ok {
		t.Error("one day away should not re-engage")
	}
	if _, ok := ShouldReEngage(nil, now, 3); ok {
		t.Error("never logged in should not re-engage")
	}
}

func TestWorkoutReminderDue(t *testing.T) {
	tolerance := 5 * time.Minute
	base := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		preferred string
		now       time.Time
		workedOut bool
		want      bool
	}{
		{"exact match", "18:00", base, false, true},
		{"within tolerance before", "18:04", base, false, true},
		{"within tolerance after", "17:56", base, false, true},
		{"outside tolerance", "18:10", base, false, false},
		{"already worked out", "18:00", base, true, false},
		{"no preference", "", base, false, false},
		{"garbage time string", "later", base, false, false},
		{"out of range time", "25:00", base, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorkoutReminderDue(tt.preferred, tt.now, tolerance, tt.workedOut)
			if got != tt.want {
				t.Errorf("WorkoutReminderDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInactiveDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	twoDaysAgo := now.Add(-49 * time.Hour)

	if got := InactiveDays(nil, now); got != -1 {
		t.Errorf("never logged in: got %d, want -1", got)
	}
	if got := InactiveDays(&twoDaysAgo, now); got != 2 {
		t.Errorf("49h ago: got %d, want 2", got)
	}
}
