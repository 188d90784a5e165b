package notification

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2025, 6, 15, hour, 30, 0, 0, time.UTC)
}

func TestQuietHoursWrapsMidnight(t *testing.T) {
	q := QuietHours{StartHour: 23, EndHour: 6}

	tests := []struct {
		hour int
		want bool
	}{
		{22, false},
		{23, true},
		{0, true},
		{3, true},
		{5, true},
		{6, false},
		{12, false},
	}
	for _, tt := range tests {
		if got := q.Contains(at(tt.hour)); got != tt.want {
			t.Errorf("Contains(%02d:30) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestQuietHoursSameDayWindow(t *testing.T) {
	q := QuietHours{StartHour: 13, EndHour: 15}

	tests := []struct {
		hour int
		want bool
	}{
		{12, false},
		{13, true},
		{14, true},
		{15, false},
	}
	for _, tt := range tests {
		if got := q.Contains(at(tt.hour)); got != tt.want {
			t.Errorf("Contains(%02d:30) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestInZone(t *testing.T) {
	utc := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	// UTC midnight is 07:00 in Ho Chi Minh City (UTC+7).
	got := InZone(utc, "Asia/Ho_Chi_Minh")
	if got.Hour() != 7 {
		t.Errorf("InZone hour = %d, want 7", got.Hour())
	}

	// Unknown and empty zones fall back to UTC.
	if h := InZone(utc, "Not/AZone").Hour(); h != 0 {
		t.Errorf("unknown zone hour = %d, want 0", h)
	}
	if h := InZone(utc, "").Hour(); h != 0 {
		t.Errorf("empty zone hour = %d, want 0", h)
	}
}

func TestDefaultQuietHoursSuppressLateNight(t *testing.T) {
	if !DefaultQuietHours.Contains(at(23)) {
		t.Error("23:30 should be quiet by default")
	}
	if DefaultQuietHours.Contains(at(9)) {
		t.Error("09:30 should not be quiet by default")
	}
}
