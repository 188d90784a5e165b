package notification

import "time"

// QuietHours is a daily clock window during which non-urgent notifications
// are suppressed. The window wraps midnight when StartHour > EndHour.
type QuietHours struct {
	StartHour int `json:"startHour"`
	EndHour   int `json:"endHour"`
}

// DefaultQuietHours suppresses sends between 23:00 and 06:00.
var DefaultQuietHours = QuietHours{StartHour: 23, EndHour: 6}

// Contains reports whether t falls inside the window. t must already be in
// the user's timezone; see InZone.
func (q QuietHours) Contains(t time.Time) bool {
	h := t.Hour()
	if q.StartHour < q.EndHour {
		return h >= q.StartHour && h < q.EndHour
	}
	// Wraps midnight: [start, 24) ∪ [0, end)
	return h >= q.StartHour || h < q.EndHour
}

// InZone converts t to the named IANA zone, falling back to UTC when the
// name is empty or unknown.
func InZone(t time.Time, tz string) time.Time {
	if tz == "" {
		return t.UTC()
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}
