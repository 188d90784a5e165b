package notification

import "strings"

// Kind identifies a notification template. The set is closed: adding a kind
// means adding both a constant here and an entry in the template registry.
type Kind string

const (
	KindWaterReminder   Kind = "water_reminder"
	KindMealReminder    Kind = "meal_reminder"
	KindWorkoutReminder Kind = "workout_reminder"
	KindCalorieOver     Kind = "calorie_over"
	KindCalorieUnder    Kind = "calorie_under"
	KindAISuccess       Kind = "ai_processing_success"
	KindAIFailure       Kind = "ai_processing_failure"
	KindAIChatReply     Kind = "ai_chat_reply"
	KindDailySummary    Kind = "daily_summary"
	KindGoalAchieved    Kind = "goal_achieved"
	KindStreakReminder  Kind = "streak_reminder"
	KindReEngagement    Kind = "re_engagement"
	KindWorkoutComplete Kind = "workout_complete"
	KindAuthSignup      Kind = "auth_signup"
	KindAuthLogin       Kind = "auth_login"
	KindAuthLogout      Kind = "auth_logout"
)

// ParseKind normalizes s to a known Kind. It accepts the canonical value
// ("water_reminder"), any case variant ("Water_Reminder"), or the symbolic
// constant name clients sometimes send ("WATER_REMINDER").
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := templates[k]
	return k, ok
}

func (k Kind) String() string { return string(k) }
