package notification

import (
	"fmt"
	"regexp"
	"strings"
)

// Template is a title/body pair with {{var}} placeholders. The registry is
// immutable after process start.
type Template struct {
	Title string
	Body  string
}

var templates = map[Kind]Template{
	KindWaterReminder: {
		Title: "Time to drink up 💧",
		Body: "It's been {{hours_since_last}} hours since your last glass. " +
			"You're at {{current_water}}/{{target_water}} ml today. " +
			"Have another ~{{suggested_ml}}ml to stay on track!",
	},
	KindMealReminder: {
		Title: "Meal time 🍽",
		Body:  "Don't forget to snap or log your {{meal_type}} so the AI can count the calories for you! 📸",
	},
	KindWorkoutReminder: {
		Title: "Time to move! 🏃",
		Body: "You've burned {{calories_burned}}/{{target_calories_burned}} kcal today. " +
			"A few squats or a 15-minute walk will do it!",
	},
	KindCalorieOver: {
		Title: "Calorie limit exceeded ⚠️",
		Body: "Oops! You've had {{current_calories}}/{{target_calories}} kcal today " +
			"({{percent}}% of your goal). Go light on the next meal or add some movement.",
	},
	KindCalorieUnder: {
		Title: "Running low on fuel ⚠️",
		Body: "It's {{time}} and you've only had {{current_calories}}/{{target_calories}} kcal " +
			"({{percent}}% of your goal). Don't leave your body running on empty.",
	},
	KindAISuccess: {
		Title: "Your meal has been analyzed 🍜",
		Body: "Your {{meal_type}}: {{food_name}} (~{{calories}} kcal). " +
			"Tap to review and confirm.",
	},
	KindAIFailure: {
		Title: "Couldn't recognize that dish 😢",
		Body:  "We couldn't identify the food in your photo. Try another shot or log it manually.",
	},
	KindAIChatReply: {
		Title: "Your coach has replied 🤖",
		Body:  "{{preview}}",
	},
	KindDailySummary: {
		Title: "Today's recap 🎯",
		Body: "You ate {{total_calories}}/{{target_calories}} kcal " +
			"and drank {{total_water}}/{{target_water}} ml of water. {{summary_note}}",
	},
	KindGoalAchieved: {
		Title: "Goal achieved! 🎉",
		Body: "You hit your {{goal_type}} goal: {{current}}/{{target}}. " +
			"The '{{badge_name}}' badge is waiting for you!",
	},
	KindStreakReminder: {
		Title: "Don't break the streak 🔥",
		Body: "You've kept a {{streak_days}}-day streak going, but nothing is logged today yet. " +
			"{{reminder_strength}} Open the app and keep the momentum!",
	},
	KindReEngagement: {
		Title: "We miss you 💙",
		Body: "It's been {{inactive_days}} days since you opened the app. " +
			"Come back, update your weight, and see your progress!",
	},
	KindWorkoutComplete: {
		Title: "✅ Workout complete!",
		Body:  "You finished {{duration}} minutes of {{type}} and burned {{calories}} kcal. Great job!",
	},
	KindAuthSignup: {
		Title: "🎉 Welcome aboard!",
		Body:  "Your account is ready. Let's start your health journey.",
	},
	KindAuthLogin: {
		Title: "👋 Welcome back!",
		Body:  "Have a healthy day.",
	},
	KindAuthLogout: {
		Title: "🔒 You've been signed out.",
		Body:  "Thanks for using the app. You can sign back in any time.",
	},
}

var placeholderRe = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Render substitutes {{key}} placeholders in the template for kind with
// values from vars. Missing or nil values become empty strings; Render never
// fails. An unknown kind yields empty title and body with ok=false so the
// caller can still record the attempt.
func Render(kind Kind, vars map[string]any) (title, body string, ok bool) {
	tpl, ok := templates[kind]
	if !ok {
		return "", "", false
	}
	return substitute(tpl.Title, vars), substitute(tpl.Body, vars), true
}

func substitute(pattern string, vars map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(pattern, func(m string) string {
		key := strings.TrimSpace(m[2 : len(m)-2])
		v, ok := vars[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}
