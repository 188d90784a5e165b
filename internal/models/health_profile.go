package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HealthProfile holds a user's targets and reminder preferences. One per user.
type HealthProfile struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`

	TargetCalories       int `json:"targetCalories"`
	TargetWaterML        int `json:"targetWaterMl"`
	TargetBurnedCalories int `json:"targetBurnedCalories"`

	// IANA zone name, e.g. "Asia/Ho_Chi_Minh". Empty means UTC.
	Timezone string `json:"timezone"`

	// Custom quiet hours; nil means the process default applies.
	QuietStartHour *int `json:"quietStartHour"`
	QuietEndHour   *int `json:"quietEndHour"`

	WaterIntervalMinutes int `json:"waterIntervalMinutes" gorm:"default:120"`

	// Preferred workout time as "HH:MM"; empty disables the reminder.
	WorkoutReminderTime string `json:"workoutReminderTime"`

	BreakfastTime string `json:"breakfastTime"`
	LunchTime     string `json:"lunchTime"`
	DinnerTime    string `json:"dinnerTime"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *HealthProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type UpdateProfileRequest struct {
	TargetCalories       *int    `json:"targetCalories"`
	TargetWaterML        *int    `json:"targetWaterMl"`
	TargetBurnedCalories *int    `json:"targetBurnedCalories"`
	Timezone             *string `json:"timezone"`
	QuietStartHour       *int    `json:"quietStartHour"`
	QuietEndHour         *int    `json:"quietEndHour"`
	WaterIntervalMinutes *int    `json:"waterIntervalMinutes"`
	WorkoutReminderTime  *string `json:"workoutReminderTime"`
	BreakfastTime        *string `json:"breakfastTime"`
	LunchTime            *string `json:"lunchTime"`
	DinnerTime           *string `json:"dinnerTime"`
}
