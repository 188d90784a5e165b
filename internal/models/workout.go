package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Workout struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;index:idx_workouts_user_date;not null"`
	Date   string    `json:"date" gorm:"index:idx_workouts_user_date;not null"`

	Type            string `json:"type"` // running, cycling, gym, ...
	DurationMinutes int    `json:"durationMinutes"`
	CaloriesBurned  int    `json:"caloriesBurned"`

	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (w *Workout) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type CreateWorkoutRequest struct {
	Date            string `json:"date"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes"`
	CaloriesBurned  int    `json:"caloriesBurned"`
}
