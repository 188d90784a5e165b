package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Meal struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;index:idx_meals_user_date;not null"`

	// Date is the user's local calendar day, "YYYY-MM-DD".
	Date     string `json:"date" gorm:"index:idx_meals_user_date;not null"`
	MealType string `json:"mealType"` // breakfast, lunch, dinner, snack
	Name     string `json:"name"`

	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`

	// manual or ai
	Source   string `json:"source" gorm:"default:manual"`
	ImageURL string `json:"imageUrl"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type CreateMealRequest struct {
	Date     string  `json:"date"`
	MealType string  `json:"mealType"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}
