package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaterLog struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `json:"userId" gorm:"type:uuid;index:idx_water_user_date;not null"`
	Date     string    `json:"date" gorm:"index:idx_water_user_date;not null"`
	AmountML int       `json:"amountMl" gorm:"not null"`

	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (w *WaterLog) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type AddWaterRequest struct {
	Date     string `json:"date"`
	AmountML int    `json:"amountMl"`
}
