package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTP is a one-time password-reset code. The code itself is stored hashed.
type OTP struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"index;not null"`
	CodeHash  string    `json:"-" gorm:"not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
