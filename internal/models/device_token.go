package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeviceToken is one registered app installation's FCM address.
// A token whose FailureCount reaches the deactivation threshold is flipped to
// IsActive=false; a later successful delivery (or re-registration) resets it.
type DeviceToken struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID  `json:"userId" gorm:"type:uuid;index;not null"`
	Token         string     `json:"-" gorm:"uniqueIndex;not null"`
	Platform      string     `json:"platform" gorm:"size:20;default:unknown"`
	IsActive      bool       `json:"isActive" gorm:"default:true"`
	FailureCount  int        `json:"failureCount" gorm:"default:0"`
	LastFailureAt *time.Time `json:"lastFailureAt"`
	LastSuccessAt *time.Time `json:"lastSuccessAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (t *DeviceToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type RegisterTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
