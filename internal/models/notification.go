package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification delivery statuses. Append-only audit trail: exactly one row is
// written per send attempt, including suppressed and tokenless ones.
const (
	StatusSent              = "sent"
	StatusPartialSent       = "partial_sent"
	StatusFailed            = "failed"
	StatusNoDeviceTokens    = "no_device_tokens"
	StatusSkippedQuietHours = "skipped_quiet_hours"
)

type Notification struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	Kind   string    `json:"kind" gorm:"index;not null"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`

	// Data is a JSON object of string values attached to the push payload.
	Data *string `json:"data"`

	Status       string `json:"status" gorm:"not null"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`

	// Failures is a JSON array of sampled per-token failure reasons (max 20).
	Failures *string `json:"failures"`

	Read      bool           `json:"read" gorm:"default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// TokenCleanup is the audit row written by each stale-token purge.
type TokenCleanup struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RemovedCount int       `json:"removedCount"`
	Cutoff       time.Time `json:"cutoff"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (c *TokenCleanup) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
