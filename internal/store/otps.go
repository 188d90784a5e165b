package store

import (
	"errors"
	"time"

	"github.com/duyn/calofit-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPStore holds one-time password-reset codes.
type OTPStore struct {
	db *gorm.DB
}

func NewOTPStore(db *gorm.DB) *OTPStore {
	return &OTPStore{db: db}
}

func (s *OTPStore) Create(otp *models.OTP) error {
	return s.db.Create(otp).Error
}

// Latest returns the newest unused, unexpired code for email, or nil.
func (s *OTPStore) Latest(email string, now time.Time) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.Where("email = ? AND used = ? AND expires_at > ?", email, false, now).
		Order("created_at DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (s *OTPStore) MarkUsed(id uuid.UUID) error {
	return s.db.Model(&models.OTP{}).Where("id = ?", id).Update("used", true).Error
}
