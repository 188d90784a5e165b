package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/duyn/calofit-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// FailureThreshold is the cumulative failure count at which a token is
	// deactivated.
	FailureThreshold = 3

	// writeBatchSize bounds per-transaction writes to the store's batch
	// limit.
	writeBatchSize = 500
)

// TokenStore manages device-token lifecycle and health.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

// ListActive returns the user's active delivery tokens.
func (s *TokenStore) ListActive(userID uuid.UUID) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("list active tokens: %w", err)
	}
	return tokens, nil
}

// Register upserts a token for the user. Re-registering an existing token
// resurrects it: active again with a clean failure count.
func (s *TokenStore) Register(userID uuid.UUID, token, platform string) (*models.DeviceToken, error) {
	var existing models.DeviceToken
	err := s.db.Where("token = ?", token).First(&existing).Error
	if err == nil {
		updates := map[string]any{
			"user_id":       userID,
			"is_active":     true,
			"failure_count": 0,
		}
		if platform != "" {
			updates["platform"] = platform
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("reactivate token: %w", err)
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up token: %w", err)
	}

	dt := models.DeviceToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
		IsActive: true,
	}
	if dt.Platform == "" {
		dt.Platform = "unknown"
	}
	if err := s.db.Create(&dt).Error; err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &dt, nil
}

// Unregister removes a user's token (explicit client opt-out).
func (s *TokenStore) Unregister(userID uuid.UUID, token string) error {
	return s.db.Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.DeviceToken{}).Error
}

// TokenResult is one token's outcome from a delivery round. Failures == 0
// means the token received the message.
type TokenResult struct {
	Token    string
	Failures int
}

// RecordOutcome applies a delivery round's per-token results. Failed tokens
// accumulate failures and deactivate at the threshold; a success resets the
// counter and always reactivates. Writes are chunked to the store's batch
// limit.
func (s *TokenStore) RecordOutcome(results []TokenResult, now time.Time) error {
	for start := 0; start < len(results); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(results) {
			end = len(results)
		}
		chunk := results[start:end]

		err := s.db.Transaction(func(tx *gorm.DB) error {
			for _, r := range chunk {
				if r.Failures > 0 {
					if err := tx.Model(&models.DeviceToken{}).
						Where("token = ?", r.Token).
						Updates(map[string]any{
							"failure_count":   gorm.Expr("failure_count + ?", r.Failures),
							"last_failure_at": now,
						}).Error; err != nil {
						return err
					}
					if err := tx.Model(&models.DeviceToken{}).
						Where("token = ? AND failure_count >= ?", r.Token, FailureThreshold).
						Update("is_active", false).Error; err != nil {
						return err
					}
				} else {
					if err := tx.Model(&models.DeviceToken{}).
						Where("token = ?", r.Token).
						Updates(map[string]any{
							"failure_count":   0,
							"last_success_at": now,
							"is_active":       true,
						}).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("record token outcome: %w", err)
		}
	}
	return nil
}

// PurgeStale deletes inactive tokens whose last failure is older than the
// retention window, in bounded delete batches, and writes a cleanup audit
// row with the removed count and cutoff.
func (s *TokenStore) PurgeStale(retentionDays int, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	var removed int64
	for {
		var ids []uuid.UUID
		err := s.db.Model(&models.DeviceToken{}).
			Where("is_active = ? AND last_failure_at IS NOT NULL AND last_failure_at < ?", false, cutoff).
			Limit(writeBatchSize).
			Pluck("id", &ids).Error
		if err != nil {
			return removed, fmt.Errorf("find stale tokens: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		res := s.db.Unscoped().Where("id IN ?", ids).Delete(&models.DeviceToken{})
		if res.Error != nil {
			return removed, fmt.Errorf("delete stale tokens: %w", res.Error)
		}
		removed += res.RowsAffected
		if res.RowsAffected == 0 {
			break
		}
	}

	audit := models.TokenCleanup{RemovedCount: int(removed), Cutoff: cutoff}
	if err := s.db.Create(&audit).Error; err != nil {
		return removed, fmt.Errorf("write cleanup audit: %w", err)
	}
	return removed, nil
}
