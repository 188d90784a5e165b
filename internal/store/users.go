package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/duyn/calofit-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore wraps user and health-profile access.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *UserStore) UpdatePassword(userID uuid.UUID, hash string) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("password", hash).Error
}

func (s *UserStore) TouchLastLogin(userID uuid.UUID, now time.Time) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_login_at", now).Error
}

// GetProfile returns the user's health profile, or nil when none exists.
func (s *UserStore) GetProfile(userID uuid.UUID) (*models.HealthProfile, error) {
	var profile models.HealthProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// UpsertProfile creates the profile on first write.
func (s *UserStore) UpsertProfile(profile *models.HealthProfile) error {
	existing, err := s.GetProfile(profile.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.db.Create(profile).Error
	}
	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	return s.db.Save(profile).Error
}

// ListProfiledUserIDs enumerates users that have a health profile — the user
// set the scheduler passes iterate.
func (s *UserStore) ListProfiledUserIDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.HealthProfile{}).Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list profiled users: %w", err)
	}
	return ids, nil
}

// ListInactiveSince returns users whose last login predates cutoff.
func (s *UserStore) ListInactiveSince(cutoff time.Time) ([]models.User, error) {
	var users []models.User
	err := s.db.Where("last_login_at IS NOT NULL AND last_login_at < ?", cutoff).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list inactive users: %w", err)
	}
	return users, nil
}
