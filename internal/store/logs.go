package store

import (
	"github.com/duyn/calofit-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogStore is the CRUD surface for meal, water, and workout entries.
type LogStore struct {
	db *gorm.DB
}

func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

func (s *LogStore) CreateMeal(meal *models.Meal) error {
	return s.db.Create(meal).Error
}

func (s *LogStore) ListMeals(userID uuid.UUID, date string) ([]models.Meal, error) {
	var meals []models.Meal
	q := s.db.Where("user_id = ?", userID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	err := q.Order("created_at DESC").Find(&meals).Error
	return meals, err
}

func (s *LogStore) DeleteMeal(userID, mealID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", mealID, userID).Delete(&models.Meal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *LogStore) AddWater(log *models.WaterLog) error {
	return s.db.Create(log).Error
}

func (s *LogStore) ListWater(userID uuid.UUID, date string) ([]models.WaterLog, error) {
	var logs []models.WaterLog
	q := s.db.Where("user_id = ?", userID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	err := q.Order("created_at DESC").Find(&logs).Error
	return logs, err
}

func (s *LogStore) DeleteWater(userID, logID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", logID, userID).Delete(&models.WaterLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *LogStore) CreateWorkout(workout *models.Workout) error {
	return s.db.Create(workout).Error
}

func (s *LogStore) ListWorkouts(userID uuid.UUID, date string) ([]models.Workout, error) {
	var workouts []models.Workout
	q := s.db.Where("user_id = ?", userID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	err := q.Order("created_at DESC").Find(&workouts).Error
	return workouts, err
}
