package store

import (
	"fmt"
	"time"

	"github.com/duyn/calofit-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyTotals is a user's logged intake and activity for one calendar day,
// computed on demand from the log entries.
type DailyTotals struct {
	TotalCalories  int
	TotalWaterML   int
	CaloriesBurned int
	MealCount      int
}

// MetricsStore answers the point-in-time questions the decision logic needs.
type MetricsStore struct {
	db *gorm.DB
}

func NewMetricsStore(db *gorm.DB) *MetricsStore {
	return &MetricsStore{db: db}
}

// DailyTotals sums the user's meals, water, and workouts for date
// ("YYYY-MM-DD").
func (s *MetricsStore) DailyTotals(userID uuid.UUID, date string) (DailyTotals, error) {
	var totals DailyTotals

	type calRow struct {
		Total int64
		N     int64
	}
	var meals calRow
	err := s.db.Model(&models.Meal{}).
		Select("COALESCE(SUM(calories),0) AS total, COUNT(*) AS n").
		Where("user_id = ? AND date = ?", userID, date).
		Scan(&meals).Error
	if err != nil {
		return totals, fmt.Errorf("sum meals: %w", err)
	}
	totals.TotalCalories = int(meals.Total)
	totals.MealCount = int(meals.N)

	var water int64
	err = s.db.Model(&models.WaterLog{}).
		Select("COALESCE(SUM(amount_ml),0)").
		Where("user_id = ? AND date = ?", userID, date).
		Scan(&water).Error
	if err != nil {
		return totals, fmt.Errorf("sum water: %w", err)
	}
	totals.TotalWaterML = int(water)

	var burned int64
	err = s.db.Model(&models.Workout{}).
		Select("COALESCE(SUM(calories_burned),0)").
		Where("user_id = ? AND date = ?", userID, date).
		Scan(&burned).Error
	if err != nil {
		return totals, fmt.Errorf("sum workouts: %w", err)
	}
	totals.CaloriesBurned = int(burned)

	return totals, nil
}

// LastWaterLogAt returns the creation time of the user's most recent water
// log on date, or nil when there is none.
func (s *MetricsStore) LastWaterLogAt(userID uuid.UUID, date string) (*time.Time, error) {
	var log models.WaterLog
	err := s.db.Where("user_id = ? AND date = ?", userID, date).
		Order("created_at DESC").
		First(&log).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last water log: %w", err)
	}
	return &log.CreatedAt, nil
}

// HasActivityOn reports whether the user logged any meal or water entry on
// date.
func (s *MetricsStore) HasActivityOn(userID uuid.UUID, date string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Meal{}).
		Where("user_id = ? AND date = ?", userID, date).
		Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check meals: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	if err := s.db.Model(&models.WaterLog{}).
		Where("user_id = ? AND date = ?", userID, date).
		Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check water: %w", err)
	}
	return count > 0, nil
}

// HasWorkoutOn reports whether the user logged a workout on date.
func (s *MetricsStore) HasWorkoutOn(userID uuid.UUID, date string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Workout{}).
		Where("user_id = ? AND date = ?", userID, date).
		Limit(1).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check workouts: %w", err)
	}
	return count > 0, nil
}

// ActivityHistory returns per-day activity flags for the lookback days
// before today (local time): index 0 is yesterday, 1 the day before, and so
// on. Feed the result to notification.StreakLength.
func (s *MetricsStore) ActivityHistory(userID uuid.UUID, today time.Time, lookback int) ([]bool, error) {
	history := make([]bool, 0, lookback)
	for i := 1; i <= lookback; i++ {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		active, err := s.HasActivityOn(userID, date)
		if err != nil {
			return nil, err
		}
		history = append(history, active)
		// The scan is only consumed up to the first gap; stop early.
		if !active {
			break
		}
	}
	return history, nil
}
