package database

import (
	"strings"

	"github.com/duyn/calofit-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database named by url. URLs starting with "postgres"
// use the postgres driver; anything else is treated as a SQLite path
// (":memory:" works for tests).
func Open(url string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(url, "postgres") {
		dialector = postgres.Open(url)
	} else {
		dialector = sqlite.Open(url)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.HealthProfile{},
		&models.DeviceToken{},
		&models.Notification{},
		&models.TokenCleanup{},
		&models.Meal{},
		&models.WaterLog{},
		&models.Workout{},
		&models.OTP{},
	)
}
