package database

import (
	"geostats/internal/database/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.AnalysisRun{},
		&models.DimensionCount{},
		&models.SuccessfulRequest{},
	)
}
