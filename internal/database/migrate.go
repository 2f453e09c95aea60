package database

import (
	"fmt"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the users, stores and ratings tables
// together with their foreign keys, unique and check constraints
func Migrate(db *gorm.DB) error {
	log.Info("Migrating database schema")
	if err := db.AutoMigrate(&models.User{}, &models.Store{}, &models.Rating{}); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	return nil
}
