package db

import (
	"fmt"

	"github.com/makaohq/makao/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Tenant{},
		&models.EmergencyContact{},
		&models.SessionRecord{},
		&models.Incident{},
		&models.IncidentEvent{},
		&models.IncidentNotification{},
		&models.MaintenanceTicket{},
		&models.FeedbackEntry{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedContacts upserts emergency-contact rows, keyed by (property, phone).
// Used by `makao db seed` to load the reference directory.
func SeedContacts(db *gorm.DB, contacts []models.EmergencyContact) error {
	for _, c := range contacts {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "property_id"}, {Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "hours_from", "hours_to"}),
		}).Create(&c)
		if result.Error != nil {
			return fmt.Errorf("db: seed contact %q: %w", c.Name, result.Error)
		}
	}
	return nil
}
