package db

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lanternworks/scopeline/internal/models"
	"gorm.io/gorm"
)

// AllModels returns all GORM models in dependency order for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.AuthSession{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.OrganizationSettings{},
		&models.Project{},
		&models.ProjectForm{},
		&models.ProjectTimeline{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.Proposal{},
		&models.ChangeOrder{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// EnsureSettings creates the settings row for an organization if it does
// not exist yet, returning the effective settings either way.
func EnsureSettings(db *gorm.DB, orgID string) (*models.OrganizationSettings, error) {
	var settings models.OrganizationSettings
	err := db.Where("organization_id = ?", orgID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("db: load settings for org %s: %w", orgID, err)
	}

	settings = models.OrganizationSettings{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		HourlyRate:     150,
		HoursPerWeek:   40,
	}
	if err := db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("db: create settings for org %s: %w", orgID, err)
	}
	return &settings, nil
}
