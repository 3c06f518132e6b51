// Package directory provides tenant-identity and emergency-contact lookups.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/makaohq/makao/internal/models"
	"gorm.io/gorm"
)

// TenantInfo is the identity projection consumed by the router and the
// emergency subsystem.
type TenantInfo struct {
	ID               string
	Name             string
	Phone            string
	PropertyID       string
	UnitLabel        string
	Language         string
	OnboardingStatus string
}

// Tenants is the identity-lookup seam. Lookups return (nil, nil) when no
// tenant matches.
type Tenants interface {
	FindByAddress(ctx context.Context, address string) (*TenantInfo, error)
	FindByID(ctx context.Context, id string) (*TenantInfo, error)
	UpdateOnboardingStatus(ctx context.Context, id, status string) error
}

// Contacts is the emergency-contact directory seam.
type Contacts interface {
	ContactsForProperty(ctx context.Context, propertyID string) ([]models.EmergencyContact, error)
}

// GormDirectory implements Tenants and Contacts over the shared database.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a GormDirectory.
func NewGormDirectory(db *gorm.DB) (*GormDirectory, error) {
	if db == nil {
		return nil, fmt.Errorf("directory: db is required")
	}
	return &GormDirectory{db: db}, nil
}

// FindByAddress implements Tenants.
func (d *GormDirectory) FindByAddress(ctx context.Context, address string) (*TenantInfo, error) {
	var t models.Tenant
	err := d.db.WithContext(ctx).Where("phone = ?", address).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory: find tenant by address: %w", err)
	}
	return tenantInfo(&t), nil
}

// FindByID implements Tenants.
func (d *GormDirectory) FindByID(ctx context.Context, id string) (*TenantInfo, error) {
	var t models.Tenant
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory: find tenant %s: %w", id, err)
	}
	return tenantInfo(&t), nil
}

// UpdateOnboardingStatus implements Tenants.
func (d *GormDirectory) UpdateOnboardingStatus(ctx context.Context, id, status string) error {
	result := d.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("id = ?", id).Update("onboarding_status", status)
	if result.Error != nil {
		return fmt.Errorf("directory: update onboarding status for %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("directory: tenant not found: %s", id)
	}
	return nil
}

// ContactsForProperty implements Contacts.
func (d *GormDirectory) ContactsForProperty(ctx context.Context, propertyID string) ([]models.EmergencyContact, error) {
	var contacts []models.EmergencyContact
	err := d.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("role, name").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("directory: contacts for property %s: %w", propertyID, err)
	}
	return contacts, nil
}

func tenantInfo(t *models.Tenant) *TenantInfo {
	return &TenantInfo{
		ID:               t.ID,
		Name:             t.Name,
		Phone:            t.Phone,
		PropertyID:       t.PropertyID,
		UnitLabel:        t.UnitLabel,
		Language:         t.Language,
		OnboardingStatus: t.OnboardingStatus,
	}
}
