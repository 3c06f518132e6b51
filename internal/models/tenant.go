// Package models defines the GORM entities shared across Makao subsystems.
package models

import "time"

// Tenant is a resident known to the platform. Phone is stored in normalized
// international form and is the join key between inbound messages and the
// tenant record.
type Tenant struct {
	ID               string `gorm:"primaryKey;size:36"`
	Name             string `gorm:"size:128;not null"`
	Phone            string `gorm:"size:20;not null;uniqueIndex"`
	PropertyID       string `gorm:"size:36;index"`
	UnitID           string `gorm:"size:36"`
	UnitLabel        string `gorm:"size:32"`
	Language         string `gorm:"size:8;default:en"`
	OnboardingStatus string `gorm:"size:16;default:pending;index"` // pending, in_progress, completed
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EmergencyContact is read-only reference data scoped to a property. Contacts
// are notified when an incident at their property goes active.
type EmergencyContact struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" yaml:"-"`
	PropertyID string    `gorm:"size:36;not null;uniqueIndex:idx_property_phone" yaml:"property_id"`
	Name       string    `gorm:"size:128;not null" yaml:"name"`
	Phone      string    `gorm:"size:20;not null;uniqueIndex:idx_property_phone" yaml:"phone"`
	Role       string    `gorm:"size:16;not null" yaml:"role"` // security, manager, maintenance, fire, medical
	HoursFrom  string    `gorm:"size:5" yaml:"hours_from"`     // "HH:MM", empty means always available
	HoursTo    string    `gorm:"size:5" yaml:"hours_to"`
	CreatedAt  time.Time `yaml:"-"`
}
