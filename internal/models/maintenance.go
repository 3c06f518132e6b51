package models

import "time"

// MaintenanceTicket is the durable outcome of a completed maintenance-intake
// workflow. Triage/scoring happens outside this core.
type MaintenanceTicket struct {
	ID          string `gorm:"primaryKey;size:36"`
	TenantID    string `gorm:"size:36;index"`
	PropertyID  string `gorm:"size:36;index"`
	UnitLabel   string `gorm:"size:32"`
	Category    string `gorm:"size:32;not null"` // plumbing, electrical, appliance, structural, other
	Description string `gorm:"type:text;not null"`
	Urgency     string `gorm:"size:16;not null"` // low, normal, urgent
	Status      string `gorm:"size:16;default:open;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FeedbackEntry is the durable outcome of a completed feedback workflow.
type FeedbackEntry struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	TenantID   string `gorm:"size:36;index"`
	PropertyID string `gorm:"size:36;index"`
	Rating     int    `gorm:"not null"`
	Comment    string `gorm:"type:text"`
	CreatedAt  time.Time
}
