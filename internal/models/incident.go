package models

import "time"

// Incident statuses. Transitions are linear and never regress.
const (
	IncidentActive     = "active"
	IncidentResponding = "responding"
	IncidentResolved   = "resolved"
)

// Incident is the durable record of one detected emergency. It is the system
// of record; the conversational session only carries a transient working copy
// while the incident is in flight.
type Incident struct {
	ID              string `gorm:"primaryKey;size:36"`
	TenantID        string `gorm:"size:36;index"`
	ReporterPhone   string `gorm:"size:20;not null;index"`
	PropertyID      string `gorm:"size:36;index"`
	UnitLabel       string `gorm:"size:32"`
	Type            string `gorm:"size:16;not null"` // fire, flood, break_in, gas_leak, electrical, medical, other
	Confidence      string `gorm:"size:8;not null"`  // medium, high
	Description     string `gorm:"type:text"`
	Status          string `gorm:"size:16;default:active;index"`
	EscalationLevel int    `gorm:"default:1"`
	ResolvedAt      *time.Time
	ResolutionNotes string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Events        []IncidentEvent        `gorm:"foreignKey:IncidentID"`
	Notifications []IncidentNotification `gorm:"foreignKey:IncidentID"`
}

// Terminal reports whether the incident has reached a state it cannot leave.
func (i *Incident) Terminal() bool {
	return i.Status == IncidentResolved
}

// IncidentEvent is one entry in an incident's append-only timeline.
type IncidentEvent struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	IncidentID string    `gorm:"size:36;not null;index"`
	Sequence   int       `gorm:"not null"`
	Label      string    `gorm:"size:64;not null"`
	Actor      string    `gorm:"size:16;not null"` // tenant, system, contact
	Detail     string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null"`
}

// IncidentNotification records one attempted contact notification during the
// escalation fan-out, successful or not.
type IncidentNotification struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	IncidentID  string `gorm:"size:36;not null;index"`
	ContactName string `gorm:"size:128"`
	Phone       string `gorm:"size:20;not null"`
	Role        string `gorm:"size:16"`
	Delivered   bool
	Error       string `gorm:"size:255"`
	CreatedAt   time.Time
}
