package models

import "time"

// SessionRecord is the durable row backing a conversational session in the
// GORM store. The state-machine context travels as a JSON document; Version
// backs the optimistic compare-and-swap that serializes concurrent updates
// to the same address across processes.
type SessionRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	Address   string `gorm:"size:20;not null;uniqueIndex"`
	TenantID  string `gorm:"size:36;index"`
	State     string `gorm:"size:32;not null"`
	Language  string `gorm:"size:8"`
	Context   string `gorm:"type:mediumtext"` // JSON-encoded session.Context
	History   string `gorm:"type:mediumtext"` // JSON-encoded bounded history
	Version   int    `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}
