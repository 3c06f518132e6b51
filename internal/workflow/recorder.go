package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/makaohq/makao/internal/models"
	"gorm.io/gorm"
)

// Recorder persists the durable outcomes of completed workflows.
type Recorder interface {
	CreateTicket(ctx context.Context, t *models.MaintenanceTicket) error
	SaveFeedback(ctx context.Context, f *models.FeedbackEntry) error
}

// GormRecorder implements Recorder over the shared database.
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder creates a GormRecorder.
func NewGormRecorder(db *gorm.DB) (*GormRecorder, error) {
	if db == nil {
		return nil, fmt.Errorf("workflow: db is required")
	}
	return &GormRecorder{db: db}, nil
}

// CreateTicket implements Recorder. An ID is assigned if the caller left it
// empty.
func (r *GormRecorder) CreateTicket(ctx context.Context, t *models.MaintenanceTicket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = "open"
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("workflow: create ticket: %w", err)
	}
	return nil
}

// SaveFeedback implements Recorder.
func (r *GormRecorder) SaveFeedback(ctx context.Context, f *models.FeedbackEntry) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("workflow: save feedback: %w", err)
	}
	return nil
}
