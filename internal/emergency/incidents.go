package emergency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makaohq/makao/internal/models"
	"gorm.io/gorm"
)

// Lifecycle errors.
var (
	// ErrAlreadyResolved is returned by status transitions on a resolved
	// incident. The lifecycle never regresses.
	ErrAlreadyResolved = errors.New("emergency: incident already resolved")

	// ErrIncidentNotFound is returned when no incident matches the id.
	ErrIncidentNotFound = errors.New("emergency: incident not found")
)

// statusRank orders the linear lifecycle for the monotonicity guard.
var statusRank = map[string]int{
	models.IncidentActive:     1,
	models.IncidentResponding: 2,
	models.IncidentResolved:   3,
}

// IncidentStore persists incidents, their append-only timelines, and the
// notification fan-out log.
type IncidentStore struct {
	db *gorm.DB
}

// NewIncidentStore creates an IncidentStore.
func NewIncidentStore(db *gorm.DB) (*IncidentStore, error) {
	if db == nil {
		return nil, fmt.Errorf("emergency: db is required")
	}
	return &IncidentStore{db: db}, nil
}

// Create persists a new incident, assigning an id and active status when the
// caller left them empty.
func (s *IncidentStore) Create(ctx context.Context, inc *models.Incident) error {
	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}
	if inc.Status == "" {
		inc.Status = models.IncidentActive
	}
	if inc.EscalationLevel == 0 {
		inc.EscalationLevel = 1
	}
	if err := s.db.WithContext(ctx).Create(inc).Error; err != nil {
		return fmt.Errorf("emergency: create incident: %w", err)
	}
	return nil
}

// Get loads an incident with its timeline and notification log.
func (s *IncidentStore) Get(ctx context.Context, id string) (*models.Incident, error) {
	var inc models.Incident
	err := s.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Notifications").
		Where("id = ?", id).First(&inc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIncidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("emergency: load incident %s: %w", id, err)
	}
	return &inc, nil
}

// List returns incidents, newest first, optionally filtered by status.
func (s *IncidentStore) List(ctx context.Context, status string) ([]models.Incident, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var incidents []models.Incident
	if err := q.Find(&incidents).Error; err != nil {
		return nil, fmt.Errorf("emergency: list incidents: %w", err)
	}
	return incidents, nil
}

// AppendEvent adds one entry to an incident's timeline. Sequence numbers are
// assigned monotonically per incident.
func (s *IncidentStore) AppendEvent(ctx context.Context, incidentID, actor, label, detail string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&models.IncidentEvent{}).
			Where("incident_id = ?", incidentID).
			Select("COALESCE(MAX(sequence), 0)").Scan(&last).Error
		if err != nil {
			return err
		}
		return tx.Create(&models.IncidentEvent{
			IncidentID: incidentID,
			Sequence:   last + 1,
			Label:      label,
			Actor:      actor,
			Detail:     detail,
			OccurredAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("emergency: append event to %s: %w", incidentID, err)
	}
	return nil
}

// RecordNotification logs one fan-out attempt, delivered or failed.
func (s *IncidentStore) RecordNotification(ctx context.Context, n *models.IncidentNotification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("emergency: record notification: %w", err)
	}
	return nil
}

// UpdateStatus advances the incident lifecycle. Transitions only move
// forward; a resolved incident returns ErrAlreadyResolved and any other
// backward move is rejected.
func (s *IncidentStore) UpdateStatus(ctx context.Context, id, status string) (*models.Incident, error) {
	rank, ok := statusRank[status]
	if !ok {
		return nil, fmt.Errorf("emergency: unknown status %q", status)
	}
	inc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inc.Terminal() {
		return nil, ErrAlreadyResolved
	}
	if rank < statusRank[inc.Status] {
		return nil, fmt.Errorf("emergency: cannot move incident %s from %s back to %s", id, inc.Status, status)
	}
	updates := map[string]any{"status": status}
	if status == models.IncidentResolved {
		now := time.Now().UTC()
		updates["resolved_at"] = &now
		inc.ResolvedAt = &now
	}
	if err := s.db.WithContext(ctx).Model(inc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("emergency: update incident %s: %w", id, err)
	}
	inc.Status = status
	return inc, nil
}

// Resolve marks an incident resolved with optional operator notes.
func (s *IncidentStore) Resolve(ctx context.Context, id, notes string) (*models.Incident, error) {
	inc, err := s.UpdateStatus(ctx, id, models.IncidentResolved)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		if err := s.db.WithContext(ctx).Model(inc).Update("resolution_notes", notes).Error; err != nil {
			return nil, fmt.Errorf("emergency: record resolution notes for %s: %w", id, err)
		}
		inc.ResolutionNotes = notes
	}
	return inc, nil
}
