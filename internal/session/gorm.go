package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/makaohq/makao/internal/models"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry is the MySQL error code for unique-key violations,
// raised when two processes race to create the same address's session.
const mysqlDuplicateEntry = 1062

// GormStore is the durable, multi-process-safe Store. Concurrent updates to
// the same address serialize through an optimistic compare-and-swap on the
// version column; the losing writer receives ErrConflict.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("session: gorm store: db is required")
	}
	return &GormStore{db: db}, nil
}

// Get implements Store.
func (g *GormStore) Get(ctx context.Context, address string) (*Session, error) {
	var rec models.SessionRecord
	err := g.db.WithContext(ctx).Where("address = ?", address).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get %s: %w", address, err)
	}
	return g.decodeLive(ctx, &rec)
}

// GetByTenant implements Store.
func (g *GormStore) GetByTenant(ctx context.Context, tenantID string) (*Session, error) {
	var rec models.SessionRecord
	err := g.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get by tenant %s: %w", tenantID, err)
	}
	return g.decodeLive(ctx, &rec)
}

// decodeLive enforces lazy expiry and unmarshals a live record.
func (g *GormStore) decodeLive(ctx context.Context, rec *models.SessionRecord) (*Session, error) {
	if !rec.ExpiresAt.IsZero() && time.Now().UTC().After(rec.ExpiresAt) {
		// Lazy cleanup; a delete failure only delays hygiene.
		g.db.WithContext(ctx).Delete(&models.SessionRecord{}, "address = ?", rec.Address)
		return nil, ErrNotFound
	}
	s := &Session{
		ID:        rec.ID,
		Address:   rec.Address,
		TenantID:  rec.TenantID,
		Language:  rec.Language,
		State:     State(rec.State),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		ExpiresAt: rec.ExpiresAt,
		Version:   rec.Version,
	}
	if rec.Context != "" {
		if err := json.Unmarshal([]byte(rec.Context), &s.Context); err != nil {
			return nil, fmt.Errorf("session: decode context for %s: %w", rec.Address, err)
		}
	}
	if rec.History != "" {
		if err := json.Unmarshal([]byte(rec.History), &s.History); err != nil {
			return nil, fmt.Errorf("session: decode history for %s: %w", rec.Address, err)
		}
	}
	return s, nil
}

// Put implements Store. A session with Version zero is inserted; otherwise
// the update only lands if the stored version still matches.
func (g *GormStore) Put(ctx context.Context, s *Session) error {
	ctxJSON, err := json.Marshal(s.Context)
	if err != nil {
		return fmt.Errorf("session: encode context: %w", err)
	}
	histJSON, err := json.Marshal(s.History)
	if err != nil {
		return fmt.Errorf("session: encode history: %w", err)
	}

	if s.Version == 0 {
		rec := models.SessionRecord{
			ID:        s.ID,
			Address:   s.Address,
			TenantID:  s.TenantID,
			State:     string(s.State),
			Language:  s.Language,
			Context:   string(ctxJSON),
			History:   string(histJSON),
			Version:   1,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
			ExpiresAt: s.ExpiresAt,
		}
		if err := g.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return fmt.Errorf("session: create %s: %w", s.Address, err)
		}
		s.Version = 1
		return nil
	}

	result := g.db.WithContext(ctx).Model(&models.SessionRecord{}).
		Where("address = ? AND version = ?", s.Address, s.Version).
		Updates(map[string]interface{}{
			"tenant_id":  s.TenantID,
			"state":      string(s.State),
			"language":   s.Language,
			"context":    string(ctxJSON),
			"history":    string(histJSON),
			"version":    s.Version + 1,
			"updated_at": s.UpdatedAt,
			"expires_at": s.ExpiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("session: update %s: %w", s.Address, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	s.Version++
	return nil
}

// Delete implements Store.
func (g *GormStore) Delete(ctx context.Context, address string) error {
	if err := g.db.WithContext(ctx).Delete(&models.SessionRecord{}, "address = ?", address).Error; err != nil {
		return fmt.Errorf("session: delete %s: %w", address, err)
	}
	return nil
}

// SweepExpired implements Sweeper: bulk-deletes rows past their expiry.
func (g *GormStore) SweepExpired(ctx context.Context) (int64, error) {
	result := g.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.SessionRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("session: sweep expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// isDuplicateKey recognizes unique-key violations from both supported
// drivers: GORM's translated error and the raw MySQL 1062.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
