package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/makaohq/makao/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openStoreTestDB(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.SessionRecord{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	store, err := NewGormStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestNewGormStore_NilDB(t *testing.T) {
	if _, err := NewGormStore(nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestGormStore_RoundTrip(t *testing.T) {
	store := openStoreTestDB(t)
	ctx := context.Background()

	s := New("254712345678", time.Minute)
	s.TenantID = "tenant-1"
	oc := s.BeginOnboarding()
	oc.Name = "Wanjiku"
	s.AppendHistory("in", "hello", 10)

	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}
	if s.Version != 1 {
		t.Errorf("version after create = %d, want 1", s.Version)
	}

	got, err := store.Get(ctx, "254712345678")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != StateOnboardingLanguage {
		t.Errorf("state = %q", got.State)
	}
	if got.Context.Onboarding == nil || got.Context.Onboarding.Name != "Wanjiku" {
		t.Errorf("context round trip failed: %+v", got.Context)
	}
	if len(got.History) != 1 {
		t.Errorf("history len = %d, want 1", len(got.History))
	}

	byTenant, err := store.GetByTenant(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("get by tenant: %v", err)
	}
	if byTenant.Address != "254712345678" {
		t.Errorf("by tenant address = %q", byTenant.Address)
	}
}

func TestGormStore_CASConflict(t *testing.T) {
	store := openStoreTestDB(t)
	ctx := context.Background()

	s := New("254712345678", time.Minute)
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Two readers load the same version, both modify, both write.
	a, _ := store.Get(ctx, "254712345678")
	b, _ := store.Get(ctx, "254712345678")

	a.State = StateMaintenanceCategory
	if err := store.Put(ctx, a); err != nil {
		t.Fatalf("first writer should win: %v", err)
	}

	b.State = StateFeedbackRating
	if err := store.Put(ctx, b); !errors.Is(err, ErrConflict) {
		t.Fatalf("second writer must get ErrConflict, got %v", err)
	}

	got, _ := store.Get(ctx, "254712345678")
	if got.State != StateMaintenanceCategory {
		t.Errorf("state = %q, want first writer's value", got.State)
	}
}

func TestGormStore_DuplicateCreateConflict(t *testing.T) {
	store := openStoreTestDB(t)
	ctx := context.Background()

	a := New("254712345678", time.Minute)
	b := New("254712345678", time.Minute)
	if err := store.Put(ctx, a); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, b); !errors.Is(err, ErrConflict) {
		t.Fatalf("racing create must get ErrConflict, got %v", err)
	}
}

func TestGormStore_LazyExpiry(t *testing.T) {
	store := openStoreTestDB(t)
	ctx := context.Background()

	s := New("254712345678", time.Minute)
	s.ExpiresAt = time.Now().UTC().Add(-time.Second)
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := store.Get(ctx, "254712345678"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session must read as not found, got %v", err)
	}

	// Record was lazily removed; a new session for the address can be created.
	fresh := New("254712345678", time.Minute)
	if err := store.Put(ctx, fresh); err != nil {
		t.Fatalf("put after lazy cleanup: %v", err)
	}
}

func TestGormStore_SweepExpired(t *testing.T) {
	store := openStoreTestDB(t)
	ctx := context.Background()

	live := New("254700000001", time.Hour)
	dead1 := New("254700000002", time.Hour)
	dead1.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	dead2 := New("254700000003", time.Hour)
	dead2.ExpiresAt = time.Now().UTC().Add(-time.Hour)

	for _, s := range []*Session{live, dead1, dead2} {
		if err := store.Put(ctx, s); err != nil {
			t.Fatalf("put %s: %v", s.Address, err)
		}
	}

	n, err := store.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Errorf("swept %d, want 2", n)
	}
	if _, err := store.Get(ctx, "254700000001"); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}
