package emergency

import (
	"context"
	"errors"
	"testing"

	"github.com/makaohq/makao/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openIncidentStore(t *testing.T) *IncidentStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(&models.Incident{}, &models.IncidentEvent{}, &models.IncidentNotification{})
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	store, err := NewIncidentStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func createIncident(t *testing.T, store *IncidentStore) *models.Incident {
	t.Helper()
	inc := &models.Incident{
		ReporterPhone: "254712345678",
		PropertyID:    "prop-1",
		Type:          TypeFire,
		Confidence:    ConfidenceHigh,
		Description:   "fire in the kitchen",
	}
	if err := store.Create(context.Background(), inc); err != nil {
		t.Fatalf("create: %v", err)
	}
	return inc
}

func TestIncidentStore_CreateDefaults(t *testing.T) {
	store := openIncidentStore(t)
	inc := createIncident(t, store)

	if inc.ID == "" {
		t.Error("id must be assigned")
	}
	if inc.Status != models.IncidentActive || inc.EscalationLevel != 1 {
		t.Errorf("defaults not applied: %+v", inc)
	}
}

func TestIncidentStore_TimelineSequence(t *testing.T) {
	store := openIncidentStore(t)
	inc := createIncident(t, store)
	ctx := context.Background()

	for _, label := range []string{"Emergency reported", "Emergency contacts notified", "Tenant update"} {
		if err := store.AppendEvent(ctx, inc.ID, "system", label, ""); err != nil {
			t.Fatalf("append %q: %v", label, err)
		}
	}

	got, err := store.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Events) != 3 {
		t.Fatalf("events = %d, want 3", len(got.Events))
	}
	for i, ev := range got.Events {
		if ev.Sequence != i+1 {
			t.Errorf("event %d sequence = %d", i, ev.Sequence)
		}
	}
}

func TestIncidentStore_LifecycleMonotonic(t *testing.T) {
	store := openIncidentStore(t)
	inc := createIncident(t, store)
	ctx := context.Background()

	if _, err := store.UpdateStatus(ctx, inc.ID, models.IncidentResponding); err != nil {
		t.Fatalf("active -> responding: %v", err)
	}

	// Backward moves are rejected.
	if _, err := store.UpdateStatus(ctx, inc.ID, models.IncidentActive); err == nil {
		t.Error("responding -> active must fail")
	}

	resolved, err := store.Resolve(ctx, inc.ID, "false alarm, pan fire put out")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ResolvedAt == nil || resolved.ResolutionNotes == "" {
		t.Errorf("resolved = %+v", resolved)
	}

	// Resolved is terminal.
	if _, err := store.UpdateStatus(ctx, inc.ID, models.IncidentResponding); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("post-resolve transition = %v, want ErrAlreadyResolved", err)
	}
	if _, err := store.Resolve(ctx, inc.ID, "again"); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("double resolve = %v, want ErrAlreadyResolved", err)
	}
}

func TestIncidentStore_ListByStatus(t *testing.T) {
	store := openIncidentStore(t)
	ctx := context.Background()

	a := createIncident(t, store)
	createIncident(t, store)
	if _, err := store.Resolve(ctx, a.ID, ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	active, err := store.List(ctx, models.IncidentActive)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active = %d, want 1", len(active))
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}
}

func TestIncidentStore_GetMissing(t *testing.T) {
	store := openIncidentStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrIncidentNotFound) {
		t.Errorf("got %v, want ErrIncidentNotFound", err)
	}
}
