package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New("254712345678", time.Minute)
	s.TenantID = "tenant-1"
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "254712345678")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("got id %q, want %q", got.ID, s.ID)
	}

	byTenant, err := store.GetByTenant(ctx, "tenant-1")
	if err != nil {
		t.Fatalf("get by tenant: %v", err)
	}
	if byTenant.Address != "254712345678" {
		t.Errorf("by tenant address = %q", byTenant.Address)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "254700000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
	if _, err := store.GetByTenant(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New("254712345678", time.Minute)
	s.ExpiresAt = time.Now().UTC().Add(-time.Second)
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := store.Get(ctx, "254712345678"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session must read as not found, got %v", err)
	}
	// Expired record was lazily evicted; a fresh Put starts over.
	fresh := New("254712345678", time.Minute)
	if err := store.Put(ctx, fresh); err != nil {
		t.Fatalf("put after eviction: %v", err)
	}
}

func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New("254712345678", time.Minute)
	store.Put(ctx, s)
	if err := store.Delete(ctx, "254712345678"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "254712345678"); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
	if _, err := store.Get(ctx, "254712345678"); !errors.Is(err, ErrNotFound) {
		t.Error("session should be gone")
	}
}

func TestMemoryStore_PutIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := New("254712345678", time.Minute)
	s.BeginOnboarding().Name = "original"
	store.Put(ctx, s)

	// Mutating the caller's copy after Put must not leak into the store.
	s.Context.Onboarding.Name = "mutated"

	got, _ := store.Get(ctx, "254712345678")
	if got.Context.Onboarding.Name != "original" {
		t.Errorf("store leaked caller mutation: %q", got.Context.Onboarding.Name)
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	live := New("254700000001", time.Hour)
	dead := New("254700000002", time.Hour)
	dead.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	store.Put(ctx, live)
	store.Put(ctx, dead)

	n, err := store.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, err := store.Get(ctx, "254700000001"); err != nil {
		t.Error("live session should survive the sweep")
	}
}
