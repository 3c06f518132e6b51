package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the reference in-process Store. A single mutex serializes
// all access, which is sufficient within one process; multi-process
// deployments use GormStore instead.
type MemoryStore struct {
	mu       sync.Mutex
	byAddr   map[string]*Session
	byTenant map[string]string // tenant id -> address
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byAddr:   make(map[string]*Session),
		byTenant: make(map[string]string),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, address string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byAddr[address]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(time.Now().UTC()) {
		m.evict(s)
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := s.Clone()
	cp.Version++
	s.Version = cp.Version
	if old, ok := m.byAddr[cp.Address]; ok && old.TenantID != "" && old.TenantID != cp.TenantID {
		delete(m.byTenant, old.TenantID)
	}
	m.byAddr[cp.Address] = cp
	if cp.TenantID != "" {
		m.byTenant[cp.TenantID] = cp.Address
	}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byAddr[address]; ok {
		m.evict(s)
	}
	return nil
}

// GetByTenant implements Store.
func (m *MemoryStore) GetByTenant(ctx context.Context, tenantID string) (*Session, error) {
	m.mu.Lock()
	addr, ok := m.byTenant[tenantID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.Get(ctx, addr)
}

// SweepExpired implements Sweeper.
func (m *MemoryStore) SweepExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	var n int64
	for _, s := range m.byAddr {
		if s.Expired(now) {
			m.evict(s)
			n++
		}
	}
	return n, nil
}

// evict removes a session from both indexes. Caller holds the lock.
func (m *MemoryStore) evict(s *Session) {
	delete(m.byAddr, s.Address)
	if s.TenantID != "" {
		delete(m.byTenant, s.TenantID)
	}
}
