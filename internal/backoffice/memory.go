package backoffice

import (
	"context"
	"sync"
)

// MemoryRepository keeps the back office in process memory, starting from
// the seed data.
type MemoryRepository struct {
	mu        sync.RWMutex
	documents []Document
	audit     []AuditEntry
	vendors   []Vendor
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		documents: SeedDocuments(),
		audit:     SeedAudit(),
		vendors:   SeedVendors(),
	}
}

func (m *MemoryRepository) Documents(ctx context.Context) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Document(nil), m.documents...), nil
}

func (m *MemoryRepository) Audit(ctx context.Context) ([]AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AuditEntry(nil), m.audit...), nil
}

func (m *MemoryRepository) Vendors(ctx context.Context) ([]Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Vendor, len(m.vendors))
	for i, v := range m.vendors {
		v.Stages = append([]string(nil), v.Stages...)
		out[i] = v
	}
	return out, nil
}

func (m *MemoryRepository) Decide(ctx context.Context, id string, status Status, entry func(doc Document, trailLen int) AuditEntry) (Document, AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.documents {
		if m.documents[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Document{}, AuditEntry{}, ErrNotFound
	}
	if m.documents[idx].Status != StatusPending {
		return Document{}, AuditEntry{}, ErrNotPending
	}
	m.documents[idx].Status = status
	e := entry(m.documents[idx], len(m.audit))
	m.audit = append([]AuditEntry{e}, m.audit...)
	return m.documents[idx], e, nil
}
