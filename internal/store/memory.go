package store

import (
	"sync"
	"time"

	"rbb-sathi-backend/internal/chat"
)

type sessionEntry struct {
	session  *chat.Session
	lastSeen time.Time
}

// MemoryStore keeps the live chat sessions of the server, keyed by session id.
// Sessions idle for longer than the TTL are dropped by Sweep; when the cap is
// reached the longest idle session makes room for a new one. A session with a
// reply in flight is never dropped.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	newSession  func() *chat.Session
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

func NewMemoryStore(newSession func() *chat.Session, ttl time.Duration, maxSessions int) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*sessionEntry),
		newSession:  newSession,
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// SetClock replaces the time source used to stamp activity.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// GetOrCreate returns the session for id, creating it when unknown. The
// second result reports whether it was created.
func (m *MemoryStore) GetOrCreate(sessionID string) (*chat.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.sessions[sessionID]; ok {
		e.lastSeen = now
		return e.session, false
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.evictOldestLocked()
	}
	e := &sessionEntry{session: m.newSession(), lastSeen: now}
	m.sessions[sessionID] = e
	return e.session, true
}

func (m *MemoryStore) Get(sessionID string) (*chat.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.session, true
}

func (m *MemoryStore) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle since before now minus the TTL and returns how
// many were dropped.
func (m *MemoryStore) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := now.Add(-m.ttl)
	evicted := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) && !e.session.Pending() {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (m *MemoryStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range m.sessions {
		if e.session.Pending() {
			continue
		}
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}
