package session

import (
	"context"
	"sync"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
)

type memoryEntry struct {
	state   State
	touched time.Time
}

// sweepInterval bounds how often Put scans for idle sessions.
const sweepInterval = time.Minute

// MemoryStore keeps sessions in process memory. Entries idle for longer
// than the TTL are dropped on access and by a periodic sweep during Put.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]*memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore creates a MemoryStore. A zero ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// expired must be called with mu held.
func (m *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touched) > m.ttl
}

func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	if !ok || e.state.Empty() {
		m.mu.RUnlock()
		return nil, ErrSessionNotFound
	}
	if !m.expired(e, m.now()) {
		st := e.state
		m.mu.RUnlock()
		return &st, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	// A Put may have refreshed the entry between the two locks.
	e, ok = m.entries[id]
	if !ok || e.state.Empty() {
		return nil, ErrSessionNotFound
	}
	if m.expired(e, m.now()) {
		delete(m.entries, id)
		return nil, ErrSessionNotFound
	}
	st := e.state
	return &st, nil
}

func (m *MemoryStore) Put(_ context.Context, id string, slot Slot, ds *datanorm.Dataset) error {
	if _, err := ParseSlot(string(slot)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweep(now)
	e, ok := m.entries[id]
	if !ok || m.expired(e, now) {
		e = &memoryEntry{}
		m.entries[id] = e
	}
	e.state.set(slot, ds)
	e.touched = now
	return nil
}

// sweep drops idle sessions at most once per sweepInterval. mu must be held.
func (m *MemoryStore) sweep(now time.Time) {
	if m.ttl <= 0 || now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for id, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, id)
		}
	}
}

func (m *MemoryStore) Delete(_ context.Context, id string, slot Slot) error {
	if _, err := ParseSlot(string(slot)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.state.set(slot, nil)
		e.touched = m.now()
		if e.state.Empty() {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now, n := m.now(), 0
	for _, e := range m.entries {
		if !m.expired(e, now) && !e.state.Empty() {
			n++
		}
	}
	return n
}
