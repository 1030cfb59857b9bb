package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	session   Session
	slots     map[string]string
	expiresAt time.Time
}

// MemoryStore is a process-local Store used when Redis is unavailable.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// live returns the entry for sid and slides its expiry. Callers hold mu.
func (m *MemoryStore) live(sid string) (*memoryEntry, error) {
	e, ok := m.entries[sid]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if !now.Before(e.expiresAt) {
		delete(m.entries, sid)
		return nil, ErrNotFound
	}
	e.expiresAt = now.Add(m.ttl)
	return e, nil
}

func (m *MemoryStore) Create(_ context.Context, accountID uint) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := &memoryEntry{
		session: Session{
			ID:        uuid.NewString(),
			AccountID: accountID,
			CreatedAt: now.UTC(),
		},
		slots:     make(map[string]string),
		expiresAt: now.Add(m.ttl),
	}
	m.entries[e.session.ID] = e
	sess := e.session
	return &sess, nil
}

func (m *MemoryStore) Get(_ context.Context, sid string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.live(sid)
	if err != nil {
		return nil, err
	}
	sess := e.session
	return &sess, nil
}

func (m *MemoryStore) Set(_ context.Context, sid, slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.live(sid)
	if err != nil {
		return err
	}
	e.slots[slot] = value
	return nil
}

func (m *MemoryStore) Value(_ context.Context, sid, slot string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.live(sid)
	if err != nil {
		return "", false, err
	}
	v, ok := e.slots[slot]
	return v, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, sid, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.live(sid)
	if err != nil {
		return err
	}
	delete(e.slots, slot)
	return nil
}

func (m *MemoryStore) Destroy(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sid)
	return nil
}
