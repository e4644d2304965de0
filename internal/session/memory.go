package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/google/uuid"
)

type memoryEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	ttl      time.Duration
	now      func() time.Time

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a memory store and starts its expiry sweeper.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	go s.cleanup()
	return s
}

func (s *MemoryStore) Create(ctx context.Context) (*domain.Session, error) {
	sess := domain.NewSession(uuid.New().String())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = &memoryEntry{session: sess, expiresAt: s.now().Add(s.ttl)}
	return sess.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	entry.expiresAt = s.now().Add(s.ttl)
	return entry.session.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current *domain.Session
	if entry, ok := s.live(id); ok {
		current = entry.session
	} else {
		current = domain.NewSession(id)
	}

	// fn works on a copy so a failed update leaves the stored session intact.
	next := current.Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, ErrNoChange) {
			return current.Clone(), nil
		}
		return nil, err
	}

	s.sessions[id] = &memoryEntry{session: next, expiresAt: s.now().Add(s.ttl)}
	return next.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id := range s.sessions {
		if _, ok := s.live(id); ok {
			n++
		}
	}
	return n
}

func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopCh) })
	return nil
}

// live returns the entry for id if it has not expired. Caller holds mu.
func (s *MemoryStore) live(id string) (*memoryEntry, bool) {
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return entry, true
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
