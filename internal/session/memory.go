package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/models"
)

type memoryEntry struct {
	cart    *models.Cart
	expires time.Time
}

// MemoryStore keeps carts in process memory. Every Load or Save pushes the
// session's expiry TTL into the future.
type MemoryStore struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates a new instance of MemoryStore whose carts expire
// after ttl without use.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[id]
	if !ok || now.After(e.expires) {
		e = memoryEntry{cart: &models.Cart{}}
	}
	e.expires = now.Add(s.ttl)
	s.entries[id] = e
	return e.cart.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{cart: cart.Clone(), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Sweep drops expired sessions and reports how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Len is the number of live or not yet swept sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
