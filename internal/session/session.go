// Package session keeps one cart per visitor session.
package session

import (
	"context"
	"sync"

	"storefront/internal/models"
)

// Store persists carts by session ID. Load returns an empty cart for an
// unknown or expired session; callers own the returned cart.
type Store interface {
	Load(ctx context.Context, id string) (*models.Cart, error)
	Save(ctx context.Context, id string, cart *models.Cart) error
	Delete(ctx context.Context, id string) error
}

// Locks serializes work per session ID.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*lockEntry)}
}

// Lock blocks until id is free and returns the function that releases it.
func (l *Locks) Lock(id string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// Len reports how many session IDs are currently held or awaited.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
