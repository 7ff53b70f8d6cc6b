// Package sessions keeps live screen models on the server so HTTP clients can
// drive them across requests.
package sessions

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a screen model held by the registry.
type Session interface {
	LastActive() time.Time
	Close()
}

// Config contains configuration for a registry.
type Config struct {
	IdleTimeout     time.Duration // Close sessions idle this long (default: 30m)
	CleanupInterval time.Duration // How often to look for idle sessions (default: 1m)
}

// Registry maps session ids to live sessions and closes idle ones.
type Registry[T Session] struct {
	name            string
	mu              sync.RWMutex
	items           map[string]T
	idleTimeout     time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

// NewRegistry creates a registry and starts its idle eviction loop. name is
// used in log lines.
func NewRegistry[T Session](name string, cfg Config) *Registry[T] {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	r := &Registry[T]{
		name:            name,
		items:           make(map[string]T),
		idleTimeout:     cfg.IdleTimeout,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Add stores a session under a new random id and returns the id.
func (r *Registry[T]) Add(item T) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.items[id] = item
	r.mu.Unlock()

	return id
}

// Get returns the session with the id.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok
}

// Remove closes and forgets a session. It reports whether the id was known.
func (r *Registry[T]) Remove(id string) bool {
	r.mu.Lock()
	item, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if ok {
		item.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Stop ends the eviction loop and closes every session.
func (r *Registry[T]) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCleanup)
		r.wg.Wait()

		r.mu.Lock()
		items := r.items
		r.items = make(map[string]T)
		r.mu.Unlock()

		for _, item := range items {
			item.Close()
		}
	})
}

func (r *Registry[T]) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now())
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle closes sessions whose last activity is older than the idle
// timeout.
func (r *Registry[T]) evictIdle(now time.Time) int {
	var idle []T

	r.mu.Lock()
	for id, item := range r.items {
		if now.Sub(item.LastActive()) > r.idleTimeout {
			idle = append(idle, item)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, item := range idle {
		item.Close()
	}
	if len(idle) > 0 {
		log.Printf("[SESSIONS] Closed %d idle %s session(s)", len(idle), r.name)
	}
	return len(idle)
}
