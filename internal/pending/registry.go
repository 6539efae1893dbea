// Package pending correlates a waiting request with the single value that
// completes it. Each registration gets its own id and channel; an entry is
// removed on first delivery, on cancellation, or when its ttl expires.
package pending

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry[T any] struct {
	tag     string
	ch      chan T
	expires time.Time
}

type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	now     func() time.Time
}

func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

// Register reserves a correlation id under tag. The channel receives at most one
// value; it is closed without a value when the entry expires or is cancelled.
func (r *Registry[T]) Register(tag string, ttl time.Duration) (string, <-chan T) {
	id := uuid.NewString()
	e := &entry[T]{
		tag:     tag,
		ch:      make(chan T, 1),
		expires: r.now().Add(ttl),
	}

	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
	return id, e.ch
}

// Deliver completes one registration. It reports false for unknown, already
// completed or expired ids.
func (r *Registry[T]) Deliver(id string, v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return false
	}
	delete(r.entries, id)
	if !r.now().Before(e.expires) {
		close(e.ch)
		return false
	}
	e.ch <- v
	close(e.ch)
	return true
}

// DeliverTag completes every live registration under tag and returns how many received v.
func (r *Registry[T]) DeliverTag(tag string, v T) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	delivered := 0
	for id, e := range r.entries {
		if e.tag != tag {
			continue
		}
		delete(r.entries, id)
		if now.Before(e.expires) {
			e.ch <- v
			delivered++
		}
		close(e.ch)
	}
	return delivered
}

// Cancel drops a registration. Unknown ids are ignored.
func (r *Registry[T]) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		delete(r.entries, id)
		close(e.ch)
	}
}

// Sweep removes expired registrations and returns how many were dropped.
func (r *Registry[T]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if now.Before(e.expires) {
			continue
		}
		delete(r.entries, id)
		close(e.ch)
		removed++
	}
	return removed
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
