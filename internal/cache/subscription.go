package cache

import (
	"context"
	"sync"
	"sync/atomic"
)

// Subscription is a live handle on one cached query.
type Subscription struct {
	id       uint64
	cache    *Cache
	entry    *entry
	onChange func(State)

	deliverMutex sync.Mutex
	closed       atomic.Bool
}

// State returns the current state of the watched entry.
func (s *Subscription) State() State {
	s.cache.mutex.Lock()
	defer s.cache.mutex.Unlock()
	return s.entry.state()
}

// Refetch forces a fetch and waits for it.
func (s *Subscription) Refetch(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	_, err := s.cache.fetchEntry(ctx, s.entry, true)
	return err
}

// Close stops notifications. Results that resolve afterwards are still
// cached but never delivered to this subscription. A delivery already in
// progress finishes before Close returns, so Close must not be called from
// the subscription's own onChange.
func (s *Subscription) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.deliverMutex.Lock()
	defer s.deliverMutex.Unlock()

	c := s.cache
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(s.entry.subs, s.id)
	if c.currentLocked(s.entry) {
		c.touchLocked(s.entry)
	}
}

// Closed reports whether Close has been called.
func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

func (s *Subscription) deliver() {
	s.deliverMutex.Lock()
	defer s.deliverMutex.Unlock()

	if s.closed.Load() || s.onChange == nil {
		return
	}
	s.onChange(s.State())
}
