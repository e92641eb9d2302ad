// Package outbox tracks optimistic placeholders for writes that have been
// sent but not yet confirmed by an authoritative refetch.
package outbox

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotPending is returned when a placeholder has already been settled.
var ErrNotPending = errors.New("placeholder is not pending")

// Status is the lifecycle of a placeholder. Pending moves to Cleared or
// Removed and never back.
type Status int

const (
	Pending Status = iota
	Cleared
	Removed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Cleared:
		return "cleared"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Placeholder is an optimistic item shown until the server view catches up.
type Placeholder[T any] struct {
	Key       string
	Seq       int64
	Item      T
	Status    Status
	CreatedAt time.Time
}

func (p *Placeholder[T]) settle(to Status) error {
	if p.Status != Pending {
		return ErrNotPending
	}
	p.Status = to
	return nil
}

// Outbox holds pending placeholders in insertion order. Safe for concurrent use.
type Outbox[T any] struct {
	mutex   sync.Mutex
	pending []*Placeholder[T]
	seq     int64
	now     func() time.Time
	stamp   func(item T, key string, seq int64) T
}

// New creates an empty Outbox.
func New[T any]() *Outbox[T] {
	return &Outbox[T]{now: time.Now}
}

// WithClock replaces the clock used for CreatedAt.
func (o *Outbox[T]) WithClock(now func() time.Time) *Outbox[T] {
	o.now = now
	return o
}

// WithStamp sets a hook that copies the placeholder key and sequence into
// each added item.
func (o *Outbox[T]) WithStamp(stamp func(item T, key string, seq int64) T) *Outbox[T] {
	o.stamp = stamp
	return o
}

// Add records item as pending and returns its placeholder.
func (o *Outbox[T]) Add(item T) Placeholder[T] {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.seq++
	p := &Placeholder[T]{
		Key:       uuid.NewString(),
		Seq:       o.seq,
		Item:      item,
		Status:    Pending,
		CreatedAt: o.now(),
	}
	if o.stamp != nil {
		p.Item = o.stamp(item, p.Key, p.Seq)
	}
	o.pending = append(o.pending, p)
	return *p
}

// Fail removes the most recently added pending placeholder. The second
// result is false when nothing was pending.
func (o *Outbox[T]) Fail() (Placeholder[T], bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	n := len(o.pending)
	if n == 0 {
		return Placeholder[T]{}, false
	}
	last := o.pending[n-1]
	if err := last.settle(Removed); err != nil {
		return Placeholder[T]{}, false
	}
	o.pending[n-1] = nil
	o.pending = o.pending[:n-1]
	return *last, true
}

// Supersede clears every pending placeholder and returns how many there were.
// Called when authoritative data arrives.
func (o *Outbox[T]) Supersede() int {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	n := len(o.pending)
	for _, p := range o.pending {
		_ = p.settle(Cleared)
	}
	o.pending = nil
	return n
}

// Pending returns the pending placeholders, oldest first.
func (o *Outbox[T]) Pending() []Placeholder[T] {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	out := make([]Placeholder[T], len(o.pending))
	for i, p := range o.pending {
		out[i] = *p
	}
	return out
}

// Len returns the number of pending placeholders.
func (o *Outbox[T]) Len() int {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return len(o.pending)
}

// View returns pending items newest first, followed by server.
func (o *Outbox[T]) View(server []T) []T {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	out := make([]T, 0, len(o.pending)+len(server))
	for i := len(o.pending) - 1; i >= 0; i-- {
		out = append(out, o.pending[i].Item)
	}
	return append(out, server...)
}
