package aggregate

import (
	"sync"

	"broker-backoffice-go/internal/models"
)

// Sources holds the latest snapshot of each named source. Snapshots arrive in
// any order and any subset is a valid input to the derived views.
type Sources struct {
	mutex     sync.RWMutex
	names     []string
	snapshots map[string][]models.NormalizedTransaction
	policy    Policy
}

// NewSources creates an aggregator. names fixes the merge order; sources set
// under other names are appended after them in arrival order.
func NewSources(policy Policy, names ...string) *Sources {
	return &Sources{
		names:     append([]string(nil), names...),
		snapshots: make(map[string][]models.NormalizedTransaction),
		policy:    policy,
	}
}

// Set replaces the snapshot for name.
func (s *Sources) Set(name string, items []models.NormalizedTransaction) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, known := s.snapshots[name]; !known && !s.declared(name) {
		s.names = append(s.names, name)
	}
	s.snapshots[name] = append([]models.NormalizedTransaction(nil), items...)
}

// Clear forgets the snapshot for name.
func (s *Sources) Clear(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.snapshots, name)
}

// Get returns the snapshot for name, or nil if it has not arrived.
func (s *Sources) Get(name string) []models.NormalizedTransaction {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshots[name]
}

// Has reports whether name has arrived.
func (s *Sources) Has(name string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.snapshots[name]
	return ok
}

// Complete reports whether every declared source has arrived.
func (s *Sources) Complete() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	for _, name := range s.names {
		if _, ok := s.snapshots[name]; !ok {
			return false
		}
	}
	return true
}

// Merged merges the present snapshots in source order and sorts by recency.
func (s *Sources) Merged() []models.NormalizedTransaction {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	lists := make([][]models.NormalizedTransaction, 0, len(s.names))
	for _, name := range s.names {
		if items, ok := s.snapshots[name]; ok {
			lists = append(lists, items)
		}
	}
	return SortByRecency(Merge(s.policy, lists...))
}

func (s *Sources) declared(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}
