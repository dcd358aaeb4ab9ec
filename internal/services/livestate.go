package services

import "sync"

// LiveState holds the most recent per-class detection counts. The writer
// replaces the whole mapping and readers get a copy, so a poll never sees a
// half-updated mapping.
type LiveState struct {
	mu     sync.RWMutex
	counts map[string]int
}

// NewLiveState creates an empty live-state container.
func NewLiveState() *LiveState {
	return &LiveState{counts: make(map[string]int)}
}

// Set replaces the current counts with a copy of the given mapping.
func (s *LiveState) Set(counts map[string]int) {
	snapshot := make(map[string]int, len(counts))
	for class, count := range counts {
		snapshot[class] = count
	}

	s.mu.Lock()
	s.counts = snapshot
	s.mu.Unlock()
}

// Snapshot returns a copy of the current counts.
func (s *LiveState) Snapshot() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]int, len(s.counts))
	for class, count := range s.counts {
		snapshot[class] = count
	}
	return snapshot
}
