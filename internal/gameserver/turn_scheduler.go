package gameserver

import (
	"sync"
	"time"
)

// TurnScheduler runs at most one delayed callback per battle. Scheduling a new
// callback for a battle replaces the pending one. It is safe for concurrent use.
//
// Invariant: a callback runs only if it is still the pending entry for its
// battle when its delay elapses.
type TurnScheduler struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// NewTurnScheduler creates a scheduler that delays callbacks by delay.
//
// Precondition: delay >= 0.
func NewTurnScheduler(delay time.Duration) *TurnScheduler {
	if delay < 0 {
		panic("gameserver.NewTurnScheduler: delay must be >= 0")
	}
	return &TurnScheduler{delay: delay, pending: make(map[string]*time.Timer)}
}

// Schedule arranges for fn to run after the scheduler's delay, replacing any
// callback still pending for battleID. fn runs on its own goroutine.
//
// Postcondition: no-op after Stop.
func (s *TurnScheduler) Schedule(battleID string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if prev, ok := s.pending[battleID]; ok {
		prev.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		current, ok := s.pending[battleID]
		live := ok && current == t && !s.stopped
		if live {
			delete(s.pending, battleID)
		}
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	s.pending[battleID] = t
}

// Cancel drops the callback pending for battleID. Safe to call when none is pending.
//
// Postcondition: the dropped callback will not run after Cancel returns, unless it
// had already begun.
func (s *TurnScheduler) Cancel(battleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[battleID]; ok {
		t.Stop()
		delete(s.pending, battleID)
	}
}

// Pending reports whether a callback is waiting for battleID.
func (s *TurnScheduler) Pending(battleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[battleID]
	return ok
}

// Stop cancels every pending callback and rejects future ones. Safe to call
// multiple times.
func (s *TurnScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}
