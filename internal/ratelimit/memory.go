package ratelimit

import (
	"context"
	"sync"
	"time"
)

type state struct {
	attempts     []time.Time
	blockedUntil time.Time
}

// prune drops attempts older than the window and expires a lapsed block.
func (s *state) prune(now time.Time) {
	kept := s.attempts[:0]
	for _, at := range s.attempts {
		if now.Sub(at) <= Window {
			kept = append(kept, at)
		}
	}
	s.attempts = kept

	if !s.blockedUntil.After(now) {
		s.blockedUntil = time.Time{}
	}
}

// Memory is the in-process [Limiter] backend. All state lives in a single
// map guarded by a mutex; entries are pruned lazily on access and deleted
// once empty, so the map only holds identities with live failures.
type Memory struct {
	mu     sync.Mutex
	states map[string]*state
}

// NewMemory creates an empty in-process limiter.
func NewMemory() *Memory {
	return &Memory{states: make(map[string]*state)}
}

// IsLimited reports whether the identity is blocked at now.
func (m *Memory) IsLimited(ctx context.Context, key string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[key]
	if !ok {
		return false, nil
	}

	s.prune(now)

	if s.blockedUntil.After(now) {
		return true, nil
	}
	if len(s.attempts) == 0 {
		delete(m.states, key)
	}
	return false, nil
}

// RecordFailure appends a failed attempt at now. Crossing [MaxAttempts]
// inside the window starts a block of [BlockDuration].
func (m *Memory) RecordFailure(ctx context.Context, key string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[key]
	if !ok {
		s = &state{}
		m.states[key] = s
	}

	s.prune(now)
	s.attempts = append(s.attempts, now)

	if len(s.attempts) >= MaxAttempts {
		s.blockedUntil = now.Add(BlockDuration)
	}
	return nil
}

// Clear deletes the identity's state entirely.
func (m *Memory) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, key)
	return nil
}
