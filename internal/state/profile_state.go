package state

import (
	"sync"

	"github.com/spec-kit/credit-ledger/internal/domain"
)

// ProfileState holds the profile for the current session and notifies
// subscribers on every change. It is injected into the session observer,
// the feature gates, and the HTTP handlers; nothing reaches it as a global.
type ProfileState struct {
	mu        sync.Mutex
	current   *domain.Profile
	listeners map[int]func(*domain.Profile)
	nextID    int
}

// NewProfileState returns an empty holder.
func NewProfileState() *ProfileState {
	return &ProfileState{listeners: make(map[int]func(*domain.Profile))}
}

// Get returns the current profile, or nil when no session is resolved.
func (s *ProfileState) Get() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Set replaces the current profile and notifies subscribers.
func (s *ProfileState) Set(profile *domain.Profile) {
	s.mu.Lock()
	s.current = profile.Clone()
	snapshot := s.current.Clone()
	fns := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Clear drops the current profile, notifying subscribers with nil.
func (s *ProfileState) Clear() {
	s.mu.Lock()
	s.current = nil
	fns := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
}

// Subscribe registers a change listener and returns its cancellation func.
func (s *ProfileState) Subscribe(fn func(*domain.Profile)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners copies listeners so delivery happens outside the lock.
// Callers must hold the mutex.
func (s *ProfileState) snapshotListeners() []func(*domain.Profile) {
	fns := make([]func(*domain.Profile), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}
