package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// HistoryEntry is one completed upload
type HistoryEntry struct {
	Filename   string    `json:"filename"`
	Summary    string    `json:"summary"`
	Gaps       string    `json:"gaps"`
	RecordedAt time.Time `json:"recorded_at"`
}

// State is the server-side state of one browser session. History is
// append-only.
type State struct {
	ID        string
	CreatedAt time.Time

	mu           sync.RWMutex
	lastAccessed time.Time
	history      []HistoryEntry
}

// Append records a completed upload at the end of the history
func (s *State) Append(entry HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	s.history = append(s.history, entry)
}

// History returns a copy of the history in upload order
func (s *State) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]HistoryEntry, len(s.history))
	copy(history, s.history)
	return history
}

// Len returns the number of history entries
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// LastAccessed returns the last time the session was used
func (s *State) LastAccessed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessed
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccessed = now
	s.mu.Unlock()
}

func (s *State) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastAccessed()) > ttl
}

// Stats represents session store statistics
type Stats struct {
	ActiveSessions int       `json:"active_sessions"`
	HistoryEntries int       `json:"history_entries"`
	OldestSession  time.Time `json:"oldest_session"`
	Created        int64     `json:"created"`
	Expired        int64     `json:"expired"`
}

// Store keeps session state in memory with an idle TTL
type Store struct {
	sessions map[string]*State
	mutex    sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	created  int64
	expired  int64
}

// NewStore creates a new in-memory session store
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*State),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the idle lifetime of a session
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a new, empty session
func (s *Store) Create() *State {
	now := s.now()
	state := &State{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		lastAccessed: now,
	}

	s.mutex.Lock()
	s.sessions[state.ID] = state
	s.created++
	s.mutex.Unlock()

	return state
}

// Get returns a live session and refreshes its idle timer
func (s *Store) Get(id string) (*State, error) {
	now := s.now()

	s.mutex.RLock()
	state, exists := s.sessions[id]
	s.mutex.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	if state.expired(now, s.ttl) {
		s.Delete(id)
		return nil, ErrSessionNotFound
	}

	state.touch(now)
	return state, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown
// or expired
func (s *Store) GetOrCreate(id string) (*State, bool) {
	if id != "" {
		if state, err := s.Get(id); err == nil {
			return state, false
		}
	}
	return s.Create(), true
}

// Delete removes a session
func (s *Store) Delete(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[id]; exists {
		delete(s.sessions, id)
		s.expired++
	}
}

// Sweep removes expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	now := s.now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for id, state := range s.sessions {
		if state.expired(now, s.ttl) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.expired += int64(removed)
	return removed
}

// GetStats returns session store statistics
func (s *Store) GetStats() *Stats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stats := &Stats{
		ActiveSessions: len(s.sessions),
		Created:        s.created,
		Expired:        s.expired,
	}

	for _, state := range s.sessions {
		stats.HistoryEntries += state.Len()
		if stats.OldestSession.IsZero() || state.CreatedAt.Before(stats.OldestSession) {
			stats.OldestSession = state.CreatedAt
		}
	}

	return stats
}
