package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thoughtline/thoughtline/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// Session pairs one tracker with the locking the core deliberately lacks.
// The tracker itself is single-threaded; the session serializes access so
// concurrent callers of the same session cannot interleave submissions.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	tracker    *Tracker
}

func (s *Session) Submit(raw map[string]any) (*domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.tracker.Submit(raw)
}

func (s *Session) History() []domain.Thought {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.tracker.History()
}

type SessionStatus struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	ThoughtCount   int       `json:"thoughtCount"`
	LastSequence   int       `json:"lastSequence"`
	EstimatedTotal int       `json:"estimatedTotal"`
}

func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStatus{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		ThoughtCount:   s.tracker.Len(),
		LastSequence:   s.tracker.LastSequence(),
		EstimatedTotal: s.tracker.EstimatedTotal(),
	}
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// SessionRegistry owns every live session for this process. One session
// corresponds to one tracker/history pair; the registry never shares a
// tracker across sessions.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	stages   domain.StageSet
}

func NewSessionRegistry(stages domain.StageSet) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*Session),
		stages:   stages,
	}
}

func (r *SessionRegistry) Stages() domain.StageSet {
	return r.stages
}

func (r *SessionRegistry) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		lastActive: now,
		tracker:    NewTracker(NewValidator(r.stages)),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

func (r *SessionRegistry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *SessionRegistry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictIdle drops sessions that have not been touched within ttl and
// returns how many were removed.
func (r *SessionRegistry) evictIdle(ttl time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if s.idleSince(now) > ttl {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}
