package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thoughtline/thoughtline/internal/domain"
)

func newTestRegistry() *SessionRegistry {
	return NewSessionRegistry(domain.CanonicalStages())
}

func TestSessionRegistry_CreateGetDelete(t *testing.T) {
	r := newTestRegistry()

	s := r.Create()
	if s.ID == uuid.Nil {
		t.Fatal("expected a session ID")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", r.Len())
	}

	got, err := r.Get(s.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != s {
		t.Fatal("expected the same session instance")
	}

	if err := r.Delete(s.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected 0 sessions, got %d", r.Len())
	}
}

func TestSessionRegistry_GetUnknown(t *testing.T) {
	r := newTestRegistry()

	if _, err := r.Get(uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := r.Delete(uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionRegistry_IndependentHistories(t *testing.T) {
	r := newTestRegistry()
	a := r.Create()
	b := r.Create()

	if _, err := a.Submit(rawThought(1, 2, nil)); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}

	if got := b.Status().ThoughtCount; got != 0 {
		t.Fatalf("sessions must not share history, got %d thoughts", got)
	}
	if got := a.Status().ThoughtCount; got != 1 {
		t.Fatalf("expected 1 thought, got %d", got)
	}
}

func TestSession_Status(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	if _, err := s.Submit(rawThought(1, 2, nil)); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
	if _, err := s.Submit(rawThought(4, 2, nil)); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}

	st := s.Status()
	if st.ThoughtCount != 2 {
		t.Fatalf("expected 2 thoughts, got %d", st.ThoughtCount)
	}
	if st.LastSequence != 4 {
		t.Fatalf("expected last sequence 4, got %d", st.LastSequence)
	}
	if st.EstimatedTotal != 4 {
		t.Fatalf("expected corrected estimate 4, got %d", st.EstimatedTotal)
	}
}

func TestSession_SerializedSubmissions(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	// Concurrent submitters on one session must not corrupt the history;
	// the session serializes them even though the tracker itself cannot.
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			_, _ = s.Submit(rawThought(seq, 20, nil))
		}(i)
	}
	wg.Wait()

	if got := s.Status().ThoughtCount; got != 20 {
		t.Fatalf("expected 20 thoughts, got %d", got)
	}
}

func TestSessionRegistry_EvictIdle(t *testing.T) {
	r := newTestRegistry()

	idle := r.Create()
	idle.mu.Lock()
	idle.lastActive = time.Now().Add(-time.Hour)
	idle.mu.Unlock()

	active := r.Create()

	evicted := r.evictIdle(30 * time.Minute)
	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if _, err := r.Get(idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("idle session should be gone")
	}
	if _, err := r.Get(active.ID); err != nil {
		t.Fatalf("active session should survive, got %v", err)
	}
}
