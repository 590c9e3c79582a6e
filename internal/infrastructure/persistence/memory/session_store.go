// Package memory holds the live session map and an in-process step
// repository for the "memory" store backend.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *model.WizardSession
	// refs counts callers between acquire and release. Guarded by
	// SessionStore.mu.
	refs int
}

// SessionStore implements port.SessionStore. Sessions live in memory and are
// restored from the step repository on first access. Updates to one session
// are serialized; different sessions proceed in parallel.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	repo     port.StepRepository
	seq      *service.Sequencer
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionStore creates a store that restores missing sessions from repo.
func NewSessionStore(repo port.StepRepository, seq *service.Sequencer, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		repo:     repo,
		seq:      seq,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Load returns the session, or a fresh one when nothing is stored for id.
// Fresh sessions are not kept until they record a step.
func (s *SessionStore) Load(ctx context.Context, id string) (model.WizardSession, error) {
	e := s.acquire(id)
	defer s.release(id, e)
	e.mu.Lock()
	defer e.mu.Unlock()

	return s.current(ctx, id, e)
}

// Update applies fn to the session under its lock. When fn fails the stored
// session is left unchanged.
func (s *SessionStore) Update(
	ctx context.Context,
	id string,
	fn func(model.WizardSession) (model.WizardSession, error),
) (model.WizardSession, error) {
	e := s.acquire(id)
	defer s.release(id, e)
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := s.current(ctx, id, e)
	if err != nil {
		return model.WizardSession{}, err
	}
	next, err := fn(cur)
	if err != nil {
		return model.WizardSession{}, err
	}
	if !next.IsNew() {
		e.session = &next
	}
	return next, nil
}

// Len reports how many sessions are held in memory.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.sessions {
		e.mu.Lock()
		if e.session != nil {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// acquire returns the entry for id, creating it if needed. Every acquire
// must be paired with release.
func (s *SessionStore) acquire(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		e = &sessionEntry{}
		s.sessions[id] = e
	}
	e.refs++
	return e
}

// release drops the entry once no caller holds it and it never received a
// session, so lookups of unknown ids leave nothing behind.
func (s *SessionStore) release(id string, e *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.refs--
	if e.refs == 0 && e.session == nil {
		delete(s.sessions, id)
	}
}

// current must be called with e.mu held.
func (s *SessionStore) current(ctx context.Context, id string, e *sessionEntry) (model.WizardSession, error) {
	if e.session != nil {
		return *e.session, nil
	}

	rows, err := s.repo.LoadSession(ctx, id)
	if err != nil {
		return model.WizardSession{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if len(rows) == 0 {
		return model.NewWizardSession(id, s.now())
	}

	restored, err := service.RestoreSession(id, rows, s.seq)
	if err != nil {
		return model.WizardSession{}, err
	}
	s.logger.DebugContext(ctx, "session restored",
		"session_id", id,
		"steps", len(rows),
		"current_step", restored.CurrentStep().String(),
	)
	e.session = &restored
	return restored, nil
}
