package model

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/events"
)

// ---------------------------------------------------------------------------
// WizardSession aggregate root
// ---------------------------------------------------------------------------

// WizardSession is an immutable aggregate. Mutations return a new copy.
//
// The session only records answers and the cursor; which step follows which
// is decided by the sequencer and passed in.
type WizardSession struct {
	createdAt   time.Time
	updatedAt   time.Time
	records     map[valueobject.StepName]StepRecord
	id          string
	serviceType valueobject.ServiceType
	status      valueobject.SessionStatus
	current     valueobject.StepName
	order       []valueobject.StepName
	history     []valueobject.StepName
	warnings    []Warning
	events      events.Collector
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewWizardSession starts an empty session positioned on service-selection.
func NewWizardSession(id string, now time.Time) (WizardSession, error) {
	if id == "" {
		return WizardSession{}, errors.New("session ID is required")
	}
	return WizardSession{
		id:          id,
		serviceType: valueobject.ServiceTypePending,
		status:      valueobject.SessionStatusActive,
		current:     valueobject.StepServiceSelection,
		records:     map[valueobject.StepName]StepRecord{},
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructWizardSession rebuilds a session from persistence. Records are
// ordered by Position; current and history are supplied by the caller.
func ReconstructWizardSession(
	id string,
	records []StepRecord,
	current valueobject.StepName,
	history []valueobject.StepName,
	createdAt, updatedAt time.Time,
) WizardSession {
	sorted := make([]StepRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	s := WizardSession{
		id:        id,
		status:    valueobject.SessionStatusActive,
		current:   current,
		records:   make(map[valueobject.StepName]StepRecord, len(sorted)),
		history:   append([]valueobject.StepName(nil), history...),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
	for _, r := range sorted {
		s.records[r.Name] = r
		s.order = append(s.order, r.Name)
	}
	s.serviceType = s.Answers().ServiceType()
	if current.Equal(valueobject.StepComplete) {
		s.status = valueobject.SessionStatusCompleted
	}
	return s
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (s WizardSession) ID() string                           { return s.id }
func (s WizardSession) ServiceType() valueobject.ServiceType { return s.serviceType }
func (s WizardSession) Status() valueobject.SessionStatus    { return s.status }
func (s WizardSession) CurrentStep() valueobject.StepName    { return s.current }
func (s WizardSession) CreatedAt() time.Time                 { return s.createdAt }
func (s WizardSession) UpdatedAt() time.Time                 { return s.updatedAt }
func (s WizardSession) IsNew() bool                          { return len(s.records) == 0 }

// IsCompleted reports whether the terminal step has been reached.
func (s WizardSession) IsCompleted() bool {
	return s.status.Equal(valueobject.SessionStatusCompleted)
}

// History returns the visited steps, oldest first.
func (s WizardSession) History() []valueobject.StepName {
	return append([]valueobject.StepName(nil), s.history...)
}

// Warnings returns the session's non-blocking notices.
func (s WizardSession) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

// Record returns the stored record for step.
func (s WizardSession) Record(step valueobject.StepName) (StepRecord, bool) {
	r, ok := s.records[step]
	return r, ok
}

// Records returns every record in first-visit order.
func (s WizardSession) Records() []StepRecord {
	out := make([]StepRecord, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.records[name])
	}
	return out
}

// Answers returns the union of every recorded payload, drafts included.
func (s WizardSession) Answers() Answers {
	payloads := make([]StepPayload, 0, len(s.order))
	for _, name := range s.order {
		payloads = append(payloads, s.records[name].Payload)
	}
	return NewAnswers(payloads...)
}

// IsStepCompleted reports whether step has a completed record.
func (s WizardSession) IsStepCompleted(step valueobject.StepName) bool {
	r, ok := s.records[step]
	return ok && r.Completed
}

// CanSubmit reports whether step may receive an answer: the current step, any
// step already recorded, or service-selection on a fresh session.
func (s WizardSession) CanSubmit(step valueobject.StepName) bool {
	if step.Equal(s.current) {
		return true
	}
	if _, ok := s.records[step]; ok {
		return true
	}
	return s.IsNew() && step.Equal(valueobject.StepServiceSelection)
}

// DomainEvents returns the events raised since the last ClearEvents.
func (s WizardSession) DomainEvents() []event.DomainEvent {
	return s.events.Events()
}

// RecordEvent returns a copy with e appended to the pending domain events.
func (s WizardSession) RecordEvent(e event.DomainEvent) WizardSession {
	n := s
	n.events = s.events.Clone()
	n.events.Record(e)
	return n
}

// ClearEvents returns a copy without pending domain events.
func (s WizardSession) ClearEvents() WizardSession {
	next := s
	next.events = events.Collector{}
	return next
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Submit records a completed answer. When the step is the current one the
// cursor moves to next and the step is pushed onto the visit history; an
// earlier step is replaced in place without moving the cursor. Reaching the
// terminal step marks the session completed.
func (s WizardSession) Submit(p StepPayload, next valueobject.StepName, now time.Time) (WizardSession, error) {
	step := p.Step()
	if err := s.checkWritable(p); err != nil {
		return s, err
	}

	n, resubmitted := s.upsert(p, true, now)
	if step.Equal(s.current) {
		if len(n.history) == 0 || !n.history[len(n.history)-1].Equal(step) {
			n.history = append(n.history, step)
		}
		n.current = next
	}
	if n.current.Equal(valueobject.StepComplete) {
		n.status = valueobject.SessionStatusCompleted
	}

	n.events.Record(event.NewStepCompleted(
		s.id, n.serviceType.String(), step.String(), n.current.String(), resubmitted, now,
	))
	return n, nil
}

// SaveDraft stores a partial answer without moving the cursor.
func (s WizardSession) SaveDraft(p StepPayload, now time.Time) (WizardSession, error) {
	if err := s.checkWritable(p); err != nil {
		return s, err
	}
	n, _ := s.upsert(p, false, now)
	n.events.Record(event.NewStepDrafted(s.id, n.serviceType.String(), p.Step().String(), now))
	return n, nil
}

// Amend replaces the payload of an existing record in place. The cursor and
// the record's completion state are unchanged.
func (s WizardSession) Amend(p StepPayload, now time.Time) WizardSession {
	step := p.Step()
	rec, ok := s.records[step]
	if !ok {
		return s
	}
	n := s.clone()
	rec.Payload = p
	rec.PendingSync = false
	rec.UpdatedAt = now
	n.records[step] = rec
	n.updatedAt = now
	return n
}

// GoBack moves the cursor to prev and drops prev and everything after it
// from the visit history.
func (s WizardSession) GoBack(prev valueobject.StepName, now time.Time) (WizardSession, error) {
	if prev.IsZero() {
		return s, errors.New("no previous step")
	}
	n := s.clone()
	for i := len(n.history) - 1; i >= 0; i-- {
		if n.history[i].Equal(prev) {
			n.history = n.history[:i]
			break
		}
	}
	n.current = prev
	n.updatedAt = now
	return n, nil
}

// MarkPendingSync flags a record whose write could not be persisted and adds
// a persistence warning. The in-memory record stays authoritative.
func (s WizardSession) MarkPendingSync(step valueobject.StepName, now time.Time) WizardSession {
	r, ok := s.records[step]
	if !ok {
		return s
	}
	n := s.clone()
	r.PendingSync = true
	n.records[step] = r
	n = n.WithWarning(Warning{
		Code:    WarningPersistenceFailed,
		Message: "Your answers are saved on this device and will sync with your next answer.",
		Field:   step.String(),
	})
	n.updatedAt = now
	return n
}

// MarkSynced clears the pending flag and the persistence warning for step.
func (s WizardSession) MarkSynced(step valueobject.StepName) WizardSession {
	r, ok := s.records[step]
	if !ok || !r.PendingSync {
		return s
	}
	n := s.clone()
	r.PendingSync = false
	n.records[step] = r
	kept := n.warnings[:0]
	for _, w := range n.warnings {
		if w.Code == WarningPersistenceFailed && w.Field == step.String() {
			continue
		}
		kept = append(kept, w)
	}
	n.warnings = kept
	return n
}

// WithWarning returns a copy carrying w. A warning with the same code and
// field replaces the earlier one.
func (s WizardSession) WithWarning(w Warning) WizardSession {
	n := s.clone()
	for i, existing := range n.warnings {
		if existing.Code == w.Code && existing.Field == w.Field {
			n.warnings[i] = w
			return n
		}
	}
	n.warnings = append(n.warnings, w)
	return n
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s WizardSession) checkWritable(p StepPayload) error {
	step := p.Step()
	if step.Equal(valueobject.StepComplete) {
		return valueobject.ErrTerminalStep
	}
	if !s.CanSubmit(step) {
		return fmt.Errorf("%w: %s (current %s)", valueobject.ErrStepNotReachable, step, s.current)
	}
	if s.serviceType.IsResolved() {
		resolved := s.Answers().With(p).ServiceType()
		if resolved.IsResolved() && !resolved.Equal(s.serviceType) {
			return fmt.Errorf("%w: session is %s, answer selects %s",
				valueobject.ErrServiceTypeMismatch, s.serviceType, resolved)
		}
	}
	return nil
}

func (s WizardSession) upsert(p StepPayload, completed bool, now time.Time) (WizardSession, bool) {
	step := p.Step()
	n := s.clone()
	rec, existed := n.records[step]
	if !existed {
		rec = StepRecord{Name: step, Position: len(n.order)}
		n.order = append(n.order, step)
	}
	rec.Payload = p
	rec.Completed = completed
	rec.PendingSync = false
	rec.UpdatedAt = now
	n.records[step] = rec
	n.updatedAt = now
	if st := n.Answers().ServiceType(); st.IsResolved() {
		n.serviceType = st
	}
	return n, existed
}

func (s WizardSession) clone() WizardSession {
	n := s
	n.records = make(map[valueobject.StepName]StepRecord, len(s.records))
	for k, v := range s.records {
		n.records[k] = v
	}
	n.order = append([]valueobject.StepName(nil), s.order...)
	n.history = append([]valueobject.StepName(nil), s.history...)
	n.warnings = append([]Warning(nil), s.warnings...)
	n.events = s.events.Clone()
	return n
}
