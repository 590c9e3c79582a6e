package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ctateo21/homelead/internal/domain/port"
)

// StepRepo is a process-local port.StepRepository with the same upsert rules
// as the durable backends.
type StepRepo struct {
	mu    sync.RWMutex
	steps map[string]map[string]port.StoredStep
}

// NewStepRepo returns an empty repository.
func NewStepRepo() *StepRepo {
	return &StepRepo{steps: make(map[string]map[string]port.StoredStep)}
}

// SaveStep upserts by session and step name, keeping the first position and
// ignoring writes older than the stored row.
func (r *StepRepo) SaveStep(_ context.Context, step port.StoredStep) (port.StoredStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bySession, ok := r.steps[step.SessionID]
	if !ok {
		bySession = make(map[string]port.StoredStep)
		r.steps[step.SessionID] = bySession
	}

	if existing, ok := bySession[step.StepName]; ok {
		if existing.UpdatedAt.After(step.UpdatedAt) {
			return existing, nil
		}
		step.Position = existing.Position
	}
	step.ResponseData = append([]byte(nil), step.ResponseData...)
	bySession[step.StepName] = step
	return step, nil
}

// LoadSession returns the session's rows ordered by position.
func (r *StepRepo) LoadSession(_ context.Context, sessionID string) ([]port.StoredStep, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]port.StoredStep, 0, len(r.steps[sessionID]))
	for _, s := range r.steps[sessionID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].StepName < out[j].StepName
	})
	return out, nil
}
