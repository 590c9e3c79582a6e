package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/observability"
)

type failingRepo struct{ err error }

func (f failingRepo) SaveStep(context.Context, port.StoredStep) (port.StoredStep, error) {
	return port.StoredStep{}, f.err
}

func (f failingRepo) LoadSession(context.Context, string) ([]port.StoredStep, error) {
	return nil, f.err
}

func newStore(repo port.StepRepository) *SessionStore {
	return NewSessionStore(repo, service.NewSequencer(), observability.NopLogger())
}

func selectService(service string) func(model.WizardSession) (model.WizardSession, error) {
	return func(s model.WizardSession) (model.WizardSession, error) {
		return s.Submit(model.ServiceSelection{Service: service}, valueobject.StepInsuranceType, time.Now().UTC())
	}
}

func TestSessionStore_LoadUnknownIsFresh(t *testing.T) {
	store := newStore(NewStepRepo())

	s, err := store.Load(context.Background(), "new-1")
	require.NoError(t, err)
	assert.True(t, s.IsNew())
	assert.Equal(t, valueobject.StepServiceSelection, s.CurrentStep())
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_UpdateKeepsRecordedSessions(t *testing.T) {
	ctx := context.Background()
	store := newStore(NewStepRepo())

	_, err := store.Update(ctx, "s-1", selectService("insurance"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	s, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ServiceTypeInsurance, s.ServiceType())
}

func TestSessionStore_UpdateDoesNotKeepNewSessions(t *testing.T) {
	store := newStore(NewStepRepo())

	_, err := store.Update(context.Background(), "s-1", func(s model.WizardSession) (model.WizardSession, error) {
		return s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_ForgetsUnknownSessions(t *testing.T) {
	ctx := context.Background()
	store := newStore(NewStepRepo())

	for i := 0; i < 100; i++ {
		_, err := store.Load(ctx, fmt.Sprintf("visitor-%d", i))
		require.NoError(t, err)
	}
	_, err := store.Update(ctx, "fresh", func(s model.WizardSession) (model.WizardSession, error) {
		return s, nil
	})
	require.NoError(t, err)
	_, err = store.Update(ctx, "s-1", selectService("insurance"))
	require.NoError(t, err)

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.sessions, 1)
	assert.Contains(t, store.sessions, "s-1")
}

func TestSessionStore_FailedUpdateLeavesSession(t *testing.T) {
	ctx := context.Background()
	store := newStore(NewStepRepo())
	_, err := store.Update(ctx, "s-1", selectService("insurance"))
	require.NoError(t, err)

	boom := errors.New("rejected")
	_, err = store.Update(ctx, "s-1", func(s model.WizardSession) (model.WizardSession, error) {
		next, _ := s.GoBack(valueobject.StepServiceSelection, time.Now().UTC())
		return next, boom
	})
	assert.ErrorIs(t, err, boom)

	s, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, valueobject.StepInsuranceType, s.CurrentStep())
}

func TestSessionStore_RestoresFromRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStepRepo()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := repo.SaveStep(ctx, port.StoredStep{
		SessionID:    "s-1",
		ServiceType:  "insurance",
		StepName:     "service-selection",
		ResponseData: json.RawMessage(`{"service":"insurance"}`),
		IsCompleted:  true,
		UpdatedAt:    t0,
	})
	require.NoError(t, err)

	store := newStore(repo)
	s, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, valueobject.ServiceTypeInsurance, s.ServiceType())
	assert.Equal(t, valueobject.StepInsuranceType, s.CurrentStep())
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	store := newStore(failingRepo{err: boom})

	_, err := store.Load(context.Background(), "s-1")
	assert.ErrorIs(t, err, boom)

	_, err = store.Update(context.Background(), "s-1", selectService("insurance"))
	assert.ErrorIs(t, err, boom)
}

func TestSessionStore_SerializesUpdatesPerSession(t *testing.T) {
	ctx := context.Background()
	store := newStore(NewStepRepo())
	_, err := store.Update(ctx, "s-1", selectService("insurance"))
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Update(ctx, "s-1", func(s model.WizardSession) (model.WizardSession, error) {
				return s.WithWarning(model.Warning{Code: "tick", Field: fmt.Sprint(i)}), nil
			})
		}(i)
	}
	wg.Wait()

	s, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, s.Warnings(), n)
}
