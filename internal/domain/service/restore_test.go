package service_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

func TestRestoreSession(t *testing.T) {
	seq := service.NewSequencer()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := []port.StoredStep{
		{SessionID: "s-1", StepName: "project-type", ResponseData: json.RawMessage(`{"projectType":"remodel"}`), Position: 1, IsCompleted: true, UpdatedAt: t0.Add(time.Minute)},
		{SessionID: "s-1", StepName: "service-selection", ResponseData: json.RawMessage(`{"service":"construction"}`), Position: 0, IsCompleted: true, UpdatedAt: t0},
		{SessionID: "s-1", StepName: "property-location", ResponseData: json.RawMessage(`{"address":"1 Main"}`), Position: 2, UpdatedAt: t0.Add(2 * time.Minute)},
	}

	s, err := service.RestoreSession("s-1", rows, seq)
	require.NoError(t, err)

	assert.Equal(t, valueobject.ServiceTypeConstruction, s.ServiceType())
	assert.Equal(t, valueobject.StepPropertyLocation, s.CurrentStep())
	assert.Equal(t, []string{"service-selection", "project-type"}, names(s.History()))
	assert.Equal(t, t0, s.CreatedAt())
	assert.Equal(t, t0.Add(2*time.Minute), s.UpdatedAt())

	draft, ok := s.Record(valueobject.StepPropertyLocation)
	require.True(t, ok)
	assert.False(t, draft.Completed)
	assert.Equal(t, "1 Main", draft.Payload.(model.PropertyLocation).Address)

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, valueobject.StepServiceSelection, records[0].Name)
}

func TestRestoreSession_Errors(t *testing.T) {
	seq := service.NewSequencer()

	t.Run("no rows", func(t *testing.T) {
		_, err := service.RestoreSession("s-1", nil, seq)
		assert.ErrorIs(t, err, valueobject.ErrSessionNotFound)
	})

	t.Run("unknown step name", func(t *testing.T) {
		_, err := service.RestoreSession("s-1", []port.StoredStep{{StepName: "horoscope"}}, seq)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "restore s-1")
	})
}

func TestToStoredStep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := model.NewWizardSession("s-1", now)
	require.NoError(t, err)
	s, err = s.Submit(model.ServiceSelection{Service: "insurance"}, valueobject.StepInsuranceType, now)
	require.NoError(t, err)

	row, err := service.ToStoredStep(s, valueobject.StepServiceSelection)
	require.NoError(t, err)
	assert.Equal(t, "s-1", row.SessionID)
	assert.Equal(t, "insurance", row.ServiceType)
	assert.Equal(t, 0, row.Position)
	assert.True(t, row.IsCompleted)
	assert.JSONEq(t, `{"service":"insurance"}`, string(row.ResponseData))

	_, err = service.ToStoredStep(s, valueobject.StepTimeline)
	assert.ErrorIs(t, err, valueobject.ErrUnknownStep)
}
