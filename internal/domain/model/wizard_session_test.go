package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T) model.WizardSession {
	t.Helper()
	s, err := model.NewWizardSession("sess-1", t0)
	require.NoError(t, err)
	return s
}

// purchaseSession walks service-selection, mortgage-type and property-location.
func purchaseSession(t *testing.T) model.WizardSession {
	t.Helper()
	s := newTestSession(t)
	var err error
	s, err = s.Submit(model.ServiceSelection{Service: "mortgage"}, valueobject.StepMortgageType, t0)
	require.NoError(t, err)
	s, err = s.Submit(model.MortgageType{Type: "purchase"}, valueobject.StepPropertyLocation, t0)
	require.NoError(t, err)
	s, err = s.Submit(model.PropertyLocation{Address: "1 Main St", Zip: "33602"}, valueobject.StepBuyType, t0)
	require.NoError(t, err)
	return s
}

func TestNewWizardSession(t *testing.T) {
	t.Run("starts on service-selection", func(t *testing.T) {
		s := newTestSession(t)

		assert.Equal(t, "sess-1", s.ID())
		assert.True(t, s.CurrentStep().Equal(valueobject.StepServiceSelection))
		assert.True(t, s.ServiceType().Equal(valueobject.ServiceTypePending))
		assert.True(t, s.IsNew())
		assert.False(t, s.IsCompleted())
		assert.Empty(t, s.DomainEvents())
	})

	t.Run("rejects empty ID", func(t *testing.T) {
		_, err := model.NewWizardSession("", t0)
		assert.Error(t, err)
	})
}

func TestWizardSession_Submit(t *testing.T) {
	t.Run("advances cursor and resolves track", func(t *testing.T) {
		s := purchaseSession(t)

		assert.True(t, s.CurrentStep().Equal(valueobject.StepBuyType))
		assert.True(t, s.ServiceType().Equal(valueobject.ServiceTypeMortgagePurchase))
		assert.Equal(t, []valueobject.StepName{
			valueobject.StepServiceSelection, valueobject.StepMortgageType, valueobject.StepPropertyLocation,
		}, s.History())

		evts := s.DomainEvents()
		require.Len(t, evts, 3)
		assert.Equal(t, event.TypeStepCompleted, evts[2].EventType())
		assert.Equal(t, "WizardSession", evts[2].AggregateType())
	})

	t.Run("rejects unreached step", func(t *testing.T) {
		s := newTestSession(t)
		_, err := s.Submit(model.Timeline{Timeline: "asap"}, valueobject.StepContactInfo, t0)
		assert.ErrorIs(t, err, valueobject.ErrStepNotReachable)
	})

	t.Run("resubmission replaces in place and keeps order", func(t *testing.T) {
		s := purchaseSession(t)
		before := s.Records()

		later := t0.Add(time.Minute)
		s2, err := s.Submit(model.PropertyLocation{Address: "2 Oak Ave", Zip: "33606"}, valueobject.StepBuyType, later)
		require.NoError(t, err)

		after := s2.Records()
		require.Len(t, after, len(before))
		for i := range before {
			assert.Equal(t, before[i].Name, after[i].Name)
			assert.Equal(t, before[i].Position, after[i].Position)
		}
		loc := model.Get[model.PropertyLocation](s2.Answers())
		assert.Equal(t, "2 Oak Ave", loc.Address)
		assert.True(t, s2.CurrentStep().Equal(valueobject.StepBuyType), "cursor must not move")
		assert.Equal(t, later, after[2].UpdatedAt)

		// original is untouched
		assert.Equal(t, "1 Main St", model.Get[model.PropertyLocation](s.Answers()).Address)
	})

	t.Run("identical resubmission is idempotent", func(t *testing.T) {
		s := purchaseSession(t)
		s2, err := s.Submit(model.PropertyLocation{Address: "1 Main St", Zip: "33602"}, valueobject.StepBuyType, t0)
		require.NoError(t, err)

		assert.Equal(t, s.Records(), s2.Records())
		assert.Equal(t, s.History(), s2.History())
		assert.Equal(t, s.CurrentStep(), s2.CurrentStep())
	})

	t.Run("rejects a different track once resolved", func(t *testing.T) {
		s := purchaseSession(t)
		_, err := s.Submit(model.ServiceSelection{Service: "insurance"}, valueobject.StepInsuranceType, t0)
		assert.ErrorIs(t, err, valueobject.ErrServiceTypeMismatch)
	})

	t.Run("reaching complete marks the session completed", func(t *testing.T) {
		s := newTestSession(t)
		var err error
		s, err = s.Submit(model.ServiceSelection{Service: "property-management"}, valueobject.StepManagementDetails, t0)
		require.NoError(t, err)
		s, err = s.Submit(model.ManagementDetails{PropertyType: "condo", PropertyCount: 2}, valueobject.StepPropertyLocation, t0)
		require.NoError(t, err)
		s, err = s.Submit(model.PropertyLocation{Address: "1 Main St"}, valueobject.StepContactInfo, t0)
		require.NoError(t, err)
		s, err = s.Submit(model.ContactInfo{FirstName: "Ana", Email: "ana@example.com"}, valueobject.StepComplete, t0)
		require.NoError(t, err)

		assert.True(t, s.IsCompleted())
		assert.True(t, s.ServiceType().Equal(valueobject.ServiceTypePropertyManagement))
	})
}

func TestWizardSession_SaveDraft(t *testing.T) {
	s := purchaseSession(t)

	s2, err := s.SaveDraft(model.BuyType{BuyType: "investment"}, t0)
	require.NoError(t, err)

	rec, ok := s2.Record(valueobject.StepBuyType)
	require.True(t, ok)
	assert.False(t, rec.Completed)
	assert.True(t, s2.CurrentStep().Equal(valueobject.StepBuyType))
	assert.Equal(t, s.History(), s2.History())
	assert.Equal(t, event.TypeStepDrafted, s2.DomainEvents()[len(s2.DomainEvents())-1].EventType())
}

func TestWizardSession_GoBack(t *testing.T) {
	s := purchaseSession(t)

	s2, err := s.GoBack(valueobject.StepPropertyLocation, t0)
	require.NoError(t, err)

	assert.True(t, s2.CurrentStep().Equal(valueobject.StepPropertyLocation))
	assert.Equal(t, []valueobject.StepName{valueobject.StepServiceSelection, valueobject.StepMortgageType}, s2.History())
	assert.True(t, s2.IsStepCompleted(valueobject.StepPropertyLocation), "going back keeps answers")

	_, err = s.GoBack(valueobject.StepName{}, t0)
	assert.Error(t, err)
}

func TestWizardSession_PendingSync(t *testing.T) {
	s := purchaseSession(t)

	s2 := s.MarkPendingSync(valueobject.StepPropertyLocation, t0)
	rec, _ := s2.Record(valueobject.StepPropertyLocation)
	assert.True(t, rec.PendingSync)
	require.Len(t, s2.Warnings(), 1)
	assert.Equal(t, model.WarningPersistenceFailed, s2.Warnings()[0].Code)

	// marking twice keeps one warning
	s2 = s2.MarkPendingSync(valueobject.StepPropertyLocation, t0)
	assert.Len(t, s2.Warnings(), 1)

	s3 := s2.MarkSynced(valueobject.StepPropertyLocation)
	rec, _ = s3.Record(valueobject.StepPropertyLocation)
	assert.False(t, rec.PendingSync)
	assert.Empty(t, s3.Warnings())
}

func TestReconstructWizardSession(t *testing.T) {
	records := []model.StepRecord{
		{Name: valueobject.StepMortgageType, Position: 1, Completed: true, Payload: model.MortgageType{Type: "cash"}},
		{Name: valueobject.StepServiceSelection, Position: 0, Completed: true, Payload: model.ServiceSelection{Service: "mortgage"}},
		{Name: valueobject.StepPropertyValue, Position: 2, Completed: false, Payload: model.PropertyValue{HomeValue: money.FromInt(350_000)}},
	}

	s := model.ReconstructWizardSession("sess-9", records, valueobject.StepPropertyLocation,
		[]valueobject.StepName{valueobject.StepServiceSelection, valueobject.StepMortgageType}, t0, t0)

	assert.True(t, s.ServiceType().Equal(valueobject.ServiceTypeMortgageCash))
	got := s.Records()
	require.Len(t, got, 3)
	assert.True(t, got[0].Name.Equal(valueobject.StepServiceSelection))
	assert.True(t, got[1].Name.Equal(valueobject.StepMortgageType))
	assert.Equal(t, "350000.00", model.Get[model.PropertyValue](s.Answers()).HomeValue.String())
	assert.Empty(t, s.DomainEvents())
}
