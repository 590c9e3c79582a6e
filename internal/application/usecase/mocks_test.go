package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]model.WizardSession
	loadFunc  func(ctx context.Context, id string) (model.WizardSession, error)
	updateErr error
	updates   int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]model.WizardSession{}}
}

func (m *mockSessionStore) Load(ctx context.Context, id string) (model.WizardSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx, id)
}

func (m *mockSessionStore) load(ctx context.Context, id string) (model.WizardSession, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, id)
	}
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return model.NewWizardSession(id, time.Now().UTC())
}

func (m *mockSessionStore) Update(
	ctx context.Context,
	id string,
	fn func(model.WizardSession) (model.WizardSession, error),
) (model.WizardSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return model.WizardSession{}, m.updateErr
	}
	s, err := m.load(ctx, id)
	if err != nil {
		return model.WizardSession{}, err
	}
	n, err := fn(s)
	if err != nil {
		return s, err
	}
	m.updates++
	if !n.IsNew() {
		m.sessions[id] = n
	}
	return n, nil
}

func (m *mockSessionStore) get(id string) (model.WizardSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

type mockStepWriter struct {
	enqueueFunc func(ctx context.Context, step port.StoredStep) error
	enqueued    []port.StoredStep
}

func (m *mockStepWriter) Enqueue(ctx context.Context, step port.StoredStep) error {
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, step)
	}
	m.enqueued = append(m.enqueued, step)
	return nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) ofType(eventType string) []event.DomainEvent {
	var out []event.DomainEvent
	for _, e := range m.publishedEvents {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type mockAddressLookup struct {
	lookupFunc func(ctx context.Context, text string) ([]port.AddressMatch, error)
}

func (m *mockAddressLookup) LookupAddress(ctx context.Context, text string) ([]port.AddressMatch, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, text)
	}
	return []port.AddressMatch{{FormattedAddress: "601 E Kennedy Blvd, Tampa, FL 33602", PlaceID: "place-1", Zip: "33602"}}, nil
}

type mockValueEstimator struct {
	estimateFunc func(ctx context.Context, address string) (port.ValueEstimate, error)
}

func (m *mockValueEstimator) EstimateValue(ctx context.Context, address string) (port.ValueEstimate, error) {
	if m.estimateFunc != nil {
		return m.estimateFunc(ctx, address)
	}
	z := decimal.NewFromInt(412_000)
	return port.ValueEstimate{Zestimate: &z}, nil
}

type mockZipAverage struct {
	zipFunc func(ctx context.Context, zip string) (decimal.Decimal, error)
}

func (m *mockZipAverage) ZipAverage(ctx context.Context, zip string) (decimal.Decimal, error) {
	if m.zipFunc != nil {
		return m.zipFunc(ctx, zip)
	}
	return decimal.NewFromInt(390_000), nil
}

type mockTaxEstimator struct {
	estimateFunc func(ctx context.Context, address string, value decimal.Decimal, homestead bool) (port.TaxEstimate, error)
}

func (m *mockTaxEstimator) EstimatePropertyTax(ctx context.Context, address string, value decimal.Decimal, homestead bool) (port.TaxEstimate, error) {
	if m.estimateFunc != nil {
		return m.estimateFunc(ctx, address, value, homestead)
	}
	annual := service.EstimateAnnualPropertyTax(value, homestead, decimal.RequireFromString("20.5"), decimal.NewFromInt(50_000))
	return port.TaxEstimate{AnnualTax: annual, MonthlyTax: annual.Div(decimal.NewFromInt(12)).Round(2)}, nil
}

type mockIncomeVerifier struct {
	verifyFunc func(ctx context.Context, provider valueobject.Provider, sessionID string) (port.IncomeVerification, error)
}

func (m *mockIncomeVerifier) VerifyIncome(ctx context.Context, provider valueobject.Provider, sessionID string) (port.IncomeVerification, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, provider, sessionID)
	}
	return port.IncomeVerification{Provider: provider.String(), Verified: true, Amount: decimal.NewFromInt(9_500)}, nil
}

type mockLiabilitiesVerifier struct {
	verifyFunc func(ctx context.Context, sessionID string) (port.LiabilitiesReport, error)
}

func (m *mockLiabilitiesVerifier) VerifyLiabilitiesAndAssets(ctx context.Context, sessionID string) (port.LiabilitiesReport, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, sessionID)
	}
	return port.LiabilitiesReport{
		TotalMonthlyDebts: decimal.NewFromInt(650),
		TotalAssets:       decimal.NewFromInt(80_000),
		Liquid:            decimal.NewFromInt(30_000),
		Investment:        decimal.NewFromInt(20_000),
		Retirement:        decimal.NewFromInt(30_000),
	}, nil
}

type mockLeadSink struct {
	name        string
	forwardFunc func(ctx context.Context, lead event.SessionCompleted) error
	forwarded   []event.SessionCompleted
}

func (m *mockLeadSink) Name() string { return m.name }

func (m *mockLeadSink) Forward(ctx context.Context, lead event.SessionCompleted) error {
	if m.forwardFunc != nil {
		return m.forwardFunc(ctx, lead)
	}
	m.forwarded = append(m.forwarded, lead)
	return nil
}

// --- Fixtures ---

// seedSession answers each payload in order as the current step and stores
// the resulting session.
func seedSession(t *testing.T, store *mockSessionStore, id string, payloads ...model.StepPayload) model.WizardSession {
	t.Helper()
	seq := service.NewSequencer()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s, err := model.NewWizardSession(id, now)
	require.NoError(t, err)
	for _, p := range payloads {
		next, err := seq.NextStep(p.Step(), s.Answers().With(p))
		require.NoError(t, err, "next after %s", p.Step())
		s, err = s.Submit(p, next, now)
		require.NoError(t, err, "submit %s", p.Step())
	}
	s = s.ClearEvents()

	store.mu.Lock()
	store.sessions[id] = s
	store.mu.Unlock()
	return s
}

func errUnavailable(what string) error {
	return fmt.Errorf("%s unavailable", what)
}
