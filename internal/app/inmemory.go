package app

import (
	"context"

	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/infrastructure/adapter"
	"github.com/ctateo21/homelead/internal/infrastructure/messaging"
	"github.com/ctateo21/homelead/internal/infrastructure/persistence/memory"
	"github.com/ctateo21/homelead/pkg/observability"
	"github.com/ctateo21/homelead/pkg/openbanking"
)

// SyncWriter saves each step before Enqueue returns.
type SyncWriter struct {
	Repo port.StepRepository
}

func (w SyncWriter) Enqueue(ctx context.Context, step port.StoredStep) error {
	_, err := w.Repo.SaveStep(ctx, step)
	return err
}

// NewInMemory wires the use cases over the memory store and the offline
// adapters. Presentation tests and `wizardd quote` run on it.
func NewInMemory() (*UseCases, error) {
	logger := observability.NopLogger()
	seq := service.NewSequencer()
	cfg := service.DefaultCalculatorConfig()
	repo := memory.NewStepRepo()

	return New(Ports{
		Store:       memory.NewSessionStore(repo, seq, logger),
		Writer:      SyncWriter{Repo: repo},
		Publisher:   messaging.NewLogEventPublisher(logger),
		Address:     adapter.NewStubGeocoder(),
		Valuation:   adapter.NewZillowSimulator(),
		ZipAverages: adapter.NewZipAverageTable(),
		Income:      adapter.NewSimulatedIncomeVerifier(),
		Liabilities: adapter.NewPlaidAdapter(nil, openbanking.DefaultPlaidConfig()),
		Tax:         adapter.NewHillsboroughTaxEstimator(cfg),
	}, seq, service.NewCalculator(cfg), observability.NopMetrics(), logger)
}
