// Package app assembles the wizard use cases from their ports. The binary
// and the presentation tests share it so both run the same graph.
package app

import (
	"fmt"
	"log/slog"

	"github.com/ctateo21/homelead/internal/application/schema"
	"github.com/ctateo21/homelead/internal/application/usecase"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/pkg/observability"
)

// Ports are the driven adapters the use cases depend on.
type Ports struct {
	Store       port.SessionStore
	Writer      port.StepWriter
	Publisher   port.EventPublisher
	Address     port.AddressLookup
	Valuation   port.ValueEstimator
	ZipAverages port.ZipAverageProvider
	Income      port.IncomeVerifier
	Liabilities port.LiabilitiesVerifier
	Tax         port.PropertyTaxEstimator
}

// UseCases holds every wired use case.
type UseCases struct {
	Submit        *usecase.SubmitStepUseCase
	Draft         *usecase.SaveDraftUseCase
	Back          *usecase.GoBackUseCase
	Get           *usecase.GetSessionUseCase
	Profile       *usecase.ComputeProfileUseCase
	LookupAddress *usecase.LookupAddressUseCase
	EstimateValue *usecase.EstimateValueUseCase
	EstimateTax   *usecase.EstimateTaxUseCase
	Verify        *usecase.VerifyUseCase
}

// New wires the use cases. seq and calc are shared with the session store.
func New(
	p Ports,
	seq *service.Sequencer,
	calc *service.Calculator,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) (*UseCases, error) {
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("load step schemas: %w", err)
	}

	guard := usecase.NewLookupGuard()
	prefill := usecase.NewDraftPrefiller(p.Store, p.Writer, metrics, logger)

	return &UseCases{
		Submit:        usecase.NewSubmitStepUseCase(p.Store, p.Writer, p.Publisher, validator, seq, calc, metrics, logger),
		Draft:         usecase.NewSaveDraftUseCase(p.Store, p.Writer, p.Publisher, seq, metrics, logger),
		Back:          usecase.NewGoBackUseCase(p.Store, seq, logger),
		Get:           usecase.NewGetSessionUseCase(p.Store, seq),
		Profile:       usecase.NewComputeProfileUseCase(p.Store, calc, metrics),
		LookupAddress: usecase.NewLookupAddressUseCase(p.Address, guard, metrics, logger),
		EstimateValue: usecase.NewEstimateValueUseCase(p.Valuation, p.ZipAverages, guard, prefill, metrics, logger),
		EstimateTax:   usecase.NewEstimateTaxUseCase(p.Tax, metrics),
		Verify:        usecase.NewVerifyUseCase(p.Income, p.Liabilities, prefill, metrics, logger),
	}, nil
}
