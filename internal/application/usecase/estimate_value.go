package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
	"github.com/ctateo21/homelead/pkg/observability"
)

const (
	providerZillow     = "zillow"
	providerZipAverage = "zip-average"
)

// EstimateValueUseCase fetches the automated valuation and the ZIP average
// in parallel and prefills them on the property-value step.
type EstimateValueUseCase struct {
	estimator port.ValueEstimator
	zips      port.ZipAverageProvider
	guard     *LookupGuard
	prefill   *DraftPrefiller
	metrics   *observability.WizardMetrics
	logger    *slog.Logger
}

// NewEstimateValueUseCase wires dependencies.
func NewEstimateValueUseCase(
	estimator port.ValueEstimator,
	zips port.ZipAverageProvider,
	guard *LookupGuard,
	prefill *DraftPrefiller,
	metrics *observability.WizardMetrics,
	logger *slog.Logger,
) *EstimateValueUseCase {
	return &EstimateValueUseCase{
		estimator: estimator,
		zips:      zips,
		guard:     guard,
		prefill:   prefill,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute returns the valuation figures. A failed ZIP average only drops
// that figure; a failed valuation fails the lookup.
func (uc *EstimateValueUseCase) Execute(
	ctx context.Context,
	req dto.ValueEstimateRequest,
) (dto.ValueEstimateResponse, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		verr := model.NewValidationError("value-estimate")
		verr.Add("address", "is required")
		return dto.ValueEstimateResponse{}, verr
	}

	token := uc.guard.Begin(req.SessionID, LookupValue)

	var (
		estimate port.ValueEstimate
		zipAvg   *decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := uc.estimator.EstimateValue(gctx, address)
		uc.metrics.ProviderCall(ctx, providerZillow, err)
		if err != nil {
			return port.NewProviderError(providerZillow, err)
		}
		estimate = e
		return nil
	})
	if zip := strings.TrimSpace(req.Zip); zip != "" {
		g.Go(func() error {
			avg, err := uc.zips.ZipAverage(gctx, zip)
			uc.metrics.ProviderCall(ctx, providerZipAverage, err)
			if err != nil {
				uc.logger.WarnContext(ctx, "zip average failed", "zip", zip, "error", err)
				return nil
			}
			if avg.IsPositive() {
				zipAvg = &avg
			}
			return nil
		})
	}
	err := g.Wait()
	fresh := uc.guard.Accept(req.SessionID, LookupValue, token)
	if err != nil {
		return dto.ValueEstimateResponse{}, err
	}

	resp := dto.ValueEstimateResponse{
		Zestimate:    estimate.Zestimate,
		AveragePrice: estimate.AveragePrice,
		ZipAverage:   zipAvg,
		Stale:        !fresh,
	}
	if resp.AveragePrice == nil {
		resp.AveragePrice = zipAvg
	}
	if !fresh {
		return resp, nil
	}

	resp.Prefilled = uc.prefill.Apply(ctx, req.SessionID, valueobject.StepPropertyValue,
		func(a model.Answers) model.StepPayload {
			pv := model.Get[model.PropertyValue](a)
			if resp.Zestimate != nil {
				pv.Zestimate = money.NewAmount(*resp.Zestimate)
			}
			if resp.AveragePrice != nil {
				pv.AveragePrice = money.NewAmount(*resp.AveragePrice)
			}
			return pv
		})
	return resp, nil
}
