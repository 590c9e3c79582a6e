package usecase

import (
	"context"

	"github.com/ctateo21/homelead/internal/application/dto"
	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/pkg/observability"
)

const providerTax = "hillsborough-tax"

// EstimateTaxUseCase estimates property tax for the loan-analysis step.
type EstimateTaxUseCase struct {
	estimator port.PropertyTaxEstimator
	metrics   *observability.WizardMetrics
}

// NewEstimateTaxUseCase wires dependencies.
func NewEstimateTaxUseCase(estimator port.PropertyTaxEstimator, metrics *observability.WizardMetrics) *EstimateTaxUseCase {
	return &EstimateTaxUseCase{estimator: estimator, metrics: metrics}
}

// Execute returns the annual and monthly tax for the home value.
func (uc *EstimateTaxUseCase) Execute(ctx context.Context, req dto.TaxEstimateRequest) (dto.TaxEstimateResponse, error) {
	if !req.Value.IsPositive() {
		verr := model.NewValidationError("tax-estimate")
		verr.Add("value", "must be greater than zero")
		return dto.TaxEstimateResponse{}, verr
	}

	est, err := uc.estimator.EstimatePropertyTax(ctx, req.Address, req.Value, req.Homestead)
	uc.metrics.ProviderCall(ctx, providerTax, err)
	if err != nil {
		return dto.TaxEstimateResponse{}, port.NewProviderError(providerTax, err)
	}
	return dto.TaxEstimateResponse{AnnualTax: est.AnnualTax, MonthlyTax: est.MonthlyTax}, nil
}
