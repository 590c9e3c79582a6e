package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/pkg/money"
)

// HillsboroughTaxEstimator applies the county millage to the assessed value,
// less the homestead exemption when the owner claims one.
type HillsboroughTaxEstimator struct {
	millage   decimal.Decimal
	exemption decimal.Decimal
}

// NewHillsboroughTaxEstimator takes its rates from the calculator config.
func NewHillsboroughTaxEstimator(cfg service.CalculatorConfig) *HillsboroughTaxEstimator {
	return &HillsboroughTaxEstimator{millage: cfg.MillageRate, exemption: cfg.HomesteadExemption}
}

func (e *HillsboroughTaxEstimator) EstimatePropertyTax(
	ctx context.Context,
	address string,
	value decimal.Decimal,
	homestead bool,
) (port.TaxEstimate, error) {
	if err := ctx.Err(); err != nil {
		return port.TaxEstimate{}, err
	}
	if strings.TrimSpace(address) == "" {
		return port.TaxEstimate{}, fmt.Errorf("property tax: address is required")
	}
	if value.IsNegative() {
		return port.TaxEstimate{}, fmt.Errorf("property tax: value must not be negative")
	}

	annual := service.EstimateAnnualPropertyTax(value, homestead, e.millage, e.exemption)
	return port.TaxEstimate{AnnualTax: annual, MonthlyTax: money.Cents(money.Monthly(annual))}, nil
}
