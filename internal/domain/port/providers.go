package port

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/event"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// AddressMatch is one geocoder candidate.
type AddressMatch struct {
	FormattedAddress string  `json:"formattedAddress"`
	PlaceID          string  `json:"placeId"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	Zip              string  `json:"zip,omitempty"`
	County           string  `json:"county,omitempty"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// AddressLookup resolves free text into address candidates.
type AddressLookup interface {
	LookupAddress(ctx context.Context, text string) ([]AddressMatch, error)
}

// ValueEstimate is an automated valuation. Either figure may be absent.
type ValueEstimate struct {
	Zestimate    *decimal.Decimal `json:"zestimate,omitempty"`
	AveragePrice *decimal.Decimal `json:"averagePrice,omitempty"`
}

// ValueEstimator estimates a home's market value.
type ValueEstimator interface {
	EstimateValue(ctx context.Context, address string) (ValueEstimate, error)
}

// ZipAverageProvider returns the average sale price for a ZIP code.
type ZipAverageProvider interface {
	ZipAverage(ctx context.Context, zip string) (decimal.Decimal, error)
}

// IncomeVerification is the outcome of a provider income check. Amount is
// monthly and only meaningful when Verified is true.
type IncomeVerification struct {
	Provider string          `json:"provider"`
	Amount   decimal.Decimal `json:"amount"`
	Verified bool            `json:"verified"`
	Skipped  bool            `json:"skipped"`
}

// IncomeVerifier checks income with one of the truv, taxstatus, ssa or va
// providers.
type IncomeVerifier interface {
	VerifyIncome(ctx context.Context, provider valueobject.Provider, sessionID string) (IncomeVerification, error)
}

// LinkedAccount is one account returned by the liabilities provider.
type LinkedAccount struct {
	Institution string          `json:"institution"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Mask        string          `json:"mask"`
	Balance     decimal.Decimal `json:"balance"`
}

// LiabilitiesReport is the liabilities and assets summary from Plaid.
type LiabilitiesReport struct {
	TotalMonthlyDebts decimal.Decimal `json:"totalMonthlyDebts"`
	TotalAssets       decimal.Decimal `json:"totalAssets"`
	Liquid            decimal.Decimal `json:"liquid"`
	Investment        decimal.Decimal `json:"investment"`
	Retirement        decimal.Decimal `json:"retirement"`
	Accounts          []LinkedAccount `json:"accounts"`
}

// LiabilitiesVerifier links the borrower's accounts and summarizes them.
type LiabilitiesVerifier interface {
	VerifyLiabilitiesAndAssets(ctx context.Context, sessionID string) (LiabilitiesReport, error)
}

// TaxEstimate is an annual property tax with its monthly share.
type TaxEstimate struct {
	AnnualTax  decimal.Decimal `json:"annualTax"`
	MonthlyTax decimal.Decimal `json:"monthlyTax"`
}

// PropertyTaxEstimator estimates property tax for an address and value.
type PropertyTaxEstimator interface {
	EstimatePropertyTax(ctx context.Context, address string, value decimal.Decimal, homestead bool) (TaxEstimate, error)
}

// LeadSink delivers a completed session to a downstream CRM.
type LeadSink interface {
	Name() string
	Forward(ctx context.Context, lead event.SessionCompleted) error
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// ProviderError wraps a collaborator failure. It is never fatal to the
// session: the step stays interactive and manual entry remains available.
type ProviderError struct {
	Err      error
	Provider string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err for provider. A nil err yields nil.
func NewProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// IsProviderError reports whether err came from an external collaborator.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
