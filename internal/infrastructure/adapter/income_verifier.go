package adapter

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/port"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// incomeRange is the monthly amount band a simulated provider reports.
type incomeRange struct {
	min, max int64
}

var incomeRanges = map[string]incomeRange{
	valueobject.ProviderTruv.String():      {min: 4_000, max: 12_000},
	valueobject.ProviderTaxStatus.String(): {min: 5_000, max: 15_000},
	valueobject.ProviderSSA.String():       {min: 1_200, max: 3_500},
	valueobject.ProviderVA.String():        {min: 900, max: 3_800},
}

// SimulatedIncomeVerifier stands in for the Truv, TaxStatus, SSA and VA
// integrations. The same session and provider always verify the same
// amount.
type SimulatedIncomeVerifier struct{}

func NewSimulatedIncomeVerifier() *SimulatedIncomeVerifier { return &SimulatedIncomeVerifier{} }

// VerifyIncome returns a verified monthly amount rounded to whole dollars.
func (SimulatedIncomeVerifier) VerifyIncome(
	ctx context.Context,
	provider valueobject.Provider,
	sessionID string,
) (port.IncomeVerification, error) {
	if err := ctx.Err(); err != nil {
		return port.IncomeVerification{}, err
	}
	if sessionID == "" {
		return port.IncomeVerification{}, fmt.Errorf("income verifier: session ID is required")
	}
	r, ok := incomeRanges[provider.String()]
	if !ok {
		return port.IncomeVerification{}, fmt.Errorf("income verifier: unsupported provider %q", provider.String())
	}

	s := seed("income", provider.String(), sessionID)
	amount := r.min + int64(s%uint64(r.max-r.min+1))

	return port.IncomeVerification{
		Provider: provider.String(),
		Amount:   decimal.NewFromInt(amount),
		Verified: true,
	}, nil
}
