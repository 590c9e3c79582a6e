package model

import (
	"github.com/shopspring/decimal"
)

// AmortizationEntry is one month of an amortization schedule.
type AmortizationEntry struct {
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Period           int             `json:"period"`
}

// GenerateAmortizationSchedule breaks a fixed payment into principal and
// interest for every month of the term.
//
//	r = annualRatePct / 100 / 12
//	interest_k  = balance_{k-1} * r
//	principal_k = payment - interest_k
//
// The final period absorbs rounding so the balance reaches exactly zero. An
// empty schedule is returned when principal, payment or term is not positive.
func GenerateAmortizationSchedule(
	principal decimal.Decimal,
	annualRatePct decimal.Decimal,
	termMonths int,
	payment decimal.Decimal,
) []AmortizationEntry {
	if termMonths <= 0 || !principal.IsPositive() || !payment.IsPositive() {
		return nil
	}

	monthlyRate := annualRatePct.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
	schedule := make([]AmortizationEntry, 0, termMonths)
	remaining := principal

	for period := 1; period <= termMonths; period++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)

		// Last period: adjust for rounding so balance reaches exactly zero.
		if period == termMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})
		if remaining.IsZero() {
			break
		}
	}
	return schedule
}
