package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
)

// ---------------------------------------------------------------------------
// Lending policy tables
// ---------------------------------------------------------------------------

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	weeksPerYear = decimal.NewFromInt(52)
	one          = decimal.NewFromInt(1)

	pmiEquityThresholdPct = decimal.NewFromInt(20)
	maxCashOutLTV         = decimal.RequireFromString("0.80")
	rsuQualifyingFactor   = decimal.RequireFromString("0.25")
	usableRetirementRatio = decimal.RequireFromString("0.60")
)

// AmortizedPayment returns the fixed monthly principal and interest payment
// for a loan of principal at annualRate (a fraction, e.g. 0.0675) over years.
//
//	P = L * r(1+r)^n / ((1+r)^n - 1),  r = annualRate/12, n = years*12
//
// Zero is returned whenever L, r or n is not positive.
func AmortizedPayment(principal, annualRate decimal.Decimal, years int) decimal.Decimal {
	if !principal.IsPositive() || !annualRate.IsPositive() || years <= 0 {
		return decimal.Zero
	}
	r := annualRate.InexactFloat64() / 12.0
	n := float64(years * 12)

	factor := math.Pow(1+r, n)
	payment := principal.InexactFloat64() * r * factor / (factor - 1)
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(payment).Round(2)
}

// MinimumDownPaymentPct returns the minimum down payment as a percent of the
// purchase price.
//
//	conventional  3 (first-time) / 5 (repeat)
//	fha           3.5
//	va, usda      0
//	jumbo         10
//	other         5
func MinimumDownPaymentPct(lt valueobject.LoanType, firstTime bool) decimal.Decimal {
	switch lt {
	case valueobject.LoanTypeConventional:
		if firstTime {
			return decimal.NewFromInt(3)
		}
		return decimal.NewFromInt(5)
	case valueobject.LoanTypeFHA:
		return decimal.RequireFromString("3.5")
	case valueobject.LoanTypeVA, valueobject.LoanTypeUSDA:
		return decimal.Zero
	case valueobject.LoanTypeJumbo:
		return decimal.NewFromInt(10)
	default:
		return decimal.NewFromInt(5)
	}
}

// PMIRatePct returns the annual PMI rate in percent before the 20% equity
// gate is applied. FHA is flat; conventional and jumbo use the credit tier
// table, with unknown scores on the lowest tier.
func PMIRatePct(lt valueobject.LoanType, score valueobject.CreditScore) decimal.Decimal {
	switch lt {
	case valueobject.LoanTypeFHA:
		return decimal.RequireFromString("0.55")
	case valueobject.LoanTypeConventional, valueobject.LoanTypeJumbo:
		switch {
		case score.AtLeast(760):
			return decimal.RequireFromString("0.22")
		case score.AtLeast(740):
			return decimal.RequireFromString("0.30")
		case score.AtLeast(720):
			return decimal.RequireFromString("0.35")
		case score.AtLeast(700):
			return decimal.RequireFromString("0.45")
		case score.AtLeast(680):
			return decimal.RequireFromString("0.70")
		case score.AtLeast(660):
			return decimal.RequireFromString("0.90")
		default:
			return decimal.RequireFromString("1.60")
		}
	default:
		return decimal.Zero
	}
}

// MonthlyPMI returns principal * rate / 12 when the borrower's stake is
// below 20% of price, otherwise zero.
func MonthlyPMI(
	principal, price, stake decimal.Decimal,
	lt valueobject.LoanType,
	score valueobject.CreditScore,
) decimal.Decimal {
	if !principal.IsPositive() || !price.IsPositive() {
		return decimal.Zero
	}
	if stake.GreaterThanOrEqual(price.Mul(pmiEquityThresholdPct).Div(hundred)) {
		return decimal.Zero
	}
	rate := PMIRatePct(lt, score).Div(hundred)
	return money.Cents(principal.Mul(rate).Div(twelve))
}

// ClosingCostAssistanceCapPct returns the assistance ceiling as a percent of
// the purchase price.
func ClosingCostAssistanceCapPct(lt valueobject.LoanType) decimal.Decimal {
	switch lt {
	case valueobject.LoanTypeFHA, valueobject.LoanTypeUSDA:
		return decimal.NewFromInt(6)
	case valueobject.LoanTypeVA:
		return decimal.NewFromInt(4)
	default:
		return decimal.NewFromInt(3)
	}
}

// DTILimit returns the maximum debt-to-income percent for the loan type.
// VA has no numeric limit.
func DTILimit(lt valueobject.LoanType) (decimal.Decimal, bool) {
	switch lt {
	case valueobject.LoanTypeVA:
		return decimal.Zero, false
	case valueobject.LoanTypeFHA:
		return decimal.NewFromInt(57), true
	case valueobject.LoanTypeUSDA, valueobject.LoanTypeJumbo:
		return decimal.NewFromInt(43), true
	default:
		return decimal.NewFromInt(50), true
	}
}

// ClassifyDTI compares ratio with the loan type's limit.
func ClassifyDTI(ratio decimal.Decimal, lt valueobject.LoanType) valueobject.DTIStatus {
	limit, ok := DTILimit(lt)
	if !ok {
		return valueobject.DTIStatusNoLimit
	}
	if ratio.LessThanOrEqual(limit) {
		return valueobject.DTIStatusGood
	}
	return valueobject.DTIStatusHigh
}

// RetiredMultiplier is the gross-up applied to Social Security and
// disability income.
func RetiredMultiplier(lt valueobject.LoanType) decimal.Decimal {
	switch lt {
	case valueobject.LoanTypeConventional, valueobject.LoanTypeUSDA:
		return decimal.RequireFromString("1.25")
	case valueobject.LoanTypeFHA, valueobject.LoanTypeVA:
		return decimal.RequireFromString("1.15")
	default:
		return one
	}
}

// CashOut applies the 80% LTV ceiling to a cash-out refinance.
//
//	maxCashOut = homeValue*0.80 - balance - debtsPaidOff - closingCosts  (floored at 0)
//	newLoan    = balance + debtsPaidOff + allowed + closingCosts
//	ltv        = newLoan / homeValue * 100
func CashOut(homeValue, balance, debtsPaidOff, requested, closingCosts decimal.Decimal) model.CashOutResult {
	maxCash := money.NonNegative(homeValue.Mul(maxCashOutLTV).Sub(balance).Sub(debtsPaidOff).Sub(closingCosts))
	maxCash = money.Cents(maxCash)
	requested = money.NonNegative(requested)

	allowed := requested
	clamped := false
	if requested.GreaterThan(maxCash) {
		allowed = maxCash
		clamped = true
	}
	newLoan := balance.Add(debtsPaidOff).Add(allowed).Add(closingCosts)
	return model.CashOutResult{
		Requested:  requested,
		Allowed:    allowed,
		MaxCashOut: maxCash,
		NewLoan:    money.Cents(newLoan),
		LTV:        money.Ratio(newLoan, homeValue),
		Clamped:    clamped,
	}
}

// EstimateAnnualPropertyTax applies a millage rate after the homestead
// exemption: max(0, value - exemption) * mills / 1000.
func EstimateAnnualPropertyTax(value decimal.Decimal, homestead bool, mills, exemption decimal.Decimal) decimal.Decimal {
	taxable := value
	if homestead {
		taxable = money.NonNegative(value.Sub(exemption))
	}
	return money.Cents(money.NonNegative(taxable).Mul(mills).Div(decimal.NewFromInt(1000)))
}
