package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
)

// CashOutWarningDismissAfter is how long the cash-out clamp notice stays up.
const CashOutWarningDismissAfter = 5 * time.Second

// FlagUnverifiedIncome prefixes the flag raised for every income category
// that was not confirmed by its provider.
const FlagUnverifiedIncome = "unverified-income:"

// QualifyingIncome sums the monthly income of every selected category. A
// verified provider amount replaces the manual figures for its category;
// a skipped or failed verification falls back to the manual figures, and a
// skip flag wins over any verified amount sent alongside it.
func QualifyingIncome(answers model.Answers, lt valueobject.LoanType) (decimal.Decimal, []model.IncomeSource, []string) {
	total := decimal.Zero
	var (
		sources []model.IncomeSource
		flags   []string
	)
	for _, step := range BuildIncomeQueue(answers.IncomeSelection()) {
		cat, _ := valueobject.IncomeCategoryForStep(step)

		var (
			v       model.Verification
			manual  decimal.Decimal
			skipped bool
		)
		switch cat {
		case valueobject.IncomeNotSelfEmployed:
			t := model.Get[model.Truv](answers)
			v, manual, skipped = t.Verification, employmentIncome(t), t.SkipTruv
		case valueobject.IncomeSelfEmployed:
			ts := model.Get[model.TaxStatus](answers)
			v, manual, skipped = ts.Verification, selfEmploymentIncome(ts), ts.SkipTaxStatus
		case valueobject.IncomeRetired:
			r := model.Get[model.RetirementIncome](answers)
			v, manual, skipped = r.Verification, retirementIncome(r, lt), r.SkipSSA
		case valueobject.IncomeDisability:
			d := model.Get[model.DisabilityType](answers)
			v, skipped = d.Verification, d.SkipVA
			manual = money.NonNegative(d.MonthlyBenefit.Decimal()).Mul(RetiredMultiplier(lt))
		}

		src := model.IncomeSource{Category: cat.String()}
		switch {
		case !skipped && v.Verified && v.VerifiedMonthlyIncome.IsPositive():
			src.Source = model.IncomeSourceVerified
			src.Monthly = money.Cents(v.VerifiedMonthlyIncome.Decimal())
		case manual.IsPositive():
			src.Source = model.IncomeSourceManual
			src.Monthly = money.Cents(manual)
		default:
			src.Source = model.IncomeSourceMissing
			src.Monthly = decimal.Zero
		}
		if src.Source != model.IncomeSourceVerified {
			flags = append(flags, FlagUnverifiedIncome+cat.String())
		}

		sources = append(sources, src)
		total = total.Add(src.Monthly)
	}
	return money.Cents(total), sources, flags
}

// employmentIncome handles W-2 salary and hourly pay.
//
//	salary: base/12 + commission/12 + bonus/12 + rsu*0.25/12
//	hourly: rate * hours * 52 / 12
func employmentIncome(t model.Truv) decimal.Decimal {
	hourly := t.PayType == "hourly" || (t.PayType == "" && t.BaseSalary.IsZero() && t.HourlyRate.IsPositive())
	if hourly {
		return money.NonNegative(t.HourlyRate.Decimal()).
			Mul(money.NonNegative(t.HoursPerWeek.Decimal())).
			Mul(weeksPerYear).
			Div(twelve)
	}

	annual := money.NonNegative(t.BaseSalary.Decimal())
	if t.HasCommission {
		annual = annual.Add(money.NonNegative(t.Commission.Decimal()))
	}
	if t.HasBonus {
		annual = annual.Add(money.NonNegative(t.Bonus.Decimal()))
	}
	if t.HasRSU {
		annual = annual.Add(money.NonNegative(t.RSUVestedBalance.Decimal()).Mul(rsuQualifyingFactor))
	}
	return annual.Div(twelve)
}

// selfEmploymentIncome applies the ownership share to business income. A
// missing ownership percent counts as 100%.
//
//	1099 / schedule-c: pct * net / 12
//	s-corp:            w2/12 + pct * k1/12
//	c-corp:            w2/12 + pct * profit/12
func selfEmploymentIncome(ts model.TaxStatus) decimal.Decimal {
	pct := one
	if ts.OwnershipPercent.IsPositive() {
		pct = money.Clamp(ts.OwnershipPercent.Decimal(), decimal.Zero, hundred).Div(hundred)
	}
	w2 := money.NonNegative(ts.W2Income.Decimal())

	switch ts.EntityType {
	case model.EntitySCorp:
		return w2.Add(pct.Mul(money.NonNegative(ts.K1Income.Decimal()))).Div(twelve)
	case model.EntityCCorp:
		return w2.Add(pct.Mul(money.NonNegative(ts.CorpProfit.Decimal()))).Div(twelve)
	default:
		return pct.Mul(money.NonNegative(ts.NetIncome.Decimal())).Div(twelve)
	}
}

// retirementIncome sums the selected monthly sources; Social Security and
// disability are grossed up by the loan type's multiplier. With no explicit
// selection every populated source counts.
func retirementIncome(r model.RetirementIncome, lt valueobject.LoanType) decimal.Decimal {
	selected := func(src string) bool { return len(r.Sources) == 0 || r.HasSource(src) }
	m := RetiredMultiplier(lt)

	total := decimal.Zero
	if selected(model.RetirementSocialSecurity) {
		total = total.Add(money.NonNegative(r.SocialSecurityMonthly.Decimal()).Mul(m))
	}
	if selected(model.RetirementDisability) {
		total = total.Add(money.NonNegative(r.DisabilityMonthly.Decimal()).Mul(m))
	}
	if selected(model.RetirementPension) {
		total = total.Add(money.NonNegative(r.PensionMonthly.Decimal()))
	}
	if selected(model.RetirementRMD) {
		total = total.Add(money.NonNegative(r.RMDMonthly.Decimal()))
	}
	return total
}
