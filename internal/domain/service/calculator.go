package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
)

// ---------------------------------------------------------------------------
// Calculator – affordability and loan calculation engine
// ---------------------------------------------------------------------------

// CalculatorConfig holds the defaults used when the borrower has not
// supplied a figure. Percentages are expressed as percents (6.75, not 0.0675).
type CalculatorConfig struct {
	DefaultRatePct     decimal.Decimal
	ClosingCostPct     decimal.Decimal
	InsurancePct       decimal.Decimal
	MillageRate        decimal.Decimal
	HomesteadExemption decimal.Decimal
	DefaultTermYears   int
}

// DefaultCalculatorConfig returns the Hillsborough County defaults.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		DefaultRatePct:     decimal.RequireFromString("6.75"),
		DefaultTermYears:   30,
		ClosingCostPct:     decimal.NewFromInt(3),
		InsurancePct:       decimal.RequireFromString("0.35"),
		MillageRate:        decimal.RequireFromString("20.5"),
		HomesteadExemption: decimal.NewFromInt(50_000),
	}
}

// Calculator derives a LoanProfile from Answers. It is safe for concurrent
// use and every method is a pure function of its inputs.
type Calculator struct {
	cfg CalculatorConfig
}

// NewCalculator returns a calculator using cfg.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Config returns the calculator's defaults.
func (c *Calculator) Config() CalculatorConfig { return c.cfg }

// Profile computes the loan profile for a mortgage session. Missing inputs
// count as zero; no combination of answers produces an error other than
// ErrNotMortgageTrack.
func (c *Calculator) Profile(answers model.Answers) (model.LoanProfile, error) {
	st := answers.ServiceType()
	if !st.IsMortgage() {
		return model.LoanProfile{}, fmt.Errorf("%w: %s", valueobject.ErrNotMortgageTrack, st)
	}

	lt := answers.LoanType()
	p := model.LoanProfile{
		ServiceType: st.String(),
		LoanType:    lt.String(),
		TermYears:   c.termYears(answers),
	}
	p.InterestRate = c.ratePct(answers)

	// 1. Price, loan amount and cash needed up front.
	switch st {
	case valueobject.ServiceTypeMortgagePurchase:
		c.purchase(answers, &p)
	case valueobject.ServiceTypeMortgageRefinance:
		c.refinance(answers, &p)
	case valueobject.ServiceTypeMortgageCash:
		c.cash(answers, &p)
	}

	// 2. Monthly housing payment.
	p.MonthlyPI = AmortizedPayment(p.LoanAmount, p.InterestRate.Div(hundred), p.TermYears)
	p.MonthlyEscrow = c.escrow(answers, p)
	p.TotalMonthlyPayment = money.Cents(p.MonthlyPI.
		Add(p.MonthlyEscrow.Tax).
		Add(p.MonthlyEscrow.Insurance).
		Add(p.MonthlyEscrow.Flood).
		Add(p.MonthlyEscrow.HOA))

	// 3. Income and debt-to-income.
	income, sources, flags := QualifyingIncome(answers, lt)
	p.QualifyingMonthlyIncome = income
	p.IncomeSources = sources
	p.Flags = append(p.Flags, flags...)
	p.MonthlyDebts = money.Cents(p.MonthlyDebts.Add(money.NonNegative(model.Get[model.Liabilities](answers).TotalMonthlyDebts.Decimal())))
	c.dti(lt, &p)

	// 4. Assets against cash to close.
	p.Assets = SummarizeAssets(model.Get[model.Assets](answers), p.CashToClose)

	return p, nil
}

// Schedule returns the month-by-month amortization for a computed profile.
func (c *Calculator) Schedule(p model.LoanProfile) []model.AmortizationEntry {
	return model.GenerateAmortizationSchedule(p.LoanAmount, p.InterestRate, p.TermYears*12, p.MonthlyPI)
}

// NormalizeCashOut applies the LTV ceiling to a cash-out-details answer
// given the rest of the session's answers. The returned payload carries the
// allowed amount.
func (c *Calculator) NormalizeCashOut(answers model.Answers, in model.CashOutDetails) (model.CashOutDetails, model.CashOutResult) {
	homeValue := model.Get[model.PropertyValue](answers).HomeValue.Decimal()
	balance := c.refinanceBalance(answers)
	closing := c.refinanceClosingCosts(answers, balance)

	res := CashOut(homeValue, balance, in.DebtsPaidOff.Decimal(), in.CashOut.Decimal(), closing)
	out := in
	out.CashOut = money.NewAmount(res.Allowed)
	return out, res
}

// ---------------------------------------------------------------------------
// Tracks
// ---------------------------------------------------------------------------

func (c *Calculator) purchase(answers model.Answers, p *model.LoanProfile) {
	lt := answers.LoanType()
	price := money.NonNegative(model.Get[model.PropertyValue](answers).HomeValue.Decimal())
	dpAnswer := model.Get[model.DownPayment](answers)

	minPct := MinimumDownPaymentPct(lt, answers.FirstTimeBuyer())
	minDP := money.Cents(price.Mul(minPct).Div(hundred))

	dp := dpAnswer.DownPayment.Decimal()
	if !dp.IsPositive() && dpAnswer.DownPaymentPercent.IsPositive() {
		dp = money.Cents(price.Mul(dpAnswer.DownPaymentPercent.Decimal()).Div(hundred))
	}
	switch {
	case !dp.IsPositive():
		dp = minDP
	case dp.LessThan(minDP):
		p.Warnings = append(p.Warnings, model.Warning{
			Code:    model.WarningDownPaymentBelowMinimum,
			Message: fmt.Sprintf("A %s%% minimum down payment applies to this loan type.", minPct.String()),
			Field:   "downPayment",
		})
		dp = minDP
	}
	dp = money.Clamp(dp, decimal.Zero, price)

	p.PurchasePrice = money.Cents(price)
	p.MinimumDownPayment = minDP
	p.DownPayment = money.Cents(dp)
	p.DownPaymentPercent = money.Ratio(dp, price)
	p.LoanAmount = money.Cents(price.Sub(dp))
	p.LTVRatio = money.Ratio(p.LoanAmount, price)
	p.ClosingCosts = money.Cents(price.Mul(c.cfg.ClosingCostPct).Div(hundred))
	p.MonthlyEscrow.PMI = MonthlyPMI(p.LoanAmount, price, dp, lt, answers.CreditScore())

	if dpAnswer.Has(model.AssistanceClosingCosts) {
		p.ClosingCostAssistance = c.closingCostAssistance(lt, price, dpAnswer, p)
	}

	downLine := p.DownPayment
	if dpAnswer.Has(model.AssistanceDownPayment) {
		downLine = decimal.Zero
	}
	p.CashToClose = money.Cents(downLine.Add(money.NonNegative(p.ClosingCosts.Sub(p.ClosingCostAssistance))))
}

func (c *Calculator) closingCostAssistance(
	lt valueobject.LoanType,
	price decimal.Decimal,
	dp model.DownPayment,
	p *model.LoanProfile,
) decimal.Decimal {
	capAmt := money.Cents(price.Mul(ClosingCostAssistanceCapPct(lt)).Div(hundred))
	if !capAmt.IsPositive() {
		return decimal.Zero
	}
	requested := dp.ClosingCostAssistanceAmount.Decimal()
	if requested.IsZero() {
		return capAmt
	}
	allowed := money.Clamp(requested, one, capAmt)
	if !allowed.Equal(requested) {
		p.Warnings = append(p.Warnings, model.Warning{
			Code:    model.WarningClosingCostAssistance,
			Message: fmt.Sprintf("Closing cost assistance is limited to $%s for this loan type.", capAmt.StringFixed(2)),
			Field:   "closingCostAssistanceAmount",
		})
	}
	return allowed
}

func (c *Calculator) refinance(answers model.Answers, p *model.LoanProfile) {
	lt := answers.LoanType()
	homeValue := money.NonNegative(model.Get[model.PropertyValue](answers).HomeValue.Decimal())
	balance := c.refinanceBalance(answers)
	closing := c.refinanceClosingCosts(answers, balance)

	p.PurchasePrice = money.Cents(homeValue)
	p.ClosingCosts = closing

	if second, ok := model.Lookup[model.SecondLienDetails](answers); ok && !second.PayOff &&
		model.Get[model.LienType](answers).LienType == "second" {
		p.MonthlyDebts = money.NonNegative(second.MonthlyPayment.Decimal())
	}

	if model.Get[model.RefinanceType](answers).RefinanceType == model.RefinanceCashOut {
		co := model.Get[model.CashOutDetails](answers)
		res := CashOut(homeValue, balance, co.DebtsPaidOff.Decimal(), co.CashOut.Decimal(), closing)
		p.CashOut = &res
		p.LoanAmount = res.NewLoan
		if res.Clamped {
			p.Warnings = append(p.Warnings, CashOutWarning(res))
		}
	} else {
		p.LoanAmount = money.Cents(balance.Add(closing))
	}

	p.LTVRatio = money.Ratio(p.LoanAmount, homeValue)
	equity := homeValue.Sub(p.LoanAmount)
	p.MonthlyEscrow.PMI = MonthlyPMI(p.LoanAmount, homeValue, equity, lt, answers.CreditScore())
}

func (c *Calculator) cash(answers model.Answers, p *model.LoanProfile) {
	price := money.NonNegative(model.Get[model.PropertyValue](answers).HomeValue.Decimal())
	p.PurchasePrice = money.Cents(price)
	p.DownPayment = money.Cents(price)
	p.DownPaymentPercent = money.Ratio(price, price)
	p.ClosingCosts = money.Cents(price.Mul(c.cfg.ClosingCostPct).Div(hundred))
	p.CashToClose = money.Cents(price.Add(p.ClosingCosts))
}

// refinanceBalance is the first-lien balance plus a second lien being paid
// off in the new loan.
func (c *Calculator) refinanceBalance(answers model.Answers) decimal.Decimal {
	balance := money.NonNegative(model.Get[model.CurrentLoan](answers).CurrentBalance.Decimal())
	if model.Get[model.LienType](answers).LienType == "second" {
		if second := model.Get[model.SecondLienDetails](answers); second.PayOff {
			balance = balance.Add(money.NonNegative(second.Balance.Decimal()))
		}
	}
	return balance
}

func (c *Calculator) refinanceClosingCosts(answers model.Answers, balance decimal.Decimal) decimal.Decimal {
	if cc := model.Get[model.CurrentLoan](answers).ClosingCosts; cc.IsPositive() {
		return money.Cents(cc.Decimal())
	}
	return money.Cents(balance.Mul(c.cfg.ClosingCostPct).Div(hundred))
}

// CashOutWarning is the notice shown when a cash-out request is clamped.
func CashOutWarning(res model.CashOutResult) model.Warning {
	return model.Warning{
		Code: model.WarningCashOutClamped,
		Message: fmt.Sprintf("Cash out was reduced to $%s to stay within 80%% loan-to-value.",
			res.Allowed.StringFixed(2)),
		Field:        "cashOut",
		DismissAfter: CashOutWarningDismissAfter,
	}
}

// ---------------------------------------------------------------------------
// Payment components
// ---------------------------------------------------------------------------

func (c *Calculator) ratePct(answers model.Answers) decimal.Decimal {
	if r := model.Get[model.LoanAnalysis](answers).InterestRate; r.IsPositive() {
		return r.Decimal()
	}
	return c.cfg.DefaultRatePct
}

func (c *Calculator) termYears(answers model.Answers) int {
	if y := model.Get[model.LoanAnalysis](answers).TermYears; y > 0 {
		return y
	}
	return c.cfg.DefaultTermYears
}

// escrow resolves tax from the loan-analysis answer, then the property-value
// estimate, then the millage default; insurance from the answer or a percent
// of value.
func (c *Calculator) escrow(answers model.Answers, p model.LoanProfile) model.Escrow {
	la := model.Get[model.LoanAnalysis](answers)
	pv := model.Get[model.PropertyValue](answers)
	value := p.PurchasePrice

	annualTax := la.AnnualPropertyTax.Decimal()
	if !annualTax.IsPositive() {
		annualTax = pv.EstimatedAnnualTax.Decimal()
	}
	if !annualTax.IsPositive() {
		annualTax = EstimateAnnualPropertyTax(value, pv.Homestead, c.cfg.MillageRate, c.cfg.HomesteadExemption)
	}

	annualIns := la.AnnualInsurance.Decimal()
	if !annualIns.IsPositive() {
		annualIns = value.Mul(c.cfg.InsurancePct).Div(hundred)
	}

	e := model.Escrow{
		Tax:       money.Cents(money.Monthly(money.NonNegative(annualTax))),
		Insurance: money.Cents(money.Monthly(money.NonNegative(annualIns))),
		PMI:       p.MonthlyEscrow.PMI,
		HOA:       money.Cents(money.NonNegative(la.MonthlyHOA.Decimal())),
		Flood:     decimal.Zero,
	}
	if la.FloodRequired {
		e.Flood = money.Cents(money.NonNegative(la.MonthlyFlood.Decimal()))
	}
	return e
}

func (c *Calculator) dti(lt valueobject.LoanType, p *model.LoanProfile) {
	if limit, ok := DTILimit(lt); ok {
		l := limit
		p.DTILimit = &l
	}
	if !p.QualifyingMonthlyIncome.IsPositive() {
		p.DTIRatio = decimal.Zero
		p.DTIStatus = valueobject.DTIStatusIncomplete
		if p.DTILimit == nil {
			p.DTIStatus = valueobject.DTIStatusNoLimit
		}
		return
	}
	p.DTIRatio = money.Ratio(p.MonthlyDebts.Add(p.TotalMonthlyPayment), p.QualifyingMonthlyIncome)
	p.DTIStatus = ClassifyDTI(p.DTIRatio, lt)
}

// SummarizeAssets counts retirement balances at 60% and compares the total
// with cash to close.
func SummarizeAssets(a model.Assets, cashToClose decimal.Decimal) model.AssetSummary {
	liquid := money.NonNegative(a.Liquid.Decimal())
	investment := money.NonNegative(a.Investment.Decimal())
	retirement := money.NonNegative(a.Retirement.Decimal())
	usable := money.Cents(retirement.Mul(usableRetirementRatio))
	total := money.Cents(liquid.Add(investment).Add(usable))
	return model.AssetSummary{
		Liquid:           money.Cents(liquid),
		Investment:       money.Cents(investment),
		Retirement:       money.Cents(retirement),
		UsableRetirement: usable,
		Total:            total,
		Remainder:        total.Sub(cashToClose),
		Sufficient:       total.GreaterThanOrEqual(cashToClose),
	}
}
