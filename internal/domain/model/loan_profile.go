package model

import (
	"github.com/shopspring/decimal"

	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanProfile – derived affordability figures
// ---------------------------------------------------------------------------

// LoanProfile is recomputed from Answers on every read and never persisted.
// Monetary fields are rounded to cents; ratios are percentages rounded to two
// places.
type LoanProfile struct {
	ServiceType             string                `json:"serviceType"`
	LoanType                string                `json:"loanType"`
	PurchasePrice           decimal.Decimal       `json:"purchasePrice"`
	DownPayment             decimal.Decimal       `json:"downPayment"`
	DownPaymentPercent      decimal.Decimal       `json:"downPaymentPercent"`
	MinimumDownPayment      decimal.Decimal       `json:"minimumDownPayment"`
	LoanAmount              decimal.Decimal       `json:"loanAmount"`
	InterestRate            decimal.Decimal       `json:"interestRate"`
	TermYears               int                   `json:"termYears"`
	MonthlyPI               decimal.Decimal       `json:"monthlyPI"`
	MonthlyEscrow           Escrow                `json:"monthlyEscrow"`
	TotalMonthlyPayment     decimal.Decimal       `json:"totalMonthlyPayment"`
	MonthlyDebts            decimal.Decimal       `json:"monthlyDebts"`
	QualifyingMonthlyIncome decimal.Decimal       `json:"qualifyingMonthlyIncome"`
	DTIRatio                decimal.Decimal       `json:"dtiRatio"`
	DTILimit                *decimal.Decimal      `json:"dtiLimit"`
	DTIStatus               valueobject.DTIStatus `json:"dtiStatus"`
	LTVRatio                decimal.Decimal       `json:"ltvRatio"`
	ClosingCosts            decimal.Decimal       `json:"closingCosts"`
	ClosingCostAssistance   decimal.Decimal       `json:"closingCostAssistance"`
	CashToClose             decimal.Decimal       `json:"cashToClose"`
	CashOut                 *CashOutResult        `json:"cashOut,omitempty"`
	Assets                  AssetSummary          `json:"assets"`
	IncomeSources           []IncomeSource        `json:"incomeSources"`
	Flags                   []string              `json:"flags,omitempty"`
	Warnings                []Warning             `json:"warnings,omitempty"`
}

// Escrow is the monthly escrow breakdown. PMI is reported here but is not
// part of the total monthly payment.
type Escrow struct {
	Tax       decimal.Decimal `json:"tax"`
	Insurance decimal.Decimal `json:"insurance"`
	PMI       decimal.Decimal `json:"pmi"`
	HOA       decimal.Decimal `json:"hoa"`
	Flood     decimal.Decimal `json:"flood"`
}

// AssetSummary compares available funds with cash to close. Remainder may
// be negative.
type AssetSummary struct {
	Liquid           decimal.Decimal `json:"liquid"`
	Investment       decimal.Decimal `json:"investment"`
	Retirement       decimal.Decimal `json:"retirement"`
	UsableRetirement decimal.Decimal `json:"usableRetirement"`
	Total            decimal.Decimal `json:"total"`
	Remainder        decimal.Decimal `json:"remainder"`
	Sufficient       bool            `json:"sufficient"`
}

// IncomeSource is the monthly contribution of one selected income category.
// Source is "verified", "manual" or "missing".
type IncomeSource struct {
	Category string          `json:"category"`
	Source   string          `json:"source"`
	Monthly  decimal.Decimal `json:"monthly"`
}

const (
	IncomeSourceVerified = "verified"
	IncomeSourceManual   = "manual"
	IncomeSourceMissing  = "missing"
)

// CashOutResult is the outcome of the 80% LTV cash-out check.
type CashOutResult struct {
	Requested  decimal.Decimal `json:"requested"`
	Allowed    decimal.Decimal `json:"allowed"`
	MaxCashOut decimal.Decimal `json:"maxCashOut"`
	NewLoan    decimal.Decimal `json:"newLoan"`
	LTV        decimal.Decimal `json:"ltv"`
	Clamped    bool            `json:"clamped"`
}

// HasFlag reports whether the profile carries flag.
func (p LoanProfile) HasFlag(flag string) bool {
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
