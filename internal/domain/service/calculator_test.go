package service_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/service"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
	"github.com/ctateo21/homelead/pkg/testutil"
)

func newCalculator() *service.Calculator {
	return service.NewCalculator(service.DefaultCalculatorConfig())
}

// firstTimePurchase is a conventional purchase of a $400,000 home by a
// first-time buyer.
func firstTimePurchase(extra ...model.StepPayload) model.Answers {
	return purchaseAnswers(append([]model.StepPayload{
		model.BuyType{BuyType: "primary", HomeOwnershipHistory: "no"},
		model.PropertyValue{HomeValue: money.FromInt(400_000)},
		model.LoanTypeAnswer{LoanType: "conventional"},
		model.CreditScoreAnswer{CreditScore: "780+"},
	}, extra...)...)
}

// ---------------------------------------------------------------------------
// Policy functions
// ---------------------------------------------------------------------------

func TestAmortizedPayment(t *testing.T) {
	got := service.AmortizedPayment(decimal.NewFromInt(300_000), decimal.RequireFromString("0.0675"), 30)
	testutil.AssertDecimalWithin(t, "1946", got, "1")

	assert.True(t, service.AmortizedPayment(decimal.Zero, decimal.RequireFromString("0.0675"), 30).IsZero())
	assert.True(t, service.AmortizedPayment(decimal.NewFromInt(300_000), decimal.Zero, 30).IsZero())
	assert.True(t, service.AmortizedPayment(decimal.NewFromInt(300_000), decimal.RequireFromString("0.05"), 0).IsZero())
	assert.True(t, service.AmortizedPayment(decimal.NewFromInt(-5), decimal.RequireFromString("0.05"), 30).IsZero())
}

func TestMonthlyPMI(t *testing.T) {
	price := decimal.NewFromInt(400_000)
	excellent := valueobject.ParseCreditScore("780+")

	t.Run("no PMI at 20% down for any loan type or score", func(t *testing.T) {
		principal := decimal.NewFromInt(320_000)
		stake := decimal.NewFromInt(80_000)
		for _, lt := range []valueobject.LoanType{
			valueobject.LoanTypeConventional, valueobject.LoanTypeFHA, valueobject.LoanTypeJumbo,
		} {
			for _, score := range []string{"780+", "below-620", ""} {
				got := service.MonthlyPMI(principal, price, stake, lt, valueobject.ParseCreditScore(score))
				assert.True(t, got.IsZero(), "%s/%s", lt, score)
			}
		}
	})

	t.Run("10% down conventional 780+", func(t *testing.T) {
		principal := decimal.NewFromInt(360_000)
		got := service.MonthlyPMI(principal, price, decimal.NewFromInt(40_000), valueobject.LoanTypeConventional, excellent)
		want := principal.Mul(decimal.RequireFromString("0.0022")).Div(decimal.NewFromInt(12))
		testutil.AssertDecimal(t, want.Round(2).String(), got)
		testutil.AssertDecimal(t, "66", got)
	})

	t.Run("FHA is flat", func(t *testing.T) {
		got := service.MonthlyPMI(decimal.NewFromInt(386_000), price, decimal.NewFromInt(14_000), valueobject.LoanTypeFHA, excellent)
		testutil.AssertDecimal(t, "176.92", got)
	})

	t.Run("VA has none", func(t *testing.T) {
		got := service.MonthlyPMI(price, price, decimal.Zero, valueobject.LoanTypeVA, excellent)
		assert.True(t, got.IsZero())
	})

	t.Run("unknown score uses the lowest tier", func(t *testing.T) {
		assert.Equal(t, "1.6", service.PMIRatePct(valueobject.LoanTypeConventional, valueobject.ParseCreditScore("")).String())
	})
}

func TestClassifyDTI(t *testing.T) {
	assert.Equal(t, valueobject.DTIStatusGood, service.ClassifyDTI(decimal.NewFromInt(49), valueobject.LoanTypeConventional))
	assert.Equal(t, valueobject.DTIStatusGood, service.ClassifyDTI(decimal.NewFromInt(50), valueobject.LoanTypeConventional))
	assert.Equal(t, valueobject.DTIStatusHigh, service.ClassifyDTI(decimal.NewFromInt(51), valueobject.LoanTypeConventional))
	assert.Equal(t, valueobject.DTIStatusGood, service.ClassifyDTI(decimal.NewFromInt(55), valueobject.LoanTypeFHA))
	assert.Equal(t, valueobject.DTIStatusHigh, service.ClassifyDTI(decimal.NewFromInt(44), valueobject.LoanTypeUSDA))
	for _, ratio := range []int64{0, 49, 51, 90} {
		assert.Equal(t, valueobject.DTIStatusNoLimit, service.ClassifyDTI(decimal.NewFromInt(ratio), valueobject.LoanTypeVA))
	}
}

func TestCashOut(t *testing.T) {
	t.Run("clamps to 80% LTV", func(t *testing.T) {
		res := service.CashOut(
			decimal.NewFromInt(350_000), decimal.NewFromInt(250_000), decimal.Zero,
			decimal.NewFromInt(40_000), decimal.NewFromInt(8_000),
		)
		assert.True(t, res.Clamped)
		testutil.AssertDecimal(t, "22000", res.MaxCashOut)
		testutil.AssertDecimal(t, "22000", res.Allowed)
		testutil.AssertDecimal(t, "40000", res.Requested)
		testutil.AssertDecimal(t, "280000", res.NewLoan)
		testutil.AssertDecimal(t, "80", res.LTV)
	})

	t.Run("keeps amounts under the ceiling", func(t *testing.T) {
		res := service.CashOut(
			decimal.NewFromInt(350_000), decimal.NewFromInt(250_000), decimal.Zero,
			decimal.NewFromInt(10_000), decimal.NewFromInt(8_000),
		)
		assert.False(t, res.Clamped)
		testutil.AssertDecimal(t, "10000", res.Allowed)
	})

	t.Run("underwater balance allows nothing", func(t *testing.T) {
		res := service.CashOut(
			decimal.NewFromInt(200_000), decimal.NewFromInt(190_000), decimal.Zero,
			decimal.NewFromInt(5_000), decimal.NewFromInt(5_000),
		)
		assert.True(t, res.Clamped)
		assert.True(t, res.Allowed.IsZero())
	})
}

func TestEstimateAnnualPropertyTax(t *testing.T) {
	mills := decimal.RequireFromString("20.5")
	exemption := decimal.NewFromInt(50_000)

	testutil.AssertDecimal(t, "8200", service.EstimateAnnualPropertyTax(decimal.NewFromInt(400_000), false, mills, exemption))
	testutil.AssertDecimal(t, "7175", service.EstimateAnnualPropertyTax(decimal.NewFromInt(400_000), true, mills, exemption))
	assert.True(t, service.EstimateAnnualPropertyTax(decimal.NewFromInt(30_000), true, mills, exemption).IsZero())
}

// ---------------------------------------------------------------------------
// Income
// ---------------------------------------------------------------------------

func TestQualifyingIncome(t *testing.T) {
	t.Run("S-Corp", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"self-employed"}},
			model.TaxStatus{
				EntityType:       model.EntitySCorp,
				OwnershipPercent: money.FromInt(50),
				W2Income:         money.FromInt(60_000),
				K1Income:         money.FromInt(40_000),
			},
		)
		total, sources, _ := service.QualifyingIncome(answers, valueobject.LoanTypeConventional)
		testutil.AssertDecimal(t, "6666.67", total)
		require.Len(t, sources, 1)
		assert.Equal(t, model.IncomeSourceManual, sources[0].Source)
	})

	t.Run("retired multiplier by loan type", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"retired"}},
			model.RetirementIncome{
				Sources:               []string{model.RetirementSocialSecurity},
				SocialSecurityMonthly: money.FromInt(2_000),
				PensionMonthly:        money.FromInt(900),
			},
		)
		conv, _, _ := service.QualifyingIncome(answers, valueobject.LoanTypeConventional)
		testutil.AssertDecimal(t, "2500", conv)

		fha, _, _ := service.QualifyingIncome(answers, valueobject.LoanTypeFHA)
		testutil.AssertDecimal(t, "2300", fha)
	})

	t.Run("salary with bonus and RSU", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"not-self-employed"}},
			model.Truv{
				PayType:          "salary",
				BaseSalary:       money.FromInt(120_000),
				HasBonus:         true,
				Bonus:            money.FromInt(12_000),
				HasCommission:    false,
				Commission:       money.FromInt(50_000),
				HasRSU:           true,
				RSUVestedBalance: money.FromInt(48_000),
			},
		)
		total, _, _ := service.QualifyingIncome(answers, valueobject.LoanTypeConventional)
		testutil.AssertDecimal(t, "12000", total)
	})

	t.Run("hourly", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"not-self-employed"}},
			model.Truv{PayType: "hourly", HourlyRate: money.FromInt(30), HoursPerWeek: money.FromInt(40)},
		)
		total, _, _ := service.QualifyingIncome(answers, valueobject.LoanTypeConventional)
		testutil.AssertDecimal(t, "5200", total)
	})

	t.Run("verified amount replaces manual figures", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"not-self-employed"}},
			model.Truv{
				Verification: model.Verification{Verified: true, VerifiedMonthlyIncome: money.FromInt(9_000)},
				BaseSalary:   money.FromInt(60_000),
			},
		)
		total, sources, flags := service.QualifyingIncome(answers, valueobject.LoanTypeConventional)
		testutil.AssertDecimal(t, "9000", total)
		assert.Equal(t, model.IncomeSourceVerified, sources[0].Source)
		assert.Empty(t, flags)
	})

	t.Run("skip flag forces the manual figures", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"not-self-employed"}},
			model.Truv{
				Verification: model.Verification{Verified: true, VerifiedMonthlyIncome: money.FromInt(9_000)},
				SkipTruv:     true,
				BaseSalary:   money.FromInt(60_000),
			},
		)
		total, sources, flags := service.QualifyingIncome(answers, valueobject.LoanTypeConventional)
		testutil.AssertDecimal(t, "5000", total)
		assert.Equal(t, model.IncomeSourceManual, sources[0].Source)
		assert.Equal(t, []string{"unverified-income:not-self-employed"}, flags)
	})

	t.Run("skipped SSA ignores a verified amount", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"retired"}},
			model.RetirementIncome{
				Verification:   model.Verification{Verified: true, VerifiedMonthlyIncome: money.FromInt(4_000)},
				SkipSSA:        true,
				PensionMonthly: money.FromInt(900),
			},
		)
		total, sources, _ := service.QualifyingIncome(answers, valueobject.LoanTypeConventional)
		testutil.AssertDecimal(t, "900", total)
		assert.Equal(t, model.IncomeSourceManual, sources[0].Source)
	})

	t.Run("missing income is zero and flagged", func(t *testing.T) {
		answers := purchaseAnswers(
			model.IncomeTypeSelection{IncomeTypes: []string{"disability"}},
			model.DisabilityType{SkipVA: true},
		)
		total, sources, flags := service.QualifyingIncome(answers, valueobject.LoanTypeVA)
		assert.True(t, total.IsZero())
		assert.Equal(t, model.IncomeSourceMissing, sources[0].Source)
		assert.Equal(t, []string{"unverified-income:disability"}, flags)
	})
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestCalculator_Profile_DefaultDownPayment(t *testing.T) {
	calc := newCalculator()

	p, err := calc.Profile(firstTimePurchase())
	require.NoError(t, err)

	testutil.AssertDecimal(t, "12000", p.DownPayment)
	testutil.AssertDecimal(t, "388000", p.LoanAmount)
	testutil.AssertDecimal(t, "3", p.DownPaymentPercent)
	testutil.AssertDecimal(t, "12000", p.ClosingCosts)
	testutil.AssertDecimal(t, "24000", p.CashToClose)

	t.Run("down payment assistance zeroes the down payment line only", func(t *testing.T) {
		dpa, err := calc.Profile(firstTimePurchase(model.DownPayment{
			Assistance: []string{model.AssistanceDownPayment},
		}))
		require.NoError(t, err)

		testutil.AssertDecimal(t, "12000", dpa.DownPayment)
		testutil.AssertDecimal(t, "388000", dpa.LoanAmount)
		testutil.AssertDecimal(t, "12000", dpa.CashToClose)
	})
}

func TestCalculator_Profile_PaymentBreakdown(t *testing.T) {
	calc := newCalculator()
	answers := firstTimePurchase(
		model.DownPayment{DownPayment: money.FromInt(40_000)},
		model.LoanAnalysis{
			InterestRate:      money.FromFloat(6.75),
			TermYears:         30,
			AnnualPropertyTax: money.FromInt(6_000),
			AnnualInsurance:   money.FromInt(2_400),
			MonthlyHOA:        money.FromInt(50),
			FloodRequired:     false,
			MonthlyFlood:      money.FromInt(90),
		},
		model.IncomeTypeSelection{IncomeTypes: []string{"not-self-employed"}},
		model.Truv{PayType: "salary", BaseSalary: money.FromInt(120_000)},
		model.Liabilities{Method: "manual", TotalMonthlyDebts: money.FromInt(500)},
		model.Assets{Liquid: money.FromInt(50_000), Retirement: money.FromInt(10_000)},
	)

	p, err := calc.Profile(answers)
	require.NoError(t, err)

	testutil.AssertDecimal(t, "360000", p.LoanAmount)
	testutil.AssertDecimal(t, "2334.95", p.MonthlyPI)
	testutil.AssertDecimal(t, "500", p.MonthlyEscrow.Tax)
	testutil.AssertDecimal(t, "200", p.MonthlyEscrow.Insurance)
	testutil.AssertDecimal(t, "66", p.MonthlyEscrow.PMI)
	testutil.AssertDecimal(t, "50", p.MonthlyEscrow.HOA)
	assert.True(t, p.MonthlyEscrow.Flood.IsZero(), "flood counts only when required")
	// PMI is reported but not part of the total
	testutil.AssertDecimal(t, "3084.95", p.TotalMonthlyPayment)

	testutil.AssertDecimal(t, "10000", p.QualifyingMonthlyIncome)
	testutil.AssertDecimal(t, "35.85", p.DTIRatio)
	assert.Equal(t, valueobject.DTIStatusGood, p.DTIStatus)
	require.NotNil(t, p.DTILimit)
	testutil.AssertDecimal(t, "50", *p.DTILimit)
	testutil.AssertDecimal(t, "90", p.LTVRatio)

	testutil.AssertDecimal(t, "6000", p.Assets.UsableRetirement)
	testutil.AssertDecimal(t, "56000", p.Assets.Total)
	testutil.AssertDecimal(t, "52000", p.CashToClose)
	testutil.AssertDecimal(t, "4000", p.Assets.Remainder)
	assert.True(t, p.Assets.Sufficient)

	schedule := calc.Schedule(p)
	require.Len(t, schedule, 360)
	assert.True(t, schedule[len(schedule)-1].RemainingBalance.IsZero())
}

func TestCalculator_Profile_DownPaymentBelowMinimum(t *testing.T) {
	p, err := newCalculator().Profile(firstTimePurchase(model.DownPayment{DownPayment: money.FromInt(5_000)}))
	require.NoError(t, err)

	testutil.AssertDecimal(t, "12000", p.DownPayment)
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, model.WarningDownPaymentBelowMinimum, p.Warnings[0].Code)
}

func TestCalculator_Profile_ClosingCostAssistance(t *testing.T) {
	calc := newCalculator()

	t.Run("defaults to the cap", func(t *testing.T) {
		p, err := calc.Profile(firstTimePurchase(model.DownPayment{
			Assistance: []string{model.AssistanceClosingCosts},
		}))
		require.NoError(t, err)
		testutil.AssertDecimal(t, "12000", p.ClosingCostAssistance)
		testutil.AssertDecimal(t, "12000", p.CashToClose)
	})

	t.Run("clamped to the cap", func(t *testing.T) {
		p, err := calc.Profile(firstTimePurchase(model.DownPayment{
			Assistance:                  []string{model.AssistanceClosingCosts},
			ClosingCostAssistanceAmount: money.FromInt(50_000),
		}))
		require.NoError(t, err)
		testutil.AssertDecimal(t, "12000", p.ClosingCostAssistance)
		require.Len(t, p.Warnings, 1)
		assert.Equal(t, model.WarningClosingCostAssistance, p.Warnings[0].Code)
	})

	t.Run("ignored when not selected", func(t *testing.T) {
		p, err := calc.Profile(firstTimePurchase(model.DownPayment{
			ClosingCostAssistanceAmount: money.FromInt(5_000),
		}))
		require.NoError(t, err)
		assert.True(t, p.ClosingCostAssistance.IsZero())
	})
}

func TestCalculator_Profile_CashOutRefinance(t *testing.T) {
	calc := newCalculator()
	answers := model.NewAnswers(
		model.ServiceSelection{Service: "mortgage"},
		model.MortgageType{Type: "refinance"},
		model.PropertyValue{HomeValue: money.FromInt(350_000)},
		model.LienType{LienType: "first"},
		model.RefinanceType{RefinanceType: model.RefinanceCashOut},
		model.CashOutDetails{CashOut: money.FromInt(40_000)},
		model.CurrentLoan{CurrentBalance: money.FromInt(250_000), ClosingCosts: money.FromInt(8_000)},
	)

	p, err := calc.Profile(answers)
	require.NoError(t, err)

	require.NotNil(t, p.CashOut)
	assert.True(t, p.CashOut.Clamped)
	testutil.AssertDecimal(t, "22000", p.CashOut.Allowed)
	testutil.AssertDecimal(t, "280000", p.LoanAmount)
	testutil.AssertDecimal(t, "80", p.LTVRatio)
	assert.True(t, p.CashToClose.IsZero())
	require.Len(t, p.Warnings, 1)
	assert.Equal(t, model.WarningCashOutClamped, p.Warnings[0].Code)
	assert.Equal(t, service.CashOutWarningDismissAfter, p.Warnings[0].DismissAfter)

	t.Run("normalize writes the allowed amount back", func(t *testing.T) {
		out, res := calc.NormalizeCashOut(answers, model.CashOutDetails{CashOut: money.FromInt(40_000)})
		assert.True(t, res.Clamped)
		assert.Equal(t, "22000.00", out.CashOut.String())
	})
}

func TestCalculator_Profile_RateTermRefinance(t *testing.T) {
	answers := model.NewAnswers(
		model.ServiceSelection{Service: "mortgage"},
		model.MortgageType{Type: "refinance"},
		model.PropertyValue{HomeValue: money.FromInt(500_000)},
		model.LienType{LienType: "second"},
		model.SecondLienDetails{Balance: money.FromInt(20_000), MonthlyPayment: money.FromInt(300), PayOff: false},
		model.RefinanceType{RefinanceType: model.RefinanceRateTerm},
		model.CurrentLoan{CurrentBalance: money.FromInt(300_000)},
	)

	p, err := newCalculator().Profile(answers)
	require.NoError(t, err)

	testutil.AssertDecimal(t, "9000", p.ClosingCosts)
	testutil.AssertDecimal(t, "309000", p.LoanAmount)
	testutil.AssertDecimal(t, "300", p.MonthlyDebts)
	assert.True(t, p.MonthlyEscrow.PMI.IsZero(), "38% equity needs no PMI")
}

func TestCalculator_Profile_Cash(t *testing.T) {
	answers := model.NewAnswers(
		model.ServiceSelection{Service: "mortgage"},
		model.MortgageType{Type: "cash"},
		model.PropertyValue{HomeValue: money.FromInt(200_000)},
		model.Assets{Liquid: money.FromInt(150_000)},
	)

	p, err := newCalculator().Profile(answers)
	require.NoError(t, err)

	assert.True(t, p.LoanAmount.IsZero())
	assert.True(t, p.MonthlyPI.IsZero())
	testutil.AssertDecimal(t, "206000", p.CashToClose)
	assert.False(t, p.Assets.Sufficient)
	testutil.AssertDecimal(t, "-56000", p.Assets.Remainder)
	assert.Equal(t, valueobject.DTIStatusIncomplete, p.DTIStatus)
}

func TestCalculator_Profile_NonMortgage(t *testing.T) {
	_, err := newCalculator().Profile(model.NewAnswers(model.ServiceSelection{Service: "insurance"}))
	assert.ErrorIs(t, err, valueobject.ErrNotMortgageTrack)
}

func TestCalculator_Profile_EmptyInputsNeverFail(t *testing.T) {
	p, err := newCalculator().Profile(purchaseAnswers())
	require.NoError(t, err)
	assert.True(t, p.LoanAmount.IsZero())
	assert.True(t, p.DTIRatio.IsZero())
	assert.True(t, p.LTVRatio.IsZero())
}

func TestCalculator_Profile_Deterministic(t *testing.T) {
	calc := newCalculator()
	answers := firstTimePurchase(
		model.IncomeTypeSelection{IncomeTypes: []string{"retired", "not-self-employed"}},
		model.Truv{BaseSalary: money.FromInt(80_000)},
		model.RetirementIncome{SocialSecurityMonthly: money.FromInt(1_500)},
	)

	first, err := calc.Profile(answers)
	require.NoError(t, err)
	second, err := calc.Profile(answers)
	require.NoError(t, err)

	decimalEqual := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(first, second, decimalEqual); diff != "" {
		t.Errorf("profile changed between calls (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
