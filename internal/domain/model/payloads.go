package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
)

// StepPayload is the typed answer for one wizard step. Every step name maps
// to exactly one payload type, so each answer field has a single owning step.
type StepPayload interface {
	Step() valueobject.StepName
}

// ---------------------------------------------------------------------------
// Shared steps
// ---------------------------------------------------------------------------

type ServiceSelection struct {
	Service string `json:"service"`
}

type PropertyLocation struct {
	Address string  `json:"address"`
	PlaceID string  `json:"placeId,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	City    string  `json:"city,omitempty"`
	State   string  `json:"state,omitempty"`
	Zip     string  `json:"zip,omitempty"`
	County  string  `json:"county,omitempty"`
}

type PropertyValue struct {
	HomeValue          money.Amount `json:"homeValue"`
	Zestimate          money.Amount `json:"zestimate,omitempty"`
	AveragePrice       money.Amount `json:"averagePrice,omitempty"`
	EstimatedAnnualTax money.Amount `json:"estimatedAnnualTax,omitempty"`
	Homestead          bool         `json:"homestead,omitempty"`
}

type PropertyDetails struct {
	PropertyType string `json:"propertyType"`
	Bedrooms     int    `json:"bedrooms,omitempty"`
	Bathrooms    int    `json:"bathrooms,omitempty"`
	SquareFeet   int    `json:"squareFeet,omitempty"`
	YearBuilt    int    `json:"yearBuilt,omitempty"`
}

type Timeline struct {
	Timeline string `json:"timeline"`
}

type ContactInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Consent   bool   `json:"consent"`
}

// ---------------------------------------------------------------------------
// Mortgage steps
// ---------------------------------------------------------------------------

type MortgageType struct {
	Type string `json:"type"` // purchase | refinance | cash
}

type BuyType struct {
	BuyType              string `json:"buyType"` // primary | secondary | investment
	HomeOwnershipHistory string `json:"homeOwnershipHistory"`
}

type RentalIncome struct {
	ExpectedMonthlyRent money.Amount `json:"expectedMonthlyRent"`
}

type LoanTypeAnswer struct {
	LoanType string `json:"loanType"`
}

type CreditScoreAnswer struct {
	CreditScore string `json:"creditScore"`
}

const (
	AssistanceDownPayment  = "down-payment-assistance"
	AssistanceClosingCosts = "closing-cost-assistance"
)

type DownPayment struct {
	DownPayment                 money.Amount `json:"downPayment"`
	DownPaymentPercent          money.Amount `json:"downPaymentPercent,omitempty"`
	Assistance                  []string     `json:"assistance,omitempty"`
	ClosingCostAssistanceAmount money.Amount `json:"closingCostAssistanceAmount,omitempty"`
}

// Has reports whether the named assistance program was selected.
func (d DownPayment) Has(program string) bool {
	for _, a := range d.Assistance {
		if a == program {
			return true
		}
	}
	return false
}

type IncomeTypeSelection struct {
	IncomeTypes []string `json:"incomeTypes"`
}

// Verification is embedded by every provider-backed step.
type Verification struct {
	Verified              bool         `json:"verified,omitempty"`
	VerifiedMonthlyIncome money.Amount `json:"verifiedMonthlyIncome,omitempty"`
}

type Truv struct {
	Verification
	SkipTruv         bool         `json:"skipTruv,omitempty"`
	PayType          string       `json:"payType,omitempty"` // salary | hourly
	BaseSalary       money.Amount `json:"baseSalary,omitempty"`
	HasCommission    bool         `json:"hasCommission,omitempty"`
	Commission       money.Amount `json:"commission,omitempty"`
	HasBonus         bool         `json:"hasBonus,omitempty"`
	Bonus            money.Amount `json:"bonus,omitempty"`
	HasRSU           bool         `json:"hasRsu,omitempty"`
	RSUVestedBalance money.Amount `json:"rsuVestedBalance,omitempty"`
	HourlyRate       money.Amount `json:"hourlyRate,omitempty"`
	HoursPerWeek     money.Amount `json:"hoursPerWeek,omitempty"`
}

const (
	Entity1099      = "1099"
	EntityScheduleC = "schedule-c"
	EntitySCorp     = "s-corp"
	EntityCCorp     = "c-corp"
)

type TaxStatus struct {
	Verification
	SkipTaxStatus    bool         `json:"skipTaxStatus,omitempty"`
	EntityType       string       `json:"entityType,omitempty"`
	OwnershipPercent money.Amount `json:"ownershipPercent,omitempty"`
	NetIncome        money.Amount `json:"netIncome,omitempty"`
	W2Income         money.Amount `json:"w2Income,omitempty"`
	K1Income         money.Amount `json:"k1Income,omitempty"`
	CorpProfit       money.Amount `json:"corpProfit,omitempty"`
}

const (
	RetirementSocialSecurity = "social-security"
	RetirementPension        = "pension"
	RetirementRMD            = "rmd"
	RetirementDisability     = "disability"
)

type RetirementIncome struct {
	Verification
	SkipSSA               bool         `json:"skipSsa,omitempty"`
	Sources               []string     `json:"sources,omitempty"`
	SocialSecurityMonthly money.Amount `json:"socialSecurityMonthly,omitempty"`
	PensionMonthly        money.Amount `json:"pensionMonthly,omitempty"`
	RMDMonthly            money.Amount `json:"rmdMonthly,omitempty"`
	DisabilityMonthly     money.Amount `json:"disabilityMonthly,omitempty"`
}

// HasSource reports whether the named retirement source was selected.
func (r RetirementIncome) HasSource(src string) bool {
	for _, s := range r.Sources {
		if s == src {
			return true
		}
	}
	return false
}

type DisabilityType struct {
	Verification
	SkipVA         bool         `json:"skipVa,omitempty"`
	DisabilityType string       `json:"disabilityType,omitempty"` // ssdi | va | private
	MonthlyBenefit money.Amount `json:"monthlyBenefit,omitempty"`
}

type Liabilities struct {
	Method            string       `json:"method"` // plaid | manual | skip
	Verified          bool         `json:"verified,omitempty"`
	TotalMonthlyDebts money.Amount `json:"totalMonthlyDebts,omitempty"`
}

type Assets struct {
	Verified   bool         `json:"verified,omitempty"`
	Liquid     money.Amount `json:"liquid,omitempty"`
	Investment money.Amount `json:"investment,omitempty"`
	Retirement money.Amount `json:"retirement,omitempty"`
}

type LoanAnalysis struct {
	InterestRate      money.Amount `json:"interestRate,omitempty"` // annual percent, e.g. 6.75
	TermYears         int          `json:"termYears,omitempty"`
	AnnualPropertyTax money.Amount `json:"annualPropertyTax,omitempty"`
	AnnualInsurance   money.Amount `json:"annualInsurance,omitempty"`
	MonthlyHOA        money.Amount `json:"monthlyHoa,omitempty"`
	FloodRequired     bool         `json:"floodRequired,omitempty"`
	MonthlyFlood      money.Amount `json:"monthlyFlood,omitempty"`
}

type LienType struct {
	LienType string `json:"lienType"` // first | second
}

type SecondLienDetails struct {
	Balance        money.Amount `json:"balance"`
	MonthlyPayment money.Amount `json:"monthlyPayment,omitempty"`
	PayOff         bool         `json:"payOff,omitempty"`
}

const (
	RefinanceRateTerm   = "rate-term"
	RefinanceCashOut    = "cash-out"
	RefinanceStreamline = "streamline"
)

type RefinanceType struct {
	RefinanceType string `json:"refinanceType"`
}

type CashOutDetails struct {
	DebtsPaidOff money.Amount `json:"debtsPaidOff,omitempty"`
	CashOut      money.Amount `json:"cashOut"`
}

type CurrentLoan struct {
	CurrentBalance money.Amount `json:"currentBalance"`
	CurrentRate    money.Amount `json:"currentRate,omitempty"`
	CurrentPayment money.Amount `json:"currentPayment,omitempty"`
	ClosingCosts   money.Amount `json:"closingCosts,omitempty"`
}

// ---------------------------------------------------------------------------
// Other tracks
// ---------------------------------------------------------------------------

type RealEstateIntent struct {
	Intent string `json:"intent"` // buy | sell | both
}

type InsuranceType struct {
	CoverageTypes []string `json:"coverageTypes"`
}

type ProjectType struct {
	ProjectType string `json:"projectType"`
}

type ProjectBudget struct {
	Budget money.Amount `json:"budget"`
}

type ManagementDetails struct {
	PropertyType     string `json:"propertyType"`
	PropertyCount    int    `json:"propertyCount"`
	CurrentlyManaged bool   `json:"currentlyManaged,omitempty"`
}

type ServiceCategory struct {
	Category string `json:"category"`
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func (ServiceSelection) Step() valueobject.StepName    { return valueobject.StepServiceSelection }
func (PropertyLocation) Step() valueobject.StepName    { return valueobject.StepPropertyLocation }
func (PropertyValue) Step() valueobject.StepName       { return valueobject.StepPropertyValue }
func (PropertyDetails) Step() valueobject.StepName     { return valueobject.StepPropertyDetails }
func (Timeline) Step() valueobject.StepName            { return valueobject.StepTimeline }
func (ContactInfo) Step() valueobject.StepName         { return valueobject.StepContactInfo }
func (MortgageType) Step() valueobject.StepName        { return valueobject.StepMortgageType }
func (BuyType) Step() valueobject.StepName             { return valueobject.StepBuyType }
func (RentalIncome) Step() valueobject.StepName        { return valueobject.StepRentalIncome }
func (LoanTypeAnswer) Step() valueobject.StepName      { return valueobject.StepLoanType }
func (CreditScoreAnswer) Step() valueobject.StepName   { return valueobject.StepCreditScore }
func (DownPayment) Step() valueobject.StepName         { return valueobject.StepDownPayment }
func (IncomeTypeSelection) Step() valueobject.StepName { return valueobject.StepIncomeTypeSelection }
func (Truv) Step() valueobject.StepName                { return valueobject.StepTruv }
func (TaxStatus) Step() valueobject.StepName           { return valueobject.StepTaxStatus }
func (RetirementIncome) Step() valueobject.StepName    { return valueobject.StepRetirementIncome }
func (DisabilityType) Step() valueobject.StepName      { return valueobject.StepDisabilityType }
func (Liabilities) Step() valueobject.StepName         { return valueobject.StepLiabilities }
func (Assets) Step() valueobject.StepName              { return valueobject.StepAssets }
func (LoanAnalysis) Step() valueobject.StepName        { return valueobject.StepLoanAnalysis }
func (LienType) Step() valueobject.StepName            { return valueobject.StepLienType }
func (SecondLienDetails) Step() valueobject.StepName   { return valueobject.StepSecondLienDetails }
func (RefinanceType) Step() valueobject.StepName       { return valueobject.StepRefinanceType }
func (CashOutDetails) Step() valueobject.StepName      { return valueobject.StepCashOutDetails }
func (CurrentLoan) Step() valueobject.StepName         { return valueobject.StepCurrentLoan }
func (RealEstateIntent) Step() valueobject.StepName    { return valueobject.StepRealEstateIntent }
func (InsuranceType) Step() valueobject.StepName       { return valueobject.StepInsuranceType }
func (ProjectType) Step() valueobject.StepName         { return valueobject.StepProjectType }
func (ProjectBudget) Step() valueobject.StepName       { return valueobject.StepProjectBudget }
func (ManagementDetails) Step() valueobject.StepName   { return valueobject.StepManagementDetails }
func (ServiceCategory) Step() valueobject.StepName     { return valueobject.StepServiceCategory }

var payloadFactories = map[valueobject.StepName]func() StepPayload{
	valueobject.StepServiceSelection:    func() StepPayload { return &ServiceSelection{} },
	valueobject.StepPropertyLocation:    func() StepPayload { return &PropertyLocation{} },
	valueobject.StepPropertyValue:       func() StepPayload { return &PropertyValue{} },
	valueobject.StepPropertyDetails:     func() StepPayload { return &PropertyDetails{} },
	valueobject.StepTimeline:            func() StepPayload { return &Timeline{} },
	valueobject.StepContactInfo:         func() StepPayload { return &ContactInfo{} },
	valueobject.StepMortgageType:        func() StepPayload { return &MortgageType{} },
	valueobject.StepBuyType:             func() StepPayload { return &BuyType{} },
	valueobject.StepRentalIncome:        func() StepPayload { return &RentalIncome{} },
	valueobject.StepLoanType:            func() StepPayload { return &LoanTypeAnswer{} },
	valueobject.StepCreditScore:         func() StepPayload { return &CreditScoreAnswer{} },
	valueobject.StepDownPayment:         func() StepPayload { return &DownPayment{} },
	valueobject.StepIncomeTypeSelection: func() StepPayload { return &IncomeTypeSelection{} },
	valueobject.StepTruv:                func() StepPayload { return &Truv{} },
	valueobject.StepTaxStatus:           func() StepPayload { return &TaxStatus{} },
	valueobject.StepRetirementIncome:    func() StepPayload { return &RetirementIncome{} },
	valueobject.StepDisabilityType:      func() StepPayload { return &DisabilityType{} },
	valueobject.StepLiabilities:         func() StepPayload { return &Liabilities{} },
	valueobject.StepAssets:              func() StepPayload { return &Assets{} },
	valueobject.StepLoanAnalysis:        func() StepPayload { return &LoanAnalysis{} },
	valueobject.StepLienType:            func() StepPayload { return &LienType{} },
	valueobject.StepSecondLienDetails:   func() StepPayload { return &SecondLienDetails{} },
	valueobject.StepRefinanceType:       func() StepPayload { return &RefinanceType{} },
	valueobject.StepCashOutDetails:      func() StepPayload { return &CashOutDetails{} },
	valueobject.StepCurrentLoan:         func() StepPayload { return &CurrentLoan{} },
	valueobject.StepRealEstateIntent:    func() StepPayload { return &RealEstateIntent{} },
	valueobject.StepInsuranceType:       func() StepPayload { return &InsuranceType{} },
	valueobject.StepProjectType:         func() StepPayload { return &ProjectType{} },
	valueobject.StepProjectBudget:       func() StepPayload { return &ProjectBudget{} },
	valueobject.StepManagementDetails:   func() StepPayload { return &ManagementDetails{} },
	valueobject.StepServiceCategory:     func() StepPayload { return &ServiceCategory{} },
}

// HasPayload reports whether step accepts answers.
func HasPayload(step valueobject.StepName) bool {
	_, ok := payloadFactories[step]
	return ok
}

// DecodePayload decodes raw JSON into the payload type registered for step.
// An empty body decodes to the zero payload. Unknown JSON fields are ignored.
func DecodePayload(step valueobject.StepName, raw json.RawMessage) (StepPayload, error) {
	factory, ok := payloadFactories[step]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no payload", valueobject.ErrTerminalStep, step)
	}
	p := factory()
	body := bytes.TrimSpace(raw)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return deref(p), nil
	}
	if err := json.Unmarshal(body, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", step, err)
	}
	return deref(p), nil
}

// EncodePayload renders a payload as the canonical JSON stored for its step.
func EncodePayload(p StepPayload) (json.RawMessage, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Step(), err)
	}
	return b, nil
}

// deref turns the *T produced by a factory back into a T so payloads are
// stored by value and cannot be mutated through a shared pointer.
func deref(p StepPayload) StepPayload {
	switch v := p.(type) {
	case *ServiceSelection:
		return *v
	case *PropertyLocation:
		return *v
	case *PropertyValue:
		return *v
	case *PropertyDetails:
		return *v
	case *Timeline:
		return *v
	case *ContactInfo:
		return *v
	case *MortgageType:
		return *v
	case *BuyType:
		return *v
	case *RentalIncome:
		return *v
	case *LoanTypeAnswer:
		return *v
	case *CreditScoreAnswer:
		return *v
	case *DownPayment:
		return *v
	case *IncomeTypeSelection:
		return *v
	case *Truv:
		return *v
	case *TaxStatus:
		return *v
	case *RetirementIncome:
		return *v
	case *DisabilityType:
		return *v
	case *Liabilities:
		return *v
	case *Assets:
		return *v
	case *LoanAnalysis:
		return *v
	case *LienType:
		return *v
	case *SecondLienDetails:
		return *v
	case *RefinanceType:
		return *v
	case *CashOutDetails:
		return *v
	case *CurrentLoan:
		return *v
	case *RealEstateIntent:
		return *v
	case *InsuranceType:
		return *v
	case *ProjectType:
		return *v
	case *ProjectBudget:
		return *v
	case *ManagementDetails:
		return *v
	case *ServiceCategory:
		return *v
	default:
		return p
	}
}
