package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// StepName – immutable value object
// ---------------------------------------------------------------------------

// StepName identifies a node in the wizard step graph.
type StepName struct {
	value string
}

var (
	// Shared
	StepServiceSelection = StepName{value: "service-selection"}
	StepPropertyLocation = StepName{value: "property-location"}
	StepPropertyValue    = StepName{value: "property-value"}
	StepPropertyDetails  = StepName{value: "property-details"}
	StepTimeline         = StepName{value: "timeline"}
	StepContactInfo      = StepName{value: "contact-info"}
	StepComplete         = StepName{value: "complete"}

	// Mortgage
	StepMortgageType        = StepName{value: "mortgage-type"}
	StepBuyType             = StepName{value: "buy-type"}
	StepRentalIncome        = StepName{value: "rental-income"}
	StepLoanType            = StepName{value: "loan-type"}
	StepCreditScore         = StepName{value: "credit-score"}
	StepDownPayment         = StepName{value: "down-payment"}
	StepIncomeTypeSelection = StepName{value: "income-type-selection"}
	StepTruv                = StepName{value: "truv"}
	StepTaxStatus           = StepName{value: "taxstatus"}
	StepRetirementIncome    = StepName{value: "retirement-income"}
	StepDisabilityType      = StepName{value: "disability-type"}
	StepLiabilities         = StepName{value: "liabilities"}
	StepAssets              = StepName{value: "assets"}
	StepLoanAnalysis        = StepName{value: "loan-analysis"}
	StepLienType            = StepName{value: "lien-type"}
	StepSecondLienDetails   = StepName{value: "second-lien-details"}
	StepRefinanceType       = StepName{value: "refinance-type"}
	StepCashOutDetails      = StepName{value: "cash-out-details"}
	StepCurrentLoan         = StepName{value: "current-loan"}

	// Other tracks
	StepRealEstateIntent  = StepName{value: "real-estate-intent"}
	StepInsuranceType     = StepName{value: "insurance-type"}
	StepProjectType       = StepName{value: "project-type"}
	StepProjectBudget     = StepName{value: "project-budget"}
	StepManagementDetails = StepName{value: "management-details"}
	StepServiceCategory   = StepName{value: "service-category"}
)

var validStepNames = map[string]StepName{}

func init() {
	for _, s := range []StepName{
		StepServiceSelection, StepPropertyLocation, StepPropertyValue, StepPropertyDetails,
		StepTimeline, StepContactInfo, StepComplete,
		StepMortgageType, StepBuyType, StepRentalIncome, StepLoanType, StepCreditScore,
		StepDownPayment, StepIncomeTypeSelection, StepTruv, StepTaxStatus, StepRetirementIncome,
		StepDisabilityType, StepLiabilities, StepAssets, StepLoanAnalysis, StepLienType,
		StepSecondLienDetails, StepRefinanceType, StepCashOutDetails, StepCurrentLoan,
		StepRealEstateIntent, StepInsuranceType, StepProjectType, StepProjectBudget,
		StepManagementDetails, StepServiceCategory,
	} {
		validStepNames[s.value] = s
	}
}

// NewStepName creates a StepName from a raw string.
func NewStepName(s string) (StepName, error) {
	v, ok := validStepNames[s]
	if !ok {
		return StepName{}, fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return v, nil
}

// MustStepName panics on an unknown name. Intended for tests and fixtures.
func MustStepName(s string) StepName {
	v, err := NewStepName(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the string representation of the step name.
func (s StepName) String() string { return s.value }

// IsZero returns true if the step name has not been initialised.
func (s StepName) IsZero() bool { return s.value == "" }

// Equal returns true when both step names carry the same value.
func (s StepName) Equal(other StepName) bool { return s.value == other.value }

// MarshalText lets StepName be used as a JSON map key and value.
func (s StepName) MarshalText() ([]byte, error) { return []byte(s.value), nil }

// UnmarshalText parses a step name, rejecting unknown values.
func (s *StepName) UnmarshalText(b []byte) error {
	v, err := NewStepName(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
