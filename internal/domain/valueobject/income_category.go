package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// IncomeCategory – immutable value object
// ---------------------------------------------------------------------------

// IncomeCategory is one employment/income category selectable on the
// income-type-selection step. Each category owns one verification sub-step
// and one skip flag.
type IncomeCategory struct {
	value    string
	priority int
	step     StepName
	provider Provider
	skipFlag string
}

var (
	IncomeNotSelfEmployed = IncomeCategory{value: "not-self-employed", priority: 0, step: StepTruv, provider: ProviderTruv, skipFlag: "skipTruv"}
	IncomeSelfEmployed    = IncomeCategory{value: "self-employed", priority: 1, step: StepTaxStatus, provider: ProviderTaxStatus, skipFlag: "skipTaxStatus"}
	IncomeRetired         = IncomeCategory{value: "retired", priority: 2, step: StepRetirementIncome, provider: ProviderSSA, skipFlag: "skipSsa"}
	IncomeDisability      = IncomeCategory{value: "disability", priority: 3, step: StepDisabilityType, provider: ProviderVA, skipFlag: "skipVa"}
)

// IncomeCategories lists every category in queue priority order.
var IncomeCategories = []IncomeCategory{
	IncomeNotSelfEmployed, IncomeSelfEmployed, IncomeRetired, IncomeDisability,
}

var validIncomeCategories = map[string]IncomeCategory{
	IncomeNotSelfEmployed.value: IncomeNotSelfEmployed,
	IncomeSelfEmployed.value:    IncomeSelfEmployed,
	IncomeRetired.value:         IncomeRetired,
	IncomeDisability.value:      IncomeDisability,
}

// NewIncomeCategory creates an IncomeCategory from a raw string.
func NewIncomeCategory(s string) (IncomeCategory, error) {
	v, ok := validIncomeCategories[s]
	if !ok {
		return IncomeCategory{}, fmt.Errorf("invalid income category: %q", s)
	}
	return v, nil
}

// IncomeCategoryForStep returns the category whose verification sub-step is step.
func IncomeCategoryForStep(step StepName) (IncomeCategory, bool) {
	for _, c := range IncomeCategories {
		if c.step.Equal(step) {
			return c, true
		}
	}
	return IncomeCategory{}, false
}

// IncomeCategoryForProvider returns the category verified by provider.
func IncomeCategoryForProvider(p Provider) (IncomeCategory, bool) {
	for _, c := range IncomeCategories {
		if c.provider.Equal(p) {
			return c, true
		}
	}
	return IncomeCategory{}, false
}

func (c IncomeCategory) String() string     { return c.value }
func (c IncomeCategory) Priority() int      { return c.priority }
func (c IncomeCategory) Step() StepName     { return c.step }
func (c IncomeCategory) Provider() Provider { return c.provider }
func (c IncomeCategory) SkipFlag() string   { return c.skipFlag }
func (c IncomeCategory) IsZero() bool       { return c.value == "" }

// Equal returns true when both categories carry the same value.
func (c IncomeCategory) Equal(other IncomeCategory) bool { return c.value == other.value }
