package service

import (
	"fmt"
	"sort"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Sequencer – domain service for wizard step navigation
// ---------------------------------------------------------------------------

// Sequencer decides which step follows which. It holds no state: every
// answer that influences branching is read from the Answers passed in.
type Sequencer struct{}

// NewSequencer returns a new sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// BuildIncomeQueue maps the selected income categories onto their
// verification sub-steps in fixed priority order. Duplicates and unknown
// values are ignored.
func BuildIncomeQueue(selected []string) []valueobject.StepName {
	seen := make(map[string]bool, len(selected))
	cats := make([]valueobject.IncomeCategory, 0, len(selected))
	for _, raw := range selected {
		c, err := valueobject.NewIncomeCategory(raw)
		if err != nil || seen[c.String()] {
			continue
		}
		seen[c.String()] = true
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Priority() < cats[j].Priority() })

	queue := make([]valueobject.StepName, 0, len(cats))
	for _, c := range cats {
		queue = append(queue, c.Step())
	}
	return queue
}

// Path returns the linear step sequence the answers currently describe,
// starting at service-selection. The path ends early while a branching
// answer is still missing, and ends at complete once the track is known.
func (s *Sequencer) Path(answers model.Answers) []valueobject.StepName {
	path := []valueobject.StepName{valueobject.StepServiceSelection}

	if answers.IsMortgage() {
		path = append(path, valueobject.StepMortgageType)
	}

	switch answers.ServiceType() {
	case valueobject.ServiceTypeMortgagePurchase:
		return append(path, s.purchaseSteps(answers)...)
	case valueobject.ServiceTypeMortgageRefinance:
		return append(path, s.refinanceSteps(answers)...)
	case valueobject.ServiceTypeMortgageCash:
		return append(path,
			valueobject.StepPropertyLocation,
			valueobject.StepPropertyValue,
			valueobject.StepAssets,
			valueobject.StepContactInfo,
			valueobject.StepComplete,
		)
	case valueobject.ServiceTypeRealEstate:
		path = append(path, valueobject.StepRealEstateIntent, valueobject.StepPropertyLocation)
		switch model.Get[model.RealEstateIntent](answers).Intent {
		case "sell", "both":
			path = append(path, valueobject.StepPropertyDetails)
		}
		return append(path, valueobject.StepTimeline, valueobject.StepContactInfo, valueobject.StepComplete)
	case valueobject.ServiceTypeInsurance:
		return append(path,
			valueobject.StepInsuranceType,
			valueobject.StepPropertyLocation,
			valueobject.StepPropertyDetails,
			valueobject.StepContactInfo,
			valueobject.StepComplete,
		)
	case valueobject.ServiceTypeConstruction:
		return append(path,
			valueobject.StepProjectType,
			valueobject.StepPropertyLocation,
			valueobject.StepProjectBudget,
			valueobject.StepTimeline,
			valueobject.StepContactInfo,
			valueobject.StepComplete,
		)
	case valueobject.ServiceTypePropertyManagement:
		return append(path,
			valueobject.StepManagementDetails,
			valueobject.StepPropertyLocation,
			valueobject.StepContactInfo,
			valueobject.StepComplete,
		)
	case valueobject.ServiceTypeHomeServices:
		return append(path,
			valueobject.StepServiceCategory,
			valueobject.StepPropertyLocation,
			valueobject.StepTimeline,
			valueobject.StepContactInfo,
			valueobject.StepComplete,
		)
	}
	return path
}

func (s *Sequencer) purchaseSteps(answers model.Answers) []valueobject.StepName {
	steps := []valueobject.StepName{valueobject.StepPropertyLocation, valueobject.StepBuyType}
	if model.Get[model.BuyType](answers).BuyType == "investment" {
		steps = append(steps, valueobject.StepRentalIncome)
	}
	steps = append(steps,
		valueobject.StepPropertyValue,
		valueobject.StepLoanType,
		valueobject.StepCreditScore,
		valueobject.StepDownPayment,
		valueobject.StepIncomeTypeSelection,
	)
	steps = append(steps, BuildIncomeQueue(answers.IncomeSelection())...)
	return append(steps,
		valueobject.StepLiabilities,
		valueobject.StepAssets,
		valueobject.StepLoanAnalysis,
		valueobject.StepContactInfo,
		valueobject.StepComplete,
	)
}

func (s *Sequencer) refinanceSteps(answers model.Answers) []valueobject.StepName {
	steps := []valueobject.StepName{
		valueobject.StepPropertyLocation,
		valueobject.StepPropertyValue,
		valueobject.StepLienType,
	}
	if model.Get[model.LienType](answers).LienType == "second" {
		steps = append(steps, valueobject.StepSecondLienDetails)
	}
	// The cash-out ceiling depends on the current balance, so current-loan
	// is asked first.
	steps = append(steps, valueobject.StepRefinanceType, valueobject.StepCurrentLoan)
	if model.Get[model.RefinanceType](answers).RefinanceType == model.RefinanceCashOut {
		steps = append(steps, valueobject.StepCashOutDetails)
	}
	steps = append(steps,
		valueobject.StepLoanType,
		valueobject.StepCreditScore,
		valueobject.StepIncomeTypeSelection,
	)
	steps = append(steps, BuildIncomeQueue(answers.IncomeSelection())...)
	return append(steps,
		valueobject.StepLiabilities,
		valueobject.StepLoanAnalysis,
		valueobject.StepContactInfo,
		valueobject.StepComplete,
	)
}

// InTrack reports whether step lies on the path the answers describe.
func (s *Sequencer) InTrack(step valueobject.StepName, answers model.Answers) bool {
	return indexOf(s.Path(answers), step) >= 0
}

// NextStep returns the step after current. Completing and skipping a queued
// income step both advance to the next queued step.
func (s *Sequencer) NextStep(current valueobject.StepName, answers model.Answers) (valueobject.StepName, error) {
	if current.Equal(valueobject.StepComplete) {
		return valueobject.StepName{}, valueobject.ErrTerminalStep
	}
	path := s.Path(answers)
	i := indexOf(path, current)
	if i < 0 {
		return valueobject.StepName{}, fmt.Errorf("%w: %s", valueobject.ErrStepNotInTrack, current)
	}
	if i == len(path)-1 {
		return valueobject.StepName{}, fmt.Errorf("%w: nothing follows %s until the track is chosen",
			valueobject.ErrStepNotInTrack, current)
	}
	return path[i+1], nil
}

// PreviousStep returns the step the back button leads to, or false on the
// first step.
//
// A queued income step goes back to the previous queued step, or to
// income-type-selection from the head of the queue. Any other step pops the
// visit history, falling back to the static predecessor on the path.
func (s *Sequencer) PreviousStep(
	current valueobject.StepName,
	answers model.Answers,
	history []valueobject.StepName,
) (valueobject.StepName, bool) {
	path := s.Path(answers)
	i := indexOf(path, current)

	if _, queued := valueobject.IncomeCategoryForStep(current); queued && i > 0 {
		return path[i-1], true
	}

	for j := len(history) - 1; j >= 0; j-- {
		h := history[j]
		if h.Equal(current) {
			continue
		}
		if k := indexOf(path, h); k >= 0 && (i < 0 || k < i) {
			return h, true
		}
	}

	if i > 0 {
		return path[i-1], true
	}
	return valueobject.StepName{}, false
}

// IncomeQueuePosition returns the index of step in the income queue, or -1.
func (s *Sequencer) IncomeQueuePosition(step valueobject.StepName, answers model.Answers) int {
	return indexOf(BuildIncomeQueue(answers.IncomeSelection()), step)
}

// Resume derives the cursor and visit history for a reloaded session: the
// cursor is the first step on the path without a completed record, and the
// history is every completed step before it, in path order.
func (s *Sequencer) Resume(answers model.Answers, completed func(valueobject.StepName) bool) (valueobject.StepName, []valueobject.StepName) {
	path := s.Path(answers)
	var history []valueobject.StepName
	for _, step := range path {
		if step.Equal(valueobject.StepComplete) || !completed(step) {
			return step, history
		}
		history = append(history, step)
	}
	// The path stops short while a branching answer is missing.
	if n := len(history); n > 0 {
		history = history[:n-1]
	}
	return path[len(path)-1], history
}

func indexOf(path []valueobject.StepName, step valueobject.StepName) int {
	for i, p := range path {
		if p.Equal(step) {
			return i
		}
	}
	return -1
}
