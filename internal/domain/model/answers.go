package model

import (
	"github.com/ctateo21/homelead/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Answers – accumulated step payloads
// ---------------------------------------------------------------------------

// Answers is the union of every payload a session has recorded, keyed by the
// step that owns it. It is immutable; With returns a copy.
type Answers struct {
	payloads map[valueobject.StepName]StepPayload
}

// NewAnswers builds Answers from a set of payloads. Later payloads for the
// same step replace earlier ones.
func NewAnswers(payloads ...StepPayload) Answers {
	a := Answers{payloads: make(map[valueobject.StepName]StepPayload, len(payloads))}
	for _, p := range payloads {
		if p != nil {
			a.payloads[p.Step()] = p
		}
	}
	return a
}

// With returns a copy of a with p recorded under its owning step.
func (a Answers) With(p StepPayload) Answers {
	next := Answers{payloads: make(map[valueobject.StepName]StepPayload, len(a.payloads)+1)}
	for k, v := range a.payloads {
		next.payloads[k] = v
	}
	next.payloads[p.Step()] = p
	return next
}

// Payload returns the raw payload recorded for step.
func (a Answers) Payload(step valueobject.StepName) (StepPayload, bool) {
	p, ok := a.payloads[step]
	return p, ok
}

// Has reports whether step has a recorded payload.
func (a Answers) Has(step valueobject.StepName) bool {
	_, ok := a.payloads[step]
	return ok
}

// Len returns the number of steps with recorded payloads.
func (a Answers) Len() int { return len(a.payloads) }

// Lookup returns the payload of type T if its owning step has been answered.
func Lookup[T StepPayload](a Answers) (T, bool) {
	var zero T
	p, ok := a.payloads[zero.Step()]
	if !ok {
		return zero, false
	}
	v, ok := p.(T)
	return v, ok
}

// Get returns the payload of type T or its zero value.
func Get[T StepPayload](a Answers) T {
	v, _ := Lookup[T](a)
	return v
}

// ---------------------------------------------------------------------------
// Track resolution
// ---------------------------------------------------------------------------

// ServiceType derives the session track from the service-selection answer
// and, for mortgages, the mortgage-type answer. It returns
// ServiceTypePending until both are known.
func (a Answers) ServiceType() valueobject.ServiceType {
	sel, ok := Lookup[ServiceSelection](a)
	if !ok {
		return valueobject.ServiceTypePending
	}
	switch sel.Service {
	case "mortgage":
		mt, ok := Lookup[MortgageType](a)
		if !ok {
			return valueobject.ServiceTypePending
		}
		switch mt.Type {
		case "purchase":
			return valueobject.ServiceTypeMortgagePurchase
		case "refinance":
			return valueobject.ServiceTypeMortgageRefinance
		case "cash":
			return valueobject.ServiceTypeMortgageCash
		}
		return valueobject.ServiceTypePending
	default:
		st, err := valueobject.NewServiceType(sel.Service)
		if err != nil || st.IsMortgage() {
			return valueobject.ServiceTypePending
		}
		return st
	}
}

// IsMortgage reports whether the borrower picked the mortgage service, even
// before the mortgage sub-track is known.
func (a Answers) IsMortgage() bool {
	return Get[ServiceSelection](a).Service == "mortgage"
}

// LoanType returns the selected loan product, defaulting to conventional.
func (a Answers) LoanType() valueobject.LoanType {
	return valueobject.ParseLoanType(Get[LoanTypeAnswer](a).LoanType)
}

// CreditScore returns the parsed credit score answer.
func (a Answers) CreditScore() valueobject.CreditScore {
	return valueobject.ParseCreditScore(Get[CreditScoreAnswer](a).CreditScore)
}

// FirstTimeBuyer reports whether the buyer has never owned a home.
func (a Answers) FirstTimeBuyer() bool {
	return Get[BuyType](a).HomeOwnershipHistory == "no"
}

// IncomeSelection returns the raw income-type-selection values.
func (a Answers) IncomeSelection() []string {
	return Get[IncomeTypeSelection](a).IncomeTypes
}
