package valueobject

import "strings"

// ---------------------------------------------------------------------------
// LoanType – immutable value object
// ---------------------------------------------------------------------------

// LoanType is the mortgage product the borrower selected.
type LoanType struct {
	value string
}

const (
	loanTypeConventional = "conventional"
	loanTypeFHA          = "fha"
	loanTypeVA           = "va"
	loanTypeUSDA         = "usda"
	loanTypeJumbo        = "jumbo"
	loanTypeOther        = "other"
)

var (
	LoanTypeConventional = LoanType{value: loanTypeConventional}
	LoanTypeFHA          = LoanType{value: loanTypeFHA}
	LoanTypeVA           = LoanType{value: loanTypeVA}
	LoanTypeUSDA         = LoanType{value: loanTypeUSDA}
	LoanTypeJumbo        = LoanType{value: loanTypeJumbo}
	LoanTypeOther        = LoanType{value: loanTypeOther}
)

var validLoanTypes = map[string]LoanType{
	loanTypeConventional: LoanTypeConventional,
	loanTypeFHA:          LoanTypeFHA,
	loanTypeVA:           LoanTypeVA,
	loanTypeUSDA:         LoanTypeUSDA,
	loanTypeJumbo:        LoanTypeJumbo,
	loanTypeOther:        LoanTypeOther,
}

// ParseLoanType maps a form value onto a LoanType. Matching is
// case-insensitive; an empty value means conventional and anything
// unrecognised means other.
func ParseLoanType(s string) LoanType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LoanTypeConventional
	}
	if v, ok := validLoanTypes[s]; ok {
		return v
	}
	return LoanTypeOther
}

// String returns the string representation of the loan type.
func (l LoanType) String() string { return l.value }

// IsZero returns true if the loan type has not been initialised.
func (l LoanType) IsZero() bool { return l.value == "" }

// Equal returns true when both loan types carry the same value.
func (l LoanType) Equal(other LoanType) bool { return l.value == other.value }
