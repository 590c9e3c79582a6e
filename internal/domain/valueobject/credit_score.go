package valueobject

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// CreditScore – immutable value object
// ---------------------------------------------------------------------------

// CreditScore holds the lower bound of the borrower's self-reported credit
// range. The wizard collects either a bucket label such as "740-759" or a
// raw number.
type CreditScore struct {
	score int
	known bool
}

var creditBuckets = map[string]int{
	"780+":      780,
	"760-779":   760,
	"740-759":   740,
	"720-739":   720,
	"700-719":   700,
	"680-699":   680,
	"660-679":   660,
	"640-659":   640,
	"620-639":   620,
	"below-620": 300,
}

// ParseCreditScore accepts a bucket label or a number in [300, 850].
// Anything else yields an unknown score.
func ParseCreditScore(s string) CreditScore {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := creditBuckets[s]; ok {
		return CreditScore{score: v, known: true}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 300 || n > 850 {
		return CreditScore{}
	}
	return CreditScore{score: n, known: true}
}

// Score returns the lower bound of the range, or 0 when unknown.
func (c CreditScore) Score() int { return c.score }

// Known reports whether a usable score was supplied.
func (c CreditScore) Known() bool { return c.known }

// AtLeast reports whether the score is known and not below min.
func (c CreditScore) AtLeast(min int) bool { return c.known && c.score >= min }
