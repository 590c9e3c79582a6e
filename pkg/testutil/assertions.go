// Package testutil holds shared test helpers. Container helpers are behind
// the integration build tag.
package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertDecimal checks that got equals the decimal literal want.
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) bool {
	t.Helper()
	return assert.True(t, decimal.RequireFromString(want).Equal(got),
		append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// AssertDecimalWithin checks that got is within tolerance of want.
func AssertDecimalWithin(t *testing.T, want string, got decimal.Decimal, tolerance string) bool {
	t.Helper()
	diff := decimal.RequireFromString(want).Sub(got).Abs()
	return assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString(tolerance)),
		"want %s ± %s, got %s", want, tolerance, got.String())
}
