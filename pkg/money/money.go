// Package money provides the loosely parsed dollar amounts used by wizard
// payloads and the rounding helpers shared by the calculation engine.
package money

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Amount is an immutable dollar amount. The zero value is $0.
//
// Amount accepts JSON numbers and JSON strings such as "$1,250.50". Anything
// that cannot be parsed decodes to zero rather than failing, so a partially
// typed form field never blocks a draft save.
type Amount struct {
	value decimal.Decimal
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d}
}

// FromInt creates an Amount from whole dollars.
func FromInt(v int64) Amount {
	return Amount{value: decimal.NewFromInt(v)}
}

// FromFloat creates an Amount from a float. Intended for tests and fixtures.
func FromFloat(v float64) Amount {
	return Amount{value: decimal.NewFromFloat(v)}
}

// Parse strips currency formatting and parses s. Unparseable input yields zero.
func Parse(s string) Amount {
	return Amount{value: ParseLoose(s)}
}

// ParseLoose strips "$", "," and whitespace from s and parses the remainder as
// a decimal. It returns zero for empty or malformed input.
func ParseLoose(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	cleaned = strings.TrimSuffix(cleaned, "%")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Decimal returns the underlying value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.value.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.value.IsPositive() }

// Float returns the amount as a float64.
func (a Amount) Float() float64 { return a.value.InexactFloat64() }

// Equal reports whether both amounts carry the same value.
func (a Amount) Equal(other Amount) bool { return a.value.Equal(other.value) }

// String renders the amount with two decimal places.
func (a Amount) String() string { return a.value.StringFixed(2) }

// MarshalJSON encodes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.value.String()), nil
}

// UnmarshalJSON accepts numbers, formatted strings and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.value = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			a.value = decimal.Zero
			return nil
		}
		a.value = ParseLoose(s)
		return nil
	}
	a.value = ParseLoose(string(data))
	return nil
}

// ---------------------------------------------------------------------------
// Rounding helpers
// ---------------------------------------------------------------------------

// Cents rounds d half away from zero to two decimal places.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Pct converts a percentage such as 3.5 into the fraction 0.035.
func Pct(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p).Div(hundred)
}

// Ratio returns num/den expressed as a percent rounded to two places.
// A non-positive denominator yields zero.
func Ratio(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.Div(den).Mul(hundred).Round(2)
}

// Monthly divides an annual amount by twelve without rounding.
func Monthly(annual decimal.Decimal) decimal.Decimal {
	return annual.Div(twelve)
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Clamp limits d to the closed range [lo, hi]. When hi < lo, lo wins.
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(hi) {
		d = hi
	}
	if d.LessThan(lo) {
		d = lo
	}
	return d
}
