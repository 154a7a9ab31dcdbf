// Package num wraps decimal parsing for all money, price and probability
// values. Core code never constructs a decimal from a float literal; every
// inbound numeric string goes through Parse so malformed input fails loudly
// instead of being coerced.
package num

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Zero and One are shared across the probability range checks.
	Zero = decimal.Zero
	One  = decimal.NewFromInt(1)
)

// NumericFormatError reports a string that could not be parsed as an exact
// decimal. The raw input is retained for post-incident analysis.
type NumericFormatError struct {
	Input string
	Err   error
}

func (e *NumericFormatError) Error() string {
	return fmt.Sprintf("malformed numeric input %q: %v", e.Input, e.Err)
}

func (e *NumericFormatError) Unwrap() error { return e.Err }

// Parse converts a numeric string into an exact decimal. Scientific notation
// is accepted ("1e4"). NaN, Inf, empty strings, currency symbols and
// thousands separators are all rejected with a NumericFormatError.
func Parse(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Decimal{}, &NumericFormatError{Input: s, Err: fmt.Errorf("empty string")}
	}
	switch strings.ToLower(trimmed) {
	case "nan", "+nan", "-nan", "inf", "+inf", "-inf", "infinity", "+infinity", "-infinity":
		return decimal.Decimal{}, &NumericFormatError{Input: s, Err: fmt.Errorf("non-finite value")}
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, &NumericFormatError{Input: s, Err: err}
	}
	return d, nil
}

// ParseProbability parses s and additionally requires the value to lie in
// [0, 1].
func ParseProbability(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if err := CheckProbability(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// CheckProbability returns a NumericFormatError when d falls outside [0, 1].
func CheckProbability(d decimal.Decimal) error {
	if d.LessThan(Zero) || d.GreaterThan(One) {
		return &NumericFormatError{
			Input: d.String(),
			Err:   fmt.Errorf("probability outside [0, 1]"),
		}
	}
	return nil
}

// Edge computes probability minus price. Both operands are exact decimals so
// the subtraction carries no representation error.
func Edge(probability, price decimal.Decimal) decimal.Decimal {
	return probability.Sub(price)
}
