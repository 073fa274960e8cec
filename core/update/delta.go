package update

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Comparer reports whether current already satisfies desired.
type Comparer func(current, desired string) bool

// Comparers maps field names to their Comparer. Missing fields use StringEqual.
type Comparers map[string]Comparer

// StringEqual compares values exactly.
func StringEqual(current, desired string) bool {
	return current == desired
}

// NumericEqual treats numbers closer than tolerance as equal. Values that do
// not parse as numbers fall back to string equality.
func NumericEqual(tolerance decimal.Decimal) Comparer {
	return func(current, desired string) bool {
		c, errC := decimal.NewFromString(strings.TrimSpace(current))
		d, errD := decimal.NewFromString(strings.TrimSpace(desired))
		if errC != nil || errD != nil {
			return current == desired
		}
		return c.Sub(d).Abs().LessThan(tolerance)
	}
}

// WeightTolerance absorbs serialization rounding on weights.
var WeightTolerance = decimal.New(1, -3)

// WeightEqual compares weights with WeightTolerance.
var WeightEqual = NumericEqual(WeightTolerance)

// ComputeDelta returns the desired fields whose current value differs.
// A field absent from current counts as the empty string.
func ComputeDelta(current, desired map[string]string, cmp Comparers) map[string]string {
	delta := make(map[string]string)
	for field, want := range desired {
		equal := StringEqual
		if c, ok := cmp[field]; ok && c != nil {
			equal = c
		}
		if !equal(current[field], want) {
			delta[field] = want
		}
	}
	return delta
}
