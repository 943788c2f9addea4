package oddsmath

import (
	"math"
	"sort"
)

// AmericanToProb converts American odds to implied probability.
// American +150 → 0.40 | American -150 → 0.60
//
// Returns not-ok for zero or non-finite odds: a caller seeing not-ok must
// treat the offer as unusable, never as an error condition.
func AmericanToProb(odds float64) (float64, bool) {
	if !valid(odds) {
		return 0, false
	}

	if odds > 0 {
		return 100.0 / (odds + 100.0), true
	}

	// Negative odds: |odds| / (|odds| + 100)
	return -odds / (-odds + 100.0), true
}

// AmericanToDecimal converts American odds to decimal odds.
// American +150 → 2.50 | American -150 → 1.67
func AmericanToDecimal(odds float64) (float64, bool) {
	if !valid(odds) {
		return 0, false
	}

	if odds > 0 {
		return odds/100.0 + 1.0, true
	}

	return 100.0/(-odds) + 1.0, true
}

// DecimalToAmerican converts decimal odds back to American odds, rounded to
// the nearest integer. Decimal 2.50 → +150 | Decimal 1.67 → -149
//
// Decimals at or below 1.0 have no American equivalent; the function returns
// 0 rather than dividing by zero.
func DecimalToAmerican(dec float64) float64 {
	if math.IsNaN(dec) || dec <= 1.0 {
		return 0
	}

	if dec >= 2.0 {
		return math.Round((dec - 1.0) * 100.0)
	}

	return math.Round(-100.0 / (dec - 1.0))
}

// ProbToAmerican converts a win probability to fair American odds.
// 0.50 → +100 region | 0.60 → -150
func ProbToAmerican(prob float64) (float64, bool) {
	if math.IsNaN(prob) || prob <= 0 || prob >= 1 {
		return 0, false
	}

	return DecimalToAmerican(1.0 / prob), true
}

// Median returns the standard median: the middle element for odd counts, the
// average of the two middle elements for even counts. Not-ok for empty input.
// The input slice is not modified.
func Median(values []float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0, true
}

// ExpectedValue computes the percentage edge of a bettor's price over the
// estimated fair price: ((dec(user) / dec(fair)) - 1) * 100.
//
// Positive means the offered price beats fair value.
func ExpectedValue(userOdds, fairOdds float64) (float64, bool) {
	userDec, ok := AmericanToDecimal(userOdds)
	if !ok {
		return 0, false
	}

	fairDec, ok := AmericanToDecimal(fairOdds)
	if !ok {
		return 0, false
	}

	return (userDec/fairDec - 1.0) * 100.0, true
}

func valid(odds float64) bool {
	return odds != 0 && !math.IsNaN(odds) && !math.IsInf(odds, 0)
}
