// internal/domain/money/money.go
package money

import "math"

// epsilon counters binary floating-point representation error before
// scaling, so values like 2.675 round up instead of truncating.
const epsilon = 1e-9

// Round rounds a monetary amount to 2 decimal places using round half
// away from zero. Every derived monetary quantity is rounded exactly
// once before it is stored, compared, or displayed.
func Round(value float64) float64 {
	if value >= 0 {
		return math.Floor((value+epsilon)*100+0.5) / 100
	}
	return -math.Floor((-value+epsilon)*100+0.5) / 100
}

// Cents converts a rounded monetary amount to an integer cent count.
func Cents(value float64) int64 {
	return int64(math.Round(Round(value) * 100))
}

// FromCents converts an integer cent count to a monetary amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Equal compares two monetary amounts within half a cent.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
