// Package money holds the fixed-point helpers shared by the billing engine.
//
// Amounts are dinars with three decimal places (millimes). Rounding is always
// half away from zero, which is what decimal.Decimal.Round does.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of minor-unit digits used everywhere.
const Places = 3

var hundred = decimal.NewFromInt(100)

// Round rounds d to Places decimals, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// IsRounded reports whether d carries no more than Places decimals.
func IsRounded(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

// WithVAT returns round(ht × (1 + rate/100)).
func WithVAT(ht, ratePercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(hundred))
	return Round(ht.Mul(factor))
}

// EmbeddedVAT returns the VAT portion contained in a tax-included amount,
// ttc × rate / (100 + rate), without rounding.
func EmbeddedVAT(ttc, ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsZero() {
		return decimal.Zero
	}
	return ttc.Mul(ratePercent).Div(hundred.Add(ratePercent))
}

var maxWhole = decimal.NewFromInt(math.MaxInt64)

// Millimes splits a rounded amount into whole dinars and minor units.
// The sign is dropped; callers handle negatives. A whole part beyond
// math.MaxInt64 is clamped to it, see WholeFits.
func Millimes(d decimal.Decimal) (dinars, millimes int64) {
	r := Round(d).Abs()
	whole := r.Truncate(0)
	millimes = r.Sub(whole).Shift(Places).IntPart()
	if whole.GreaterThan(maxWhole) {
		return math.MaxInt64, millimes
	}
	return whole.IntPart(), millimes
}

// WholeFits reports whether the whole dinars of d fit in an int64.
func WholeFits(d decimal.Decimal) bool {
	return Round(d).Abs().Truncate(0).LessThanOrEqual(maxWhole)
}

// Fixed renders d rounded to Places decimals, trailing zeros kept:
// 250.6 -> "250.600". External payloads use it for every amount.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// FormatFR renders d with 3 decimals, a comma as decimal separator and a
// space between thousands groups: 1250.5 -> "1 250,500".
func FormatFR(d decimal.Decimal) string {
	s := Round(d).StringFixed(Places)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// Sum adds values without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
