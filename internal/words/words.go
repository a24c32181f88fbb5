// Package words transcribes amounts into the French prose printed on quotes
// and invoices, e.g. 1250.500 -> "mille deux cent cinquante dinars et cinq
// cents millimes".
package words

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/diewo77/gestion/internal/money"
	"github.com/shopspring/decimal"
)

const (
	majorUnit = "dinars"
	minorUnit = "millimes"
)

var units = [...]string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
}

var tens = [...]string{2: "vingt", 3: "trente", 4: "quarante", 5: "cinquante", 6: "soixante"}

// Words returns the lower-case transcription of amount. The fractional part
// is read as millimes and omitted when zero. Whole parts that do not fit in
// an int64 are written in digits.
func Words(amount decimal.Decimal) string {
	dinars, millimes := money.Millimes(amount)

	var b strings.Builder
	if money.Round(amount).IsNegative() {
		b.WriteString("moins ")
	}
	if money.WholeFits(amount) {
		b.WriteString(integer(uint64(dinars)))
	} else {
		b.WriteString(money.Round(amount).Abs().Truncate(0).String())
	}
	b.WriteString(" " + majorUnit)
	if millimes > 0 {
		b.WriteString(" et ")
		b.WriteString(integer(uint64(millimes)))
		b.WriteString(" " + minorUnit)
	}
	return b.String()
}

// Amount is Words with the first letter capitalised, as printed on documents.
func Amount(amount decimal.Decimal) string {
	return capitalize(Words(amount))
}

// Integer transcribes a whole number, negatives prefixed with "moins".
func Integer(n int64) string {
	if n < 0 {
		// -math.MinInt64 does not fit in an int64
		return "moins " + integer(uint64(-(n+1))+1)
	}
	return integer(uint64(n))
}

func integer(n uint64) string {
	if n == 0 {
		return units[0]
	}

	var parts []string
	if m := n / 1_000_000; m > 0 {
		if m == 1 {
			parts = append(parts, "un million")
		} else {
			parts = append(parts, integer(m)+" millions")
		}
	}
	// mille is invariable and makes a preceding cent/vingt lose its plural
	if t := int((n / 1000) % 1000); t > 0 {
		if t == 1 {
			parts = append(parts, "mille")
		} else {
			parts = append(parts, below1000(t, false)+" mille")
		}
	}
	if r := int(n % 1000); r > 0 {
		parts = append(parts, below1000(r, true))
	}
	return strings.Join(parts, " ")
}

// below1000 handles 1..999. final is false when the group is followed by
// "mille".
func below1000(n int, final bool) string {
	h, r := n/100, n%100

	var parts []string
	switch {
	case h == 1:
		parts = append(parts, "cent")
	case h > 1 && r == 0 && final:
		parts = append(parts, units[h]+" cents")
	case h > 1:
		parts = append(parts, units[h]+" cent")
	}
	if r > 0 {
		parts = append(parts, below100(r, final))
	}
	return strings.Join(parts, " ")
}

func below100(n int, final bool) string {
	if n < len(units) {
		return units[n]
	}
	if n < 20 {
		return "dix-" + units[n-10]
	}

	t, u := n/10, n%10
	switch t {
	case 7:
		if u == 1 {
			return "soixante et onze"
		}
		return "soixante-" + below100(10+u, final)
	case 8:
		if u == 0 {
			if final {
				return "quatre-vingts"
			}
			return "quatre-vingt"
		}
		return "quatre-vingt-" + units[u]
	case 9:
		return "quatre-vingt-" + below100(10+u, final)
	}

	switch u {
	case 0:
		return tens[t]
	case 1:
		return tens[t] + " et un"
	default:
		return tens[t] + "-" + units[u]
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
