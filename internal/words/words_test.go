package words

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestWordsBoundaries(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "zéro dinars"},
		{"1", "un dinars"},
		{"16", "seize dinars"},
		{"17", "dix-sept dinars"},
		{"20", "vingt dinars"},
		{"21", "vingt et un dinars"},
		{"22", "vingt-deux dinars"},
		{"61", "soixante et un dinars"},
		{"70", "soixante-dix dinars"},
		{"71", "soixante et onze dinars"},
		{"72", "soixante-douze dinars"},
		{"77", "soixante-dix-sept dinars"},
		{"80", "quatre-vingts dinars"},
		{"81", "quatre-vingt-un dinars"},
		{"90", "quatre-vingt-dix dinars"},
		{"91", "quatre-vingt-onze dinars"},
		{"99", "quatre-vingt-dix-neuf dinars"},
		{"100", "cent dinars"},
		{"101", "cent un dinars"},
		{"180", "cent quatre-vingts dinars"},
		{"200", "deux cents dinars"},
		{"201", "deux cent un dinars"},
		{"1000", "mille dinars"},
		{"1001", "mille un dinars"},
		{"2000", "deux mille dinars"},
		{"21000", "vingt et un mille dinars"},
		{"80000", "quatre-vingt mille dinars"},
		{"200000", "deux cent mille dinars"},
		{"380000", "trois cent quatre-vingt mille dinars"},
		{"1000000", "un million dinars"},
		{"2000000", "deux millions dinars"},
		{"1001001", "un million mille un dinars"},
		{"200000000", "deux cents millions dinars"},
		{"1250.5", "mille deux cent cinquante dinars et cinq cents millimes"},
		{"1250.500", "mille deux cent cinquante dinars et cinq cents millimes"},
		{"0.001", "zéro dinars et un millimes"},
		{"12.345", "douze dinars et trois cent quarante-cinq millimes"},
		{"250.600", "deux cent cinquante dinars et six cents millimes"},
		{"5.000", "cinq dinars"},
		{"-3.5", "moins trois dinars et cinq cents millimes"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Words(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("Words(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWordsRoundsMinorUnits(t *testing.T) {
	got := Words(decimal.RequireFromString("9.9996"))
	if got != "dix dinars" {
		t.Fatalf("expected rounding to 10.000, got %q", got)
	}
}

func TestAmountCapitalizes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "Zéro dinars"},
		{"1250.5", "Mille deux cent cinquante dinars et cinq cents millimes"},
		{"1000000", "Un million dinars"},
	}
	for _, tt := range tests {
		if got := Amount(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Amount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWordsNeverEmpty(t *testing.T) {
	for n := int64(0); n <= 2000; n++ {
		if Words(decimal.NewFromInt(n)) == "" {
			t.Fatalf("empty transcription for %d", n)
		}
	}
	for _, n := range []int64{999_999, 1_000_001, 999_999_999, 12_345_678_901} {
		if Integer(n) == "" {
			t.Fatalf("empty transcription for %d", n)
		}
	}
}

func TestIntegerNoDoubleSpaces(t *testing.T) {
	for n := int64(0); n <= 100_000; n += 7 {
		s := Integer(n)
		for i := 1; i < len(s); i++ {
			if s[i] == ' ' && s[i-1] == ' ' {
				t.Fatalf("double space in %q for %d", s, n)
			}
		}
	}
}

func TestIntegerExtremes(t *testing.T) {
	maxWords := Integer(math.MaxInt64)
	if !strings.HasSuffix(maxWords, "huit cent sept") {
		t.Fatalf("Integer(MaxInt64) = %q", maxWords)
	}
	minWords := Integer(math.MinInt64)
	if !strings.HasPrefix(minWords, "moins ") || !strings.HasSuffix(minWords, "huit cent huit") {
		t.Fatalf("Integer(MinInt64) = %q", minWords)
	}
	if got := Integer(-21); got != "moins vingt et un" {
		t.Fatalf("Integer(-21) = %q", got)
	}
}

func TestWordsBeyondInt64(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9223372036854775807", Integer(math.MaxInt64) + " dinars"},
		{"100000000000000000000.5", "100000000000000000000 dinars et cinq cents millimes"},
		{"-100000000000000000000", "moins 100000000000000000000 dinars"},
	}
	for _, tt := range tests {
		if got := Words(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Words(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
