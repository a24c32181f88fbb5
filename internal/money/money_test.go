package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRoundHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1.0005", "1.001"},
		{"1.0004", "1"},
		{"-1.0005", "-1.001"},
		{"2.5", "2.5"},
		{"0.3335", "0.334"},
	}
	for _, tt := range tests {
		if got := Round(d(tt.in)); !got.Equal(d(tt.want)) {
			t.Errorf("Round(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWithVAT(t *testing.T) {
	if got := WithVAT(d("100"), d("19")); got.StringFixed(3) != "119.000" {
		t.Fatalf("WithVAT(100, 19) = %s", got.StringFixed(3))
	}
	if got := WithVAT(d("33.333"), d("7")); got.StringFixed(3) != "35.666" {
		t.Fatalf("WithVAT(33.333, 7) = %s", got.StringFixed(3))
	}
	if got := WithVAT(d("10"), decimal.Zero); !got.Equal(d("10")) {
		t.Fatalf("zero rate should not change amount, got %s", got)
	}
}

func TestEmbeddedVAT(t *testing.T) {
	got := Round(EmbeddedVAT(d("119"), d("19")))
	if got.StringFixed(3) != "19.000" {
		t.Fatalf("EmbeddedVAT(119, 19) = %s", got.StringFixed(3))
	}
	if !EmbeddedVAT(d("50"), decimal.Zero).IsZero() {
		t.Fatalf("expected zero VAT for zero rate")
	}
}

func TestMillimes(t *testing.T) {
	tests := []struct {
		in       string
		dinars   int64
		millimes int64
	}{
		{"1250.5", 1250, 500},
		{"0.001", 0, 1},
		{"7", 7, 0},
		{"-3.25", 3, 250},
		{"0.9996", 1, 0},
		{"12345678901234567.5", 12345678901234567, 500},
		{"9223372036854775807.999", math.MaxInt64, 999},
		{"100000000000000000000.25", math.MaxInt64, 250},
	}
	for _, tt := range tests {
		gotD, gotM := Millimes(d(tt.in))
		if gotD != tt.dinars || gotM != tt.millimes {
			t.Errorf("Millimes(%s) = %d,%d want %d,%d", tt.in, gotD, gotM, tt.dinars, tt.millimes)
		}
	}
}

func TestWholeFits(t *testing.T) {
	for in, want := range map[string]bool{
		"0":                        true,
		"-9223372036854775807.4":   true,
		"9223372036854775807.9996": false,
		"9223372036854775808":      false,
	} {
		if got := WholeFits(d(in)); got != want {
			t.Errorf("WholeFits(%s) = %v want %v", in, got, want)
		}
	}
}

func TestFixed(t *testing.T) {
	for in, want := range map[string]string{
		"250.6":  "250.600",
		"0":      "0.000",
		"-3.25":  "-3.250",
		"1.0005": "1.001",
	} {
		if got := Fixed(d(in)); got != want {
			t.Errorf("Fixed(%s) = %q want %q", in, got, want)
		}
	}
}

func TestFormatFR(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "0,000"},
		{"1250.5", "1 250,500"},
		{"999.9999", "1 000,000"},
		{"1234567.891", "1 234 567,891"},
		{"100", "100,000"},
		{"-4500.25", "-4 500,250"},
		{"0.6", "0,600"},
	}
	for _, tt := range tests {
		if got := FormatFR(d(tt.in)); got != tt.want {
			t.Errorf("FormatFR(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSum(t *testing.T) {
	if got := Sum(d("0.0004"), d("0.0004"), d("0.0004")); !got.Equal(d("0.0012")) {
		t.Fatalf("Sum should keep full precision, got %s", got)
	}
	if !Sum().IsZero() {
		t.Fatalf("empty sum should be zero")
	}
}
