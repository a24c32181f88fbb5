package services

import (
	"errors"
	"testing"

	"github.com/diewo77/gestion/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(designation, qty, price string) ItemInput {
	return ItemInput{Designation: designation, Quantity: d(qty), UnitPrice: d(price)}
}

func TestComputeLines(t *testing.T) {
	tests := []struct {
		name     string
		items    []ItemInput
		lines    []string
		subtotal string
	}{
		{
			name:     "basic",
			items:    []ItemInput{item("A", "2", "100"), item("B", "1", "50")},
			lines:    []string{"200", "50"},
			subtotal: "250",
		},
		{
			name:     "fractional quantities",
			items:    []ItemInput{item("Câble", "0.5", "12.345"), item("Vis", "3", "0.333")},
			lines:    []string{"6.173", "0.999"},
			subtotal: "7.172",
		},
		{
			name:     "sum rounded once",
			items:    []ItemInput{item("X", "0.5", "0.001"), item("Y", "0.5", "0.001")},
			lines:    []string{"0.001", "0.001"},
			subtotal: "0.001",
		},
		{
			name:     "blank and zero lines dropped",
			items:    []ItemInput{item("  ", "2", "10"), item("Z", "0", "10"), item("Ok", "1", "10")},
			lines:    []string{"10"},
			subtotal: "10",
		},
		{
			name:     "quantity rounding to zero dropped",
			items:    []ItemInput{item("A", "0.0004", "100"), item("B", "1", "5")},
			lines:    []string{"5"},
			subtotal: "5",
		},
		{
			name:     "inputs normalised to 3 decimals",
			items:    []ItemInput{item("P", "1.0004", "2.0005")},
			lines:    []string{"2.001"},
			subtotal: "2.001",
		},
		{
			name:     "empty",
			items:    nil,
			lines:    nil,
			subtotal: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeLines(tt.items)
			require.NoError(t, err)
			require.Len(t, got.Items, len(tt.lines))
			for i, want := range tt.lines {
				assert.True(t, got.Items[i].LineTotal.Equal(d(want)), "line %d: got %s want %s", i, got.Items[i].LineTotal, want)
				assert.Equal(t, i, got.Items[i].Position)
			}
			assert.True(t, got.Subtotal.Equal(d(tt.subtotal)), "subtotal: got %s want %s", got.Subtotal, tt.subtotal)
		})
	}
}

func TestComputeLinesRejectsNegatives(t *testing.T) {
	_, err := ComputeLines([]ItemInput{item("A", "1", "10"), item("B", "-1", "10"), item("C", "1", "-0.5")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must_not_be_negative", ve.Violations["items[1].quantity"])
	assert.Equal(t, "must_not_be_negative", ve.Violations["items[2].unit_price"])
	assert.Len(t, ve.Violations, 2)
}

func TestTotalsAddsStampDuty(t *testing.T) {
	assert.True(t, Totals(d("250"), d("0.6")).Equal(d("250.600")))
	assert.True(t, Totals(d("0"), d("0")).IsZero())
}

func TestRecomputeIsIdempotent(t *testing.T) {
	comp, err := ComputeLines([]ItemInput{
		item("A", "3", "33.333"),
		item("B", "0.25", "1.999"),
		item("C", "7", "0.001"),
	})
	require.NoError(t, err)

	sub1, total1 := Recompute(comp.Items, d("0.6"))
	sub2, total2 := Recompute(comp.Items, d("0.6"))
	assert.True(t, sub1.Equal(comp.Subtotal))
	assert.True(t, sub1.Equal(sub2))
	assert.True(t, total1.Equal(total2))
	assert.True(t, total1.Equal(comp.Subtotal.Add(d("0.6"))))
}

func TestCheckDocument(t *testing.T) {
	items := []models.LineItem{{Quantity: d("2"), UnitPrice: d("100"), LineTotal: d("200")}}
	good := &models.Document{Items: items, Subtotal: d("200"), StampDuty: d("0.6"), Total: d("200.6")}
	assert.Empty(t, checkDocument(good))

	badTotal := &models.Document{Items: items, Subtotal: d("200"), StampDuty: d("0.6"), Total: d("200")}
	assert.Contains(t, checkDocument(badTotal), "stored total")

	badSubtotal := &models.Document{Items: items, Subtotal: d("199"), StampDuty: d("0"), Total: d("199")}
	assert.Contains(t, checkDocument(badSubtotal), "stored subtotal")

	negative := &models.Document{Items: nil, Subtotal: d("0"), StampDuty: d("-1"), Total: d("-1")}
	assert.Equal(t, "negative amount", checkDocument(negative))
}
