package services

import (
	"fmt"
	"strings"

	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/money"
	"github.com/diewo77/gestion/validation"
	"github.com/shopspring/decimal"
)

// ItemInput is one line as entered by the user.
type ItemInput struct {
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Computation is the result of ComputeLines. Items are ready to be stored.
type Computation struct {
	Items    []models.LineItem
	Subtotal decimal.Decimal
}

// ComputeLines validates the raw items, drops the empty ones and computes
// line totals and the subtotal. The subtotal is the rounded sum of the exact
// products, not the sum of the rounded line totals.
func ComputeLines(items []ItemInput) (Computation, error) {
	v := validation.Violations{}
	for i, it := range items {
		if it.Quantity.IsNegative() {
			v.Add(fmt.Sprintf("items[%d].quantity", i), "must_not_be_negative")
		}
		if it.UnitPrice.IsNegative() {
			v.Add(fmt.Sprintf("items[%d].unit_price", i), "must_not_be_negative")
		}
	}
	if !v.Empty() {
		return Computation{}, &ValidationError{Violations: v}
	}

	out := Computation{Items: make([]models.LineItem, 0, len(items)), Subtotal: decimal.Zero}
	exact := decimal.Zero
	for _, it := range items {
		designation := strings.TrimSpace(it.Designation)
		// a quantity that rounds to 0.000 is as empty as a zero one
		q := money.Round(it.Quantity)
		if designation == "" || !q.IsPositive() {
			continue
		}
		p := money.Round(it.UnitPrice)
		product := q.Mul(p)
		exact = exact.Add(product)
		out.Items = append(out.Items, models.LineItem{
			Position:    len(out.Items),
			Designation: designation,
			Quantity:    q,
			UnitPrice:   p,
			LineTotal:   money.Round(product),
		})
	}
	out.Subtotal = money.Round(exact)
	return out, nil
}

// Totals returns subtotal + stampDuty.
func Totals(subtotal, stampDuty decimal.Decimal) decimal.Decimal {
	return money.Round(subtotal.Add(stampDuty))
}

// Recompute derives subtotal and total from stored line items. Calling it on
// the output of ComputeLines reproduces the same figures.
func Recompute(items []models.LineItem, stampDuty decimal.Decimal) (subtotal, total decimal.Decimal) {
	exact := decimal.Zero
	for _, it := range items {
		exact = exact.Add(it.Quantity.Mul(it.UnitPrice))
	}
	subtotal = money.Round(exact)
	return subtotal, Totals(subtotal, stampDuty)
}

// checkDocument reports why a stored document disagrees with its items, or
// "" when it is consistent.
func checkDocument(doc *models.Document) string {
	if doc.StampDuty.IsNegative() || doc.Subtotal.IsNegative() {
		return "negative amount"
	}
	subtotal, total := Recompute(doc.Items, doc.StampDuty)
	if !subtotal.Equal(doc.Subtotal) {
		return fmt.Sprintf("stored subtotal %s, items give %s", doc.Subtotal.StringFixed(money.Places), subtotal.StringFixed(money.Places))
	}
	if !total.Equal(doc.Total) {
		return fmt.Sprintf("stored total %s, expected %s", doc.Total.StringFixed(money.Places), total.StringFixed(money.Places))
	}
	return ""
}
