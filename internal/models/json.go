package models

import (
	"encoding/json"

	"github.com/diewo77/gestion/internal/money"
)

// Amounts are serialized with their three decimals so that 250.6 reads
// "250.600" everywhere outside the store. Decoding keeps the default
// decimal.Decimal behaviour, which accepts either form.

func (d Document) MarshalJSON() ([]byte, error) {
	type document Document
	return json.Marshal(struct {
		document
		StampDuty string `json:"stamp_duty"`
		Subtotal  string `json:"subtotal"`
		Total     string `json:"total"`
	}{
		document:  document(d),
		StampDuty: money.Fixed(d.StampDuty),
		Subtotal:  money.Fixed(d.Subtotal),
		Total:     money.Fixed(d.Total),
	})
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	type lineItem LineItem
	return json.Marshal(struct {
		lineItem
		Quantity  string `json:"quantity"`
		UnitPrice string `json:"unit_price"`
		LineTotal string `json:"line_total"`
	}{
		lineItem:  lineItem(li),
		Quantity:  money.Fixed(li.Quantity),
		UnitPrice: money.Fixed(li.UnitPrice),
		LineTotal: money.Fixed(li.LineTotal),
	})
}

func (c Charge) MarshalJSON() ([]byte, error) {
	type charge Charge
	return json.Marshal(struct {
		charge
		AmountHT  string `json:"amount_ht"`
		VATRate   string `json:"vat_rate"`
		AmountTTC string `json:"amount_ttc"`
	}{
		charge:    charge(c),
		AmountHT:  money.Fixed(c.AmountHT),
		VATRate:   c.VATRate.StringFixed(2),
		AmountTTC: money.Fixed(c.AmountTTC),
	})
}

func (d Declaration) MarshalJSON() ([]byte, error) {
	type declaration Declaration
	var paid *string
	if d.AmountPaid.Valid {
		s := money.Fixed(d.AmountPaid.Decimal)
		paid = &s
	}
	return json.Marshal(struct {
		declaration
		AmountDue  string  `json:"amount_due"`
		AmountPaid *string `json:"amount_paid"`
	}{
		declaration: declaration(d),
		AmountDue:   money.Fixed(d.AmountDue),
		AmountPaid:  paid,
	})
}
