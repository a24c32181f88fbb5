package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDocumentKind_Prefix(t *testing.T) {
	tests := []struct {
		kind   DocumentKind
		prefix string
		title  string
		doc    bool
	}{
		{KindQuote, "DEV", "DEVIS", true},
		{KindInvoice, "FAC", "FACTURE", true},
		{KindImportProcedure, "PI", "", false},
		{DocumentKind("receipt"), "", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Prefix(); got != tt.prefix {
				t.Errorf("Prefix() = %q, want %q", got, tt.prefix)
			}
			if got := tt.kind.Title(); got != tt.title {
				t.Errorf("Title() = %q, want %q", got, tt.title)
			}
			if got := tt.kind.IsDocument(); got != tt.doc {
				t.Errorf("IsDocument() = %v, want %v", got, tt.doc)
			}
		})
	}
}

func TestDocumentStatus_ValueScan(t *testing.T) {
	v, err := StatusPaid.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v != "PAID" {
		t.Fatalf("Value() = %v, want PAID", v)
	}

	if _, err := DocumentStatus("DRAFT").Value(); err == nil {
		t.Fatalf("expected error for unknown status")
	}

	var s DocumentStatus
	if err := s.Scan([]byte("CANCELLED")); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if s != StatusCancelled {
		t.Fatalf("Scan() = %q, want CANCELLED", s)
	}
	if err := s.Scan("paid"); err == nil {
		t.Fatalf("expected error for lower-case status")
	}
	if err := s.Scan(nil); err == nil {
		t.Fatalf("expected error for NULL status")
	}
	if err := s.Scan(42); err == nil {
		t.Fatalf("expected error for integer status")
	}
}

func TestDocument_Helpers(t *testing.T) {
	doc := &Document{Kind: KindInvoice, Status: StatusPaid}
	if !doc.IsInvoice() {
		t.Errorf("IsInvoice() = false, want true")
	}
	if !doc.IsPaid() {
		t.Errorf("IsPaid() = false, want true")
	}

	quote := &Document{Kind: KindQuote, Status: StatusPending}
	if quote.IsInvoice() || quote.IsPaid() {
		t.Errorf("pending quote reported as invoice or paid")
	}
}

func TestChargeCategory_Valid(t *testing.T) {
	for _, c := range ChargeCategories {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if ChargeCategory("Loyer").Valid() {
		t.Errorf("categories are case sensitive")
	}
}

func TestCharge_VATAmount(t *testing.T) {
	c := &Charge{
		AmountHT:  decimal.RequireFromString("100"),
		AmountTTC: decimal.RequireFromString("119"),
	}
	if got := c.VATAmount(); !got.Equal(decimal.NewFromInt(19)) {
		t.Errorf("VATAmount() = %s, want 19", got)
	}
}

func TestDeclarationPeriod_IndexRange(t *testing.T) {
	tests := []struct {
		period DeclarationPeriod
		lo, hi int
	}{
		{PeriodMonthly, 1, 12},
		{PeriodQuarterly, 1, 4},
		{PeriodYearly, 0, 0},
	}
	for _, tt := range tests {
		lo, hi := tt.period.IndexRange()
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("%s: IndexRange() = (%d, %d), want (%d, %d)", tt.period, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestDeclaration_IsOverdue(t *testing.T) {
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	after := due.Add(24 * time.Hour)
	before := due.Add(-24 * time.Hour)

	tests := []struct {
		name   string
		status DeclarationStatus
		now    time.Time
		want   bool
	}{
		{"open and late", DeclarationToDeclare, after, true},
		{"in progress and late", DeclarationInProgress, after, true},
		{"open not due", DeclarationToDeclare, before, false},
		{"declared", DeclarationDeclared, after, false},
		{"paid", DeclarationPaid, after, false},
		{"already late", DeclarationLate, after, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Declaration{Status: tt.status, DueDate: due}
			if got := d.IsOverdue(tt.now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarshalJSON_FixedScale(t *testing.T) {
	doc := Document{
		Kind:      KindInvoice,
		Number:    "FAC-2024-0001",
		StampDuty: decimal.RequireFromString("0.6"),
		Subtotal:  decimal.NewFromInt(250),
		Total:     decimal.RequireFromString("250.6"),
		Items: []LineItem{{
			Designation: "A",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(100),
			LineTotal:   decimal.NewFromInt(200),
		}},
	}
	charge := Charge{
		Reference: "CHG-1",
		AmountHT:  decimal.NewFromInt(100),
		VATRate:   decimal.NewFromInt(19),
		AmountTTC: decimal.NewFromInt(119),
	}
	decl := Declaration{Reference: "TVA-1", AmountDue: decimal.RequireFromString("12.5")}

	tests := []struct {
		name string
		v    any
		want []string
	}{
		{"document", &doc, []string{
			`"stamp_duty":"0.600"`, `"subtotal":"250.000"`, `"total":"250.600"`,
			`"quantity":"2.000"`, `"unit_price":"100.000"`, `"line_total":"200.000"`,
			`"number":"FAC-2024-0001"`,
		}},
		{"charge", charge, []string{`"amount_ht":"100.000"`, `"vat_rate":"19.00"`, `"amount_ttc":"119.000"`, `"reference":"CHG-1"`}},
		{"declaration unpaid", decl, []string{`"amount_due":"12.500"`, `"amount_paid":null`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(b), w) {
					t.Errorf("%s missing %s", b, w)
				}
			}
			if strings.Count(string(b), `"total"`) > 1 {
				t.Errorf("duplicated key in %s", b)
			}
		})
	}

	decl.AmountPaid = decimal.NewNullDecimal(decimal.NewFromInt(3))
	b, err := json.Marshal(decl)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"amount_paid":"3.000"`) {
		t.Errorf("paid amount not fixed: %s", b)
	}

	var back Document
	if err := json.Unmarshal(mustMarshal(t, doc), &back); err != nil {
		t.Fatal(err)
	}
	if !back.Total.Equal(doc.Total) || len(back.Items) != 1 || !back.Items[0].LineTotal.Equal(doc.Items[0].LineTotal) {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
