package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind identifies what a number is allocated for. Only quotes and
// invoices are stored as documents; import procedures only consume numbers.
type DocumentKind string

const (
	KindQuote           DocumentKind = "quote"
	KindInvoice         DocumentKind = "invoice"
	KindImportProcedure DocumentKind = "import_procedure"
)

// Valid reports whether k is one of the declared kinds.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindQuote, KindInvoice, KindImportProcedure:
		return true
	}
	return false
}

// IsDocument reports whether k is stored in the documents table.
func (k DocumentKind) IsDocument() bool {
	return k == KindQuote || k == KindInvoice
}

// Prefix is the human readable prefix of allocated numbers.
func (k DocumentKind) Prefix() string {
	switch k {
	case KindQuote:
		return "DEV"
	case KindInvoice:
		return "FAC"
	case KindImportProcedure:
		return "PI"
	}
	return ""
}

// Title is the heading printed on the document.
func (k DocumentKind) Title() string {
	switch k {
	case KindQuote:
		return "DEVIS"
	case KindInvoice:
		return "FACTURE"
	}
	return ""
}

func (k DocumentKind) Value() (driver.Value, error) { return enumValue(k, DocumentKind.Valid) }
func (k *DocumentKind) Scan(src any) error          { return scanEnum(k, src, DocumentKind.Valid) }

// DocumentStatus is the payment status of a quote or invoice.
type DocumentStatus string

const (
	StatusPending   DocumentStatus = "PENDING"
	StatusPaid      DocumentStatus = "PAID"
	StatusCancelled DocumentStatus = "CANCELLED"
)

// Valid reports whether s is one of the three statuses.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

func (s DocumentStatus) Value() (driver.Value, error) { return enumValue(s, DocumentStatus.Valid) }
func (s *DocumentStatus) Scan(src any) error          { return scanEnum(s, src, DocumentStatus.Valid) }

// Document is a quote or an invoice. Subtotal and Total are derived from the
// items and must only be written by the document service.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Kind   DocumentKind `gorm:"type:varchar(16);not null;index;check:chk_documents_kind,kind IN ('quote','invoice')" json:"kind"`
	Number string       `gorm:"size:32;not null;uniqueIndex" json:"number"`

	IssueDate time.Time `gorm:"not null;index" json:"issue_date"`

	// Client
	ClientName    string `gorm:"size:255;not null" json:"client_name"`
	ClientTel     string `gorm:"size:50" json:"client_tel,omitempty"`
	ClientEmail   string `gorm:"size:255" json:"client_email,omitempty"`
	ClientAddress string `gorm:"size:500" json:"client_address,omitempty"`

	Items []LineItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"items"`

	StampDuty decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"stamp_duty"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"subtotal"`
	Total     decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"total"`

	Status DocumentStatus `gorm:"type:varchar(16);not null;index;check:chk_documents_status,status IN ('PENDING','PAID','CANCELLED')" json:"status"`

	// ConvertedFromID links an invoice to the quote it was created from.
	ConvertedFromID *uint `gorm:"index" json:"converted_from_id,omitempty"`
}

// IsInvoice returns true for invoices.
func (d *Document) IsInvoice() bool {
	return d.Kind == KindInvoice
}

// IsPaid returns true if the document has been paid.
func (d *Document) IsPaid() bool {
	return d.Status == StatusPaid
}

// LineItem is one row of a document. Items are replaced wholesale on update.
type LineItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	DocumentID uint `gorm:"index;not null" json:"document_id"`

	// Position keeps the input order
	Position int `gorm:"not null" json:"position"`

	Designation string          `gorm:"size:500;not null" json:"designation"`
	Quantity    decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"line_total"`
}
