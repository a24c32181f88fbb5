package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeCategory classifies a business expense.
type ChargeCategory string

const (
	CategoryRent      ChargeCategory = "loyer"
	CategorySalaries  ChargeCategory = "salaires"
	CategorySupplies  ChargeCategory = "fournitures"
	CategoryServices  ChargeCategory = "services"
	CategoryTransport ChargeCategory = "transport"
	CategoryEnergy    ChargeCategory = "energie"
	CategoryTaxes     ChargeCategory = "impots"
	CategoryOther     ChargeCategory = "autre"
)

// ChargeCategories lists every category in display order.
var ChargeCategories = []ChargeCategory{
	CategoryRent, CategorySalaries, CategorySupplies, CategoryServices,
	CategoryTransport, CategoryEnergy, CategoryTaxes, CategoryOther,
}

func (c ChargeCategory) Valid() bool {
	for _, known := range ChargeCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c ChargeCategory) Value() (driver.Value, error) { return enumValue(c, ChargeCategory.Valid) }
func (c *ChargeCategory) Scan(src any) error          { return scanEnum(c, src, ChargeCategory.Valid) }

// Charge is a recorded expense. AmountTTC is always derived from AmountHT and
// VATRate (a percentage, 19 for 19 %).
type Charge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reference   string         `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	Designation string         `gorm:"size:255;not null" json:"designation"`
	Category    ChargeCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Supplier    string         `gorm:"size:255" json:"supplier,omitempty"`

	AmountHT  decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"amount_ht"`
	VATRate   decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"vat_rate"`
	AmountTTC decimal.Decimal `gorm:"type:numeric(15,3);not null" json:"amount_ttc"`

	Date time.Time `gorm:"not null;index" json:"date"`
}

// VATAmount returns the deductible VAT of the charge.
func (c *Charge) VATAmount() decimal.Decimal {
	return c.AmountTTC.Sub(c.AmountHT)
}
