package models

import "time"

// CompanyProfile holds the issuer details printed on every document.
// The application keeps a single row.
type CompanyProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `gorm:"size:255;not null" json:"name"`
	TaxID   string `gorm:"size:32" json:"tax_id,omitempty"` // matricule fiscal
	Address string `gorm:"size:500" json:"address,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Email   string `gorm:"size:255" json:"email,omitempty"`

	// Bank
	BankName string `gorm:"size:255" json:"bank_name,omitempty"`
	RIB      string `gorm:"size:32" json:"rib,omitempty"`

	Footer string `gorm:"type:text" json:"footer,omitempty"`
}

// AllModels lists every persisted model, in dependency order, for AutoMigrate.
func AllModels() []any {
	return []any{
		&CompanyProfile{},
		&DocumentSequence{},
		&Document{},
		&LineItem{},
		&Charge{},
		&Declaration{},
	}
}
