package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// DeclarationType is the tax a declaration is filed for.
type DeclarationType string

const (
	DeclarationTVA           DeclarationType = "TVA"
	DeclarationIRPP          DeclarationType = "IRPP"
	DeclarationIS            DeclarationType = "IS"
	DeclarationCNSS          DeclarationType = "CNSS"
	DeclarationTCL           DeclarationType = "TCL"
	DeclarationRetenueSource DeclarationType = "RETENUE_SOURCE"
	DeclarationOther         DeclarationType = "AUTRE"
)

func (t DeclarationType) Valid() bool {
	switch t {
	case DeclarationTVA, DeclarationIRPP, DeclarationIS, DeclarationCNSS,
		DeclarationTCL, DeclarationRetenueSource, DeclarationOther:
		return true
	}
	return false
}

func (t DeclarationType) Value() (driver.Value, error) { return enumValue(t, DeclarationType.Valid) }
func (t *DeclarationType) Scan(src any) error          { return scanEnum(t, src, DeclarationType.Valid) }

// DeclarationPeriod is the filing frequency.
type DeclarationPeriod string

const (
	PeriodMonthly   DeclarationPeriod = "MONTHLY"
	PeriodQuarterly DeclarationPeriod = "QUARTERLY"
	PeriodYearly    DeclarationPeriod = "YEARLY"
)

func (p DeclarationPeriod) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// IndexRange returns the accepted PeriodIndex bounds for p.
func (p DeclarationPeriod) IndexRange() (lo, hi int) {
	switch p {
	case PeriodMonthly:
		return 1, 12
	case PeriodQuarterly:
		return 1, 4
	}
	return 0, 0
}

func (p DeclarationPeriod) Value() (driver.Value, error) {
	return enumValue(p, DeclarationPeriod.Valid)
}
func (p *DeclarationPeriod) Scan(src any) error { return scanEnum(p, src, DeclarationPeriod.Valid) }

// DeclarationStatus tracks where a filing obligation stands. Transitions are
// free-form.
type DeclarationStatus string

const (
	DeclarationToDeclare  DeclarationStatus = "TO_DECLARE"
	DeclarationInProgress DeclarationStatus = "IN_PROGRESS"
	DeclarationDeclared   DeclarationStatus = "DECLARED"
	DeclarationPaid       DeclarationStatus = "PAID"
	DeclarationLate       DeclarationStatus = "LATE"
	DeclarationCancelled  DeclarationStatus = "CANCELLED"
)

func (s DeclarationStatus) Valid() bool {
	switch s {
	case DeclarationToDeclare, DeclarationInProgress, DeclarationDeclared,
		DeclarationPaid, DeclarationLate, DeclarationCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the obligation still has to be filed.
func (s DeclarationStatus) IsOpen() bool {
	return s == DeclarationToDeclare || s == DeclarationInProgress
}

func (s DeclarationStatus) Value() (driver.Value, error) {
	return enumValue(s, DeclarationStatus.Valid)
}
func (s *DeclarationStatus) Scan(src any) error { return scanEnum(s, src, DeclarationStatus.Valid) }

// Declaration is a periodic tax filing obligation.
type Declaration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reference   string            `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	Type        DeclarationType   `gorm:"type:varchar(32);not null;index" json:"type"`
	Period      DeclarationPeriod `gorm:"type:varchar(16);not null" json:"period"`
	PeriodIndex int               `gorm:"not null" json:"period_index"`
	Year        int               `gorm:"not null;index" json:"year"`
	DueDate     time.Time         `gorm:"not null;index" json:"due_date"`

	AmountDue  decimal.Decimal     `gorm:"type:numeric(15,3);not null" json:"amount_due"`
	AmountPaid decimal.NullDecimal `gorm:"type:numeric(15,3)" json:"amount_paid"`

	Status DeclarationStatus `gorm:"type:varchar(16);not null;index" json:"status"`
}

// IsOverdue reports whether the declaration is still open after its due date.
func (d *Declaration) IsOverdue(now time.Time) bool {
	return d.Status.IsOpen() && now.After(d.DueDate)
}
