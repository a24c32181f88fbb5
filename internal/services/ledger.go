package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/gestion/internal/events"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/money"
	"github.com/diewo77/gestion/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxVATRate = decimal.NewFromInt(100)

// ratePlaces matches the numeric(5,2) column; the rate used for the
// tax-included amount is the one that gets stored.
const ratePlaces = 2

// ChargeInput is the editable part of a charge. The tax-included amount is
// always computed: a client-supplied AmountTTC is read and discarded.
type ChargeInput struct {
	Reference   string                `json:"reference"`
	Designation string                `json:"designation"`
	Category    models.ChargeCategory `json:"category"`
	Supplier    string                `json:"supplier"`
	AmountHT    decimal.Decimal       `json:"amount_ht"`
	VATRate     decimal.Decimal       `json:"vat_rate"`
	AmountTTC   *decimal.Decimal      `json:"amount_ttc,omitempty"`
	Date        time.Time             `json:"date"`
}

// amounts returns the rounded HT, the stored rate and the derived TTC.
func (in ChargeInput) amounts() (ht, rate, ttc decimal.Decimal) {
	ht = money.Round(in.AmountHT)
	rate = in.VATRate.Round(ratePlaces)
	return ht, rate, money.WithVAT(ht, rate)
}

// DeclarationInput is the editable part of a declaration. An empty Status
// means TO_DECLARE on create and "unchanged" on update.
type DeclarationInput struct {
	Reference   string                   `json:"reference"`
	Type        models.DeclarationType   `json:"type"`
	Period      models.DeclarationPeriod `json:"period"`
	PeriodIndex int                      `json:"period_index"`
	Year        int                      `json:"year"`
	DueDate     time.Time                `json:"due_date"`
	AmountDue   decimal.Decimal          `json:"amount_due"`
	AmountPaid  *decimal.Decimal         `json:"amount_paid,omitempty"`
	Status      models.DeclarationStatus `json:"status,omitempty"`
}

// LedgerService manages charges and tax declarations.
type LedgerService struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *log.Logger
}

func NewLedgerService(db *gorm.DB, publisher events.Publisher, logger *log.Logger) *LedgerService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &LedgerService{db: db, publisher: publisher, logger: logger.WithComponent(log.ComponentLedger)}
}

func generateReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}

func validateCharge(in ChargeInput) error {
	v := validation.Violations{}
	validation.Required("designation", in.Designation, v)
	validation.OneOf("category", in.Category.Valid(), v)
	validation.NonNegative("amount_ht", in.AmountHT, v)
	validation.RangeDecimal("vat_rate", in.VATRate, decimal.Zero, maxVATRate, v)
	if in.Date.IsZero() {
		v["date"] = "required"
	}
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

// CreateCharge records an expense. An empty reference is generated.
func (s *LedgerService) CreateCharge(ctx context.Context, in ChargeInput) (*models.Charge, error) {
	if err := validateCharge(in); err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		ref = generateReference("CHG")
	}
	ht, rate, ttc := in.amounts()
	c := &models.Charge{
		Reference:   ref,
		Designation: strings.TrimSpace(in.Designation),
		Category:    in.Category,
		Supplier:    strings.TrimSpace(in.Supplier),
		AmountHT:    ht,
		VATRate:     rate,
		AmountTTC:   ttc,
		Date:        in.Date.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, storageError("create charge", "charge", 0, "reference", ref, err)
	}
	s.logger.InfoContext(ctx, "charge created", log.FieldOperation, log.OpCreate, log.FieldReference, c.Reference)
	s.publish(ctx, events.New(events.ChargeCreated, "charge", c.ID, c.Reference, c.Date.Year()))
	return c, nil
}

// UpdateCharge replaces the charge fields and recomputes the tax-included
// amount. An empty reference keeps the current one.
func (s *LedgerService) UpdateCharge(ctx context.Context, id uint, in ChargeInput) (*models.Charge, error) {
	if err := validateCharge(in); err != nil {
		return nil, err
	}
	ht, rate, ttc := in.amounts()
	updates := map[string]any{
		"designation": strings.TrimSpace(in.Designation),
		"category":    in.Category,
		"supplier":    strings.TrimSpace(in.Supplier),
		"amount_ht":   ht,
		"vat_rate":    rate,
		"amount_ttc":  ttc,
		"date":        in.Date.UTC(),
	}
	ref := strings.TrimSpace(in.Reference)
	if ref != "" {
		updates["reference"] = ref
	}
	res := s.db.WithContext(ctx).Model(&models.Charge{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, storageError("update charge", "charge", id, "reference", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "charge", ID: id}
	}
	c, err := s.GetCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "charge updated", log.FieldOperation, log.OpUpdate, log.FieldReference, c.Reference)
	s.publish(ctx, events.New(events.ChargeUpdated, "charge", c.ID, c.Reference, c.Date.Year()))
	return c, nil
}

func (s *LedgerService) DeleteCharge(ctx context.Context, id uint) error {
	c, err := s.GetCharge(ctx, id)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Charge{}, id)
	if res.Error != nil {
		return storageError("delete charge", "charge", id, "", "", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "charge", ID: id}
	}
	s.logger.InfoContext(ctx, "charge deleted", log.FieldOperation, log.OpDelete, log.FieldReference, c.Reference)
	s.publish(ctx, events.New(events.ChargeDeleted, "charge", c.ID, c.Reference, c.Date.Year()))
	return nil
}

func (s *LedgerService) GetCharge(ctx context.Context, id uint) (*models.Charge, error) {
	var c models.Charge
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, storageError("get charge", "charge", id, "", "", err)
	}
	return &c, nil
}

// ListCharges returns the charges of year, optionally restricted to month
// (1-12, 0 for the whole year), oldest first.
func (s *LedgerService) ListCharges(ctx context.Context, year, month int) ([]models.Charge, error) {
	start, end := yearRange(year)
	if month != 0 {
		if month < 1 || month > 12 {
			return nil, invalid("month", "out_of_range")
		}
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}
	var charges []models.Charge
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("date ASC, id ASC").
		Find(&charges).Error
	if err != nil {
		return nil, storageError("list charges", "charge", 0, "", "", err)
	}
	return charges, nil
}

func validateDeclaration(in DeclarationInput) error {
	v := validation.Violations{}
	validation.OneOf("type", in.Type.Valid(), v)
	validation.OneOf("period", in.Period.Valid(), v)
	if in.Period.Valid() {
		lo, hi := in.Period.IndexRange()
		validation.RangeInt("period_index", in.PeriodIndex, lo, hi, v)
	}
	validation.RangeInt("year", in.Year, 1900, 9999, v)
	if in.DueDate.IsZero() {
		v["due_date"] = "required"
	}
	validation.NonNegative("amount_due", in.AmountDue, v)
	if in.AmountPaid != nil {
		validation.NonNegative("amount_paid", *in.AmountPaid, v)
	}
	if in.Status != "" {
		validation.OneOf("status", in.Status.Valid(), v)
	}
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(money.Round(*d))
}

// CreateDeclaration records a filing obligation, TO_DECLARE unless a status
// is given.
func (s *LedgerService) CreateDeclaration(ctx context.Context, in DeclarationInput) (*models.Declaration, error) {
	if err := validateDeclaration(in); err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		ref = generateReference("DEC")
	}
	status := in.Status
	if status == "" {
		status = models.DeclarationToDeclare
	}
	d := &models.Declaration{
		Reference:   ref,
		Type:        in.Type,
		Period:      in.Period,
		PeriodIndex: in.PeriodIndex,
		Year:        in.Year,
		DueDate:     in.DueDate.UTC(),
		AmountDue:   money.Round(in.AmountDue),
		AmountPaid:  nullDecimal(in.AmountPaid),
		Status:      status,
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, storageError("create declaration", "declaration", 0, "reference", ref, err)
	}
	s.logger.InfoContext(ctx, "declaration created", log.FieldOperation, log.OpCreate, log.FieldReference, d.Reference)
	s.publishDeclaration(ctx, events.DeclarationCreated, d)
	return d, nil
}

func (s *LedgerService) UpdateDeclaration(ctx context.Context, id uint, in DeclarationInput) (*models.Declaration, error) {
	if err := validateDeclaration(in); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"type":         in.Type,
		"period":       in.Period,
		"period_index": in.PeriodIndex,
		"year":         in.Year,
		"due_date":     in.DueDate.UTC(),
		"amount_due":   money.Round(in.AmountDue),
		"amount_paid":  nullDecimal(in.AmountPaid),
	}
	ref := strings.TrimSpace(in.Reference)
	if ref != "" {
		updates["reference"] = ref
	}
	if in.Status != "" {
		updates["status"] = in.Status
	}
	res := s.db.WithContext(ctx).Model(&models.Declaration{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, storageError("update declaration", "declaration", id, "reference", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "declaration", ID: id}
	}
	d, err := s.GetDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "declaration updated", log.FieldOperation, log.OpUpdate, log.FieldReference, d.Reference)
	s.publishDeclaration(ctx, events.DeclarationUpdated, d)
	return d, nil
}

func (s *LedgerService) DeleteDeclaration(ctx context.Context, id uint) error {
	d, err := s.GetDeclaration(ctx, id)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Declaration{}, id)
	if res.Error != nil {
		return storageError("delete declaration", "declaration", id, "", "", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "declaration", ID: id}
	}
	s.logger.InfoContext(ctx, "declaration deleted", log.FieldOperation, log.OpDelete, log.FieldReference, d.Reference)
	s.publishDeclaration(ctx, events.DeclarationDeleted, d)
	return nil
}

func (s *LedgerService) GetDeclaration(ctx context.Context, id uint) (*models.Declaration, error) {
	var d models.Declaration
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, storageError("get declaration", "declaration", id, "", "", err)
	}
	return &d, nil
}

// SetDeclarationStatus moves a declaration to any of the six statuses.
func (s *LedgerService) SetDeclarationStatus(ctx context.Context, id uint, status models.DeclarationStatus) (*models.Declaration, error) {
	if !status.Valid() {
		return nil, invalid("status", "invalid_value")
	}
	res := s.db.WithContext(ctx).Model(&models.Declaration{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, storageError("set declaration status", "declaration", id, "", "", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "declaration", ID: id}
	}
	d, err := s.GetDeclaration(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "declaration status changed", log.FieldOperation, log.OpStatus, log.FieldReference, d.Reference, log.FieldStatus, string(status))
	s.publishDeclaration(ctx, events.DeclarationStatusChanged, d)
	return d, nil
}

// ListDeclarations returns the declarations of year ordered by due date.
func (s *LedgerService) ListDeclarations(ctx context.Context, year int) ([]models.Declaration, error) {
	var out []models.Declaration
	err := s.db.WithContext(ctx).
		Where("year = ?", year).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageError("list declarations", "declaration", 0, "", "", err)
	}
	return out, nil
}

// MarkOverdue flags every open declaration whose due date is before now as
// LATE and returns how many were changed.
func (s *LedgerService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	open := []string{string(models.DeclarationToDeclare), string(models.DeclarationInProgress)}
	var overdue []models.Declaration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status IN ? AND due_date < ?", open, now.UTC()).Find(&overdue).Error; err != nil {
			return err
		}
		if len(overdue) == 0 {
			return nil
		}
		ids := make([]uint, len(overdue))
		for i := range overdue {
			ids[i] = overdue[i].ID
			overdue[i].Status = models.DeclarationLate
		}
		return tx.Model(&models.Declaration{}).Where("id IN ?", ids).Update("status", models.DeclarationLate).Error
	})
	if err != nil {
		return 0, storageError("mark overdue declarations", "declaration", 0, "", "", err)
	}
	if len(overdue) > 0 {
		s.logger.InfoContext(ctx, "declarations marked late", log.FieldCount, len(overdue))
	}
	for i := range overdue {
		s.publishDeclaration(ctx, events.DeclarationStatusChanged, &overdue[i])
	}
	return len(overdue), nil
}

func (s *LedgerService) publishDeclaration(ctx context.Context, t events.Type, d *models.Declaration) {
	e := events.New(t, "declaration", d.ID, d.Reference, d.Year)
	e.Status = string(d.Status)
	s.publish(ctx, e)
}

func (s *LedgerService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "publish event failed", log.FieldEventType, string(e.Type), log.FieldError, err)
	}
}
