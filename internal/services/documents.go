package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/gestion/internal/events"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/money"
	"github.com/diewo77/gestion/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DocumentInput is the editable part of a quote or invoice.
type DocumentInput struct {
	ClientName    string     `json:"client_name"`
	ClientTel     string     `json:"client_tel"`
	ClientEmail   string     `json:"client_email"`
	ClientAddress string     `json:"client_address"`
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	// StampDuty defaults to the configured duty for new invoices, zero for
	// quotes, and to the stored value on update.
	StampDuty *decimal.Decimal `json:"stamp_duty,omitempty"`
	Items     []ItemInput      `json:"items"`
}

// DocumentFilter narrows List. Zero values mean "any".
type DocumentFilter struct {
	Kind   models.DocumentKind
	Year   int
	Status models.DocumentStatus
}

type DocumentService struct {
	db        *gorm.DB
	numbers   *Numberer
	publisher events.Publisher
	logger    *log.Logger

	// DefaultStampDuty applies to invoices created without an explicit duty.
	DefaultStampDuty decimal.Decimal

	now func() time.Time
}

func NewDocumentService(db *gorm.DB, numbers *Numberer, publisher events.Publisher, logger *log.Logger) *DocumentService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &DocumentService{
		db:        db,
		numbers:   numbers,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentDocuments),
		now:       time.Now,
	}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// prepare validates in and computes the line items. fallbackStamp is used
// when no stamp duty is given.
func prepare(in DocumentInput, fallbackStamp decimal.Decimal) (Computation, decimal.Decimal, error) {
	v := validation.Violations{}
	validation.Required("client_name", in.ClientName, v)

	stamp := fallbackStamp
	if in.StampDuty != nil {
		stamp = *in.StampDuty
		validation.NonNegative("stamp_duty", stamp, v)
	}

	comp, err := ComputeLines(in.Items)
	var ve *ValidationError
	if errors.As(err, &ve) {
		for f, code := range ve.Violations {
			v.Add(f, code)
		}
	} else if len(comp.Items) == 0 {
		v.Add("items", "no_items")
	}
	if !v.Empty() {
		return Computation{}, decimal.Zero, &ValidationError{Violations: v}
	}
	return comp, money.Round(stamp), nil
}

// Create stores a new PENDING quote or invoice under a freshly allocated number.
func (s *DocumentService) Create(ctx context.Context, kind models.DocumentKind, in DocumentInput) (*models.Document, error) {
	return s.create(ctx, kind, in, nil)
}

func (s *DocumentService) create(ctx context.Context, kind models.DocumentKind, in DocumentInput, convertedFrom *uint) (*models.Document, error) {
	if !kind.IsDocument() {
		return nil, invalid("kind", "invalid_value")
	}
	fallback := decimal.Zero
	if kind == models.KindInvoice {
		fallback = s.DefaultStampDuty
	}
	comp, stamp, err := prepare(in, fallback)
	if err != nil {
		return nil, err
	}

	issue := s.now().UTC()
	if in.IssueDate != nil {
		issue = in.IssueDate.UTC()
	}
	doc := &models.Document{
		Kind:            kind,
		IssueDate:       issue,
		ClientName:      strings.TrimSpace(in.ClientName),
		ClientTel:       strings.TrimSpace(in.ClientTel),
		ClientEmail:     strings.TrimSpace(in.ClientEmail),
		ClientAddress:   strings.TrimSpace(in.ClientAddress),
		Items:           comp.Items,
		StampDuty:       stamp,
		Subtotal:        comp.Subtotal,
		Total:           Totals(comp.Subtotal, stamp),
		Status:          models.StatusPending,
		ConvertedFromID: convertedFrom,
	}

	_, err = s.numbers.Reserve(ctx, kind, issue, func(tx *gorm.DB, number string) error {
		doc.Number = number
		return tx.Create(doc).Error
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "create document failed", log.FieldKind, string(kind), log.FieldError, err)
		return nil, err
	}

	op := log.OpCreate
	if convertedFrom != nil {
		op = log.OpConvert
	}
	s.logger.InfoContext(ctx, "document created",
		log.FieldOperation, op,
		log.FieldDocumentID, doc.ID,
		log.FieldNumber, doc.Number,
	)
	s.publish(ctx, events.DocumentCreated, doc)
	return doc, nil
}

// Get loads a document with its items in input order.
func (s *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := preloadItems(s.db.WithContext(ctx)).First(&doc, id).Error; err != nil {
		return nil, storageError("get document", "document", id, "", "", err)
	}
	return &doc, nil
}

// List returns documents matching f, newest first.
func (s *DocumentService) List(ctx context.Context, f DocumentFilter) ([]models.Document, error) {
	q := preloadItems(s.db.WithContext(ctx)).Model(&models.Document{})
	v := validation.Violations{}
	if f.Kind != "" {
		validation.OneOf("kind", f.Kind.IsDocument(), v)
		q = q.Where("kind = ?", string(f.Kind))
	}
	if f.Status != "" {
		validation.OneOf("status", f.Status.Valid(), v)
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Year != 0 {
		start, end := yearRange(f.Year)
		q = q.Where("issue_date >= ? AND issue_date < ?", start, end)
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	var docs []models.Document
	if err := q.Order("issue_date DESC, id DESC").Find(&docs).Error; err != nil {
		return nil, storageError("list documents", "document", 0, "", "", err)
	}
	return docs, nil
}

// Update recomputes the document from in and replaces all of its items.
// Number, kind, issue date and status are left untouched.
func (s *DocumentService) Update(ctx context.Context, id uint, in DocumentInput) (*models.Document, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	comp, stamp, err := prepare(in, existing.StampDuty)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		items := comp.Items
		for i := range items {
			items[i].DocumentID = id
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Document{}).Where("id = ?", id).Updates(map[string]any{
			"client_name":    strings.TrimSpace(in.ClientName),
			"client_tel":     strings.TrimSpace(in.ClientTel),
			"client_email":   strings.TrimSpace(in.ClientEmail),
			"client_address": strings.TrimSpace(in.ClientAddress),
			"stamp_duty":     stamp,
			"subtotal":       comp.Subtotal,
			"total":          Totals(comp.Subtotal, stamp),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		err = storageError("update document", "document", id, "", "", err)
		s.logger.ErrorContext(ctx, "update document failed", log.FieldDocumentID, id, log.FieldError, err)
		return nil, err
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "document updated", log.FieldOperation, log.OpUpdate, log.FieldDocumentID, id, log.FieldNumber, doc.Number)
	s.publish(ctx, events.DocumentUpdated, doc)
	return doc, nil
}

// Delete removes the document and its items atomically.
func (s *DocumentService) Delete(ctx context.Context, id uint) error {
	var doc models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, id).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, id).Error
	})
	if err != nil {
		return storageError("delete document", "document", id, "", "", err)
	}
	s.logger.InfoContext(ctx, "document deleted", log.FieldOperation, log.OpDelete, log.FieldDocumentID, id, log.FieldNumber, doc.Number)
	s.publish(ctx, events.DocumentDeleted, &doc)
	return nil
}

// SetStatus is the only way to change a document's status. Any of the three
// statuses may follow any other.
func (s *DocumentService) SetStatus(ctx context.Context, id uint, status models.DocumentStatus) (*models.Document, error) {
	if !status.Valid() {
		return nil, invalid("status", "invalid_value")
	}
	res := s.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, storageError("set document status", "document", id, "", "", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Entity: "document", ID: id}
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "document status changed",
		log.FieldOperation, log.OpStatus,
		log.FieldDocumentID, id,
		log.FieldStatus, string(status),
	)
	s.publish(ctx, events.DocumentStatusChanged, doc)
	return doc, nil
}

// ConvertQuote creates a PENDING invoice carrying the quote's client and
// items. The quote itself is not modified.
func (s *DocumentService) ConvertQuote(ctx context.Context, quoteID uint) (*models.Document, error) {
	quote, err := s.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Kind != models.KindQuote {
		return nil, invalid("kind", "invalid_value")
	}

	in := DocumentInput{
		ClientName:    quote.ClientName,
		ClientTel:     quote.ClientTel,
		ClientEmail:   quote.ClientEmail,
		ClientAddress: quote.ClientAddress,
		Items:         make([]ItemInput, 0, len(quote.Items)),
	}
	for _, it := range quote.Items {
		in.Items = append(in.Items, ItemInput{Designation: it.Designation, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return s.create(ctx, models.KindInvoice, in, &quote.ID)
}

func (s *DocumentService) publish(ctx context.Context, t events.Type, doc *models.Document) {
	e := events.New(t, "document", doc.ID, doc.Number, doc.IssueDate.Year())
	e.Status = string(doc.Status)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "publish event failed", log.FieldEventType, string(t), log.FieldError, err)
	}
}

// yearRange returns [Jan 1, Jan 1 of the next year) in UTC.
func yearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
