package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/money"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultVATRate is the standard Tunisian VAT rate, in percent.
var DefaultVATRate = decimal.NewFromInt(19)

// MonthlyBucket holds the figures of one calendar month.
type MonthlyBucket struct {
	Month    int             `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

func (b MonthlyBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month    int    `json:"month"`
		Revenue  string `json:"revenue"`
		Expenses string `json:"expenses"`
	}{b.Month, money.Fixed(b.Revenue), money.Fixed(b.Expenses)})
}

// SkippedRecord is a stored record left out of a summary because its
// amounts contradict each other.
type SkippedRecord struct {
	Entity    string `json:"entity"`
	ID        uint   `json:"id"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

type YearlySummary struct {
	Year                int             `json:"year"`
	Revenue             decimal.Decimal `json:"revenue"`
	Expenses            decimal.Decimal `json:"expenses"`
	Profit              decimal.Decimal `json:"profit"`
	ProfitMarginPercent int64           `json:"profit_margin_percent"`
	VATCollected        decimal.Decimal `json:"vat_collected"`
	VATDeductible       decimal.Decimal `json:"vat_deductible"`
	VATDue              decimal.Decimal `json:"vat_due"`
	// Outstanding is the total of invoices still PENDING.
	Outstanding   decimal.Decimal               `json:"outstanding"`
	InvoiceCounts map[models.DocumentStatus]int `json:"invoice_counts"`
	Skipped       []SkippedRecord               `json:"skipped,omitempty"`
}

func (y YearlySummary) MarshalJSON() ([]byte, error) {
	type summary YearlySummary
	return json.Marshal(struct {
		summary
		Revenue       string `json:"revenue"`
		Expenses      string `json:"expenses"`
		Profit        string `json:"profit"`
		VATCollected  string `json:"vat_collected"`
		VATDeductible string `json:"vat_deductible"`
		VATDue        string `json:"vat_due"`
		Outstanding   string `json:"outstanding"`
	}{
		summary:       summary(y),
		Revenue:       money.Fixed(y.Revenue),
		Expenses:      money.Fixed(y.Expenses),
		Profit:        money.Fixed(y.Profit),
		VATCollected:  money.Fixed(y.VATCollected),
		VATDeductible: money.Fixed(y.VATDeductible),
		VATDue:        money.Fixed(y.VATDue),
		Outstanding:   money.Fixed(y.Outstanding),
	})
}

// ReportingService rolls up invoices and charges. Every call rescans the
// whole year; nothing is cached.
type ReportingService struct {
	db     *gorm.DB
	logger *log.Logger

	// VATRate is the rate assumed embedded in invoice totals.
	VATRate decimal.Decimal
}

func NewReportingService(db *gorm.DB, logger *log.Logger) *ReportingService {
	return &ReportingService{db: db, logger: logger.WithComponent(log.ComponentReporting), VATRate: DefaultVATRate}
}

type yearData struct {
	invoices []models.Document
	charges  []models.Charge
	skipped  []SkippedRecord
}

// load reads the invoices and charges of year concurrently. Invoices and
// their items come from a single read transaction so a document being
// rewritten is seen either before or after, never in between.
func (s *ReportingService) load(ctx context.Context, year int) (*yearData, error) {
	start, end := yearRange(year)
	var data yearData

	var txOpts []*sql.TxOptions
	if s.db.Dialector.Name() == "postgres" {
		txOpts = append(txOpts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Transaction(func(tx *gorm.DB) error {
			return preloadItems(tx).
				Where("kind = ? AND issue_date >= ? AND issue_date < ?", string(models.KindInvoice), start, end).
				Order("id ASC").
				Find(&data.invoices).Error
		}, txOpts...)
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("date >= ? AND date < ?", start, end).
			Order("id ASC").
			Find(&data.charges).Error
	})
	if err := g.Wait(); err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("load year %d", year), Err: err}
	}

	invoices := data.invoices[:0]
	for _, inv := range data.invoices {
		if reason := checkDocument(&inv); reason != "" {
			data.skipped = append(data.skipped, SkippedRecord{Entity: "document", ID: inv.ID, Reference: inv.Number, Reason: reason})
			continue
		}
		invoices = append(invoices, inv)
	}
	data.invoices = invoices

	charges := data.charges[:0]
	for _, c := range data.charges {
		if reason := checkCharge(&c); reason != "" {
			data.skipped = append(data.skipped, SkippedRecord{Entity: "charge", ID: c.ID, Reference: c.Reference, Reason: reason})
			continue
		}
		charges = append(charges, c)
	}
	data.charges = charges

	for _, sk := range data.skipped {
		s.logger.WarnContext(ctx, "record skipped from summary",
			log.FieldYear, year,
			"entity", sk.Entity,
			log.FieldReference, sk.Reference,
			"reason", sk.Reason,
		)
	}
	return &data, nil
}

func checkCharge(c *models.Charge) string {
	if c.AmountHT.IsNegative() || c.VATRate.IsNegative() {
		return "negative amount"
	}
	if want := money.WithVAT(c.AmountHT, c.VATRate); !want.Equal(c.AmountTTC) {
		return fmt.Sprintf("stored TTC %s, expected %s", c.AmountTTC.StringFixed(money.Places), want.StringFixed(money.Places))
	}
	return ""
}

// MonthlySummary returns the twelve months of year, zero-filled. Revenue is
// the total of PAID invoices, expenses the tax-included charges.
func (s *ReportingService) MonthlySummary(ctx context.Context, year int) ([12]MonthlyBucket, error) {
	var buckets [12]MonthlyBucket
	for i := range buckets {
		buckets[i] = MonthlyBucket{Month: i + 1, Revenue: decimal.Zero, Expenses: decimal.Zero}
	}

	data, err := s.load(ctx, year)
	if err != nil {
		return buckets, err
	}
	for _, inv := range data.invoices {
		if inv.Status != models.StatusPaid {
			continue
		}
		m := inv.IssueDate.UTC().Month() - 1
		buckets[m].Revenue = buckets[m].Revenue.Add(inv.Total)
	}
	for _, c := range data.charges {
		m := c.Date.UTC().Month() - 1
		buckets[m].Expenses = buckets[m].Expenses.Add(c.AmountTTC)
	}
	for i := range buckets {
		buckets[i].Revenue = money.Round(buckets[i].Revenue)
		buckets[i].Expenses = money.Round(buckets[i].Expenses)
	}
	return buckets, nil
}

// YearlySummary computes the year's totals, VAT position and margin.
func (s *ReportingService) YearlySummary(ctx context.Context, year int) (YearlySummary, error) {
	out := YearlySummary{
		Year:          year,
		Revenue:       decimal.Zero,
		Expenses:      decimal.Zero,
		Profit:        decimal.Zero,
		VATCollected:  decimal.Zero,
		VATDeductible: decimal.Zero,
		VATDue:        decimal.Zero,
		Outstanding:   decimal.Zero,
		InvoiceCounts: map[models.DocumentStatus]int{
			models.StatusPending:   0,
			models.StatusPaid:      0,
			models.StatusCancelled: 0,
		},
	}

	data, err := s.load(ctx, year)
	if err != nil {
		return out, err
	}
	out.Skipped = data.skipped

	revenue, collected, outstanding := decimal.Zero, decimal.Zero, decimal.Zero
	for _, inv := range data.invoices {
		out.InvoiceCounts[inv.Status]++
		switch inv.Status {
		case models.StatusPaid:
			revenue = revenue.Add(inv.Total)
			collected = collected.Add(money.EmbeddedVAT(inv.Subtotal, s.VATRate))
		case models.StatusPending:
			outstanding = outstanding.Add(inv.Total)
		}
	}

	expenses, deductible := decimal.Zero, decimal.Zero
	for _, c := range data.charges {
		expenses = expenses.Add(c.AmountTTC)
		deductible = deductible.Add(c.VATAmount())
	}

	out.Revenue = money.Round(revenue)
	out.Expenses = money.Round(expenses)
	out.Profit = out.Revenue.Sub(out.Expenses)
	out.ProfitMarginPercent = ProfitMargin(out.Profit, out.Revenue)
	out.VATCollected = money.Round(collected)
	out.VATDeductible = money.Round(deductible)
	out.VATDue = out.VATCollected.Sub(out.VATDeductible)
	out.Outstanding = money.Round(outstanding)
	return out, nil
}

// ProfitMargin returns round(profit / revenue × 100), or 0 without revenue.
func ProfitMargin(profit, revenue decimal.Decimal) int64 {
	if !revenue.IsPositive() {
		return 0
	}
	return profit.Mul(decimal.NewFromInt(100)).Div(revenue).Round(0).IntPart()
}
