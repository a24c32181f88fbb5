package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/gestion/internal/events"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open db")

	// one connection: sqlite serialises writers anyway and the shared
	// in-memory database lives as long as it stays open
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...), "migrate")
	return db
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	numbers  *Numberer
	docs     *DocumentService
	ledger   *LedgerService
	reports  *ReportingService
	company  *CompanyService
	print    *PrintService
	recorded *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	logger := log.Discard()

	bus := events.NewBus()
	rec := &recorder{}
	bus.Subscribe(rec.handle)

	numbers := NewNumberer(db, logger)
	docs := NewDocumentService(db, numbers, bus, logger)
	company := NewCompanyService(db, models.CompanyProfile{Name: "Atelier Test"}, logger)
	return &fixture{
		db:       db,
		numbers:  numbers,
		docs:     docs,
		ledger:   NewLedgerService(db, bus, logger),
		reports:  NewReportingService(db, logger),
		company:  company,
		print:    NewPrintService(docs, company),
		recorded: rec,
	}
}

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func stamp(s string) *decimal.Decimal { v := d(s); return &v }

// scenarioInput is the reference invoice: 2 × 100 + 1 × 50, stamp 0.6.
func scenarioInput(issue *time.Time) DocumentInput {
	return DocumentInput{
		ClientName: "Société Alpha",
		ClientTel:  "+216 71 000 000",
		IssueDate:  issue,
		StampDuty:  stamp("0.6"),
		Items:      []ItemInput{item("A", "2", "100"), item("B", "1", "50")},
	}
}
