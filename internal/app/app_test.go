package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/gestion/internal/config"
	"github.com/diewo77/gestion/internal/events"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"github.com/diewo77/gestion/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu    sync.Mutex
	types []events.Type
}

func (c *capture) Publish(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, e.Type)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		Billing: config.BillingConfig{
			VATRate:   decimal.NewFromInt(19),
			StampDuty: decimal.RequireFromString("1.000"),
		},
		Company: config.CompanyConfig{Name: "Atelier Test"},
	}
}

func TestOpenWiresServices(t *testing.T) {
	cfg := testConfig()
	s, err := Open(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var local []events.Type
	s.Bus.Subscribe(func(_ context.Context, e events.Event) { local = append(local, e.Type) })

	issue := time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC)
	doc, err := s.Documents.Create(context.Background(), models.KindInvoice, services.DocumentInput{
		ClientName: "Client",
		IssueDate:  &issue,
		Items: []services.ItemInput{
			{Designation: "Audit", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	assert.True(t, doc.StampDuty.Equal(decimal.NewFromInt(1)), "configured stamp duty applies")
	assert.Equal(t, []events.Type{events.DocumentCreated}, local)

	payload, err := s.Print.Build(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atelier Test", payload.Company.Name)
}

func TestExternalPublisherReceivesEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Billing.VATRate = decimal.NewFromInt(7)
	s, err := Open(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ext := &capture{}
	s = NewServices(cfg, s.DB, ext, log.Discard())
	assert.True(t, s.Reports.VATRate.Equal(decimal.NewFromInt(7)))

	_, err = s.Ledger.CreateCharge(context.Background(), services.ChargeInput{
		Designation: "Papier",
		Category:    models.CategorySupplies,
		AmountHT:    decimal.NewFromInt(10),
		VATRate:     decimal.NewFromInt(19),
		Date:        time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, []events.Type{events.ChargeCreated}, ext.types)
}
