// Package app wires the services from configuration. Both the HTTP server
// and the CLI start from here.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/gestion/internal/amqp"
	"github.com/diewo77/gestion/internal/config"
	"github.com/diewo77/gestion/internal/db"
	"github.com/diewo77/gestion/internal/events"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/services"
	"gorm.io/gorm"
)

// Services holds every domain service sharing one store and one publisher.
type Services struct {
	DB        *gorm.DB
	Bus       *events.Bus
	Numbers   *services.Numberer
	Documents *services.DocumentService
	Ledger    *services.LedgerService
	Reports   *services.ReportingService
	Company   *services.CompanyService
	Print     *services.PrintService

	broker *amqp.Client
}

// NewServices builds the services on an open store. A nil publisher means
// events only reach the in-process bus.
func NewServices(cfg *config.Config, conn *gorm.DB, publisher events.Publisher, logger *log.Logger) *Services {
	bus := events.NewBus()
	var pub events.Publisher = bus
	if publisher != nil {
		pub = events.Multi{bus, publisher}
	}

	numbers := services.NewNumberer(conn, logger)
	docs := services.NewDocumentService(conn, numbers, pub, logger)
	docs.DefaultStampDuty = cfg.Billing.StampDuty
	reports := services.NewReportingService(conn, logger)
	reports.VATRate = cfg.Billing.VATRate
	company := services.NewCompanyService(conn, cfg.Company.Profile(), logger)

	return &Services{
		DB:        conn,
		Bus:       bus,
		Numbers:   numbers,
		Documents: docs,
		Ledger:    services.NewLedgerService(conn, pub, logger),
		Reports:   reports,
		Company:   company,
		Print:     services.NewPrintService(docs, company),
	}
}

// Open connects the store and, when AMQP_URL is set, the broker, then builds
// the services.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Services, error) {
	conn, err := db.Open(cfg.Database, cfg.App, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var broker *amqp.Client
	if cfg.AMQP.Enabled() {
		dialCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		broker, err = amqp.Dial(dialCtx, cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
		if err != nil {
			closeDB(conn)
			return nil, err
		}
	}

	var publisher events.Publisher
	if broker != nil {
		publisher = broker
	}
	s := NewServices(cfg, conn, publisher, logger)
	s.broker = broker
	return s, nil
}

// Close releases the broker connection and the store.
func (s *Services) Close() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return closeDB(s.DB)
}

func closeDB(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
