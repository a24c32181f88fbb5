// Package db opens the GORM store and brings its schema up to date.
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diewo77/gestion/internal/config"
	"github.com/diewo77/gestion/internal/log"
	"github.com/diewo77/gestion/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

// RequiredTables must exist once the schema has been applied.
var RequiredTables = []string{
	"company_profiles", "document_sequences", "documents", "line_items", "charges", "declarations",
}

// Open connects to the configured store, applies the schema and returns the
// handle. PostgreSQL uses the embedded SQL migrations when app.Migrations is
// set; every other case falls back to AutoMigrate.
func Open(cfg config.DatabaseConfig, app config.AppConfig, lg *log.Logger) (*gorm.DB, error) {
	lg = lg.WithComponent(log.ComponentStorage)

	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg.SQLitePath, gcfg)
	case "postgres", "":
		db, err = openPostgres(postgresDSN(cfg), gcfg, lg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	if app.Migrations && db.Dialector.Name() == "postgres" {
		url := cfg.URL()
		if cfg.RawDSN != "" {
			url = ToURLDSN(NormalizeDSN(cfg.RawDSN))
		}
		lg.Info("Running SQL migrations", log.FieldOperation, log.OpMigrate)
		if err := RunSQLMigrations(url); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	if err := CheckSchema(db); err != nil {
		return nil, err
	}
	lg.Info("Database ready", "driver", db.Dialector.Name())
	return db, nil
}

// AutoMigrate creates or updates every table from the models.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.AllModels() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// CheckSchema fails when one of RequiredTables is missing.
func CheckSchema(db *gorm.DB) error {
	for _, table := range RequiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func postgresDSN(cfg config.DatabaseConfig) string {
	if dsn := NormalizeDSN(cfg.RawDSN); dsn != "" {
		return dsn
	}
	return cfg.DSN()
}

func openPostgres(dsn string, gcfg *gorm.Config, lg *log.Logger) (*gorm.DB, error) {
	lg.Info("Connecting to PostgreSQL", "dsn", MaskDSN(dsn))

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			return db, nil
		}
		lg.Warn("Database connection failed, retrying",
			"attempt", i,
			"max_attempts", connectAttempts,
			log.FieldError, err,
		)
		time.Sleep(connectDelay)
	}
	return nil, fmt.Errorf("failed to connect database after retries: %w", err)
}

func openSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
