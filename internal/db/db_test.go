package db

import (
	"path/filepath"
	"testing"

	"github.com/diewo77/gestion/internal/config"
	"github.com/diewo77/gestion/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAppliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gestion.db")
	cfg := config.DatabaseConfig{Driver: "sqlite", SQLitePath: path}

	db, err := Open(cfg, config.AppConfig{}, log.Discard())
	require.NoError(t, err)

	for _, table := range RequiredTables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.FileExists(t, path)

	// applying the schema twice is harmless
	require.NoError(t, AutoMigrate(db))
	require.NoError(t, CheckSchema(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"}, config.AppConfig{}, log.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "sqlite"}, config.AppConfig{}, log.Discard())
	require.Error(t, err)
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"url untouched", "postgres://u:p@h:5432/db?sslmode=disable", "postgres://u:p@h:5432/db?sslmode=disable"},
		{"quoted url", `"postgresql://u@h/db"`, "postgresql://u@h/db"},
		{"kv adds sslmode", "host=h  user=u dbname=db", "host=h user=u dbname=db sslmode=disable"},
		{"kv keeps sslmode", "host=h user=u dbname=db sslmode=require", "host=h user=u dbname=db sslmode=require"},
		{"garbage", "not a dsn", "not a dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDSN(tt.in))
		})
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=gestion password=s3cr@t dbname=gestion sslmode=disable")
	assert.Equal(t, "postgres://gestion:s3cr%40t@db:5432/gestion?sslmode=disable", got)

	url := "postgres://u:p@h/db"
	assert.Equal(t, url, ToURLDSN(url))

	// incomplete key=value is returned unchanged
	assert.Equal(t, "host=h user=u", ToURLDSN("host=h user=u"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "host=h password=*** dbname=db", MaskDSN("host=h password=secret dbname=db"))
	assert.Equal(t, "postgres://u:***@h/db", MaskDSN("postgres://u:secret@h/db"))
}
