// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/diewo77/gestion/internal/models"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	AMQP     AMQPConfig
	Billing  BillingConfig
	Company  CompanyConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects and configures the store. Driver is "postgres" or
// "sqlite"; SQLitePath is only used by the latter. A full DATABASE_DSN, in
// either URL or key=value form, takes precedence over the split settings.
type DatabaseConfig struct {
	Driver     string
	RawDSN     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
}

// AMQPConfig enables event publishing to RabbitMQ when URL is set.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// Enabled reports whether a broker is configured.
func (a AMQPConfig) Enabled() bool { return a.URL != "" }

// BillingConfig holds the tax defaults.
type BillingConfig struct {
	VATRate   decimal.Decimal // percent
	StampDuty decimal.Decimal // dinars, applied to new invoices
}

// CompanyConfig is printed on documents until a company profile is saved.
type CompanyConfig struct {
	Name     string
	TaxID    string
	Address  string
	Phone    string
	Email    string
	BankName string
	RIB      string
	Footer   string
}

// Profile converts the configured boilerplate into a company profile.
func (c CompanyConfig) Profile() models.CompanyProfile {
	return models.CompanyProfile{
		Name:     c.Name,
		TaxID:    c.TaxID,
		Address:  c.Address,
		Phone:    c.Phone,
		Email:    c.Email,
		BankName: c.BankName,
		RIB:      c.RIB,
		Footer:   c.Footer,
	}
}

type LogConfig struct {
	Level string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected by
// golang-migrate. Credentials are escaped.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			RawDSN:     getEnv("DATABASE_DSN", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "gestion"),
			Password:   getEnv("DB_PASSWORD", "gestion123"),
			DBName:     getEnv("DB_NAME", "gestion"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_DB_PATH", "./data/gestion.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "gestion"),
			Queue:    getEnv("AMQP_QUEUE", "gestion_events"),
		},
		Billing: BillingConfig{
			VATRate:   getEnvDecimal("VAT_RATE", decimal.NewFromInt(19)),
			StampDuty: getEnvDecimal("STAMP_DUTY", decimal.RequireFromString("1.000")),
		},
		Company: CompanyConfig{
			Name:     getEnv("COMPANY_NAME", "Ma Société"),
			TaxID:    getEnv("COMPANY_TAX_ID", ""),
			Address:  getEnv("COMPANY_ADDRESS", ""),
			Phone:    getEnv("COMPANY_PHONE", ""),
			Email:    getEnv("COMPANY_EMAIL", ""),
			BankName: getEnv("COMPANY_BANK", ""),
			RIB:      getEnv("COMPANY_RIB", ""),
			Footer:   getEnv("COMPANY_FOOTER", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Server.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Server.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.RawDSN == "" && (c.Database.Host == "" || c.Database.DBName == "") {
			problems = append(problems, "postgres requires DB_HOST and DB_NAME")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			problems = append(problems, "sqlite requires SQLITE_DB_PATH")
		}
		if c.App.Migrations {
			problems = append(problems, "MIGRATIONS=1 is only supported with postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be postgres or sqlite", c.Database.Driver))
	}

	if c.AMQP.Enabled() {
		if u, err := url.Parse(c.AMQP.URL); err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL '%s'", c.AMQP.URL))
		}
		if c.AMQP.Exchange == "" || c.AMQP.Queue == "" {
			problems = append(problems, "AMQP_EXCHANGE and AMQP_QUEUE are required with AMQP_URL")
		}
	}

	if c.Billing.VATRate.IsNegative() || c.Billing.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		problems = append(problems, fmt.Sprintf("invalid VAT_RATE %s: must be between 0 and 100", c.Billing.VATRate))
	}
	if c.Billing.StampDuty.IsNegative() {
		problems = append(problems, fmt.Sprintf("invalid STAMP_DUTY %s: must not be negative", c.Billing.StampDuty))
	}
	if strings.TrimSpace(c.Company.Name) == "" {
		problems = append(problems, "COMPANY_NAME must not be empty")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDecimal accepts "19", "0.6" or the French "0,6".
func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.Replace(value, ",", ".", 1)); err == nil {
			return d
		}
	}
	return defaultValue
}
