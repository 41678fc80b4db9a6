package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateOrderMDY    = "MDY"
	DateOrderDMY    = "DMY"
	DateOrderStrict = "strict"
)

type Config struct {
	Addr            string `koanf:"addr"`
	DatabaseURL     string `koanf:"database_url"`
	JWTSecret       string `koanf:"jwt_secret"`
	Environment     string `koanf:"env"`
	LogLevel        string `koanf:"log_level"`
	MigrationsDir   string `koanf:"migrations_dir"`
	RunMigrations   bool   `koanf:"run_migrations"`
	MaxBodyBytes    int64  `koanf:"max_body_bytes"`
	MaxUploadBytes  int64  `koanf:"max_upload_bytes"`
	RateLimit       int    `koanf:"rate_limit_per_minute"`
	MetricsEnabled  bool   `koanf:"metrics_enabled"`
	Timezone        string `koanf:"timezone"`
	ImportDateOrder string `koanf:"import_date_order"`
	MaxImportRows   int    `koanf:"max_import_rows"`
	DefaultPageSize int    `koanf:"default_page_size"`
	MaxPageSize     int    `koanf:"max_page_size"`
	RunSeed         bool   `koanf:"run_seed"`
	SeedEmployeeNo  string `koanf:"seed_employee_no"`
	SeedFirstName   string `koanf:"seed_first_name"`
	SeedLastName    string `koanf:"seed_last_name"`
}

// New returns the defaults every other source is layered on.
func New() Config {
	return Config{
		Addr:            ":8080",
		Environment:     "development",
		LogLevel:        "info",
		MigrationsDir:   "migrations",
		RunMigrations:   true,
		MaxBodyBytes:    1048576,
		MaxUploadBytes:  10485760,
		RateLimit:       120,
		MetricsEnabled:  true,
		Timezone:        "UTC",
		ImportDateOrder: DateOrderMDY,
		MaxImportRows:   5000,
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

// Location resolves the reference timezone used for every calendar-day bucket.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("APP_DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("APP_JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("APP_MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("APP_MAX_UPLOAD_BYTES must not be below APP_MAX_BODY_BYTES")
	}
	if c.MaxImportRows <= 0 {
		return fmt.Errorf("APP_MAX_IMPORT_ROWS must be positive")
	}
	if c.DefaultPageSize <= 0 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("APP_DEFAULT_PAGE_SIZE must be positive and not above APP_MAX_PAGE_SIZE")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	switch c.ImportDateOrder {
	case DateOrderMDY, DateOrderDMY, DateOrderStrict:
	default:
		return fmt.Errorf("APP_IMPORT_DATE_ORDER must be one of %s, %s, %s", DateOrderMDY, DateOrderDMY, DateOrderStrict)
	}
	return nil
}
