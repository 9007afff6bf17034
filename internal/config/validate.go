package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the %s driver", DriverPostgres)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return fmt.Errorf("storage.sqlite_path is required for the %s driver", DriverSQLite)
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", DriverPostgres, DriverSQLite, c.Storage.Driver)
	}

	if err := c.Ingest.validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if c.Mapper.FieldWorkers < 0 {
		return fmt.Errorf("mapper.field_workers must be >= 0 (got %d)", c.Mapper.FieldWorkers)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}

	return nil
}

func (i *IngestConfig) validate() error {
	if i.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", i.Workers)
	}
	if i.DocumentTimeout <= 0 {
		return fmt.Errorf("document_timeout must be > 0 (got %v)", i.DocumentTimeout)
	}
	if i.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must be >= 0 (got %v)", i.WatchDebounce)
	}
	if i.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be > 0 (got %d)", i.MaxFileSize)
	}
	if len(i.Patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}
	for _, p := range i.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}
