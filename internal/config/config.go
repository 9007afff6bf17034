package config

import (
	"time"

	"github.com/fliaght/novelmof/internal/mapper"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Mapper   mapper.Config  `yaml:"mapper"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects the record store.
type StorageConfig struct {
	Driver     string `yaml:"driver"      env:"STORAGE_DRIVER"      env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"STORAGE_SQLITE_PATH" env-default:"./novelmof.db"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`

	// StatementTimeout bounds every statement server-side; zero disables it.
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"0s"`
	ApplicationName  string        `yaml:"application_name"  env:"DATABASE_APPLICATION_NAME"  env-default:"novelmof"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// IngestConfig controls discovery and the ingest pipeline.
type IngestConfig struct {
	Root            string        `yaml:"root"             env:"INGEST_ROOT"             env-default:"."`
	Patterns        []string      `yaml:"patterns"         env:"INGEST_PATTERNS"         env-default:"**/*.mofarch.json,**/*.mofarch.csv"`
	Workers         int           `yaml:"workers"          env:"INGEST_WORKERS"          env-default:"4"`
	DocumentTimeout time.Duration `yaml:"document_timeout" env:"INGEST_DOCUMENT_TIMEOUT" env-default:"30s"`
	QuarantineDir   string        `yaml:"quarantine_dir"   env:"INGEST_QUARANTINE_DIR"`
	DryRun          bool          `yaml:"dry_run"          env:"INGEST_DRY_RUN"          env-default:"false"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"   env:"INGEST_WATCH_DEBOUNCE"   env-default:"500ms"`
	MaxFileSize     int64         `yaml:"max_file_size"    env:"INGEST_MAX_FILE_SIZE"    env-default:"16777216"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false"`
	Addr    string `yaml:"addr"    env:"METRICS_ADDR"    env-default:":9108"`
}
