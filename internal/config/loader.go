package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environment variables naming the config file, checked in order.
var configPathEnv = []string{"NOVELMOF_CONFIG", "CONFIG_PATH"}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
//
// An empty path falls back to NOVELMOF_CONFIG, CONFIG_PATH, then
// "./config.yaml". A path that was named and does not exist is an error;
// a missing ./config.yaml means ENV and defaults only.
//
// Relative filesystem paths read from the file (ingest root, quarantine dir,
// sqlite path) are resolved against the file's directory.
func Load(path string) (*Config, error) {
	var cfg Config

	for _, name := range configPathEnv {
		if path != "" {
			break
		}
		path = os.Getenv(name)
	}
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	case explicitPath:
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Ingest.Root, &c.Ingest.QuarantineDir, &c.Storage.SQLitePath} {
		if *p == "" || *p == ":memory:" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(base, *p)
	}
}
