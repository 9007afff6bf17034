package mapper

import "fmt"

// Config controls how a Mapper runs.
type Config struct {
	// FieldWorkers is the number of fields mapped concurrently within one
	// document. Values <= 1 map fields sequentially.
	FieldWorkers int `yaml:"field_workers" env:"MAPPER_FIELD_WORKERS" env-default:"1"`
}

func (c Config) validate() error {
	if c.FieldWorkers < 0 {
		return fmt.Errorf("mapper.field_workers must be >= 0, got %d", c.FieldWorkers)
	}
	return nil
}
