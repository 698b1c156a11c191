// internal/workers/reports/dispatch-due-alerts/config.go
package dispatchduealerts

import (
	"fmt"
	"time"
)

// MaxBatchSize bounds both the configured batch and the limit a job may ask for.
const MaxBatchSize = 500

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	BatchSize     int           `mapstructure:"batch_size"`

	// Location is the zone next triggers are computed in; nil keeps the clock's zone.
	Location *time.Location `mapstructure:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 1,
		Timeout:       30 * time.Second,
		BatchSize:     50,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.BatchSize <= 0 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch_size must be between 1 and %d", MaxBatchSize)
	}
	return nil
}
