// internal/workers/reports/schedule-report-alert/config.go
package schedulereportalert

import (
	"fmt"
	"time"

	"report-workers/internal/reports/alerts"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	DefaultHour   int           `mapstructure:"default_hour"`

	// Location is the zone alert hours are read in; nil keeps the clock's zone.
	Location *time.Location `mapstructure:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       15 * time.Second,
		DefaultHour:   alerts.DefaultHour,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.DefaultHour < 0 || c.DefaultHour > 23 {
		return fmt.Errorf("default_hour must be between 0 and 23")
	}
	return nil
}
