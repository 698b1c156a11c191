// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Router       RouterConfig            `mapstructure:"router"`
	Conversation ConversationConfig      `mapstructure:"conversation"`
	Classifier   ClassifierConfig        `mapstructure:"classifier"`
	Alerts       AlertsConfig            `mapstructure:"alerts"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Tracing      TracingConfig           `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	TLS            bool   `mapstructure:"tls"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryBaseDelay int    `mapstructure:"retry_base_delay"` // milliseconds
	RetryMaxDelay  int    `mapstructure:"retry_max_delay"`  // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig accepts either a redis:// URL or discrete address fields.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Report Router Configuration ---

// RouterConfig controls how report commands are resolved.
type RouterConfig struct {
	Timezone      string `mapstructure:"timezone"` // IANA name or "Local"
	DefaultFormat string `mapstructure:"default_format"`
}

// ConversationConfig selects and tunes the session context store.
type ConversationConfig struct {
	Store            string `mapstructure:"store"`            // memory | redis
	SessionTTL       int    `mapstructure:"session_ttl"`      // milliseconds, 0 disables expiry
	JanitorInterval  int    `mapstructure:"janitor_interval"` // milliseconds
	KeyPrefix        string `mapstructure:"key_prefix"`
	MaxUpdateRetries int    `mapstructure:"max_update_retries"`
}

// ClassifierConfig points at the optional external intent classifier.
type ClassifierConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	BaseURL         string  `mapstructure:"base_url"`
	APIKey          string  `mapstructure:"api_key"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
	MaxRetries      int     `mapstructure:"max_retries"`
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`
}

// AlertsConfig holds settings for the alert scheduling workers.
type AlertsConfig struct {
	DefaultHour       int `mapstructure:"default_hour"`
	DispatchBatchSize int `mapstructure:"dispatch_batch_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}
