// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Import   ImportConfig   `mapstructure:"import"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver         string         `mapstructure:"driver"`
	DSN            string         `mapstructure:"dsn"` // file path for sqlite, URL or DSN for postgres
	Postgres       PostgresConfig `mapstructure:"postgres"`
	MaxConnections int            `mapstructure:"max_connections"`
	MaxIdle        int            `mapstructure:"max_idle"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ConnectionString returns the explicit DSN, or the one assembled from the
// postgres block when the driver is postgres and no DSN was given.
func (d DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == DriverPostgres && d.Postgres.Host != "" {
		return d.Postgres.GetDSN()
	}
	return ""
}

// ImportConfig holds the settings of the application import pipeline.
type ImportConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	TimeoutMs    int           `mapstructure:"timeout_ms"` // 0 disables the deadline
	StrictSchema bool          `mapstructure:"strict_schema"`
	Vehicles     VehicleConfig `mapstructure:"vehicles"`
}

func (i ImportConfig) Timeout() time.Duration {
	return GetDuration(i.TimeoutMs)
}

type VehicleConfig struct {
	SkipEmpty bool `mapstructure:"skip_empty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	JobName        string `mapstructure:"job_name"`
}
