// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "IMPORT"

// Load reads configuration from .env, an optional YAML file and IMPORT_*
// environment variables, in increasing order of precedence. An empty path
// searches ./configs and the working directory for config.yaml.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "application-import")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_connections", 1)
	v.SetDefault("database.max_idle", 1)
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("import.batch_size", 500)
	v.SetDefault("import.timeout_ms", 0)
	v.SetDefault("import.strict_schema", false)
	v.SetDefault("import.vehicles.skip_empty", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job_name", "application_import")
}

// loadEnvFile loads the first .env found between the working directory and
// the module root. A missing file is not an error.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets values that zero-valued config entries must not keep.
func applyDefaults(cfg *Config) {
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" || cfg.Database.Driver == "sqlite3" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Driver == "postgresql" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 1
	}
	if cfg.Database.MaxIdle <= 0 {
		cfg.Database.MaxIdle = 1
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Import.BatchSize <= 0 {
		cfg.Import.BatchSize = 500
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.JobName == "" {
		cfg.Metrics.JobName = "application_import"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver %q is not supported", cfg.Database.Driver)
	}

	if cfg.Import.TimeoutMs < 0 {
		return fmt.Errorf("import.timeout_ms must not be negative")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.PushgatewayURL == "" {
		return fmt.Errorf("metrics.pushgateway_url is required when metrics are enabled")
	}

	return nil
}

// ApplyTarget points the config at the database named on the command line.
// An explicit driver wins; otherwise a postgres URL selects postgres. For
// postgres a bare name (no "://" and no "=") is a database name on the
// server described by the postgres block; anything else is a full DSN.
func ApplyTarget(cfg *Config, target, driver string) error {
	switch {
	case driver != "":
		cfg.Database.Driver = strings.ToLower(driver)
	case strings.HasPrefix(target, "postgres://"), strings.HasPrefix(target, "postgresql://"):
		cfg.Database.Driver = DriverPostgres
	}

	applyDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cfg.Database.Driver == DriverPostgres && isDatabaseName(target) {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required to connect to database %q", target)
		}
		cfg.Database.DSN = ""
		cfg.Database.Postgres.Database = target
		return nil
	}

	cfg.Database.DSN = target
	return nil
}

func isDatabaseName(target string) bool {
	return target != "" && !strings.Contains(target, "://") && !strings.Contains(target, "=")
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
