// internal/workers/application/import-application-record/config.go
package importapplicationrecord

import (
	"time"

	"application-import/internal/common/config"
)

type Config struct {
	BatchSize         int
	Timeout           time.Duration
	StrictSchema      bool
	SkipEmptyVehicles bool
}

func LoadConfig(cfg config.ImportConfig) *Config {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 500
	}
	return &Config{
		BatchSize:         batch,
		Timeout:           cfg.Timeout(),
		StrictSchema:      cfg.StrictSchema,
		SkipEmptyVehicles: cfg.Vehicles.SkipEmpty,
	}
}
