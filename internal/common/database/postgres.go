package database

import (
	"database/sql"
	"fmt"
	"time"

	"application-import/internal/common/config"

	_ "github.com/lib/pq"
)

func NewPostgres(cfg config.DatabaseConfig) (*Client, error) {
	dsn := cfg.ConnectionString()
	if dsn == "" {
		return nil, fmt.Errorf("postgres connection string is empty")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Client{DB: db, Dialect: DialectPostgres}, nil
}
