package database

import (
	"context"
	"database/sql"
	"fmt"

	"application-import/internal/common/config"
	apperrors "application-import/internal/common/errors"
)

// Client is an open connection pool plus the dialect of the engine behind it.
type Client struct {
	DB      *sql.DB
	Dialect Dialect
}

// Open connects to the database named by cfg and pings it. Any failure is
// reported as a ConnectionError.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	var (
		client *Client
		err    error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		client, err = NewPostgres(cfg)
	case config.DriverSQLite:
		client, err = NewSQLite(cfg)
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, apperrors.NewConnectionError(err)
	}
	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
