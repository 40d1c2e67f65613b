package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"application-import/internal/common/config"

	_ "modernc.org/sqlite"
)

// NewSQLite opens an existing SQLite database file. The schema is never
// created here, so a missing file is an error rather than a fresh database.
func NewSQLite(cfg config.DatabaseConfig) (*Client, error) {
	path := strings.TrimSpace(cfg.ConnectionString())
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}

	file := strings.TrimPrefix(path, "file:")
	if idx := strings.Index(file, "?"); idx >= 0 {
		file = file[:idx]
	}
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("sqlite database %s: %w", file, err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// one writer; every import statement runs on the transaction's connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Client{DB: db, Dialect: DialectSQLite}, nil
}

// sqliteDSN adds foreign keys, a busy timeout and SQLite's own time text
// format unless the caller already set them. Without _time_format the
// driver writes time.Time.String(), which date functions cannot read.
func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	var params []string
	if !strings.Contains(path, "_pragma=") {
		params = append(params, "_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(path, "_time_format=") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}
