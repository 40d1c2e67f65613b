package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"application-import/internal/common/config"
	apperrors "application-import/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certification.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	client, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, DialectSQLite, client.Dialect)

	var fk int
	require.NoError(t, client.DB.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_SQLiteMissingFile(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "absent.db"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConnection))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mssql", DSN: "x"})
	assert.True(t, errors.Is(err, apperrors.ErrConnection))
}

func TestOpen_PostgresEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverPostgres})
	assert.True(t, errors.Is(err, apperrors.ErrConnection))
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/a.db", "file:/tmp/a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"},
		{"file:/tmp/a.db?mode=rw", "file:/tmp/a.db?mode=rw&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"},
		{"file:/tmp/a.db?_pragma=journal_mode(WAL)", "file:/tmp/a.db?_pragma=journal_mode(WAL)&_time_format=sqlite"},
		{"file:/tmp/a.db?_pragma=journal_mode(WAL)&_time_format=sqlite", "file:/tmp/a.db?_pragma=journal_mode(WAL)&_time_format=sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestOpen_SQLiteStoresReadableTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certification.db")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	client, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.DB.Exec("CREATE TABLE t (ts TIMESTAMP NOT NULL)")
	require.NoError(t, err)
	_, err = client.DB.Exec("INSERT INTO t (ts) VALUES (?)", time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var raw string
	var normalised sql.NullString
	require.NoError(t, client.DB.QueryRow("SELECT CAST(ts AS TEXT), datetime(ts) FROM t").Scan(&raw, &normalised))

	assert.Equal(t, "2024-01-31 08:00:00+00:00", raw)
	assert.True(t, normalised.Valid)
	assert.Equal(t, "2024-01-31 08:00:00", normalised.String)
}
