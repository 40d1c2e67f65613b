package main

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"application-import/internal/common/metrics"
)

const (
	testdataDir  = "../../internal/workers/application/import-application-record/testdata"
	documentPath = testdataDir + "/application.json"
)

// newDatabase creates a SQLite file holding the import schema.
func newDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "certification.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	schema, err := os.ReadFile(filepath.Join(testdataDir, "schema.sql"))
	require.NoError(t, err)
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func countApplications(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Applications").Scan(&n))
	return n
}

func durationSamples(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.ImportDuration.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"certification.db"}},
		{"three arguments", []string{"a.db", "b.json", "c"}},
		{"unknown flag", []string{"--verbose", "a.db", "b.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Empty(t, stdout)
			assert.NotEmpty(t, stderr)
		})
	}

	_, _, stderr := runCLI(t)
	assert.Contains(t, stderr, "expected <database> and <json-file>")
	assert.Contains(t, stderr, "application-import [flags] <database> <json-file>")
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := runCLI(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "--driver")
}

func TestRun_Success(t *testing.T) {
	dbPath := newDatabase(t)

	code, stdout, _ := runCLI(t, dbPath, documentPath)
	require.Equal(t, exitOK, code)

	assert.Equal(t, successMessage+"\n", stdout)
	assert.Equal(t, 1, countApplications(t, dbPath))
}

func TestRun_Failures(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		dbPath := newDatabase(t)
		code, stdout, stderr := runCLI(t, dbPath, filepath.Join(t.TempDir(), "absent.json"))

		assert.Equal(t, exitError, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "import failed")
		assert.Equal(t, 0, countApplications(t, dbPath))
	})

	t.Run("missing database file", func(t *testing.T) {
		runs := metrics.ImportRuns.WithLabelValues("failure", "DATABASE_CONNECTION_FAILED")
		beforeRuns := testutil.ToFloat64(runs)
		beforeSamples := durationSamples(t)

		code, stdout, stderr := runCLI(t, filepath.Join(t.TempDir(), "absent.db"), documentPath)

		assert.Equal(t, exitError, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "import failed")
		assert.Equal(t, beforeRuns+1, testutil.ToFloat64(runs))
		assert.Equal(t, beforeSamples, durationSamples(t), "no duration observed for a run that never started")
	})

	t.Run("unsupported driver", func(t *testing.T) {
		code, _, stderr := runCLI(t, "--driver", "mssql", "server=localhost", documentPath)

		assert.Equal(t, exitError, code)
		assert.Contains(t, stderr, "not supported")
	})

	t.Run("duplicate import", func(t *testing.T) {
		dbPath := newDatabase(t)
		code, _, _ := runCLI(t, dbPath, documentPath)
		require.Equal(t, exitOK, code)

		code, stdout, stderr := runCLI(t, dbPath, documentPath)
		assert.Equal(t, exitError, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "CONSTRAINT_VIOLATION")
	})
}

func TestRun_PushesMetrics(t *testing.T) {
	var pushes atomic.Int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/metrics/job/application_import/import_id/") {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"metrics:\n  enabled: true\n  pushgateway_url: "+gateway.URL+"\nlogging:\n  level: error\n"), 0o600))

	dbPath := newDatabase(t)
	code, stdout, _ := runCLI(t, "--config", configPath, dbPath, documentPath)
	require.Equal(t, exitOK, code)

	assert.Equal(t, successMessage+"\n", stdout)
	assert.Equal(t, int32(1), pushes.Load())
}
