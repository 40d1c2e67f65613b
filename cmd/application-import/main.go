// cmd/application-import/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"application-import/internal/common/config"
	"application-import/internal/common/database"
	apperrors "application-import/internal/common/errors"
	"application-import/internal/common/logger"
	"application-import/internal/common/metrics"
	"application-import/internal/common/observability"

	iar "application-import/internal/workers/application/import-application-record"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	successMessage = "Import completed successfully."
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// usageError marks command line mistakes; they exit with exitUsage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

type options struct {
	configPath string
	driver     string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "application-import [flags] <database> <json-file>",
		Short: "Import one application document into the certification database",
		Long: `Reads the first element of applicationListDTO from <json-file> and writes the
application with its assessors, member states and vehicles in one transaction.

<database> is a SQLite file, or a postgres URL/DSN (postgres:// selects postgres).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return &usageError{fmt.Errorf("expected <database> and <json-file>, got %d argument(s)", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return importDocument(cmd.Context(), opts, args[0], args[1], cmd.OutOrStdout())
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.driver, "driver", "", "database driver: sqlite or postgres (detected from <database> when empty)")

	return cmd
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	var uErr *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return exitUsage
	default:
		fmt.Fprintf(stderr, "import failed: %v\n", err)
		return exitError
	}
}

func importDocument(ctx context.Context, opts *options, target, documentPath string, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyTarget(cfg, target, opts.driver); err != nil {
		return fmt.Errorf("database target: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	stageRegistry := prometheus.NewRegistry()
	obs, err := observability.New(cfg.App.Name, stageRegistry)
	if err != nil {
		zapLog.Warn("stage metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	importID := uuid.New().String()

	client, err := database.Open(ctx, cfg.Database)
	if err != nil {
		code := apperrors.CodeOf(err)
		zapLog.Error("database connection failed",
			zap.String("importId", importID),
			zap.String("driver", cfg.Database.Driver),
			zap.String("errorCode", string(code)),
			zap.Error(err),
		)
		metrics.RecordAborted(string(code))
		pushMetrics(cfg.Metrics, importID, stageRegistry, zapLog)
		return err
	}
	defer client.Close()

	zapLog.Debug("database connected", zap.String("driver", cfg.Database.Driver))

	handler := iar.NewHandler(iar.LoadConfig(cfg.Import), client.DB, client.Dialect, log).
		WithObservability(obs)

	_, err = handler.Execute(ctx, &iar.Input{DocumentPath: documentPath, ImportID: importID})
	pushMetrics(cfg.Metrics, importID, stageRegistry, zapLog)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, successMessage)
	return nil
}

func pushMetrics(cfg config.MetricsConfig, importID string, stages prometheus.Gatherer, zapLog *zap.Logger) {
	if !cfg.Enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.JobName, importID, stages); err != nil {
		zapLog.Warn("metrics push failed",
			zap.String("pushgateway", cfg.PushgatewayURL),
			zap.Error(err),
		)
	}
}
