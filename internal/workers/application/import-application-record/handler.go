// internal/workers/application/import-application-record/handler.go
package importapplicationrecord

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"application-import/internal/common/database"
	apperrors "application-import/internal/common/errors"
	"application-import/internal/common/logger"
	"application-import/internal/common/metrics"
	"application-import/internal/common/observability"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	TaskType = "import-application-record"
)

type Handler struct {
	config  *Config
	db      *sql.DB
	dialect database.Dialect
	logger  logger.Logger
	obs     *observability.Observability
}

func NewHandler(config *Config, db *sql.DB, dialect database.Dialect, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		db:      db,
		dialect: dialect,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// WithObservability attaches stage timing; a nil value disables it.
func (h *Handler) WithObservability(obs *observability.Observability) *Handler {
	h.obs = obs
	return h
}

// Execute imports one application document in a single transaction. Nothing
// is committed unless every insert succeeds.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.DocumentPath == "" {
		return nil, apperrors.NewLoadError("", errors.New("document path is empty"))
	}

	importID := input.ImportID
	if importID == "" {
		importID = uuid.New().String()
	}
	log := h.logger.WithFields(map[string]interface{}{
		"importId":     importID,
		"documentPath": input.DocumentPath,
	})

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	log.Info("processing import", nil)
	start := time.Now()

	output, err := h.execute(ctx, log, input.DocumentPath)
	duration := time.Since(start)
	if err != nil {
		code := apperrors.CodeOf(err)
		metrics.RecordFailure(string(code), duration)
		log.Error("import failed", map[string]interface{}{
			"errorCode":     string(code),
			"errorCategory": apperrors.GetErrorCategory(code),
			"error":         err,
		})
		return nil, err
	}

	output.ImportID = importID
	output.Duration = duration
	metrics.RecordSuccess(output.RowsPerTable(), output.AssessorsCreated, duration)

	log.Info("application imported", map[string]interface{}{
		"applicationId":    output.ApplicationID,
		"assessorLinks":    output.AssessorLinks,
		"assessorsCreated": output.AssessorsCreated,
		"memberStates":     output.MemberStates,
		"vehicles":         output.Vehicles,
		"durationMs":       duration.Milliseconds(),
	})
	return output, nil
}

func (h *Handler) execute(ctx context.Context, log logger.Logger, path string) (*Output, error) {
	var node gjson.Result
	err := h.stage(ctx, "load", func() error {
		var err error
		node, err = LoadApplicationNode(path)
		if err == nil && h.config.StrictSchema {
			err = ValidateApplicationNode(node)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewConnectionError(fmt.Errorf("begin transaction: %w", err))
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn("rollback failed", map[string]interface{}{"error": rbErr})
		}
	}()

	output, err := h.write(ctx, tx, node)
	if err != nil {
		return nil, err
	}

	err = h.stage(ctx, "commit", tx.Commit)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", apperrors.ClassifyDatabaseError("commit", err))
	}
	committed = true
	return output, nil
}

// write maps and inserts in table order. Each collection is extracted only
// when its turn comes, so a malformed memberStates field is reported after
// the earlier inserts were issued; the rollback undoes them.
func (h *Handler) write(ctx context.Context, tx *sql.Tx, node gjson.Result) (*Output, error) {
	writer := NewWriter(tx, h.dialect, h.config.BatchSize)
	resolver := NewAssessorResolver(tx, h.dialect)
	output := &Output{}

	err := h.stage(ctx, "application", func() error {
		app, err := MapApplication(node)
		if err != nil {
			return err
		}
		output.ApplicationID = app.ApplicationID
		return writer.InsertApplication(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	err = h.stage(ctx, "assessors", func() error {
		names, err := ReadAssessorNames(node)
		if err != nil {
			return err
		}
		ids, err := resolver.ResolveAll(ctx, names)
		if err != nil {
			return err
		}
		output.AssessorsCreated = resolver.Created()
		output.AssessorLinks, err = writer.InsertAssessorLinks(ctx, output.ApplicationID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = h.stage(ctx, "member_states", func() error {
		states, err := ReadMemberStates(node)
		if err != nil {
			return err
		}
		output.MemberStates, err = writer.InsertMemberStates(ctx, output.ApplicationID, states)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = h.stage(ctx, "vehicles", func() error {
		identifiers, err := ReadVehicleIdentifiers(node, h.config.SkipEmptyVehicles)
		if err != nil {
			return err
		}
		output.Vehicles, err = writer.InsertVehicles(ctx, output.ApplicationID, identifiers)
		return err
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (h *Handler) stage(ctx context.Context, name string, fn func() error) error {
	done := h.obs.Stage(ctx, name)
	err := fn()
	done(err)
	return err
}
