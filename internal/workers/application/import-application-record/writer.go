// internal/workers/application/import-application-record/writer.go
package importapplicationrecord

import (
	"context"
	"fmt"
	"strings"

	"application-import/internal/common/database"
	apperrors "application-import/internal/common/errors"
	"application-import/internal/models"
)

// Writer issues the import inserts on one transaction. Child rows are sent
// as multi-row INSERT statements of at most batchSize rows.
type Writer struct {
	q         execQuerier
	dialect   database.Dialect
	batchSize int
}

func NewWriter(q execQuerier, dialect database.Dialect, batchSize int) *Writer {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Writer{q: q, dialect: dialect, batchSize: batchSize}
}

func (w *Writer) InsertApplication(ctx context.Context, app *models.Application) error {
	_, err := w.insertBatch(ctx, models.TableApplications, models.ApplicationColumns,
		[][]interface{}{app.Values()})
	return err
}

func (w *Writer) InsertAssessorLinks(ctx context.Context, applicationID string, assessorIDs []int64) (int, error) {
	rows := make([][]interface{}, 0, len(assessorIDs))
	for _, id := range assessorIDs {
		rows = append(rows, []interface{}{applicationID, id})
	}
	return w.insertBatch(ctx, models.TableApplicationAssessors, []string{"application_id", "assessor_id"}, rows)
}

func (w *Writer) InsertMemberStates(ctx context.Context, applicationID string, states []string) (int, error) {
	rows := make([][]interface{}, 0, len(states))
	for _, code := range states {
		rows = append(rows, []interface{}{applicationID, code})
	}
	return w.insertBatch(ctx, models.TableApplicationMemberStates, []string{"application_id", "state_code"}, rows)
}

func (w *Writer) InsertVehicles(ctx context.Context, applicationID string, identifiers []string) (int, error) {
	rows := make([][]interface{}, 0, len(identifiers))
	for _, identifier := range identifiers {
		rows = append(rows, []interface{}{applicationID, identifier})
	}
	return w.insertBatch(ctx, models.TableVehicles, []string{"application_id", "identifier"}, rows)
}

// insertBatch returns the number of rows written before any error.
func (w *Writer) insertBatch(ctx context.Context, table string, columns []string, rows [][]interface{}) (int, error) {
	written := 0
	for start := 0; start < len(rows); start += w.batchSize {
		chunk := rows[start:min(start+w.batchSize, len(rows))]

		args := make([]interface{}, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			args = append(args, row...)
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			table, strings.Join(columns, ", "), database.Placeholders(len(columns), len(chunk)))

		if _, err := w.q.ExecContext(ctx, w.dialect.Rebind(query), args...); err != nil {
			return written, fmt.Errorf("insert %s: %w", table, apperrors.ClassifyDatabaseError(table, err))
		}
		written += len(chunk)
	}
	return written, nil
}
