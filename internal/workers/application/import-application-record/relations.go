// internal/workers/application/import-application-record/relations.go
package importapplicationrecord

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"application-import/internal/common/database"
	apperrors "application-import/internal/common/errors"
	"application-import/internal/models"

	"github.com/tidwall/gjson"
)

const (
	assessorField          = "assessor"
	memberStatesField      = "memberStates"
	vehicleIdentifierField = "vehicleIdentifier"
)

// execQuerier is satisfied by *sql.Tx and *sql.DB.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ReadAssessorNames returns the assessor list in document order. An absent
// field is an empty list.
func ReadAssessorNames(node gjson.Result) ([]string, error) {
	return readStringList(node, assessorField)
}

// ReadMemberStates returns the member state codes verbatim.
func ReadMemberStates(node gjson.Result) ([]string, error) {
	return readStringList(node, memberStatesField)
}

// ReadVehicleIdentifiers splits the comma-delimited vehicleIdentifier field.
func ReadVehicleIdentifiers(node gjson.Result, skipEmpty bool) ([]string, error) {
	v := node.Get(vehicleIdentifierField)
	if !v.Exists() || v.Type == gjson.Null {
		return nil, apperrors.NewMissingFieldError(vehicleIdentifierField)
	}
	raw, err := scalarText(vehicleIdentifierField, v)
	if err != nil {
		return nil, err
	}
	return SplitVehicleIdentifiers(raw, skipEmpty), nil
}

// SplitVehicleIdentifiers splits raw on commas and trims every token.
// A string without a comma is a single token, even when empty. Trailing
// empty segments are dropped; leading and inner ones are kept unless
// skipEmpty is set.
func SplitVehicleIdentifiers(raw string, skipEmpty bool) []string {
	parts := strings.Split(raw, ",")
	if len(parts) > 1 {
		end := len(parts)
		for end > 0 && parts[end-1] == "" {
			end--
		}
		parts = parts[:end]
	}

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		token := strings.TrimSpace(p)
		if skipEmpty && token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func readStringList(node gjson.Result, field string) ([]string, error) {
	v := node.Get(field)
	if !v.Exists() {
		return []string{}, nil
	}
	if !v.IsArray() {
		return nil, apperrors.NewShapeError(field, fmt.Sprintf("expected array, got %s", kindOf(v)))
	}

	items := v.Array()
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := scalarText(fmt.Sprintf("%s[%d]", field, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

const (
	selectAssessorSQL = "SELECT assessor_id FROM Assessors WHERE name = ?"
	insertAssessorSQL = "INSERT INTO Assessors (name) VALUES (?) RETURNING assessor_id"
)

// AssessorResolver maps assessor names to ids, creating missing assessors.
// It must run on the import transaction; the unique constraint on
// Assessors.name turns a concurrent duplicate insert into a ConstraintError.
type AssessorResolver struct {
	q        execQuerier
	dialect  database.Dialect
	resolved map[string]int64
	created  int
}

func NewAssessorResolver(q execQuerier, dialect database.Dialect) *AssessorResolver {
	return &AssessorResolver{
		q:        q,
		dialect:  dialect,
		resolved: make(map[string]int64),
	}
}

// Resolve looks name up by exact match and inserts it when absent.
func (r *AssessorResolver) Resolve(ctx context.Context, name string) (int64, error) {
	if id, ok := r.resolved[name]; ok {
		return id, nil
	}

	var id int64
	err := r.q.QueryRowContext(ctx, r.dialect.Rebind(selectAssessorSQL), name).Scan(&id)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		if err := r.q.QueryRowContext(ctx, r.dialect.Rebind(insertAssessorSQL), name).Scan(&id); err != nil {
			return 0, fmt.Errorf("create assessor %q: %w", name, apperrors.ClassifyDatabaseError(models.TableAssessors, err))
		}
		r.created++
	default:
		return 0, fmt.Errorf("look up assessor %q: %w", name, apperrors.ClassifyDatabaseError(models.TableAssessors, err))
	}

	r.resolved[name] = id
	return id, nil
}

// ResolveAll resolves names in order; duplicates map to the same id.
func (r *AssessorResolver) ResolveAll(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := r.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Created reports how many assessors this resolver inserted.
func (r *AssessorResolver) Created() int {
	return r.created
}
