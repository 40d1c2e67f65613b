// internal/workers/application/import-application-record/mapper.go
package importapplicationrecord

import (
	"database/sql"
	"fmt"
	"time"

	apperrors "application-import/internal/common/errors"
	"application-import/internal/models"

	"github.com/tidwall/gjson"
)

// TimestampLayout is the only accepted timestamp form. A fractional second
// after the seconds field is accepted when parsing.
const TimestampLayout = "2006-01-02 15:04:05"

// ParseTimestamp parses a document timestamp as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, raw, time.UTC)
}

// MapApplication builds the Applications row from the application node.
// Fields are read in column order and the first problem is returned.
func MapApplication(node gjson.Result) (*models.Application, error) {
	r := &fieldReader{node: node}

	app := &models.Application{
		ApplicationID:                 r.text("applicationId"),
		ID:                            r.text("id"),
		ApplicationTypeID:             r.text("applicationTypeId"),
		CachedLastUpdate:              r.timestamp("cachedLastUpdate"),
		DecisionDate:                  r.timestamp("decisionDate"),
		ProjectName:                   r.text("projectName"),
		Submission:                    r.timestamp("submission"),
		ProjectManager:                r.optionalText("projectManager"),
		Assuror:                       r.optionalText("assuror"),
		DecisionMaker:                 r.optionalText("decisionMaker"),
		Modified:                      r.timestamp("modified"),
		ApplicationType:               r.text("applicationType"),
		ApplicationTypeVariantVersion: r.text("applicationTypeVariantVersion"),
		CaseType:                      r.text("caseType"),
		CompletenessAcknowledgement:   r.timestamp("completenessAcknowledgement"),
		IssuingAuthority:              r.text("issuingAuthority"),
		EIN:                           r.optionalText("ein"),
		LegalDenomination:             r.text("legalDenomination"),
		ApplicationStatus:             r.text("applicationStatus"),
		Phase:                         r.text("phase"),
		Subcategory:                   r.text("subcategory"),
		IsWholeEU:                     r.boolean("isWholeEu"),
		PreEngaged:                    r.boolean("preEngaged"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return app, nil
}

// fieldReader keeps the first error; later reads return zero values.
type fieldReader struct {
	node gjson.Result
	err  error
}

func (r *fieldReader) present(field string) (gjson.Result, bool) {
	if r.err != nil {
		return gjson.Result{}, false
	}
	v := r.node.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return v, false
	}
	return v, true
}

func (r *fieldReader) text(field string) string {
	v, ok := r.present(field)
	if !ok {
		if r.err == nil {
			r.err = apperrors.NewMissingFieldError(field)
		}
		return ""
	}
	s, err := scalarText(field, v)
	if err != nil {
		r.err = err
	}
	return s
}

func (r *fieldReader) optionalText(field string) sql.NullString {
	v, ok := r.present(field)
	if !ok {
		return sql.NullString{}
	}
	s, err := scalarText(field, v)
	if err != nil {
		r.err = err
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (r *fieldReader) timestamp(field string) time.Time {
	v, ok := r.present(field)
	if !ok {
		if r.err == nil {
			r.err = apperrors.NewMissingFieldError(field)
		}
		return time.Time{}
	}
	if v.Type != gjson.String {
		r.err = apperrors.NewFormatError(field, v.Raw, fmt.Errorf("expected timestamp string, got %s", kindOf(v)))
		return time.Time{}
	}
	ts, err := ParseTimestamp(v.Str)
	if err != nil {
		r.err = apperrors.NewFormatError(field, v.Str, err)
		return time.Time{}
	}
	return ts
}

func (r *fieldReader) boolean(field string) bool {
	v, ok := r.present(field)
	if !ok {
		if r.err == nil {
			r.err = apperrors.NewMissingFieldError(field)
		}
		return false
	}
	switch v.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		r.err = apperrors.NewFormatError(field, v.Raw, fmt.Errorf("expected boolean, got %s", kindOf(v)))
		return false
	}
}

// scalarText returns strings verbatim and numbers or booleans as their
// literal JSON text. Objects and arrays are shape errors.
func scalarText(field string, v gjson.Result) (string, error) {
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw, nil
	default:
		return "", apperrors.NewShapeError(field, fmt.Sprintf("expected text, got %s", kindOf(v)))
	}
}
