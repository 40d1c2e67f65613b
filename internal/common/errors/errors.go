// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

type ErrorCode string

const (
	ErrCodeLoadFailed           ErrorCode = "LOAD_FAILED"
	ErrCodeDocumentShapeInvalid ErrorCode = "DOCUMENT_SHAPE_INVALID"
	ErrCodeRequiredFieldMissing ErrorCode = "REQUIRED_FIELD_MISSING"
	ErrCodeFieldFormatInvalid   ErrorCode = "FIELD_FORMAT_INVALID"

	ErrCodeConstraintViolation      ErrorCode = "CONSTRAINT_VIOLATION"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseWriteFailed      ErrorCode = "DATABASE_WRITE_FAILED"
)

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrLoad         = &StandardError{Code: ErrCodeLoadFailed}
	ErrShape        = &StandardError{Code: ErrCodeDocumentShapeInvalid}
	ErrMissingField = &StandardError{Code: ErrCodeRequiredFieldMissing}
	ErrFormat       = &StandardError{Code: ErrCodeFieldFormatInvalid}
	ErrConstraint   = &StandardError{Code: ErrCodeConstraintViolation}
	ErrConnection   = &StandardError{Code: ErrCodeDatabaseConnectionFailed}
	ErrWrite        = &StandardError{Code: ErrCodeDatabaseWriteFailed}
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Field returns the document field the error refers to, if any.
func (e *StandardError) Field() string {
	if f, ok := e.Metadata["field"].(string); ok {
		return f
	}
	return ""
}

func newError(code ErrorCode, message, details string, cause error, metadata map[string]interface{}) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewLoadError(path string, err error) *StandardError {
	return newError(ErrCodeLoadFailed, "Input document could not be loaded",
		fmt.Sprintf("path: %s, error: %v", path, err), err,
		map[string]interface{}{"path": path})
}

func NewShapeError(field, details string) *StandardError {
	return newError(ErrCodeDocumentShapeInvalid, "Input document has an unexpected structure",
		fmt.Sprintf("field: %s, %s", field, details), nil,
		map[string]interface{}{"field": field})
}

func NewMissingFieldError(field string) *StandardError {
	return newError(ErrCodeRequiredFieldMissing, "Required field missing",
		fmt.Sprintf("field: %s", field), nil,
		map[string]interface{}{"field": field})
}

func NewFormatError(field, raw string, err error) *StandardError {
	details := fmt.Sprintf("field: %s, value: %q", field, raw)
	if err != nil {
		details = fmt.Sprintf("%s, error: %v", details, err)
	}
	return newError(ErrCodeFieldFormatInvalid, "Field value has an invalid format", details, err,
		map[string]interface{}{"field": field, "value": raw})
}

func NewConstraintError(table string, err error) *StandardError {
	return newError(ErrCodeConstraintViolation, "Database rejected the write",
		fmt.Sprintf("table: %s, error: %v", table, err), err,
		map[string]interface{}{"table": table})
}

func NewConnectionError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), err, nil)
}

func NewWriteError(table string, err error) *StandardError {
	return newError(ErrCodeDatabaseWriteFailed, "Database write operation failed",
		fmt.Sprintf("table: %s, error: %v", table, err), err,
		map[string]interface{}{"table": table})
}

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeLoadFailed, ErrCodeDocumentShapeInvalid,
		ErrCodeRequiredFieldMissing, ErrCodeFieldFormatInvalid:
		return "input"
	case ErrCodeConstraintViolation, ErrCodeDatabaseWriteFailed:
		return "database"
	case ErrCodeDatabaseConnectionFailed:
		return "connectivity"
	default:
		return "internal"
	}
}
