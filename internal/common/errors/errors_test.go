package errors

import (
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := NewMissingFieldError("applicationId")

	assert.True(t, stderrors.Is(err, ErrMissingField))
	assert.False(t, stderrors.Is(err, ErrFormat))
	assert.Equal(t, "applicationId", err.Field())
	assert.Contains(t, err.Error(), "REQUIRED_FIELD_MISSING")
	assert.Contains(t, err.Error(), "applicationId")
}

func TestStandardError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("insert application: %w", NewFormatError("submission", "not-a-date", nil))

	assert.True(t, stderrors.Is(err, ErrFormat))
	assert.Equal(t, ErrCodeFieldFormatInvalid, CodeOf(err))
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("no such file")
	err := NewLoadError("/tmp/app.json", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, ErrLoad))
	assert.False(t, err.Retryable)
}

func TestCodeOf_UnknownError(t *testing.T) {
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), CodeOf(stderrors.New("boom")))
}

func TestClassifyDatabaseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *StandardError
	}{
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key"}, ErrConstraint},
		{"foreign key violation", &pq.Error{Code: "23503"}, ErrConstraint},
		{"connection exception", &pq.Error{Code: "08006"}, ErrConnection},
		{"syntax error", &pq.Error{Code: "42601"}, ErrWrite},
		{"bad connection", driver.ErrBadConn, ErrConnection},
		{"wrapped pq error", fmt.Errorf("exec: %w", &pq.Error{Code: "23505"}), ErrConstraint},
		{"plain error", stderrors.New("disk full"), ErrWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDatabaseError("Applications", tt.err)
			assert.True(t, stderrors.Is(got, tt.want), "got %v", got)
		})
	}
}

func TestClassifyDatabaseError_KeepsStandardErrors(t *testing.T) {
	original := NewShapeError("memberStates", "expected array")
	assert.Same(t, original, ClassifyDatabaseError("Vehicles", original))
	assert.Nil(t, ClassifyDatabaseError("Vehicles", nil))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "input", GetErrorCategory(ErrCodeFieldFormatInvalid))
	assert.Equal(t, "database", GetErrorCategory(ErrCodeConstraintViolation))
	assert.Equal(t, "connectivity", GetErrorCategory(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, "internal", GetErrorCategory("SOMETHING_ELSE"))
}
