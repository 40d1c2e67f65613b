package validation

import (
	"errors"
	"testing"

	apperrors "application-import/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["applicationId", "submission", "isWholeEu"],
  "properties": {
    "applicationId": {"type": ["string", "number"]},
    "submission": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2} \\d{2}:\\d{2}:\\d{2}(\\.\\d+)?$"},
    "isWholeEu": {"type": "boolean"},
    "assessor": {"type": "array", "items": {"type": ["string", "number", "boolean"]}}
  }
}`

var mapping = ErrorMapping{
	Required: map[string]bool{"applicationId": true, "submission": true, "isWholeEu": true},
	Format:   map[string]bool{"submission": true, "isWholeEu": true},
}

func TestValidateJSON_Valid(t *testing.T) {
	result, err := ValidateJSON(`{"applicationId":"APP-1","submission":"2024-01-31 08:00:00","isWholeEu":true,"assessor":["A"]}`, testSchema)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.AsImportError(mapping))
}

func TestValidateJSON_Violations(t *testing.T) {
	tests := []struct {
		name     string
		document string
		field    string
		want     error
	}{
		{
			name:     "missing required field",
			document: `{"submission":"2024-01-31 08:00:00","isWholeEu":true}`,
			field:    "applicationId",
			want:     apperrors.ErrMissingField,
		},
		{
			name:     "null required field",
			document: `{"applicationId":null,"submission":"2024-01-31 08:00:00","isWholeEu":true}`,
			field:    "applicationId",
			want:     apperrors.ErrMissingField,
		},
		{
			name:     "bad timestamp",
			document: `{"applicationId":"APP-1","submission":"not-a-date","isWholeEu":true}`,
			field:    "submission",
			want:     apperrors.ErrFormat,
		},
		{
			name:     "string boolean",
			document: `{"applicationId":"APP-1","submission":"2024-01-31 08:00:00","isWholeEu":"yes"}`,
			field:    "isWholeEu",
			want:     apperrors.ErrFormat,
		},
		{
			name:     "null optional list",
			document: `{"applicationId":"APP-1","submission":"2024-01-31 08:00:00","isWholeEu":true,"assessor":null}`,
			field:    "assessor",
			want:     apperrors.ErrShape,
		},
		{
			name:     "assessor not an array",
			document: `{"applicationId":"APP-1","submission":"2024-01-31 08:00:00","isWholeEu":true,"assessor":"A"}`,
			field:    "assessor",
			want:     apperrors.ErrShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateJSON(tt.document, testSchema)
			require.NoError(t, err)

			assert.False(t, result.Valid)
			assert.True(t, result.HasErrors(tt.field), "errors: %v", result.GetErrorMessages())

			importErr := result.AsImportError(mapping)
			assert.True(t, errors.Is(importErr, tt.want), "got %v", importErr)
		})
	}
}

func TestValidateJSON_FormatErrorCarriesValue(t *testing.T) {
	result, err := ValidateJSON(`{"applicationId":"APP-1","submission":"31/01/2024","isWholeEu":true}`, testSchema)
	require.NoError(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(result.AsImportError(mapping), &stdErr))
	assert.Equal(t, "submission", stdErr.Field())
	assert.Equal(t, "31/01/2024", stdErr.Metadata["value"])
}

func TestValidateJSON_BrokenSchema(t *testing.T) {
	_, err := ValidateJSON(`{}`, `{"type": 12}`)
	assert.Error(t, err)
}
