package validation

import (
	"fmt"
	"sort"
	"strings"

	apperrors "application-import/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

const rootContext = "(root)"

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Given   string `json:"given,omitempty"`
	Value   string `json:"value,omitempty"`
}

// ValidateJSON validates a raw JSON document against a JSON schema.
func ValidateJSON(document, schema string) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, toValidationError(desc))
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out, nil
}

func toValidationError(desc gojsonschema.ResultError) ValidationError {
	field := desc.Field()
	details := desc.Details()
	if desc.Type() == "required" {
		if prop, ok := details["property"].(string); ok {
			if field == rootContext || field == "" {
				field = prop
			} else {
				field = field + "." + prop
			}
		}
	}

	given := ""
	if g, ok := details["given"].(string); ok {
		given = g
	}

	value := ""
	if v := desc.Value(); v != nil {
		value = fmt.Sprint(v)
	}

	return ValidationError{
		Field:   field,
		Message: desc.Description(),
		Code:    desc.Type(),
		Given:   given,
		Value:   value,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

// ErrorMapping tells AsImportError how to classify violations per top-level field.
type ErrorMapping struct {
	Required map[string]bool // an explicit null counts as missing
	Format   map[string]bool // type or pattern violations are format errors
}

// AsImportError converts the first violation into the import error kinds:
// a missing or null required value is a MissingFieldError, a bad value of a
// format field is a FormatError and anything else is a ShapeError.
func (vr *ValidationResult) AsImportError(m ErrorMapping) error {
	if vr == nil || vr.Valid || len(vr.Errors) == 0 {
		return nil
	}

	first := vr.Errors[0]
	top := first.Field
	if idx := strings.Index(top, "."); idx >= 0 {
		top = top[:idx]
	}

	switch {
	case first.Code == "required":
		return apperrors.NewMissingFieldError(first.Field)
	case first.Code == "invalid_type" && first.Given == "null" && top == first.Field && m.Required[top]:
		return apperrors.NewMissingFieldError(first.Field)
	case m.Format[top]:
		return apperrors.NewFormatError(first.Field, first.Value, fmt.Errorf("%s", first.Message))
	default:
		return apperrors.NewShapeError(first.Field, strings.Join(vr.GetErrorMessages(), "; "))
	}
}
