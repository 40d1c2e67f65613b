// internal/workers/application/import-application-record/loader.go
package importapplicationrecord

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	apperrors "application-import/internal/common/errors"
	"application-import/internal/common/validation"

	"github.com/tidwall/gjson"
)

const applicationListField = "applicationListDTO"

//go:embed application.schema.json
var applicationSchema string

// LoadApplicationNode reads the document at path and returns the first
// element of its applicationListDTO array. Only the first application is
// imported; later elements are ignored.
func LoadApplicationNode(path string) (gjson.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, apperrors.NewLoadError(path, err)
	}
	return parseApplicationNode(path, data)
}

func parseApplicationNode(source string, data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, apperrors.NewLoadError(source, errors.New("malformed JSON"))
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return gjson.Result{}, apperrors.NewShapeError("(root)", fmt.Sprintf("expected object, got %s", kindOf(root)))
	}

	list := root.Get(applicationListField)
	if !list.Exists() {
		return gjson.Result{}, apperrors.NewShapeError(applicationListField, "field is absent")
	}
	if !list.IsArray() {
		return gjson.Result{}, apperrors.NewShapeError(applicationListField, fmt.Sprintf("expected array, got %s", kindOf(list)))
	}

	items := list.Array()
	if len(items) == 0 {
		return gjson.Result{}, apperrors.NewShapeError(applicationListField, "array is empty")
	}
	if !items[0].IsObject() {
		return gjson.Result{}, apperrors.NewShapeError(applicationListField+"[0]", fmt.Sprintf("expected object, got %s", kindOf(items[0])))
	}
	return items[0], nil
}

var schemaMapping = validation.ErrorMapping{
	Required: map[string]bool{
		"applicationId": true, "id": true, "applicationTypeId": true, "cachedLastUpdate": true,
		"decisionDate": true, "projectName": true, "submission": true, "modified": true,
		"applicationType": true, "applicationTypeVariantVersion": true, "caseType": true,
		"completenessAcknowledgement": true, "issuingAuthority": true, "legalDenomination": true,
		"applicationStatus": true, "phase": true, "subcategory": true, "isWholeEu": true,
		"preEngaged": true, "vehicleIdentifier": true,
	},
	Format: map[string]bool{
		"cachedLastUpdate": true, "decisionDate": true, "submission": true, "modified": true,
		"completenessAcknowledgement": true, "isWholeEu": true, "preEngaged": true,
	},
}

// ValidateApplicationNode checks the whole node up front. It only runs in
// strict mode; by default problems surface while the fields are written.
func ValidateApplicationNode(node gjson.Result) error {
	result, err := validation.ValidateJSON(node.Raw, applicationSchema)
	if err != nil {
		return fmt.Errorf("validate application: %w", err)
	}
	return result.AsImportError(schemaMapping)
}

func kindOf(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		if r.IsArray() {
			return "array"
		}
		return "object"
	}
}
