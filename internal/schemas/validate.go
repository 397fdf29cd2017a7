// Package schemas provides JSON Schema validation for request and report documents.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jonathan/creative-compliance/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Fields returns "field: message" for every error, for compact logging and API responses
func (ve *ValidationError) Fields() []string {
	out := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		out = append(out, e.Field+": "+e.Message)
	}
	return out
}

var (
	compileOnce   sync.Once
	requestSchema *gojsonschema.Schema
	reportSchema  *gojsonschema.Schema
	compileErr    error
)

func compiled() (*gojsonschema.Schema, *gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		requestSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(embedded.ValidationRequest))
		if compileErr != nil {
			compileErr = &SchemaLoadError{Path: "validation_request.schema.json", Message: "failed to compile", Cause: compileErr}
			return
		}
		reportSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(embedded.ComplianceReport))
		if compileErr != nil {
			compileErr = &SchemaLoadError{Path: "compliance_report.schema.json", Message: "failed to compile", Cause: compileErr}
		}
	})
	return requestSchema, reportSchema, compileErr
}

// ValidateRequest checks a raw validation request document against the embedded schema
func ValidateRequest(data []byte) error {
	request, _, err := compiled()
	if err != nil {
		return err
	}
	return validateWith(request, gojsonschema.NewBytesLoader(data))
}

// ValidateReport checks a raw compliance report document against the embedded schema
func ValidateReport(data []byte) error {
	_, report, err := compiled()
	if err != nil {
		return err
	}
	return validateWith(report, gojsonschema.NewBytesLoader(data))
}

func validateWith(schema *gojsonschema.Schema, document gojsonschema.JSONLoader) error {
	result, err := schema.Validate(document)
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: fmt.Sprintf("document is not valid JSON: %v", err)}}}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
