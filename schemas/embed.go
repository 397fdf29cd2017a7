// Package schemas embeds the JSON Schemas for the validation request and report documents.
package schemas

import _ "embed"

// ValidationRequest is the schema of a validation request document
//
//go:embed validation_request.schema.json
var ValidationRequest string

// ComplianceReport is the schema of a compliance report document
//
//go:embed compliance_report.schema.json
var ComplianceReport string
