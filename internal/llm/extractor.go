// Package llm - extractor.go builds prompts that ask a model for structured JSON.
package llm

import (
	"fmt"
	"strings"

	"github.com/jonathan/creative-compliance/internal/prompts"
)

// ExtractionSchema describes the JSON a model must return for a task
type ExtractionSchema struct {
	Name        string
	Description string // Task preamble
	Fields      []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string
	Required    bool
}

// BuildExtractionPrompt constructs the prompt from the schema. Input is appended
// verbatim when non-empty; image tasks pass the image as a separate part instead.
func BuildExtractionPrompt(schema ExtractionSchema, input string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Report only what is visible, do not guess.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	if input != "" {
		sb.WriteString("\nInput:\n\"\"\"\n")
		sb.WriteString(input)
		sb.WriteString("\n\"\"\"\n")
	}

	return sb.String()
}

// FaceDetectionSchema asks for the bounding boxes of human faces in an image,
// in pixel coordinates of the supplied image.
func FaceDetectionSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "FaceDetection",
		Description: prompts.MustGet(prompts.FacesFile, "detect-faces"),
		Fields: []SchemaField{
			{
				Name:        "faces",
				Type:        `[{"x": number, "y": number, "width": number, "height": number, "confidence": number}]`,
				Description: prompts.MustGet(prompts.FacesFile, "faces-field"),
				Required:    true,
			},
		},
	}
}
