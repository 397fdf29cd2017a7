// Package types provides type definitions for structured data used throughout the creative-compliance system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ElementKind is the normalised renderable kind of a canvas element
type ElementKind string

// Element kinds understood by the rule engine
const (
	KindText    ElementKind = "text"
	KindImage   ElementKind = "image"
	KindShape   ElementKind = "shape"
	KindSticker ElementKind = "sticker"
	KindOther   ElementKind = "other"
)

// shapeTypes are editor node types that render as plain geometry
var shapeTypes = map[string]bool{
	"shape":   true,
	"rect":    true,
	"circle":  true,
	"ellipse": true,
	"line":    true,
	"star":    true,
	"polygon": true,
	"path":    true,
	"arrow":   true,
}

// Element is a single design-canvas object as serialized by the editor.
// Zero Width, Height and FontSize mean "not set"; the geometry package applies defaults.
type Element struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Name       string   `json:"name,omitempty"`
	Role       string   `json:"role,omitempty"` // Explicit semantic tag (cta, packshot, logo, ...)
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	FontSize   float64  `json:"fontSize,omitempty"`
	FontWeight string   `json:"fontWeight,omitempty"`
	FontStyle  string   `json:"fontStyle,omitempty"`
	Fill       string   `json:"fill,omitempty"`
	Opacity    *float64 `json:"opacity,omitempty"`
	Text       string   `json:"text,omitempty"`
	Src        string   `json:"src,omitempty"`
}

// token decodes a JSON string or number into its string form. Editors emit numeric
// ids and CSS numeric font weights (700) as JSON numbers.
type token string

func (t *token) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = token(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*t = token(n.String())
	return nil
}

// UnmarshalJSON accepts numeric id and fontWeight values
func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	var aux struct {
		plain
		ID         token `json:"id"`
		FontWeight token `json:"fontWeight"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Element(aux.plain)
	e.ID = string(aux.ID)
	e.FontWeight = string(aux.FontWeight)
	return nil
}

// Kind returns the normalised kind of the element
func (e Element) Kind() ElementKind {
	t := strings.ToLower(strings.TrimSpace(e.Type))
	switch {
	case t == string(KindText) || t == "textbox" || t == "i-text":
		return KindText
	case t == string(KindImage) || t == "img":
		return KindImage
	case t == string(KindSticker):
		return KindSticker
	case shapeTypes[t]:
		return KindShape
	default:
		return KindOther
	}
}

// IsText reports whether the element carries text content
func (e Element) IsText() bool {
	return e.Kind() == KindText
}

// EffectiveOpacity returns the element opacity, defaulting to fully opaque
func (e Element) EffectiveOpacity() float64 {
	if e.Opacity == nil {
		return 1
	}
	return *e.Opacity
}

// IsBold reports whether the element renders in a bold weight
func (e Element) IsBold() bool {
	weight := strings.ToLower(strings.TrimSpace(e.FontWeight))
	if weight == "bold" || weight == "bolder" {
		return true
	}
	if n, err := strconv.ParseFloat(weight, 64); err == nil && n >= 700 {
		return true
	}
	return strings.Contains(strings.ToLower(e.FontStyle), "bold")
}

// Page is one page of a design with its ordered children
type Page struct {
	ID         string    `json:"id,omitempty"`
	Children   []Element `json:"children" validate:"dive"`
	Background string    `json:"background,omitempty"`
}

// CanvasSize is the size of the design surface in pixels
type CanvasSize struct {
	W float64 `json:"w" validate:"gt=0"`
	H float64 `json:"h" validate:"gt=0"`
}

// AspectRatio returns width / height, or 0 for a degenerate canvas
func (c CanvasSize) AspectRatio() float64 {
	if c.H <= 0 {
		return 0
	}
	return c.W / c.H
}

// Options are the per-run validation switches supplied by the editor
type Options struct {
	FormatType          string `json:"formatType,omitempty"`
	IsAlcohol           bool   `json:"isAlcohol,omitempty"`
	EnableFaceDetection bool   `json:"enableFaceDetection,omitempty"`
}

// ValidationRequest is the complete input of a validation run
type ValidationRequest struct {
	Pages   []Page     `json:"pages" validate:"dive"`
	Canvas  CanvasSize `json:"canvas"`
	Options Options    `json:"options"`
}

// Validate checks struct constraints (positive canvas, well-formed pages) using the validator.
func (r *ValidationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
