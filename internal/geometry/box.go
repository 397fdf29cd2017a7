// Package geometry provides bounding-box math for canvas elements.
package geometry

import (
	"math"
	"unicode/utf8"

	"github.com/jonathan/creative-compliance/internal/types"
)

// Heuristic text metrics. These approximate glyph extents without font data and
// the rule thresholds are tuned against them.
const (
	DefaultFontSize  = 16.0
	DefaultWidth     = 100.0
	DefaultHeight    = 50.0
	CharWidthFactor  = 0.6
	LineHeightFactor = 1.2
)

// Box is an axis-aligned rectangle in canvas pixels
type Box struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBox builds a box from its origin and size; negative sizes clamp to zero
func NewBox(x, y, width, height float64) Box {
	width = math.Max(0, width)
	height = math.Max(0, height)
	return Box{
		X1:     x,
		Y1:     y,
		X2:     x + width,
		Y2:     y + height,
		Width:  width,
		Height: height,
	}
}

// Area returns width × height
func (b Box) Area() float64 {
	return b.Width * b.Height
}

// EffectiveFontSize returns the element font size or the default when unset
func EffectiveFontSize(el types.Element) float64 {
	if el.FontSize > 0 {
		return el.FontSize
	}
	return DefaultFontSize
}

// BoundingBox computes the box an element occupies.
// Text boxes are at least as large as the estimate len(text)×fontSize×0.6 by fontSize×1.2.
func BoundingBox(el types.Element) Box {
	width := el.Width
	height := el.Height

	if el.IsText() {
		fontSize := EffectiveFontSize(el)
		estWidth := float64(utf8.RuneCountInString(el.Text)) * fontSize * CharWidthFactor
		estHeight := fontSize * LineHeightFactor
		return NewBox(el.X, el.Y, math.Max(width, estWidth), math.Max(height, estHeight))
	}

	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return NewBox(el.X, el.Y, width, height)
}

// Intersects reports whether two boxes overlap. Touching edges do not count.
func Intersects(a, b Box) bool {
	return a.X1 < b.X2 && b.X1 < a.X2 && a.Y1 < b.Y2 && b.Y1 < a.Y2
}

// OverlapArea returns the area shared by two boxes
func OverlapArea(a, b Box) float64 {
	dx := math.Max(0, math.Min(a.X2, b.X2)-math.Max(a.X1, b.X1))
	dy := math.Max(0, math.Min(a.Y2, b.Y2)-math.Max(a.Y1, b.Y1))
	return dx * dy
}
