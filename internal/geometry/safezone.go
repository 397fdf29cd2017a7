package geometry

import (
	"math"

	"github.com/jonathan/creative-compliance/internal/types"
)

// Safe zone names
const (
	ZoneTop    = "top"
	ZoneBottom = "bottom"
)

// SafeZoneSpec describes the top and bottom exclusion bands for one aspect-ratio class
type SafeZoneSpec struct {
	Name      string  `json:"name" yaml:"name"`
	Aspect    float64 `json:"aspect" yaml:"aspect" validate:"gt=0"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance" validate:"gte=0"`
	Top       float64 `json:"top" yaml:"top" validate:"gte=0"`
	Bottom    float64 `json:"bottom" yaml:"bottom" validate:"gte=0"`
}

// Matches reports whether the canvas aspect ratio is within Tolerance of Aspect
func (s SafeZoneSpec) Matches(canvas types.CanvasSize) bool {
	aspect := canvas.AspectRatio()
	if aspect <= 0 {
		return false
	}
	return math.Abs(aspect-s.Aspect) <= s.Tolerance
}

// SafeZoneFor returns the first spec matching the canvas, if any
func SafeZoneFor(canvas types.CanvasSize, specs []SafeZoneSpec) (SafeZoneSpec, bool) {
	for _, spec := range specs {
		if spec.Matches(canvas) {
			return spec, true
		}
	}
	return SafeZoneSpec{}, false
}

// SafeZoneResult reports whether an element clears the exclusion bands
type SafeZoneResult struct {
	Safe     bool
	Zone     string
	Distance float64 // How far the box penetrates the zone
}

// IsInSafeZone checks the element box against the top band, then the bottom band
func IsInSafeZone(el types.Element, spec SafeZoneSpec, canvasHeight float64) SafeZoneResult {
	return BoxInSafeZone(BoundingBox(el), spec, canvasHeight)
}

// BoxInSafeZone is IsInSafeZone for a precomputed box
func BoxInSafeZone(box Box, spec SafeZoneSpec, canvasHeight float64) SafeZoneResult {
	if box.Y1 < spec.Top {
		return SafeZoneResult{Zone: ZoneTop, Distance: spec.Top - box.Y1}
	}
	limit := canvasHeight - spec.Bottom
	if box.Y2 > limit {
		return SafeZoneResult{Zone: ZoneBottom, Distance: box.Y2 - limit}
	}
	return SafeZoneResult{Safe: true}
}
