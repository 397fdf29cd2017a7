// Package contrast implements WCAG 2.x relative luminance and contrast ratios.
package contrast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Black and white in canonical hex form
const (
	Black = "#000000"
	White = "#FFFFFF"
)

// RGB is an sRGB color with 8-bit channels
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as #RRGGBB
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

var namedColors = map[string]RGB{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"yellow": {255, 255, 0},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"navy":   {0, 0, 128},
	"purple": {128, 0, 128},
	"orange": {255, 165, 0},
}

// ParseColor parses #RGB, #RRGGBB, #RRGGBBAA, rgb()/rgba() and a few named colors.
// Alpha is ignored.
func ParseColor(s string) (RGB, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if value == "" {
		return RGB{}, fmt.Errorf("empty color")
	}

	if named, ok := namedColors[value]; ok {
		return named, nil
	}

	if strings.HasPrefix(value, "#") {
		return parseHex(value[1:])
	}

	if strings.HasPrefix(value, "rgb") {
		return parseFunctional(value)
	}

	return RGB{}, fmt.Errorf("unsupported color: %q", s)
}

func parseHex(hex string) (RGB, error) {
	switch len(hex) {
	case 3, 4:
		expanded := make([]byte, 0, 6)
		for i := 0; i < 3; i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	case 6, 8:
		hex = hex[:6]
	default:
		return RGB{}, fmt.Errorf("invalid hex color length: %d", len(hex))
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color: %w", err)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

func parseFunctional(value string) (RGB, error) {
	open := strings.Index(value, "(")
	closeIdx := strings.LastIndex(value, ")")
	if open < 0 || closeIdx <= open {
		return RGB{}, fmt.Errorf("malformed color function: %q", value)
	}

	parts := strings.Split(value[open+1:closeIdx], ",")
	if len(parts) < 3 {
		return RGB{}, fmt.Errorf("color function needs three channels: %q", value)
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		channel, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid channel %q: %w", parts[i], err)
		}
		channels[i] = uint8(math.Round(math.Max(0, math.Min(255, channel))))
	}
	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// linearize converts one 8-bit sRGB channel to linear light
func linearize(channel uint8) float64 {
	c := float64(channel) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RelativeLuminance returns L = 0.2126R + 0.7152G + 0.0722B over linear channels
func RelativeLuminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// Ratio returns the contrast ratio between two parsed colors, always >= 1
func Ratio(a, b RGB) float64 {
	la := RelativeLuminance(a)
	lb := RelativeLuminance(b)
	lighter, darker := math.Max(la, lb), math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

// ContrastRatio parses both colors and returns their WCAG contrast ratio
func ContrastRatio(colorA, colorB string) (float64, error) {
	a, err := ParseColor(colorA)
	if err != nil {
		return 0, err
	}
	b, err := ParseColor(colorB)
	if err != nil {
		return 0, err
	}
	return Ratio(a, b), nil
}

// BestTextColor returns whichever of black or white contrasts more with the background
func BestTextColor(background RGB) (string, float64) {
	black := Ratio(RGB{}, background)
	white := Ratio(RGB{R: 255, G: 255, B: 255}, background)
	if black >= white {
		return Black, black
	}
	return White, white
}
