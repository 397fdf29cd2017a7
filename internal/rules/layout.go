package rules

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/creative-compliance/internal/classify"
	"github.com/jonathan/creative-compliance/internal/geometry"
	"github.com/jonathan/creative-compliance/internal/types"
)

// CheckSafeZones flags non-decorative elements that intrude into the top or
// bottom exclusion band. Canvases outside every configured aspect class are skipped.
func CheckSafeZones(items []Item, ctx *Context) []types.Violation {
	spec, ok := geometry.SafeZoneFor(ctx.Canvas, ctx.Config.SafeZones)
	if !ok {
		return nil
	}

	margin := ctx.Config.SafeZoneMargin
	band := ctx.Canvas.H - spec.Top - spec.Bottom

	var violations []types.Violation
	for _, it := range items {
		if it.Decorative() {
			continue
		}
		result := geometry.BoxInSafeZone(it.Box, spec, ctx.Canvas.H)
		if result.Safe {
			continue
		}

		v := types.Violation{
			ElementID:  it.Element.ID,
			PageIndex:  pageRef(it.PageIndex),
			Rule:       types.RuleSafeZone,
			Severity:   types.SeverityHard,
			Message:    fmt.Sprintf("Element is %.0fpx inside the %s safe zone", result.Distance, result.Zone),
			Suggestion: fmt.Sprintf("Keep content %.0fpx from the top and %.0fpx from the bottom", spec.Top, spec.Bottom),
			Zone:       result.Zone,
			Distance:   floatRef(result.Distance),
		}

		// An element taller than the safe band cannot be cleared by moving it
		if it.Box.Height+2*margin <= band {
			y := spec.Top + margin
			if result.Zone == geometry.ZoneBottom {
				y = ctx.Canvas.H - spec.Bottom - it.Box.Height - margin
			}
			v = v.WithFix(types.MoveFix{Y: y})
		}
		violations = append(violations, v)
	}
	return violations
}

// CheckOverlaps flags pairs of ordinary elements on the same page whose overlap
// exceeds the configured share of the smaller element. Decorative and protected
// elements are left to CheckProtectedOverlaps.
func CheckOverlaps(items []Item, ctx *Context) []types.Violation {
	threshold := ctx.Config.OverlapThreshold

	var violations []types.Violation
	for i := 0; i < len(items); i++ {
		a := items[i]
		if a.Decorative() || a.Protected() {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			b := items[j]
			if b.PageIndex != a.PageIndex || b.Decorative() || b.Protected() {
				continue
			}
			if !geometry.Intersects(a.Box, b.Box) {
				continue
			}

			smaller := math.Min(a.Box.Area(), b.Box.Area())
			if smaller <= 0 {
				continue
			}
			ratio := geometry.OverlapArea(a.Box, b.Box) / smaller
			if ratio <= threshold {
				continue
			}

			percent := math.Round(ratio*1000) / 10
			violations = append(violations, types.Violation{
				ElementID:      b.Element.ID,
				PageIndex:      pageRef(b.PageIndex),
				Rule:           types.RuleOverlap,
				Severity:       types.SeverityWarning,
				Message:        fmt.Sprintf("Element overlaps %q by %.1f%%", a.Element.ID, percent),
				Suggestion:     "Separate overlapping elements so each stays readable",
				OverlapPercent: floatRef(percent),
			})
		}
	}
	return violations
}

// CheckProtectedOverlaps flags any element covering a logo, CTA or packshot and
// proposes moving it below the protected element.
func CheckProtectedOverlaps(items []Item, ctx *Context) []types.Violation {
	margin := ctx.Config.ProtectedMargin

	var violations []types.Violation
	for i, p := range items {
		if !p.Protected() {
			continue
		}
		for j, o := range items {
			if i == j || o.PageIndex != p.PageIndex || o.Decorative() {
				continue
			}
			// Report each protected pair once
			if o.Protected() && j < i && !p.Decorative() {
				continue
			}
			if !geometry.Intersects(p.Box, o.Box) {
				continue
			}

			percent := 0.0
			if area := math.Min(p.Box.Area(), o.Box.Area()); area > 0 {
				percent = math.Round(geometry.OverlapArea(p.Box, o.Box)/area*1000) / 10
			}
			violations = append(violations, types.Violation{
				ElementID:      o.Element.ID,
				PageIndex:      pageRef(o.PageIndex),
				Rule:           types.RuleOverlap,
				Severity:       types.SeverityWarning,
				Message:        fmt.Sprintf("Element overlaps protected %s %q", p.Class.Primary, p.Element.ID),
				Suggestion:     "Nothing may cover the logo, call to action or product shot",
				OverlapPercent: floatRef(percent),
			}.WithFix(types.MoveFix{Y: p.Box.Y2 + margin}))
		}
	}
	return violations
}

// CheckMinFontSize flags text below the minimum size for the format
func CheckMinFontSize(items []Item, ctx *Context) []types.Violation {
	minimum := ctx.Config.MinFontSize(ctx.FormatType)

	var violations []types.Violation
	for _, it := range items {
		if !it.Element.IsText() {
			continue
		}
		size := geometry.EffectiveFontSize(it.Element)
		if size >= minimum {
			continue
		}
		violations = append(violations, types.Violation{
			ElementID: it.Element.ID,
			PageIndex: pageRef(it.PageIndex),
			Rule:      types.RuleMinFontSize,
			Severity:  types.SeverityHard,
			Message:   fmt.Sprintf("Font size %.0fpx is below the %.0fpx minimum", size, minimum),
		}.WithFix(types.FontSizeFix{FontSize: minimum}))
	}
	return violations
}

// CheckCTA reports a missing call to action and CTAs with too little text
func CheckCTA(items []Item, ctx *Context) []types.Violation {
	var ctas []Item
	for _, it := range items {
		if it.Is(classify.RoleCTA) {
			ctas = append(ctas, it)
		}
	}

	if len(ctas) == 0 {
		return []types.Violation{{
			Rule:       types.RuleCTA,
			Severity:   types.SeverityInfo,
			Message:    "No call to action found",
			Suggestion: "Add a short call to action such as \"Shop now\"",
		}}
	}

	var violations []types.Violation
	for _, cta := range ctas {
		if !cta.Element.IsText() {
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(cta.Element.Text)) >= ctx.Config.MinCTALength {
			continue
		}
		violations = append(violations, types.Violation{
			ElementID:  cta.Element.ID,
			PageIndex:  pageRef(cta.PageIndex),
			Rule:       types.RuleCTA,
			Severity:   types.SeverityInfo,
			Message:    "Call to action text is too short",
			Suggestion: "Use a clear action phrase",
		})
	}
	return violations
}

// CheckValueTiles requires at least one value tile and checks its emphasis
func CheckValueTiles(items []Item, ctx *Context) []types.Violation {
	var tiles []Item
	for _, it := range items {
		if it.Is(classify.RoleValueTile) {
			tiles = append(tiles, it)
		}
	}

	if len(tiles) == 0 {
		return []types.Violation{{
			Rule:       types.RuleValueTiles,
			Severity:   types.SeverityHard,
			Message:    "No value tile found",
			Suggestion: "Add a price, Clubcard or New tile",
		}}
	}

	cfg := ctx.Config
	var violations []types.Violation
	for _, tile := range tiles {
		if !tile.Element.IsText() {
			continue
		}
		size := geometry.EffectiveFontSize(tile.Element)
		switch {
		case size < cfg.ValueTileMinFontSize:
			violations = append(violations, types.Violation{
				ElementID: tile.Element.ID,
				PageIndex: pageRef(tile.PageIndex),
				Rule:      types.RuleValueTiles,
				Severity:  types.SeverityWarning,
				Message:   fmt.Sprintf("Value tile text %.0fpx is smaller than %.0fpx", size, cfg.ValueTileMinFontSize),
			}.WithFix(types.TextStyleFix{FontSize: cfg.ValueTileFixFontSize, Bold: true}))
		case !tile.Element.IsBold():
			violations = append(violations, types.Violation{
				ElementID: tile.Element.ID,
				PageIndex: pageRef(tile.PageIndex),
				Rule:      types.RuleValueTiles,
				Severity:  types.SeverityInfo,
				Message:   "Value tile text should be bold",
			}.WithFix(types.TextStyleFix{Bold: true}))
		}
	}
	return violations
}

// CheckPackshots checks packshot presence, count and the size of the largest one
func CheckPackshots(items []Item, ctx *Context) []types.Violation {
	cfg := ctx.Config

	var packshots []Item
	for _, it := range items {
		if it.Is(classify.RolePackshot) {
			packshots = append(packshots, it)
		}
	}

	if len(packshots) == 0 {
		return []types.Violation{{
			Rule:       types.RulePackshots,
			Severity:   types.SeverityWarning,
			Message:    "No packshot found",
			Suggestion: "Add a product image",
		}}
	}

	var violations []types.Violation
	if len(packshots) > cfg.MaxPackshots {
		violations = append(violations, types.Violation{
			Rule:     types.RulePackshots,
			Severity: types.SeverityWarning,
			Message:  fmt.Sprintf("%d packshots found, at most %d allowed", len(packshots), cfg.MaxPackshots),
		})
	}

	largest := packshots[0]
	for _, p := range packshots[1:] {
		if p.Box.Area() > largest.Box.Area() {
			largest = p
		}
	}

	area := largest.Box.Area()
	if area >= cfg.MinPackshotArea {
		return violations
	}

	v := types.Violation{
		ElementID:  largest.Element.ID,
		PageIndex:  pageRef(largest.PageIndex),
		Rule:       types.RulePackshots,
		Severity:   types.SeverityWarning,
		Message:    fmt.Sprintf("Largest packshot is %.0fpx², below the %.0fpx² minimum", area, cfg.MinPackshotArea),
		Suggestion: "Make the product image larger",
	}
	if area > 0 {
		// Scale far enough to clear the minimum in one step
		factor := math.Max(cfg.PackshotScale, math.Sqrt(cfg.MinPackshotArea/area))
		v = v.WithFix(types.ResizeFix{
			Width:  math.Ceil(largest.Box.Width * factor),
			Height: math.Ceil(largest.Box.Height * factor),
		})
	}
	return append(violations, v)
}
