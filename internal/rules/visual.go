package rules

import (
	"fmt"

	"github.com/jonathan/creative-compliance/internal/classify"
	"github.com/jonathan/creative-compliance/internal/contrast"
	"github.com/jonathan/creative-compliance/internal/types"
)

// CheckContrast flags text whose fill does not reach the contrast threshold
// against the background. The fix is whichever of black or white contrasts more.
func CheckContrast(items []Item, ctx *Context) []types.Violation {
	cfg := ctx.Config

	var violations []types.Violation
	for _, it := range items {
		if !it.Element.IsText() || it.Decorative() {
			continue
		}

		fill := it.Element.Fill
		if fill == "" {
			fill = cfg.DefaultTextColor
		}
		color, err := contrast.ParseColor(fill)
		if err != nil {
			continue
		}

		ratio := contrast.Ratio(color, ctx.Background)
		if ratio >= cfg.ContrastThreshold {
			continue
		}

		best, bestRatio := contrast.BestTextColor(ctx.Background)
		violations = append(violations, types.Violation{
			ElementID:  it.Element.ID,
			PageIndex:  pageRef(it.PageIndex),
			Rule:       types.RuleContrast,
			Severity:   types.SeverityWarning,
			Message:    fmt.Sprintf("Contrast ratio %.2f:1 is below %.1f:1", ratio, cfg.ContrastThreshold),
			Suggestion: fmt.Sprintf("Use %s for %.1f:1 contrast", best, bestRatio),
		}.WithFix(types.ColorFix{Property: "fill", Color: best}))
	}
	return violations
}

// CheckDrinkaware requires the responsible-drinking mark on alcohol campaigns
func CheckDrinkaware(items []Item, ctx *Context) []types.Violation {
	if !ctx.IsAlcohol {
		return nil
	}
	for _, it := range items {
		if it.Is(classify.RoleDrinkaware) {
			return nil
		}
	}
	return []types.Violation{{
		Rule:       types.RuleDrinkaware,
		Severity:   types.SeverityHard,
		Message:    "Alcohol campaigns must include the Drinkaware logo",
		Suggestion: "Add the Drinkaware sticker in black or white",
	}}
}

// PeopleDetected builds the advisory emitted for an image containing faces
func PeopleDetected(it Item, faces int) types.Violation {
	return types.Violation{
		ElementID:  it.Element.ID,
		PageIndex:  pageRef(it.PageIndex),
		Rule:       types.RulePeopleDetected,
		Severity:   types.SeverityWarning,
		Message:    fmt.Sprintf("%d face(s) detected in image", faces),
		Suggestion: "Confirm model releases are in place for everyone shown",
		Faces:      &faces,
	}
}
