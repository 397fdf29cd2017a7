package rules

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/creative-compliance/internal/classify"
	"github.com/jonathan/creative-compliance/internal/contrast"
	"github.com/jonathan/creative-compliance/internal/geometry"
	"github.com/jonathan/creative-compliance/internal/types"
)

// Element IDs used for inserted template elements
const (
	InsertedTagID      = "auto-brand-tag"
	InsertedHeadlineID = "auto-headline"
)

var clubcardDatePattern = regexp.MustCompile(`(?i)\bends\s+\d{1,2}/\d{1,2}`)

// CheckMissingTag requires at least one text element carrying an allowed tag
func CheckMissingTag(items []Item, ctx *Context) []types.Violation {
	for _, it := range items {
		if it.Element.IsText() && it.Is(classify.RoleBrandTag) {
			return nil
		}
	}

	cfg := ctx.Config
	size := math.Max(cfg.MinFontSize(ctx.FormatType), 20)
	tag := templateText(ctx, InsertedTagID, cfg.DefaultTag, size, false)
	tag.Y = bottomPlacement(ctx, size*geometry.LineHeightFactor)

	return []types.Violation{types.Violation{
		Rule:       types.RuleMissingTag,
		Severity:   types.SeverityHard,
		Message:    "No brand tag found",
		Suggestion: fmt.Sprintf("Add one of: %s", strings.Join(cfg.AllowedTags, ", ")),
	}.WithFix(types.AddElementFix{PageIndex: 0, Element: tag})}
}

// CheckMissingHeadline requires a large text element that is not a tag or value tile
func CheckMissingHeadline(items []Item, ctx *Context) []types.Violation {
	cfg := ctx.Config
	for _, it := range items {
		if !it.Element.IsText() || it.Is(classify.RoleBrandTag) || it.Is(classify.RoleValueTile) {
			continue
		}
		if geometry.EffectiveFontSize(it.Element) >= cfg.HeadlineMinFontSize {
			return nil
		}
	}

	headline := templateText(ctx, InsertedHeadlineID, cfg.HeadlinePlaceholder, cfg.HeadlineFontSize, true)
	headline.Y = topPlacement(ctx)

	return []types.Violation{types.Violation{
		Rule:       types.RuleMissingHeadline,
		Severity:   types.SeverityHard,
		Message:    "No headline found",
		Suggestion: fmt.Sprintf("Add a headline of at least %.0fpx", cfg.HeadlineMinFontSize),
	}.WithFix(types.AddElementFix{PageIndex: 0, Element: headline})}
}

// CheckClubcardDate requires Clubcard copy to carry an "Ends DD/MM" date
func CheckClubcardDate(items []Item, _ *Context) []types.Violation {
	var violations []types.Violation
	for _, it := range items {
		if !it.Element.IsText() {
			continue
		}
		text := it.Element.Text
		if !strings.Contains(strings.ToLower(text), "clubcard") || clubcardDatePattern.MatchString(text) {
			continue
		}
		violations = append(violations, types.Violation{
			ElementID:  it.Element.ID,
			PageIndex:  pageRef(it.PageIndex),
			Rule:       types.RuleClubcardDate,
			Severity:   types.SeverityHard,
			Message:    "Clubcard pricing must state an end date",
			Suggestion: "Add \"Clubcard/app required. Ends DD/MM\"",
		})
	}
	return violations
}

// CheckBlockedKeywords flags every blocked keyword found in element text.
// Matching is a case-insensitive substring test, so matches inside longer words count.
func CheckBlockedKeywords(items []Item, ctx *Context) []types.Violation {
	cfg := ctx.Config

	var violations []types.Violation
	for _, it := range items {
		if it.Element.Text == "" {
			continue
		}
		text := strings.ToLower(it.Element.Text)
		for _, keyword := range cfg.BlockedKeywords {
			k := strings.ToLower(strings.TrimSpace(keyword))
			if k == "" || !strings.Contains(text, k) {
				continue
			}
			violations = append(violations, types.Violation{
				ElementID:  it.Element.ID,
				PageIndex:  pageRef(it.PageIndex),
				Rule:       types.RuleBlockedKeyword,
				Severity:   types.SeverityHard,
				Message:    fmt.Sprintf("Text contains blocked keyword %q", k),
				Suggestion: cfg.SuggestionFor(k),
				Keyword:    k,
			})
		}
	}
	return violations
}

// templateText builds a centred text element readable against the background
func templateText(ctx *Context, id, text string, size float64, bold bool) types.Element {
	fill, _ := contrast.BestTextColor(ctx.Background)
	width := float64(utf8.RuneCountInString(text)) * size * geometry.CharWidthFactor

	el := types.Element{
		ID:       id,
		Type:     string(types.KindText),
		X:        math.Max(0, math.Round((ctx.Canvas.W-width)/2)),
		Width:    math.Ceil(width),
		FontSize: size,
		Fill:     fill,
		Text:     text,
	}
	if bold {
		el.FontWeight = "bold"
	}
	return el
}

// topPlacement is the first Y clear of the top safe zone
func topPlacement(ctx *Context) float64 {
	top := 0.0
	if spec, ok := geometry.SafeZoneFor(ctx.Canvas, ctx.Config.SafeZones); ok {
		top = spec.Top
	}
	return top + ctx.Config.SafeZoneMargin
}

// bottomPlacement is the lowest Y at which a box of the given height clears the bottom safe zone
func bottomPlacement(ctx *Context, height float64) float64 {
	bottom := 0.0
	if spec, ok := geometry.SafeZoneFor(ctx.Canvas, ctx.Config.SafeZones); ok {
		bottom = spec.Bottom
	}
	return math.Max(0, math.Floor(ctx.Canvas.H-bottom-height-ctx.Config.SafeZoneMargin))
}
