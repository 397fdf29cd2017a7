package classify

import (
	"regexp"
	"strings"

	"github.com/jonathan/creative-compliance/internal/types"
)

// DefaultDecorativeOpacity is the opacity below which an element counts as decorative
const DefaultDecorativeOpacity = 0.3

var (
	valueTilePattern = regexp.MustCompile(`(?i)([£$€]\s?\d+([.,]\d{1,2})?|\b\d+([.,]\d{1,2})?p\b|clubcard|\bnew\b)`)
	ctaPattern       = regexp.MustCompile(`(?i)\b(shop now|buy now|learn more|find out more|discover( more)?|order now|get yours|try (it )?now|see more|book now|explore|shop the range)\b`)
)

// hasHint reports whether the element id or name starts with the naming-convention prefix
func hasHint(el types.Element, prefixes ...string) bool {
	id := strings.ToLower(el.ID)
	name := strings.ToLower(el.Name)
	for _, p := range prefixes {
		if strings.HasPrefix(id, p) || strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func explicitRole(el types.Element) (SemanticRole, bool) {
	if el.Role == "" {
		return RoleBody, false
	}
	return ParseRole(el.Role)
}

func hasExplicitRole(el types.Element, role SemanticRole) bool {
	r, ok := explicitRole(el)
	return ok && r == role
}

// IsValueTile reports whether a text element highlights a price or offer
func IsValueTile(el types.Element) bool {
	if hasExplicitRole(el, RoleValueTile) {
		return true
	}
	if !el.IsText() {
		return false
	}
	if hasHint(el, "badge-", "value-tile", "valuetile", "price-") {
		return true
	}
	return valueTilePattern.MatchString(el.Text)
}

// IsPackshot reports whether the element is product imagery
func IsPackshot(el types.Element) bool {
	if hasExplicitRole(el, RolePackshot) || strings.EqualFold(el.Type, "packshot") {
		return true
	}
	if el.Kind() != types.KindImage {
		return false
	}
	return hasHint(el, "packshot", "product")
}

// IsCTA reports whether the element is a call to action
func IsCTA(el types.Element) bool {
	if hasExplicitRole(el, RoleCTA) || strings.EqualFold(el.Type, "cta") || hasHint(el, "cta-", "cta_", "button-") {
		return true
	}
	return el.IsText() && ctaPattern.MatchString(el.Text)
}

// IsLogo reports whether the element is a brand logo
func IsLogo(el types.Element) bool {
	return hasExplicitRole(el, RoleLogo) || hasHint(el, "logo")
}

// IsDrinkaware reports whether the element is the responsible-drinking legal mark
func IsDrinkaware(el types.Element) bool {
	if hasExplicitRole(el, RoleDrinkaware) {
		return true
	}
	fields := []string{el.ID, el.Name, el.Text}
	if !strings.HasPrefix(el.Src, "data:") {
		fields = append(fields, el.Src)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), "drinkaware") {
			return true
		}
	}
	return false
}

// IsHeadlineHint reports whether the element is named as a headline
func IsHeadlineHint(el types.Element) bool {
	return hasExplicitRole(el, RoleHeadline) || hasHint(el, "headline")
}

// IsDecorative reports whether the element is exempt from overlap checks:
// stickers, shapes, or anything more transparent than the threshold.
func IsDecorative(el types.Element, opacityThreshold float64) bool {
	if hasExplicitRole(el, RoleDecorative) {
		return true
	}
	switch el.Kind() {
	case types.KindSticker, types.KindShape:
		return true
	}
	return el.EffectiveOpacity() < opacityThreshold
}

// IsBrandTag reports whether a text element contains any allowed tag (case-insensitive)
func IsBrandTag(el types.Element, tags []string) bool {
	if hasExplicitRole(el, RoleBrandTag) {
		return true
	}
	if !el.IsText() || el.Text == "" {
		return false
	}
	return MatchTag(el.Text, tags) != ""
}

// MatchTag returns the first allowed tag contained in text, or ""
func MatchTag(text string, tags []string) string {
	lower := strings.ToLower(text)
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t != "" && strings.Contains(lower, t) {
			return tag
		}
	}
	return ""
}
