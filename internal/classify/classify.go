package classify

import "github.com/jonathan/creative-compliance/internal/types"

// Classifier assigns semantic roles using the configured tag vocabulary
type Classifier struct {
	Tags              []string
	DecorativeOpacity float64
}

// New creates a classifier; a non-positive opacity threshold uses the default
func New(tags []string, decorativeOpacity float64) *Classifier {
	if decorativeOpacity <= 0 {
		decorativeOpacity = DefaultDecorativeOpacity
	}
	return &Classifier{Tags: tags, DecorativeOpacity: decorativeOpacity}
}

// Classification is the result of classifying one element
type Classification struct {
	Primary SemanticRole
	Roles   RoleSet
}

// Has reports whether the element satisfies role r
func (c Classification) Has(r SemanticRole) bool {
	return c.Roles.Has(r)
}

// Decorative reports whether the element is exempt from overlap checks
func (c Classification) Decorative() bool {
	return c.Roles.Has(RoleDecorative)
}

// Classify evaluates every predicate once and picks the primary role.
// Primary priority: explicit role, drinkaware, logo, packshot, CTA, value tile,
// brand tag, headline, decorative, body.
func (c *Classifier) Classify(el types.Element) Classification {
	var roles RoleSet
	if IsDrinkaware(el) {
		roles = roles.With(RoleDrinkaware)
	}
	if IsLogo(el) {
		roles = roles.With(RoleLogo)
	}
	if IsPackshot(el) {
		roles = roles.With(RolePackshot)
	}
	if IsCTA(el) {
		roles = roles.With(RoleCTA)
	}
	if IsValueTile(el) {
		roles = roles.With(RoleValueTile)
	}
	if IsBrandTag(el, c.Tags) {
		roles = roles.With(RoleBrandTag)
	}
	if IsHeadlineHint(el) {
		roles = roles.With(RoleHeadline)
	}
	if IsDecorative(el, c.DecorativeOpacity) {
		roles = roles.With(RoleDecorative)
	}

	if explicit, ok := explicitRole(el); ok {
		return Classification{Primary: explicit, Roles: roles.With(explicit)}
	}

	for _, r := range []SemanticRole{RoleDrinkaware, RoleLogo, RolePackshot, RoleCTA, RoleValueTile, RoleBrandTag, RoleHeadline, RoleDecorative} {
		if roles.Has(r) {
			return Classification{Primary: r, Roles: roles}
		}
	}
	return Classification{Primary: RoleBody, Roles: roles.With(RoleBody)}
}
