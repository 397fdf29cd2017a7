// Package classify tags canvas elements with semantic roles from naming, type and text signals.
package classify

import "strings"

// SemanticRole is the closed set of meanings an element can carry in a design
type SemanticRole int

// Semantic roles
const (
	RoleBody SemanticRole = iota
	RoleHeadline
	RoleValueTile
	RolePackshot
	RoleCTA
	RoleBrandTag
	RoleLogo
	RoleDrinkaware
	RoleDecorative
)

var roleNames = map[SemanticRole]string{
	RoleBody:       "body",
	RoleHeadline:   "headline",
	RoleValueTile:  "value_tile",
	RolePackshot:   "packshot",
	RoleCTA:        "cta",
	RoleBrandTag:   "brand_tag",
	RoleLogo:       "logo",
	RoleDrinkaware: "drinkaware",
	RoleDecorative: "decorative",
}

// String returns the wire name of the role
func (r SemanticRole) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole maps an explicit role tag to a SemanticRole.
// Accepts the wire names plus a few editor aliases.
func ParseRole(s string) (SemanticRole, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "headline", "title":
		return RoleHeadline, true
	case "value_tile", "value-tile", "valuetile", "badge", "price":
		return RoleValueTile, true
	case "packshot", "product":
		return RolePackshot, true
	case "cta", "button":
		return RoleCTA, true
	case "brand_tag", "tag":
		return RoleBrandTag, true
	case "logo":
		return RoleLogo, true
	case "drinkaware":
		return RoleDrinkaware, true
	case "decorative", "decoration":
		return RoleDecorative, true
	case "body", "text":
		return RoleBody, true
	}
	return RoleBody, false
}

// RoleSet is every role an element satisfies
type RoleSet uint16

// With returns the set including r
func (s RoleSet) With(r SemanticRole) RoleSet {
	return s | 1<<uint(r)
}

// Has reports whether r is in the set
func (s RoleSet) Has(r SemanticRole) bool {
	return s&(1<<uint(r)) != 0
}

// Protected reports whether the set contains a role that must not be covered
func (s RoleSet) Protected() bool {
	return s.Has(RoleLogo) || s.Has(RoleCTA) || s.Has(RolePackshot)
}
