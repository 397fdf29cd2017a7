package rules

import "github.com/jonathan/creative-compliance/internal/types"

// Func is a pure rule over the flattened design
type Func func(items []Item, ctx *Context) []types.Violation

// Rule pairs a rule function with the identifier of the violations it emits
type Rule struct {
	Name  string
	ID    types.RuleID
	Check Func
}

// Registry returns the rule battery in evaluation order.
// PEOPLE_DETECTED is not listed: it needs a detector and runs in the engine.
func Registry() []Rule {
	return []Rule{
		{Name: "safe_zone", ID: types.RuleSafeZone, Check: CheckSafeZones},
		{Name: "overlap", ID: types.RuleOverlap, Check: CheckOverlaps},
		{Name: "protected_overlap", ID: types.RuleOverlap, Check: CheckProtectedOverlaps},
		{Name: "min_font_size", ID: types.RuleMinFontSize, Check: CheckMinFontSize},
		{Name: "contrast", ID: types.RuleContrast, Check: CheckContrast},
		{Name: "missing_tag", ID: types.RuleMissingTag, Check: CheckMissingTag},
		{Name: "missing_headline", ID: types.RuleMissingHeadline, Check: CheckMissingHeadline},
		{Name: "clubcard_date", ID: types.RuleClubcardDate, Check: CheckClubcardDate},
		{Name: "blocked_keyword", ID: types.RuleBlockedKeyword, Check: CheckBlockedKeywords},
		{Name: "value_tiles", ID: types.RuleValueTiles, Check: CheckValueTiles},
		{Name: "packshots", ID: types.RulePackshots, Check: CheckPackshots},
		{Name: "cta", ID: types.RuleCTA, Check: CheckCTA},
		{Name: "drinkaware", ID: types.RuleDrinkaware, Check: CheckDrinkaware},
	}
}

// RunAll evaluates every registered rule and concatenates the results in registry order
func RunAll(items []Item, ctx *Context) []types.Violation {
	var violations []types.Violation
	for _, rule := range Registry() {
		violations = append(violations, rule.Check(items, ctx)...)
	}
	return violations
}
