// Package types provides type definitions for structured data used throughout the creative-compliance system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RuleID identifies the compliance rule that produced a violation
type RuleID string

// Rule identifiers
const (
	RuleSafeZone        RuleID = "SAFE_ZONE"
	RuleOverlap         RuleID = "OVERLAP"
	RuleMinFontSize     RuleID = "MIN_FONT_SIZE"
	RuleContrast        RuleID = "CONTRAST"
	RuleMissingTag      RuleID = "MISSING_TAG"
	RuleMissingHeadline RuleID = "MISSING_HEADLINE"
	RuleBlockedKeyword  RuleID = "BLOCKED_KEYWORD"
	RuleClubcardDate    RuleID = "CLUBCARD_DATE"
	RuleValueTiles      RuleID = "VALUE_TILES"
	RulePackshots       RuleID = "PACKSHOTS"
	RuleCTA             RuleID = "CTA"
	RuleDrinkaware      RuleID = "DRINKAWARE"
	RulePeopleDetected  RuleID = "PEOPLE_DETECTED"
)

// AllRuleIDs lists every rule identifier in registry order
var AllRuleIDs = []RuleID{
	RuleSafeZone,
	RuleOverlap,
	RuleMinFontSize,
	RuleContrast,
	RuleMissingTag,
	RuleMissingHeadline,
	RuleClubcardDate,
	RuleBlockedKeyword,
	RuleValueTiles,
	RulePackshots,
	RuleCTA,
	RuleDrinkaware,
	RulePeopleDetected,
}

// IsValid returns true if the rule identifier is a recognized value.
func (r RuleID) IsValid() bool {
	for _, id := range AllRuleIDs {
		if id == r {
			return true
		}
	}
	return false
}

// Severity classifies how a violation affects compliance
type Severity string

const (
	// SeverityHard blocks compliance
	SeverityHard Severity = "hard"
	// SeverityWarning is reported but does not block compliance
	SeverityWarning Severity = "warning"
	// SeverityInfo is advisory
	SeverityInfo Severity = "info"
)

// IsValid returns true if the severity is a recognized value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHard, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Violation represents a single compliance rule breach
type Violation struct {
	ElementID   string   `json:"elementId,omitempty"` // Empty for document-level violations
	PageIndex   *int     `json:"pageIndex,omitempty"`
	Rule        RuleID   `json:"rule"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	AutoFixable bool     `json:"autoFixable"`
	AutoFix     *AutoFix `json:"autoFix,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`

	// Rule-specific details
	Zone           string   `json:"zone,omitempty"`
	Distance       *float64 `json:"distance,omitempty"`
	OverlapPercent *float64 `json:"overlapPercent,omitempty"`
	Keyword        string   `json:"keyword,omitempty"`
	Faces          *int     `json:"faces,omitempty"`
}

// IsHard reports whether the violation blocks compliance
func (v Violation) IsHard() bool {
	return v.Severity == SeverityHard
}

// WithFix attaches an auto-fix proposal and marks the violation fixable
func (v Violation) WithFix(fix Fix) Violation {
	if fix == nil {
		v.AutoFixable = false
		v.AutoFix = nil
		return v
	}
	v.AutoFixable = true
	v.AutoFix = &AutoFix{Fix: fix}
	return v
}
