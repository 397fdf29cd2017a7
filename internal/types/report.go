// Package types provides type definitions for structured data used throughout the creative-compliance system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ComplianceReport is the unified result of a validation run
type ComplianceReport struct {
	ID         string      `json:"id,omitempty"`
	Compliant  bool        `json:"compliant"`
	Score      int         `json:"score"`
	Violations []Violation `json:"violations"` // Hard violations only
	Warnings   []Violation `json:"warnings"`   // Warning and info violations
	Summary    Summary     `json:"summary"`
	FormatType string      `json:"formatType,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Summary counts violations by severity
type Summary struct {
	Total    int `json:"total"`
	Hard     int `json:"hard"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// All returns hard violations followed by warnings
func (r *ComplianceReport) All() []Violation {
	all := make([]Violation, 0, len(r.Violations)+len(r.Warnings))
	all = append(all, r.Violations...)
	all = append(all, r.Warnings...)
	return all
}

// Fixable returns every violation that carries an auto-fix proposal
func (r *ComplianceReport) Fixable() []Violation {
	var fixable []Violation
	for _, v := range r.All() {
		if v.AutoFixable && v.AutoFix != nil {
			fixable = append(fixable, v)
		}
	}
	return fixable
}
