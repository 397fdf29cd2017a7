package validation

import (
	"github.com/jonathan/creative-compliance/internal/rules"
	"github.com/jonathan/creative-compliance/internal/types"
)

// Score computes max(0, 100 - hardPenalty*hard - warningPenalty*nonHard)
func Score(hard, nonHard int, cfg *rules.Config) int {
	score := 100 - cfg.HardPenalty*hard - cfg.WarningPenalty*nonHard
	if score < 0 {
		return 0
	}
	return score
}

// BuildReport partitions violations into hard and non-hard, counts them and scores the run.
// ID, FormatType and CreatedAt are left for the caller.
func BuildReport(violations []types.Violation, cfg *rules.Config) *types.ComplianceReport {
	report := &types.ComplianceReport{
		Violations: make([]types.Violation, 0),
		Warnings:   make([]types.Violation, 0),
	}

	for _, v := range violations {
		switch v.Severity {
		case types.SeverityHard:
			report.Violations = append(report.Violations, v)
			report.Summary.Hard++
		case types.SeverityInfo:
			report.Warnings = append(report.Warnings, v)
			report.Summary.Info++
		default:
			report.Warnings = append(report.Warnings, v)
			report.Summary.Warnings++
		}
	}

	report.Summary.Total = len(violations)
	report.Compliant = report.Summary.Hard == 0
	report.Score = Score(report.Summary.Hard, len(report.Warnings), cfg)
	return report
}
