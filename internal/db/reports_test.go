package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	compliant := true

	tests := []struct {
		name     string
		filters  ReportFilters
		contains []string
		args     []any
	}{
		{
			name:     "limit only",
			filters:  ReportFilters{Limit: 10},
			contains: []string{"ORDER BY created_at DESC LIMIT $1"},
			args:     []any{10},
		},
		{
			name:     "all filters",
			filters:  ReportFilters{Compliant: &compliant, FormatType: "story", Limit: 5},
			contains: []string{"compliant = $1", "format_type = $2", "LIMIT $3"},
			args:     []any{true, "story", 5},
		},
		{
			name:     "format only",
			filters:  ReportFilters{FormatType: "banner", Limit: 1},
			contains: []string{"format_type = $1", "LIMIT $2"},
			args:     []any{"banner", 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filters)
			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestReportSummary_Zero(t *testing.T) {
	var r ReportSummary
	assert.False(t, r.Compliant)
	assert.True(t, r.CreatedAt.IsZero())
}
