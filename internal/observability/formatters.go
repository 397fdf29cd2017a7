// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/creative-compliance/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDesign outputs a short summary of the design being validated.
func (p *Printer) PrintDesign(req *types.ValidationRequest) {
	if req == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Canvas:   %.0f x %.0f\n", req.Canvas.W, req.Canvas.H))
	format := req.Options.FormatType
	if format == "" {
		format = "(default)"
	}
	sb.WriteString(fmt.Sprintf("Format:   %s\n", format))
	sb.WriteString(fmt.Sprintf("Alcohol:  %t\n", req.Options.IsAlcohol))
	sb.WriteString(fmt.Sprintf("Faces:    %t\n", req.Options.EnableFaceDetection))

	for i, page := range req.Pages {
		kinds := map[types.ElementKind]int{}
		for _, el := range page.Children {
			kinds[el.Kind()]++
		}
		sb.WriteString(fmt.Sprintf("Page %d:   %d elements (%d text, %d image)\n",
			i+1, len(page.Children), kinds[types.KindText], kinds[types.KindImage]))
	}

	p.printBox("DESIGN", sb.String())
}

// PrintReport outputs the compliance verdict followed by blocking issues and warnings.
func (p *Printer) PrintReport(report *types.ComplianceReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	verdict := "✅ COMPLIANT"
	if !report.Compliant {
		verdict = "❌ NOT COMPLIANT"
	}
	sb.WriteString(fmt.Sprintf("%s  score %d/100\n", verdict, report.Score))
	sb.WriteString(fmt.Sprintf("Hard: %d  Warnings: %d  Info: %d\n",
		report.Summary.Hard, report.Summary.Warnings, report.Summary.Info))

	writeViolations(&sb, "Blocking:", report.Violations)
	writeViolations(&sb, "Warnings:", report.Warnings)

	p.printBox("COMPLIANCE REPORT", sb.String())
}

func writeViolations(sb *strings.Builder, heading string, violations []types.Violation) {
	if len(violations) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(heading + "\n")

	count := min(len(violations), maxItemsToShow)
	for _, v := range violations[:count] {
		marker := "⚠"
		if v.IsHard() {
			marker = "✖"
		}
		target := v.ElementID
		if target == "" {
			target = "design"
		}
		fix := ""
		if v.AutoFixable {
			fix = " [fix: " + string(v.AutoFix.Fix.Action()) + "]"
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s)%s\n", marker, v.Rule, target, fix))
		sb.WriteString(fmt.Sprintf("  %s\n", v.Message))
	}
	if len(violations) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(violations)-maxItemsToShow))
	}
}

// PrintFixSummary outputs how many fixes were applied and the score before and after.
func (p *Printer) PrintFixSummary(before, after *types.ComplianceReport, applied, iterations int) {
	if before == nil || after == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Applied:    %d fixes in %d pass(es)\n", applied, iterations))
	sb.WriteString(fmt.Sprintf("Score:      %d -> %d\n", before.Score, after.Score))
	sb.WriteString(fmt.Sprintf("Hard:       %d -> %d\n", before.Summary.Hard, after.Summary.Hard))
	sb.WriteString(fmt.Sprintf("Compliant:  %t\n", after.Compliant))

	p.printBox("AUTO-FIX", sb.String())
}
