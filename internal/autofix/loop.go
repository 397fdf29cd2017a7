package autofix

import (
	"context"
	"fmt"

	"github.com/jonathan/creative-compliance/internal/types"
)

// DefaultMaxIterations bounds the validate/apply cycle
const DefaultMaxIterations = 3

// Validator produces a compliance report for a request
type Validator interface {
	Validate(ctx context.Context, req *types.ValidationRequest) (*types.ComplianceReport, error)
}

// Result is the outcome of a fix loop
type Result struct {
	Request    *types.ValidationRequest
	Report     *types.ComplianceReport // Report of the final design
	Applied    int
	Iterations int
}

// RunFixLoop validates, applies every proposed fix and re-validates until no fixable
// violation remains or maxIterations is reached. Warning fixes are applied as well as
// hard ones. The input request is not mutated.
func RunFixLoop(ctx context.Context, validator Validator, req *types.ValidationRequest, maxIterations int) (*Result, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	current := *req
	current.Pages = deepCopyPages(req.Pages)

	report, err := validator.Validate(ctx, &current)
	if err != nil {
		return nil, fmt.Errorf("failed to validate design: %w", err)
	}

	result := &Result{Request: &current, Report: report}
	for result.Iterations < maxIterations {
		fixable := report.Fixable()
		if len(fixable) == 0 {
			break
		}
		result.Iterations++

		pages, applied, err := ApplyAll(current.Pages, fixable)
		if err != nil {
			return nil, fmt.Errorf("failed to apply fixes at iteration %d: %w", result.Iterations, err)
		}
		result.Applied += applied

		next := current
		next.Pages = pages
		report, err = validator.Validate(ctx, &next)
		if err != nil {
			return nil, fmt.Errorf("failed to validate design at iteration %d: %w", result.Iterations, err)
		}

		current = next
		result.Request = &current
		result.Report = report
	}

	return result, nil
}
