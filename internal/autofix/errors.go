// Package autofix applies the auto-fix proposals of a compliance report to a copy of the design.
package autofix

import "fmt"

// ApplyError represents a fix that could not be applied (not fixable, missing element, bad page)
type ApplyError struct {
	Message string
	Cause   error
}

func (e *ApplyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("autofix apply error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("autofix apply error: %s", e.Message)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}
