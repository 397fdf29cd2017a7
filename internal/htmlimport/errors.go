// Package htmlimport converts a canvas HTML export into the validation request shape.
package htmlimport

import "fmt"

// ImportError represents an HTML document that cannot be read as a canvas export
type ImportError struct {
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("html import error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("html import error: %s", e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}
