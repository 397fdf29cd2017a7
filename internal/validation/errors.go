// Package validation runs the compliance rule battery over a design and builds the report.
package validation

import "fmt"

// InputError rejects a request whose shape breaks the input contract.
// Fields lists the offending paths when a schema check produced them.
type InputError struct {
	Message string
	Fields  []string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid validation request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid validation request: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}
