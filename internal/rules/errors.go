package rules

import "fmt"

// ConfigError represents an unreadable or invalid rule configuration
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rule config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
