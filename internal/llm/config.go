// Package llm provides the Gemini client used for vision checks on design imagery.
package llm

import "time"

// ModelTier selects a model by cost and capability
type ModelTier string

const (
	// TierLite is for cheap, high-volume checks such as per-image face counting
	TierLite ModelTier = "lite"
	// TierStandard is the fallback for tiers without a configured model
	TierStandard ModelTier = "standard"
)

// Config holds the vision model settings
type Config struct {
	Models      map[ModelTier]string
	Temperature float32

	// RequestsPerMinute throttles calls to the API. Zero disables throttling.
	RequestsPerMinute float64
	// Timeout bounds a single model call. Zero means the caller's context only.
	Timeout time.Duration
}

// DefaultConfig returns the Gemini defaults
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature:       0.1,
		RequestsPerMinute: 60,
		Timeout:           30 * time.Second,
	}
}

// ModelFor returns the model for a tier, falling back to the standard then lite model
func (c *Config) ModelFor(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of the config using model for tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	clone := *c
	clone.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		clone.Models[k] = v
	}
	clone.Models[tier] = model
	return &clone
}
