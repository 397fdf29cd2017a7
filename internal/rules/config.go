// Package rules implements the compliance rule battery run against a flattened design.
package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/creative-compliance/internal/classify"
	"github.com/jonathan/creative-compliance/internal/geometry"
)

// Config holds every threshold and vocabulary the rules consult.
// Profiles loaded from YAML are merged over DefaultConfig.
type Config struct {
	Name string `json:"name" yaml:"name"`

	SafeZones      []geometry.SafeZoneSpec `json:"safe_zones" yaml:"safe_zones" validate:"dive"`
	SafeZoneMargin float64                 `json:"safe_zone_margin" yaml:"safe_zone_margin" validate:"gte=0"`

	OverlapThreshold float64 `json:"overlap_threshold" yaml:"overlap_threshold" validate:"gt=0,lte=1"`
	ProtectedMargin  float64 `json:"protected_margin" yaml:"protected_margin" validate:"gte=0"`

	MinFontSizes       map[string]float64 `json:"min_font_sizes" yaml:"min_font_sizes" validate:"dive,gt=0"`
	DefaultMinFontSize float64            `json:"default_min_font_size" yaml:"default_min_font_size" validate:"gt=0"`

	ContrastThreshold float64 `json:"contrast_threshold" yaml:"contrast_threshold" validate:"gte=1,lte=21"`
	DefaultTextColor  string  `json:"default_text_color" yaml:"default_text_color" validate:"required"`
	DefaultBackground string  `json:"default_background" yaml:"default_background" validate:"required"`

	AllowedTags []string `json:"allowed_tags" yaml:"allowed_tags" validate:"min=1,dive,required"`
	DefaultTag  string   `json:"default_tag" yaml:"default_tag" validate:"required"`

	HeadlineMinFontSize float64 `json:"headline_min_font_size" yaml:"headline_min_font_size" validate:"gt=0"`
	HeadlineFontSize    float64 `json:"headline_font_size" yaml:"headline_font_size" validate:"gtefield=HeadlineMinFontSize"`
	HeadlinePlaceholder string  `json:"headline_placeholder" yaml:"headline_placeholder" validate:"required"`

	BlockedKeywords    []string          `json:"blocked_keywords" yaml:"blocked_keywords" validate:"dive,required"`
	KeywordSuggestions map[string]string `json:"keyword_suggestions" yaml:"keyword_suggestions"`

	ValueTileMinFontSize float64 `json:"value_tile_min_font_size" yaml:"value_tile_min_font_size" validate:"gt=0"`
	ValueTileFixFontSize float64 `json:"value_tile_fix_font_size" yaml:"value_tile_fix_font_size" validate:"gtefield=ValueTileMinFontSize"`

	MaxPackshots    int     `json:"max_packshots" yaml:"max_packshots" validate:"gte=1"`
	MinPackshotArea float64 `json:"min_packshot_area" yaml:"min_packshot_area" validate:"gt=0"`
	PackshotScale   float64 `json:"packshot_scale" yaml:"packshot_scale" validate:"gt=1"`

	MinCTALength int `json:"min_cta_length" yaml:"min_cta_length" validate:"gte=0"`

	DecorativeOpacity float64 `json:"decorative_opacity" yaml:"decorative_opacity" validate:"gte=0,lte=1"`

	HardPenalty    int `json:"hard_penalty" yaml:"hard_penalty" validate:"gte=0"`
	WarningPenalty int `json:"warning_penalty" yaml:"warning_penalty" validate:"gte=0"`
}

// DefaultConfig returns the product defaults
func DefaultConfig() *Config {
	return &Config{
		Name: "default",
		SafeZones: []geometry.SafeZoneSpec{
			{Name: "9:16", Aspect: 9.0 / 16.0, Tolerance: 0.05, Top: 200, Bottom: 250},
		},
		SafeZoneMargin:   10,
		OverlapThreshold: 0.2,
		ProtectedMargin:  10,
		MinFontSizes: map[string]float64{
			"social":  16,
			"story":   16,
			"display": 14,
			"banner":  12,
			"print":   10,
		},
		DefaultMinFontSize: 14,
		ContrastThreshold:  4.5,
		DefaultTextColor:   "#000000",
		DefaultBackground:  "#FFFFFF",
		AllowedTags: []string{
			"Only at Tesco",
			"Available at Tesco",
			"Selected stores",
			"While stocks last",
		},
		DefaultTag:          "Available at Tesco",
		HeadlineMinFontSize: 24,
		HeadlineFontSize:    48,
		HeadlinePlaceholder: "Your headline here",
		BlockedKeywords: []string{
			"competition", "contest", "win", "prize", "giveaway",
			"free delivery", "guarantee", "money back", "refund",
			"sustainable", "eco-friendly", "environmentally friendly", "carbon neutral",
			"charity", "donation", "survey", "proven", "best price", "cheapest",
		},
		KeywordSuggestions: map[string]string{
			"competition":              "Remove competition wording; promotions of chance need separate approval",
			"contest":                  "Remove contest wording; promotions of chance need separate approval",
			"win":                      "Use \"Discover\" or \"Enjoy\" instead of \"win\"",
			"prize":                    "Describe the product benefit instead of a prize",
			"giveaway":                 "Remove giveaway wording",
			"free delivery":            "Delivery claims must come from the delivery terms, remove them from the creative",
			"guarantee":                "Replace \"guarantee\" with \"quality you can trust\"",
			"money back":               "Refund promises cannot appear in creatives",
			"refund":                   "Refund promises cannot appear in creatives",
			"sustainable":              "Sustainability claims need substantiation; remove or reword",
			"eco-friendly":             "Green claims need substantiation; remove or reword",
			"environmentally friendly": "Green claims need substantiation; remove or reword",
			"carbon neutral":           "Carbon claims need substantiation; remove or reword",
			"charity":                  "Charity partnerships need separate approval",
			"donation":                 "Charity partnerships need separate approval",
			"survey":                   "Survey-based claims need a cited source",
			"proven":                   "Replace \"proven\" with a descriptive benefit",
			"best price":               "Price comparisons are not allowed; state the price instead",
			"cheapest":                 "Price comparisons are not allowed; state the price instead",
		},
		ValueTileMinFontSize: 24,
		ValueTileFixFontSize: 32,
		MaxPackshots:         3,
		MinPackshotArea:      15000,
		PackshotScale:        1.3,
		MinCTALength:         3,
		DecorativeOpacity:    classify.DefaultDecorativeOpacity,
		HardPenalty:          15,
		WarningPenalty:       5,
	}
}

// MinFontSize returns the minimum font size for a format, falling back to the default
func (c *Config) MinFontSize(formatType string) float64 {
	if size, ok := c.MinFontSizes[strings.ToLower(strings.TrimSpace(formatType))]; ok {
		return size
	}
	return c.DefaultMinFontSize
}

// SuggestionFor returns the rephrasing suggestion for a blocked keyword
func (c *Config) SuggestionFor(keyword string) string {
	if s, ok := c.KeywordSuggestions[strings.ToLower(keyword)]; ok {
		return s
	}
	return fmt.Sprintf("Remove or rephrase %q", keyword)
}

// Validate checks the config using struct constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return &ConfigError{Message: "invalid rule config", Cause: err}
	}
	// The MISSING_TAG fix inserts DefaultTag, which must then count as a tag
	if classify.MatchTag(c.DefaultTag, c.AllowedTags) == "" {
		return &ConfigError{Message: fmt.Sprintf("default_tag %q does not contain any allowed tag", c.DefaultTag)}
	}
	return nil
}

// ParseProfile decodes YAML over the defaults and validates the result.
// Scalars and lists in the document replace the default; maps are merged key by key.
func ParseProfile(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Message: "failed to parse rule profile", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProfile reads a YAML rule profile from a file
func LoadProfile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("failed to read rule profile %s", path), Cause: err}
	}
	cfg, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("rule profile %s: %w", path, err)
	}
	return cfg, nil
}
