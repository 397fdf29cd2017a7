package rules

import (
	"github.com/jonathan/creative-compliance/internal/classify"
	"github.com/jonathan/creative-compliance/internal/contrast"
	"github.com/jonathan/creative-compliance/internal/geometry"
	"github.com/jonathan/creative-compliance/internal/types"
)

// Item is one flattened element with its page index, classification and box
type Item struct {
	Element   types.Element
	PageIndex int
	Class     classify.Classification
	Box       geometry.Box
}

// Is reports whether the item satisfies role r
func (it Item) Is(r classify.SemanticRole) bool {
	return it.Class.Has(r)
}

// Decorative reports whether the item is exempt from overlap checks
func (it Item) Decorative() bool {
	return it.Class.Decorative()
}

// Protected reports whether the item must not be covered by other content
func (it Item) Protected() bool {
	return it.Class.Roles.Protected()
}

// Context is the shared, read-only input of one validation run
type Context struct {
	Canvas     types.CanvasSize
	FormatType string
	IsAlcohol  bool
	Background contrast.RGB
	Config     *Config
}

// Flatten tags every element of every page with its page index, classifies it
// once and computes its box. Page order and child order are preserved.
func Flatten(pages []types.Page, cfg *Config) []Item {
	classifier := classify.New(cfg.AllowedTags, cfg.DecorativeOpacity)

	var items []Item
	for pageIndex, page := range pages {
		for _, el := range page.Children {
			items = append(items, Item{
				Element:   el,
				PageIndex: pageIndex,
				Class:     classifier.Classify(el),
				Box:       geometry.BoundingBox(el),
			})
		}
	}
	return items
}

// ResolveBackground parses the first page background, falling back to the configured default
func ResolveBackground(pages []types.Page, cfg *Config) contrast.RGB {
	if len(pages) > 0 && pages[0].Background != "" {
		if bg, err := contrast.ParseColor(pages[0].Background); err == nil {
			return bg
		}
	}
	if bg, err := contrast.ParseColor(cfg.DefaultBackground); err == nil {
		return bg
	}
	return contrast.RGB{R: 255, G: 255, B: 255}
}

func pageRef(i int) *int {
	return &i
}

func floatRef(f float64) *float64 {
	return &f
}
