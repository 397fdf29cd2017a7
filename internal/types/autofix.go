// Package types provides type definitions for structured data used throughout the creative-compliance system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// FixAction names an auto-fix variant on the wire
type FixAction string

// Fix actions
const (
	ActionMove       FixAction = "move"
	ActionResize     FixAction = "resize"
	ActionFontSize   FixAction = "fontSize"
	ActionTextStyle  FixAction = "textStyle"
	ActionColor      FixAction = "color"
	ActionAddElement FixAction = "addElement"
)

// Fix is a declarative correction proposed for a violation.
// The set of implementations is closed: MoveFix, ResizeFix, FontSizeFix,
// TextStyleFix, ColorFix and AddElementFix.
type Fix interface {
	Action() FixAction
	isFix()
}

// MoveFix moves the element to an absolute Y position
type MoveFix struct {
	Y float64 `json:"y"`
}

// ResizeFix sets an absolute element size
type ResizeFix struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FontSizeFix sets the element font size
type FontSizeFix struct {
	FontSize float64 `json:"fontSize"`
}

// TextStyleFix emphasises text. Zero FontSize leaves the size unchanged.
type TextStyleFix struct {
	FontSize float64 `json:"fontSize,omitempty"`
	Bold     bool    `json:"bold"`
}

// ColorFix replaces a color property (currently always "fill")
type ColorFix struct {
	Property string `json:"property"`
	Color    string `json:"color"`
}

// AddElementFix inserts a template element into a page
type AddElementFix struct {
	PageIndex int     `json:"pageIndex"`
	Element   Element `json:"element"`
}

// Action implements Fix
func (MoveFix) Action() FixAction { return ActionMove }

// Action implements Fix
func (ResizeFix) Action() FixAction { return ActionResize }

// Action implements Fix
func (FontSizeFix) Action() FixAction { return ActionFontSize }

// Action implements Fix
func (TextStyleFix) Action() FixAction { return ActionTextStyle }

// Action implements Fix
func (ColorFix) Action() FixAction { return ActionColor }

// Action implements Fix
func (AddElementFix) Action() FixAction { return ActionAddElement }

func (MoveFix) isFix()       {}
func (ResizeFix) isFix()     {}
func (FontSizeFix) isFix()   {}
func (TextStyleFix) isFix()  {}
func (ColorFix) isFix()      {}
func (AddElementFix) isFix() {}

// AutoFix carries a Fix across JSON boundaries as {"action": ..., payload}
type AutoFix struct {
	Fix Fix
}

// MarshalJSON flattens the payload next to its action discriminator
func (a AutoFix) MarshalJSON() ([]byte, error) {
	if a.Fix == nil {
		return []byte("null"), nil
	}

	payload, err := json.Marshal(a.Fix)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s fix: %w", a.Fix.Action(), err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten %s fix: %w", a.Fix.Action(), err)
	}
	action, _ := json.Marshal(a.Fix.Action())
	fields["action"] = action

	return json.Marshal(fields)
}

// UnmarshalJSON decodes the variant selected by the action discriminator
func (a *AutoFix) UnmarshalJSON(data []byte) error {
	var head struct {
		Action FixAction `json:"action"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to parse auto-fix: %w", err)
	}

	var fix Fix
	var err error
	switch head.Action {
	case ActionMove:
		var f MoveFix
		err = json.Unmarshal(data, &f)
		fix = f
	case ActionResize:
		var f ResizeFix
		err = json.Unmarshal(data, &f)
		fix = f
	case ActionFontSize:
		var f FontSizeFix
		err = json.Unmarshal(data, &f)
		fix = f
	case ActionTextStyle:
		var f TextStyleFix
		err = json.Unmarshal(data, &f)
		fix = f
	case ActionColor:
		var f ColorFix
		err = json.Unmarshal(data, &f)
		fix = f
	case ActionAddElement:
		var f AddElementFix
		err = json.Unmarshal(data, &f)
		fix = f
	default:
		return fmt.Errorf("unknown auto-fix action: %q", head.Action)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s fix: %w", head.Action, err)
	}

	a.Fix = fix
	return nil
}
