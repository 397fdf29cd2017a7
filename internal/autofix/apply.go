package autofix

import (
	"fmt"

	"github.com/jonathan/creative-compliance/internal/types"
)

// Apply returns a copy of pages with the violation's fix applied. The input is never mutated.
func Apply(pages []types.Page, v types.Violation) ([]types.Page, error) {
	pagesCopy := deepCopyPages(pages)
	updated, err := applyFix(pagesCopy, v)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyAll applies every fixable violation in order and returns the patched copy and the
// number of fixes applied. Violations without a fix are skipped.
func ApplyAll(pages []types.Page, violations []types.Violation) ([]types.Page, int, error) {
	pagesCopy := deepCopyPages(pages)

	applied := 0
	for i, v := range violations {
		if !v.AutoFixable || v.AutoFix == nil {
			continue
		}
		var err error
		pagesCopy, err = applyFix(pagesCopy, v)
		if err != nil {
			return nil, applied, &ApplyError{
				Message: fmt.Sprintf("failed to apply %s fix at index %d", v.Rule, i),
				Cause:   err,
			}
		}
		applied++
	}
	return pagesCopy, applied, nil
}

func applyFix(pages []types.Page, v types.Violation) ([]types.Page, error) {
	if !v.AutoFixable || v.AutoFix == nil || v.AutoFix.Fix == nil {
		return nil, &ApplyError{Message: fmt.Sprintf("%s violation is not auto-fixable", v.Rule)}
	}

	if add, ok := v.AutoFix.Fix.(types.AddElementFix); ok {
		return addElement(pages, add)
	}

	el, err := findElement(pages, v)
	if err != nil {
		return nil, err
	}

	switch fix := v.AutoFix.Fix.(type) {
	case types.MoveFix:
		el.Y = fix.Y
	case types.ResizeFix:
		el.Width = fix.Width
		el.Height = fix.Height
	case types.FontSizeFix:
		el.FontSize = fix.FontSize
	case types.TextStyleFix:
		if fix.FontSize > 0 {
			el.FontSize = fix.FontSize
		}
		if fix.Bold {
			el.FontWeight = "bold"
		}
	case types.ColorFix:
		if fix.Property != "fill" {
			return nil, &ApplyError{Message: fmt.Sprintf("unsupported color property %q", fix.Property)}
		}
		el.Fill = fix.Color
	default:
		return nil, &ApplyError{Message: fmt.Sprintf("unknown fix action %q", fix.Action())}
	}
	return pages, nil
}

// addElement inserts the template element. A page index equal to the page count appends a
// page. Inserting an element whose ID already exists is a no-op.
func addElement(pages []types.Page, fix types.AddElementFix) ([]types.Page, error) {
	if fix.PageIndex < 0 || fix.PageIndex > len(pages) {
		return nil, &ApplyError{Message: fmt.Sprintf("page index %d out of range (%d pages)", fix.PageIndex, len(pages))}
	}
	if fix.Element.ID != "" {
		for _, page := range pages {
			for _, el := range page.Children {
				if el.ID == fix.Element.ID {
					return pages, nil
				}
			}
		}
	}

	if fix.PageIndex == len(pages) {
		pages = append(pages, types.Page{})
	}
	pages[fix.PageIndex].Children = append(pages[fix.PageIndex].Children, copyElement(fix.Element))
	return pages, nil
}

// findElement locates the violation's element, searching its page first
func findElement(pages []types.Page, v types.Violation) (*types.Element, error) {
	if v.ElementID == "" {
		return nil, &ApplyError{Message: fmt.Sprintf("%s fix has no target element", v.Rule)}
	}

	if v.PageIndex != nil {
		pi := *v.PageIndex
		if pi < 0 || pi >= len(pages) {
			return nil, &ApplyError{Message: fmt.Sprintf("page index %d out of range (%d pages)", pi, len(pages))}
		}
		for i := range pages[pi].Children {
			if pages[pi].Children[i].ID == v.ElementID {
				return &pages[pi].Children[i], nil
			}
		}
	}

	for pi := range pages {
		for i := range pages[pi].Children {
			if pages[pi].Children[i].ID == v.ElementID {
				return &pages[pi].Children[i], nil
			}
		}
	}
	return nil, &ApplyError{Message: fmt.Sprintf("element %s not found", v.ElementID)}
}

func deepCopyPages(pages []types.Page) []types.Page {
	if pages == nil {
		return nil
	}
	out := make([]types.Page, len(pages))
	for i, page := range pages {
		out[i] = page
		if page.Children != nil {
			out[i].Children = make([]types.Element, len(page.Children))
			for j, el := range page.Children {
				out[i].Children[j] = copyElement(el)
			}
		}
	}
	return out
}

func copyElement(el types.Element) types.Element {
	if el.Opacity != nil {
		opacity := *el.Opacity
		el.Opacity = &opacity
	}
	return el
}
