package htmlimport

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/creative-compliance/internal/types"
)

const (
	containerSelector = ".canvas-container"
	elementSelector   = "[data-id], [class*='element-']"
	elementPrefix     = "element-"
)

// Parse reads a canvas HTML export. Each .canvas-container is a page; the first one sets
// the canvas size. Styles come from <style> blocks and inline style attributes.
func Parse(r io.Reader) (*types.ValidationRequest, error) {
	return ParseWithStylesheet(r, "")
}

// ParseWithStylesheet is Parse with an extra stylesheet applied after the document's own
// <style> blocks.
func ParseWithStylesheet(r io.Reader, css string) (*types.ValidationRequest, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ImportError{Message: "failed to parse HTML", Cause: err}
	}

	var sheetText strings.Builder
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		sheetText.WriteString(s.Text())
		sheetText.WriteString("\n")
	})
	sheetText.WriteString(css)
	sheet := parseStylesheet(sheetText.String())

	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		return nil, &ImportError{Message: "no .canvas-container element found"}
	}

	req := &types.ValidationRequest{}
	containers.Each(func(i int, container *goquery.Selection) {
		style := sheet.resolve(classList(container), attr(container, "style"))
		if i == 0 {
			req.Canvas.W, _ = style.pixels("width")
			req.Canvas.H, _ = style.pixels("height")
		}

		page := types.Page{
			ID:         attr(container, "id"),
			Background: style.background(),
			Children:   make([]types.Element, 0),
		}
		container.Find(elementSelector).Each(func(j int, node *goquery.Selection) {
			page.Children = append(page.Children, parseElement(node, sheet, i, j))
		})
		req.Pages = append(req.Pages, page)
	})

	if req.Canvas.W <= 0 || req.Canvas.H <= 0 {
		return nil, &ImportError{Message: "canvas container must declare a width and height in px"}
	}
	return req, nil
}

func parseElement(node *goquery.Selection, sheet stylesheet, pageIndex, index int) types.Element {
	classes := classList(node)
	kind, id := classIdentity(classes)

	el := types.Element{
		ID:   firstNonEmpty(attr(node, "data-id"), attr(node, "id"), id),
		Type: firstNonEmpty(attr(node, "data-type"), kind),
		Name: firstNonEmpty(attr(node, "data-name"), attr(node, "alt")),
		Role: attr(node, "data-role"),
	}
	if el.ID == "" {
		el.ID = fmt.Sprintf("page%d-element%d", pageIndex, index)
	}

	if goquery.NodeName(node) == "img" {
		if el.Type == "" {
			el.Type = string(types.KindImage)
		}
		el.Src = attr(node, "src")
	} else {
		if el.Type == "" {
			el.Type = string(types.KindText)
		}
		el.Text = strings.Join(strings.Fields(ownText(node)), " ")
	}

	style := sheet.resolve(classes, attr(node, "style"))
	el.X, _ = style.pixels("left")
	el.Y, _ = style.pixels("top")
	el.Width, _ = style.pixels("width")
	el.Height, _ = style.pixels("height")
	el.FontSize, _ = style.pixels("font-size")
	el.FontWeight = style["font-weight"]
	el.FontStyle = style["font-style"]
	if opacity, ok := style.number("opacity"); ok {
		el.Opacity = &opacity
	}

	if el.Kind() == types.KindText {
		el.Fill = style["color"]
	} else {
		el.Fill = style.background()
	}
	return el
}

// ownText returns the text of a node without the text of nested elements, which are
// imported separately
func ownText(node *goquery.Selection) string {
	var sb strings.Builder
	node.Contents().Each(func(_ int, child *goquery.Selection) {
		switch {
		case goquery.NodeName(child) == "#text":
			sb.WriteString(child.Text())
		case child.Is(elementSelector):
			sb.WriteString(" ")
		default:
			sb.WriteString(ownText(child))
		}
	})
	return sb.String()
}

// classIdentity reads "element-<kind>-<id>" into its kind and id
func classIdentity(classes []string) (kind, id string) {
	for _, class := range classes {
		rest, ok := strings.CutPrefix(class, elementPrefix)
		if !ok {
			continue
		}
		kind, id, _ = strings.Cut(rest, "-")
		return kind, id
	}
	return "", ""
}

func classList(s *goquery.Selection) []string {
	return strings.Fields(attr(s, "class"))
}

func attr(s *goquery.Selection, name string) string {
	value, _ := s.Attr(name)
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
