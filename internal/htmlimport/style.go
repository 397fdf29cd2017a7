package htmlimport

import (
	"regexp"
	"strconv"
	"strings"
)

// declarations is a set of CSS property/value pairs with lowercase property names
type declarations map[string]string

var (
	ruleBlockPattern = regexp.MustCompile(`(?s)([^{}]+)\{([^{}]*)\}`)
	commentPattern   = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// parseDeclarations parses an inline style attribute ("left: 10px; top: 20px")
func parseDeclarations(style string) declarations {
	out := declarations{}
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if prop != "" && value != "" {
			out[prop] = value
		}
	}
	return out
}

// stylesheet maps a class name to the declarations of rules selecting exactly ".class".
// Compound and descendant selectors are ignored.
type stylesheet map[string]declarations

func parseStylesheet(css string) stylesheet {
	sheet := stylesheet{}
	css = commentPattern.ReplaceAllString(css, "")
	for _, m := range ruleBlockPattern.FindAllStringSubmatch(css, -1) {
		decls := parseDeclarations(m[2])
		for _, selector := range strings.Split(m[1], ",") {
			selector = strings.TrimSpace(selector)
			if !strings.HasPrefix(selector, ".") || strings.ContainsAny(selector[1:], " .#>:[+~") {
				continue
			}
			class := selector[1:]
			if sheet[class] == nil {
				sheet[class] = declarations{}
			}
			for k, v := range decls {
				sheet[class][k] = v
			}
		}
	}
	return sheet
}

// resolve merges the stylesheet rules of every class, then the inline style on top
func (s stylesheet) resolve(classes []string, inline string) declarations {
	out := declarations{}
	for _, class := range classes {
		for k, v := range s[class] {
			out[k] = v
		}
	}
	for k, v := range parseDeclarations(inline) {
		out[k] = v
	}
	return out
}

// pixels parses "12px", "12" or "12.5px". Other units are rejected.
func (d declarations) pixels(prop string) (float64, bool) {
	value, ok := d[prop]
	if !ok {
		return 0, false
	}
	value = strings.TrimSuffix(strings.ToLower(value), "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// number parses a unitless value such as opacity
func (d declarations) number(prop string) (float64, bool) {
	value, ok := d[prop]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// background returns background-color, or a plain color given as the background shorthand
func (d declarations) background() string {
	if c := d["background-color"]; c != "" {
		return c
	}
	bg := d["background"]
	if bg == "" || strings.Contains(bg, "url(") || strings.Contains(bg, "gradient(") {
		return ""
	}
	return bg
}
