package layout

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	defaultFontSizePt = 11
	defaultLeading    = 1.4
	blockSpacing      = 3.0
	cellPadding       = 1.2
	listIndent        = 6.0
	quoteIndent       = 10.0
)

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// textStyle is the inherited part of the computed style of an element.
type textStyle struct {
	fontSize   float64 // mm
	lineHeight float64 // factor of fontSize
	bold       bool
	italic     bool
	align      string
	wrap       string
	color      Color
	pre        bool
	indent     float64 // mm from the left content edge
}

func (s textStyle) fontName() string {
	switch {
	case s.bold && s.italic:
		return "bolditalic"
	case s.bold:
		return "bold"
	case s.italic:
		return "italic"
	default:
		return "regular"
	}
}

var headingSizes = map[atom.Atom]float64{
	atom.H1: 20, atom.H2: 16, atom.H3: 14, atom.H4: 12, atom.H5: 11, atom.H6: 10,
}

// derive applies tag defaults, legacy attributes and the inline style of n.
func (s textStyle) derive(n *html.Node, decl map[string]string) textStyle {
	parentSize := s.fontSize
	switch n.DataAtom {
	case atom.B, atom.Strong, atom.Th:
		s.bold = true
	case atom.I, atom.Em, atom.Cite, atom.Var:
		s.italic = true
	case atom.Small:
		s.fontSize *= 0.83
	case atom.Big:
		s.fontSize *= 1.2
	case atom.Center:
		s.align = "center"
	case atom.Pre:
		s.pre = true
	case atom.Blockquote:
		s.indent += quoteIndent
	}
	if pt, ok := headingSizes[n.DataAtom]; ok {
		s.fontSize = pt * PtToMm
		s.bold = true
	}
	if v := attr(n, "align"); v != "" {
		s.align = normalizeAlign(v, s.align)
	}

	if v, ok := decl["font-size"]; ok {
		if l, ok := ParseRawLengthStr(v); ok && l.Value > 0 {
			if l.Unit == UnitPercent {
				s.fontSize = parentSize * l.Value / 100
			} else {
				s.fontSize = l.Resolve(parentSize, parentSize)
			}
		}
	}
	if v, ok := decl["font-weight"]; ok {
		switch v {
		case "bold", "bolder":
			s.bold = true
		case "normal", "lighter":
			s.bold = false
		default:
			if w, err := strconv.Atoi(v); err == nil {
				s.bold = w >= 600
			}
		}
	}
	if v, ok := decl["font-style"]; ok {
		s.italic = v == "italic" || v == "oblique"
	}
	if v, ok := decl["text-align"]; ok {
		s.align = normalizeAlign(v, s.align)
	}
	if v, ok := decl["color"]; ok {
		if c, err := parseColor(v); err == nil {
			s.color = c
		}
	}
	if v, ok := decl["line-height"]; ok {
		if v == "normal" {
			s.lineHeight = defaultLeading
		} else if l, ok := ParseRawLengthStr(v); ok && l.Value > 0 {
			switch l.Unit {
			case UnitNone:
				s.lineHeight = l.Value
			case UnitPercent:
				s.lineHeight = l.Value / 100
			default:
				if s.fontSize > 0 {
					s.lineHeight = l.Resolve(s.fontSize, s.fontSize) / s.fontSize
				}
			}
		}
	}
	if v, ok := decl["white-space"]; ok {
		switch v {
		case "pre", "pre-wrap", "pre-line":
			s.pre = true
		case "nowrap":
			s.wrap = "nowrap"
		case "normal":
			s.pre = false
			s.wrap = ""
		}
	}
	if v, ok := decl["word-break"]; ok && (v == "break-all" || v == "break-word") {
		s.wrap = "break-word"
	}
	if v, ok := decl["margin-left"]; ok {
		if l, ok := ParseRawLengthStr(v); ok {
			s.indent += l.Resolve(s.fontSize, 0)
		}
	}
	return s
}

func normalizeAlign(v, fallback string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "start", "justify":
		return "left"
	case "center", "middle":
		return "center"
	case "right", "end":
		return "right"
	default:
		return fallback
	}
}

// parseStyleAttr splits an inline style attribute into lower-cased
// declarations.
func parseStyleAttr(v string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(v, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))
		if name != "" {
			out[name] = strings.TrimSpace(value)
		}
	}
	return out
}

// blockMargins returns the vertical margins of a block element in mm.
func blockMargins(n *html.Node, decl map[string]string, fontSize float64) (top, bottom float64) {
	switch n.DataAtom {
	case atom.P, atom.Blockquote, atom.Pre, atom.Address:
		bottom = blockSpacing
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		top, bottom = blockSpacing, blockSpacing
	}
	if v, ok := decl["margin"]; ok {
		vals := parseBox(v, fontSize)
		top, bottom = vals.Top, vals.Bottom
	}
	if v, ok := decl["margin-top"]; ok {
		if l, ok := ParseRawLengthStr(v); ok {
			top = l.Resolve(fontSize, 0)
		}
	}
	if v, ok := decl["margin-bottom"]; ok {
		if l, ok := ParseRawLengthStr(v); ok {
			bottom = l.Resolve(fontSize, 0)
		}
	}
	return top, bottom
}

// parseBox reads a CSS 1-4 value shorthand such as "20mm 15mm".
func parseBox(v string, fontSize float64) Margin {
	var vals []float64
	for _, f := range strings.Fields(v) {
		l, ok := ParseRawLengthStr(f)
		if !ok {
			break
		}
		vals = append(vals, l.Resolve(fontSize, 0))
	}
	switch len(vals) {
	case 1:
		return Margin{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}
	case 2:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
	case 3:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
	case 4:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	}
	return Margin{}
}

func pageBreak(decl map[string]string, side string) bool {
	return decl["page-break-"+side] == "always" || decl["break-"+side] == "page"
}

var namedColors = map[string]Color{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"red":    {255, 0, 0},
	"maroon": {128, 0, 0},
	"green":  {0, 128, 0},
	"navy":   {0, 0, 128},
	"blue":   {0, 0, 255},
	"teal":   {0, 128, 128},
}

func parseColor(value string) (Color, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[value]; ok {
		return c, nil
	}
	if strings.HasPrefix(value, "rgb(") && strings.HasSuffix(value, ")") {
		parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(value, "rgb("), ")"), ",")
		if len(parts) == 3 {
			var rgb [3]int
			for i, p := range parts {
				n, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil {
					return Color{}, fmt.Errorf("layout: color %s: %w", value, err)
				}
				rgb[i] = min(max(n, 0), 255)
			}
			return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
		}
	}
	hex := strings.TrimPrefix(value, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
		hex = hex[:6]
	default:
		return Color{}, fmt.Errorf("layout: cannot parse color %s", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("layout: cannot parse color %s", value)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch align {
	case "center":
		return (container - width) / 2
	case "right":
		return container - width
	default:
		return 0
	}
}
