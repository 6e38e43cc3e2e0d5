package layout

import (
	"math"
	"strings"
	"unicode/utf8"
)

// composeTextBox typesets content at (x, y) with width and returns the box.
// Height is the sum of every line's GapBefore and Height.
func composeTextBox(content string, st textStyle, x, y, width float64, ts Typesetter) (TextBox, error) {
	fontSize := st.fontSize
	if fontSize <= 0 {
		fontSize = defaultFontSizePt * PtToMm
	}
	factor := st.lineHeight
	if factor <= 0 {
		factor = defaultLeading
	}
	lineHeight := fontSize * factor
	font := FontResource{Name: st.fontName(), Style: st.fontName()}
	wrap := st.wrap
	if wrap == "" {
		wrap = "anywhere"
	}

	lines, err := layoutLines(content, width, font, fontSize, lineHeight, ts, wrap)
	if err != nil {
		return TextBox{}, err
	}
	total := 0.0
	leading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = leading
		}
		total += lines[i].GapBefore + lines[i].Height
	}

	color := st.color
	if color == (Color{}) {
		color = defaultTextColor
	}
	tb := TextBox{
		Content:    content,
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: lineHeight,
		Font:       font.Name,
		FontSize:   fontSize,
		Color:      color,
		Lines:      lines,
		Height:     total,
		Wrap:       st.wrap,
	}
	if st.align == "center" || st.align == "right" {
		tb.Align = st.align
	}
	return tb, nil
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	if ts == nil {
		return estimateLines(content, width, fontSize, wrap), nil
	}
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0, Height: fontSize}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}

// estimateLines wraps on spaces assuming an average glyph width of half the
// font size. It stands in for a real typesetter when none is configured.
func estimateLines(content string, width, fontSize float64, wrap string) []TextLine {
	charW := fontSize * 0.5
	measure := func(s string) float64 { return float64(utf8.RuneCountInString(s)) * charW }
	var out []TextLine
	for _, para := range strings.Split(content, "\n") {
		if wrap == "nowrap" || width <= 0 {
			out = append(out, TextLine{Content: para, Width: measure(para), Height: fontSize})
			continue
		}
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if line != "" && measure(candidate) > width {
				out = append(out, TextLine{Content: line, Width: measure(line), Height: fontSize})
				candidate = word
			}
			line = candidate
		}
		out = append(out, TextLine{Content: line, Width: measure(line), Height: fontSize})
	}
	return out
}

// splitLines cuts tb after the last line that ends at or above limit. The
// head keeps tb's position; the tail starts with no gap.
func splitLines(tb TextBox, limit float64) (head, tail TextBox, ok bool) {
	y := tb.Y
	cut := 0
	for i, ln := range tb.Lines {
		next := y + ln.GapBefore + ln.Height
		if next > limit {
			break
		}
		y = next
		cut = i + 1
	}
	if cut == 0 || cut == len(tb.Lines) {
		return tb, TextBox{}, false
	}
	head, tail = tb, tb
	head.Lines = append([]TextLine(nil), tb.Lines[:cut]...)
	head.Height = y - tb.Y
	tail.Lines = append([]TextLine(nil), tb.Lines[cut:]...)
	tail.Lines[0].GapBefore = 0
	tail.Height = 0
	for _, ln := range tail.Lines {
		tail.Height += ln.GapBefore + ln.Height
	}
	return head, tail, true
}
