package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/scholar/layout"
)

// LayoutLines implements layout.Typesetter with a greedy line breaker.
// fontSize, lineHeight and width are millimetres.
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	face, err := r.fontFace(font.Style, toPt(fontSize), layout.Color{R: 30, G: 30, B: 30})
	if err != nil {
		return nil, err
	}

	lines := wrapLines(content, width, face, wrap)
	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []layout.TextLine{{Height: textHeight}}
	}
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = textHeight
		}
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

type lineBuffer struct {
	lines []layout.TextLine
	sb    strings.Builder
	width float64
}

func (b *lineBuffer) add(s string, w float64) {
	b.sb.WriteString(s)
	b.width += w
}

// emit closes the current line; force keeps an empty line for explicit
// newlines.
func (b *lineBuffer) emit(force bool) {
	if b.sb.Len() == 0 {
		if force {
			b.lines = append(b.lines, layout.TextLine{})
		}
		return
	}
	b.lines = append(b.lines, layout.TextLine{Content: b.sb.String(), Width: b.width})
	b.sb.Reset()
	b.width = 0
}

func wrapLines(content string, width float64, face *canvas.FontFace, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	switch wrap {
	case "nowrap":
		parts := strings.Split(content, "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: face.TextWidth(p)})
		}
		return lines

	case "break-word":
		// break on width alone, ignoring spaces
		var buf lineBuffer
		for _, r := range content {
			if r == '\r' {
				continue
			}
			if r == '\n' {
				buf.emit(true)
				continue
			}
			s := string(r)
			cw := face.TextWidth(s)
			if buf.width > 0 && buf.width+cw > limit {
				buf.emit(false)
			}
			buf.add(s, cw)
		}
		buf.emit(true)
		return buf.lines
	}

	// prefer breaking at spaces; split inside a word only when it is wider
	// than the line
	var buf lineBuffer
	for _, token := range tokenize(content) {
		if token == "\n" {
			buf.emit(true)
			continue
		}
		tw := face.TextWidth(token)
		if buf.width > 0 && buf.width+tw > limit {
			buf.emit(false)
			if strings.TrimSpace(token) == "" {
				continue
			}
		}
		if tw <= limit {
			buf.add(token, tw)
			continue
		}
		for _, chunk := range splitWide(token, limit, face) {
			cw := face.TextWidth(chunk)
			if buf.width > 0 && buf.width+cw > limit {
				buf.emit(false)
			}
			buf.add(chunk, cw)
		}
	}
	buf.emit(true)
	return buf.lines
}

// tokenize splits s into newlines and maximal runs of either whitespace or
// non-whitespace. Carriage returns are dropped.
func tokenize(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	var tokens []string
	start, space := -1, false
	cut := func(end int) {
		if start >= 0 {
			tokens = append(tokens, s[start:end])
			start = -1
		}
	}
	for i, r := range s {
		if r == '\n' {
			cut(i)
			tokens = append(tokens, "\n")
			continue
		}
		sp := unicode.IsSpace(r)
		if start >= 0 && sp != space {
			cut(i)
		}
		if start < 0 {
			start, space = i, sp
		}
	}
	cut(len(s))
	return tokens
}

// splitWide cuts a word wider than limit into pieces that each fit, except
// a single glyph wider than the line, which is kept whole.
func splitWide(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	start, prev := 0, 0
	for i := range token {
		if i > start && face.TextWidth(token[start:i]) > limit {
			end := prev
			if end == start {
				end = i
			}
			parts = append(parts, token[start:end])
			start = end
		}
		prev = i
	}
	if start < len(token) {
		if face.TextWidth(token[start:]) > limit && prev > start {
			parts = append(parts, token[start:prev])
			start = prev
		}
		parts = append(parts, token[start:])
	}
	return parts
}
