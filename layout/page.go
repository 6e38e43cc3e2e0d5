package layout

import (
	"fmt"
	"strings"
)

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// ResolvePageSize returns the page width and height in millimetres.
func ResolvePageSize(spec PageSpec) (float64, float64, error) {
	name := strings.ToUpper(strings.TrimSpace(spec.Size))
	if name == "" {
		name = "A4"
	}
	base, ok := pagePresets[name]
	if !ok {
		return 0, 0, fmt.Errorf("layout: unsupported page size %q", spec.Size)
	}
	w, h := base[0], base[1]
	if spec.Landscape {
		w, h = h, w
	}
	return w, h, nil
}

func defaultMargin(m Margin) Margin {
	if m == (Margin{}) {
		return Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	}
	return m
}

type pageAccumulator struct {
	texts  []TextBox
	images []ImageBox
	tables []TableBox
	lines  []Line
	rects  []Rect
}

// pageCollector hands out pages as the flow cursor runs past the bottom.
type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
	header  HeaderFooter
	footer  HeaderFooter
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{width: width, height: height, margin: margin}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	return pc.accs[pc.current]
}

// contentTop is max(top margin, header height).
func (pc *pageCollector) contentTop() float64 {
	if pc.header.Height > pc.margin.Top {
		return pc.header.Height
	}
	return pc.margin.Top
}

// contentBottom is the page height minus max(bottom margin, footer height).
func (pc *pageCollector) contentBottom() float64 {
	b := pc.margin.Bottom
	if pc.footer.Height > b {
		b = pc.footer.Height
	}
	return pc.height - b
}

func (pc *pageCollector) contentWidth() float64 {
	return pc.width - pc.margin.Left - pc.margin.Right
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Texts:  acc.texts,
			Images: acc.images,
			Tables: acc.tables,
			Lines:  acc.lines,
			Rects:  acc.rects,
			Header: pc.header,
			Footer: pc.footer,
		}
	}
	return out
}
