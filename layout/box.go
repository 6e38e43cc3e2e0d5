package layout

import (
	"slices"
	"strings"
)

const boxPadding = 2.0 // mm

var defaultBorderColor = Color{R: 0, G: 0, B: 0}

// boxStyle is the border and background of a block element.
type boxStyle struct {
	stroke Color
	width  float64 // mm, zero means no border
	fill   *Color
}

// parseBoxStyle reads border, border-width, border-color, background and
// background-color. ok is false when the block draws nothing.
func parseBoxStyle(decl map[string]string, fontSize float64) (boxStyle, bool) {
	bs := boxStyle{stroke: defaultBorderColor}
	if v, ok := decl["border"]; ok {
		bs.width = PxToMm
		for _, f := range strings.Fields(v) {
			if f == "none" || f == "hidden" {
				bs.width = 0
				break
			}
			if l, ok := ParseRawLengthStr(f); ok {
				if l.Value == 0 || l.Unit != UnitNone && l.Unit != UnitPercent {
					bs.width = l.Resolve(fontSize, 0)
				}
				continue
			}
			if c, err := parseColor(f); err == nil {
				bs.stroke = c
			}
		}
	}
	if v, ok := decl["border-width"]; ok {
		if l, ok := ParseRawLengthStr(v); ok {
			bs.width = l.Resolve(fontSize, 0)
		}
	}
	if v, ok := decl["border-color"]; ok {
		if c, err := parseColor(v); err == nil {
			bs.stroke = c
			if _, set := decl["border-width"]; !set && bs.width == 0 {
				bs.width = PxToMm
			}
		}
	}
	for _, key := range []string{"background", "background-color"} {
		if v, ok := decl[key]; ok {
			if c, err := parseColor(v); err == nil {
				bs.fill = &c
			}
		}
	}
	return bs, bs.width > 0 || bs.fill != nil
}

// openBox is a bordered or filled block whose extent is known once its
// children are laid out.
type openBox struct {
	style       boxStyle
	page        int
	slot        int
	y           float64
	x, width    float64
	left, inner float64 // builder geometry to restore
}

func (b *builder) openBox(decl map[string]string, st textStyle) *openBox {
	bs, ok := parseBoxStyle(decl, st.fontSize)
	if !ok || b.err != nil {
		return nil
	}
	bx := &openBox{
		style: bs,
		slot:  len(b.acc.rects),
		y:     b.cursorY,
		x:     b.left + st.indent,
		width: b.width - st.indent,
		left:  b.left,
		inner: b.width,
	}
	if b.pc != nil {
		bx.page = b.pc.current
	}
	b.cursorY += boxPadding
	b.left += boxPadding
	b.width -= 2 * boxPadding
	return bx
}

// closeBox emits one rectangle per page the block touched. The segment on
// the first page keeps the paint order of the block's start so nested boxes
// stay above it; continuation segments go below everything on their page.
func (b *builder) closeBox(bx *openBox) {
	if bx == nil {
		return
	}
	b.left, b.width = bx.left, bx.inner
	b.cursorY += boxPadding
	if b.err != nil {
		return
	}
	if b.pc == nil {
		b.acc.rects = slices.Insert(b.acc.rects, bx.slot, bx.rect(bx.y, b.cursorY))
		return
	}
	for i := bx.page; i <= b.pc.current; i++ {
		top, end := b.pc.contentTop(), b.pc.contentBottom()
		if i == bx.page {
			top = bx.y
		}
		if i == b.pc.current {
			end = min(b.cursorY, end)
		}
		if end <= top {
			continue
		}
		acc := b.pc.accs[i]
		at := 0
		if i == bx.page {
			at = bx.slot
		}
		acc.rects = slices.Insert(acc.rects, at, bx.rect(top, end))
	}
}

func (bx *openBox) rect(top, bottom float64) Rect {
	return Rect{
		X:           bx.x,
		Y:           top,
		Width:       bx.width,
		Height:      bottom - top,
		StrokeColor: bx.style.stroke,
		StrokeWidth: bx.style.width,
		FillColor:   bx.style.fill,
	}
}
