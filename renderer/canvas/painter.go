package canvasrenderer

import (
	"image/color"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/scholar/layout"
)

const (
	hairline   = 0.2 // mm
	headerFill = "#f2f2f2"
)

var transparent = color.RGBA{}

// painter draws one page onto a canvas context.
type painter struct {
	r   *Renderer
	ctx *canvas.Context
}

// page paints the header band, the body and the footer band in that order;
// within each, boxes and strokes go below text.
func (p *painter) page(pg layout.Page) error {
	if err := p.band(pg.Header.Rects, pg.Header.Lines, pg.Header.Texts, pg.Header.Images); err != nil {
		return err
	}
	if err := p.band(pg.Rects, pg.Lines, pg.Texts, pg.Images); err != nil {
		return err
	}
	for _, tbl := range pg.Tables {
		if err := p.table(tbl); err != nil {
			return err
		}
	}
	return p.band(pg.Footer.Rects, pg.Footer.Lines, pg.Footer.Texts, pg.Footer.Images)
}

func (p *painter) band(rects []layout.Rect, lines []layout.Line, texts []layout.TextBox, images []layout.ImageBox) error {
	for _, rc := range rects {
		p.rect(rc)
	}
	for _, ln := range lines {
		p.line(ln)
	}
	for _, tb := range texts {
		if err := p.text(tb); err != nil {
			return err
		}
	}
	for _, img := range images {
		if err := p.image(img); err != nil {
			return err
		}
	}
	return nil
}

// anchor returns where canvas should anchor a line of text inside tb.
func anchor(tb layout.TextBox) (canvas.TextAlign, float64) {
	switch strings.ToLower(tb.Align) {
	case "center":
		return canvas.Center, tb.X + tb.Width/2
	case "right", "end":
		return canvas.Right, tb.X + tb.Width
	}
	return canvas.Left, tb.X
}

func (p *painter) text(tb layout.TextBox) error {
	// layout sizes are mm, faces are sized in pt
	face, err := p.r.fontFace(tb.Font, toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}
	rows := tb.Lines
	if len(rows) == 0 {
		rows = []layout.TextLine{{Content: tb.Content, Width: tb.Width, Height: tb.LineHeight}}
	}
	align, x := anchor(tb)
	ascent := face.Metrics().Ascent
	y := tb.Y
	for _, row := range rows {
		y += row.GapBefore
		p.ctx.DrawText(x, y+ascent, canvas.NewTextLine(face, row.Content, align))
		if row.Height > 0 {
			y += row.Height
		} else {
			y += tb.FontSize
		}
	}
	return nil
}

func (p *painter) image(box layout.ImageBox) error {
	if box.Path == "" {
		return nil
	}
	img, err := p.r.image(box.Path)
	if err != nil {
		return err
	}
	px := float64(img.Bounds().Dx())
	w := box.Width
	if w <= 0 {
		w = px * layout.PxToMm
	}
	res := 1.0
	if px > 0 && w > 0 {
		res = px / w
	}
	p.ctx.DrawImage(box.X, box.Y, img, canvas.DPMM(res))
	return nil
}

func (p *painter) table(tbl layout.TableBox) error {
	if len(tbl.ColumnWidths) == 0 {
		return nil
	}
	border := colorFromLayout(tbl.BorderColor)
	for _, row := range tbl.Rows {
		fill := color.Color(canvas.White)
		if row.IsHeader {
			fill = canvas.Hex(headerFill)
		}
		x := tbl.X
		for _, cell := range row.Cells {
			// the text box sits inside the cell with equal padding left and right
			w := cell.Text.Width + 2*(cell.Text.X-x)
			p.stroke(border, hairline)
			p.ctx.SetFillColor(fill)
			p.ctx.DrawPath(x, row.Y, canvas.Rectangle(w, row.Height))
			if err := p.text(cell.Text); err != nil {
				return err
			}
			x += w
		}
	}
	return nil
}

func (p *painter) line(ln layout.Line) {
	p.stroke(colorFromLayout(ln.Color), ln.Width)
	seg := &canvas.Path{}
	seg.MoveTo(0, 0)
	seg.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
	p.ctx.DrawPath(ln.X1, ln.Y1, seg)
}

// rect draws a block box; a zero stroke width means no border.
func (p *painter) rect(rc layout.Rect) {
	if rc.StrokeWidth > 0 {
		p.stroke(colorFromLayout(rc.StrokeColor), rc.StrokeWidth)
	} else {
		p.ctx.SetStrokeColor(transparent)
	}
	if rc.FillColor != nil {
		p.ctx.SetFillColor(colorFromLayout(*rc.FillColor))
	} else {
		p.ctx.SetFillColor(transparent)
	}
	p.ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
}

// stroke sets the pen; widths of zero or less fall back to a hairline.
func (p *painter) stroke(c color.Color, width float64) {
	if width <= 0 {
		width = hairline
	}
	p.ctx.SetStrokeColor(c)
	p.ctx.SetStrokeWidth(width)
}

func colorFromLayout(c layout.Color) color.Color {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}

func toPt(mm float64) float64 { return mm * layout.MmToPt }
