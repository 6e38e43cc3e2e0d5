package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BuildHTML lays out an HTML document on pages.
//
// Supported: headings, paragraphs and generic blocks, line breaks, ordered
// and unordered lists, tables with equal-width columns, images, horizontal
// rules, a body-level <header> and <footer> repeated on every page and
// page-break-before/after. Inline elements change the style of the whole
// block when they cover all of its text.
func BuildHTML(src string, opts BuildOptions) (*Result, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("layout: parse html: %w", err)
	}

	meta, spec := collectHead(doc, opts)
	width, height, err := ResolvePageSize(spec)
	if err != nil {
		return nil, err
	}
	margin := defaultMargin(spec.Margin)
	pc := newPageCollector(width, height, margin)

	base := textStyle{
		fontSize:   defaultFontSizePt * PtToMm,
		lineHeight: defaultLeading,
		color:      defaultTextColor,
	}
	if opts.FontSize > 0 {
		base.fontSize = opts.FontSize * PtToMm
	}
	if opts.LineHeight > 0 {
		base.lineHeight = opts.LineHeight
	}

	body := findFirst(doc, atom.Body)
	if body == nil {
		body = doc
	}
	header, footer := bodyBands(body)
	if header != nil {
		band, err := layoutBand(header, base, pc, opts)
		if err != nil {
			return nil, err
		}
		top := math.Min(10, margin.Top/2)
		band.shift(top)
		band.Height += top + blockSpacing
		pc.header = band
	}
	if footer != nil {
		band, err := layoutBand(footer, base, pc, opts)
		if err != nil {
			return nil, err
		}
		top := height - math.Min(10, margin.Bottom/2) - band.Height
		band.shift(top)
		band.Height = height - top + blockSpacing
		pc.footer = band
	}

	b := &builder{opts: opts, pc: pc, acc: pc.curr(), cursorY: pc.contentTop(), bottom: pc.contentBottom(), left: margin.Left, width: pc.contentWidth()}
	b.walkChildren(body, base, header, footer)
	b.flush()
	if b.err != nil {
		return nil, b.err
	}

	return &Result{
		Pages: pc.pages(),
		Resources: ResourceSet{Fonts: map[string]FontResource{
			"regular":    {Name: "regular", Style: "regular"},
			"bold":       {Name: "bold", Style: "bold"},
			"italic":     {Name: "italic", Style: "italic"},
			"bolditalic": {Name: "bolditalic", Style: "bolditalic"},
		}},
		Meta: meta,
	}, nil
}

// collectHead reads <title> and the <meta> names author, description,
// keywords, page-size ("A4 landscape") and page-margin (CSS shorthand).
func collectHead(doc *html.Node, opts BuildOptions) (DocumentMeta, PageSpec) {
	meta := DocumentMeta{Creator: opts.Creator}
	spec := opts.Page
	if t := findFirst(doc, atom.Title); t != nil {
		meta.Title = strings.TrimSpace(textContent(t))
	}
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			content := attr(n, "content")
			switch strings.ToLower(attr(n, "name")) {
			case "author":
				meta.Author = content
			case "description", "subject":
				meta.Subject = content
			case "keywords":
				for _, k := range strings.Split(content, ",") {
					if k = strings.TrimSpace(k); k != "" {
						meta.Keywords = append(meta.Keywords, k)
					}
				}
			case "page-size":
				fields := strings.Fields(content)
				if len(fields) > 0 {
					spec.Size = fields[0]
					spec.Landscape = len(fields) > 1 && strings.EqualFold(fields[1], "landscape")
				}
			case "page-margin":
				if m := parseBox(content, defaultFontSizePt*PtToMm); m != (Margin{}) {
					spec.Margin = m
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Body {
				continue
			}
			visit(c)
		}
	}
	visit(doc)
	return meta, spec
}

func bodyBands(body *html.Node) (header, footer *html.Node) {
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Header && header == nil {
			header = c
		}
		if c.DataAtom == atom.Footer && footer == nil {
			footer = c
		}
	}
	return header, footer
}

// layoutBand lays n out from y=0 without page breaks.
func layoutBand(n *html.Node, st textStyle, pc *pageCollector, opts BuildOptions) (HeaderFooter, error) {
	acc := &pageAccumulator{}
	b := &builder{opts: opts, acc: acc, bottom: math.MaxFloat64, left: pc.margin.Left, width: pc.contentWidth()}
	b.walkChildren(n, st.derive(n, parseStyleAttr(attr(n, "style"))), nil, nil)
	b.flush()
	if b.err != nil {
		return HeaderFooter{}, b.err
	}
	for _, t := range acc.tables {
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				acc.texts = append(acc.texts, cell.Text)
			}
		}
	}
	return HeaderFooter{Height: b.cursorY, Texts: acc.texts, Images: acc.images, Lines: acc.lines, Rects: acc.rects}, nil
}

type run struct {
	text string
	st   textStyle
}

type builder struct {
	opts    BuildOptions
	pc      *pageCollector // nil inside header and footer bands
	acc     *pageAccumulator
	cursorY float64
	bottom  float64
	left    float64
	width   float64
	inline  []run
	err     error
}

var skipped = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Title: true,
	atom.Template: true, atom.Noscript: true, atom.Meta: true, atom.Link: true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true, atom.Main: true,
	atom.Aside: true, atom.Nav: true, atom.Blockquote: true, atom.Pre: true, atom.Address: true,
	atom.Center: true, atom.Figure: true, atom.Figcaption: true, atom.Li: true, atom.Dl: true,
	atom.Dt: true, atom.Dd: true, atom.Header: true, atom.Footer: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

func (b *builder) walkChildren(n *html.Node, st textStyle, exclude ...*html.Node) {
outer:
	for c := n.FirstChild; c != nil && b.err == nil; c = c.NextSibling {
		for _, x := range exclude {
			if c == x {
				continue outer
			}
		}
		b.walk(c, st)
	}
}

func (b *builder) walk(n *html.Node, st textStyle) {
	switch n.Type {
	case html.TextNode:
		b.addText(n.Data, st)
		return
	case html.DocumentNode:
		b.walkChildren(n, st)
		return
	case html.ElementNode:
	default:
		return
	}
	if skipped[n.DataAtom] {
		return
	}
	decl := parseStyleAttr(attr(n, "style"))
	if decl["display"] == "none" {
		return
	}
	st = st.derive(n, decl)
	if pageBreak(decl, "before") {
		b.flush()
		b.explicitBreak()
	}

	switch n.DataAtom {
	case atom.Br:
		b.inline = append(b.inline, run{text: "\n", st: st})
	case atom.Img:
		b.flush()
		b.image(n, decl, st)
	case atom.Hr:
		b.flush()
		b.rule(st)
	case atom.Table:
		b.flush()
		b.table(n, decl, st)
	case atom.Ul, atom.Ol:
		b.flush()
		b.list(n, st)
	default:
		if !blocks[n.DataAtom] {
			b.walkChildren(n, st)
			break
		}
		b.flush()
		top, bottom := blockMargins(n, decl, st.fontSize)
		b.space(top)
		bx := b.openBox(decl, st)
		b.walkChildren(n, st)
		b.flush()
		b.closeBox(bx)
		b.space(bottom)
	}

	if pageBreak(decl, "after") {
		b.flush()
		b.explicitBreak()
	}
}

func (b *builder) addText(s string, st textStyle) {
	if !st.pre {
		lead := strings.TrimLeftFunc(s, unicode.IsSpace) != s
		trail := strings.TrimRightFunc(s, unicode.IsSpace) != s
		s = strings.Join(strings.Fields(s), " ")
		open := len(b.inline) > 0 && !strings.HasSuffix(b.inline[len(b.inline)-1].text, " ") &&
			!strings.HasSuffix(b.inline[len(b.inline)-1].text, "\n")
		if s == "" {
			if open {
				b.inline = append(b.inline, run{text: " ", st: st})
			}
			return
		}
		if lead && open {
			s = " " + s
		}
		if trail {
			s += " "
		}
	}
	b.inline = append(b.inline, run{text: s, st: st})
}

// flush turns the pending inline runs into a text block.
func (b *builder) flush() {
	runs := b.inline
	b.inline = nil
	if b.err != nil || len(runs) == 0 {
		return
	}

	var sb strings.Builder
	var first *textStyle
	allBold, allItalic := true, true
	pre := false
	for i := range runs {
		sb.WriteString(runs[i].text)
		if strings.TrimSpace(runs[i].text) == "" {
			continue
		}
		if first == nil {
			first = &runs[i].st
		}
		allBold = allBold && runs[i].st.bold
		allItalic = allItalic && runs[i].st.italic
		pre = pre || runs[i].st.pre
	}
	if first == nil {
		return
	}
	content := sb.String()
	if !pre {
		lines := strings.Split(content, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSpace(l)
		}
		content = strings.Join(lines, "\n")
	}
	content = strings.Trim(content, "\n")

	st := *first
	st.bold, st.italic = allBold, allItalic
	x := b.left + st.indent
	tb, err := composeTextBox(content, st, x, b.cursorY, b.width-st.indent, b.opts.Typesetter)
	if err != nil {
		b.err = err
		return
	}
	b.placeText(tb)
}

// placeText adds tb at the cursor, continuing on new pages when it does not
// fit.
func (b *builder) placeText(tb TextBox) {
	for {
		tb.Y = b.cursorY
		if tb.Y+tb.Height <= b.bottom || b.pc == nil {
			b.acc.texts = append(b.acc.texts, tb)
			b.cursorY += tb.Height
			return
		}
		head, tail, ok := splitLines(tb, b.bottom)
		if !ok {
			if b.atTop() {
				b.acc.texts = append(b.acc.texts, tb)
				b.cursorY += tb.Height
				return
			}
			b.pageBreak()
			continue
		}
		b.acc.texts = append(b.acc.texts, head)
		b.pageBreak()
		tb = tail
	}
}

func (b *builder) atTop() bool {
	return b.pc == nil || b.cursorY <= b.pc.contentTop()
}

func (b *builder) ensureSpace(h float64) {
	if b.pc == nil || b.cursorY+h <= b.bottom || b.atTop() {
		return
	}
	b.pageBreak()
}

func (b *builder) pageBreak() {
	if b.pc == nil {
		return
	}
	b.acc = b.pc.newPage()
	b.cursorY = b.pc.contentTop()
}

// explicitBreak honours page-break-* but never leaves an empty page.
func (b *builder) explicitBreak() {
	if b.atTop() {
		return
	}
	b.pageBreak()
}

func (b *builder) space(h float64) {
	if h <= 0 || b.atTop() && b.pc != nil {
		return
	}
	b.cursorY += h
}

func (b *builder) image(n *html.Node, decl map[string]string, st textStyle) {
	src := attr(n, "src")
	if src == "" {
		return
	}
	avail := b.width - st.indent
	w := dimension(attr(n, "width"), decl["width"], st.fontSize, avail)
	h := dimension(attr(n, "height"), decl["height"], st.fontSize, avail)
	if w <= 0 || h <= 0 {
		if b.opts.Images == nil {
			b.err = fmt.Errorf("layout: image %s has no size and no sizer is configured", src)
			return
		}
		nw, nh, err := b.opts.Images.ImageSize(src)
		if err != nil {
			b.err = fmt.Errorf("layout: image %s: %w", src, err)
			return
		}
		switch {
		case w <= 0 && h <= 0:
			w, h = nw, nh
		case w <= 0 && nh > 0:
			w = h * nw / nh
		case h <= 0 && nw > 0:
			h = w * nh / nw
		}
	}
	if w > avail && w > 0 {
		h = h * avail / w
		w = avail
	}
	b.ensureSpace(h)
	x := b.left + st.indent + alignOffset(avail, w, st.align)
	b.acc.images = append(b.acc.images, ImageBox{Path: src, X: x, Y: b.cursorY, Width: w, Height: h})
	b.cursorY += h + blockSpacing/2
}

// dimension resolves an HTML width/height attribute (pixels) or its CSS
// counterpart, which wins.
func dimension(attrVal, cssVal string, fontSize, reference float64) float64 {
	for _, v := range []string{cssVal, attrVal} {
		if l, ok := ParseRawLengthStr(v); ok && l.Value > 0 {
			return l.Resolve(fontSize, reference)
		}
	}
	return 0
}

func (b *builder) rule(st textStyle) {
	b.ensureSpace(blockSpacing)
	y := b.cursorY + blockSpacing/2
	b.acc.lines = append(b.acc.lines, Line{
		X1: b.left + st.indent, Y1: y,
		X2: b.left + b.width, Y2: y,
		Color: Color{R: 160, G: 160, B: 160},
	})
	b.cursorY += blockSpacing
}

func (b *builder) list(n *html.Node, st textStyle) {
	ordered := n.DataAtom == atom.Ol
	index := 1
	if v, err := strconv.Atoi(attr(n, "start")); err == nil {
		index = v
	}
	st.indent += listIndent
	for c := n.FirstChild; c != nil && b.err == nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			b.walk(c, st)
			continue
		}
		decl := parseStyleAttr(attr(c, "style"))
		item := st.derive(c, decl)
		marker := "• "
		if ordered {
			marker = strconv.Itoa(index) + ". "
			index++
		}
		b.flush()
		b.inline = append(b.inline, run{text: marker, st: item})
		b.walkChildren(c, item)
		b.flush()
		b.space(1)
	}
	b.space(blockSpacing - 1)
}

type cellSource struct {
	node   *html.Node
	span   int
	header bool
}

func tableRows(table *html.Node) (rows [][]cellSource, headerRows int) {
	var visit func(n *html.Node, inHead bool)
	visit = func(n *html.Node, inHead bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead:
				visit(c, true)
			case atom.Tbody, atom.Tfoot:
				visit(c, false)
			case atom.Tr:
				var cells []cellSource
				allTh := true
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
						continue
					}
					span, err := strconv.Atoi(attr(cell, "colspan"))
					if err != nil || span < 1 {
						span = 1
					}
					allTh = allTh && cell.DataAtom == atom.Th
					cells = append(cells, cellSource{node: cell, span: span})
				}
				if len(cells) == 0 {
					continue
				}
				header := inHead || allTh
				for i := range cells {
					cells[i].header = header
				}
				if header && len(rows) == headerRows {
					headerRows++
				}
				rows = append(rows, cells)
			}
		}
	}
	visit(table, false)
	return rows, headerRows
}

func (b *builder) table(n *html.Node, decl map[string]string, st textStyle) {
	rows, headerRows := tableRows(n)
	if len(rows) == 0 {
		return
	}
	columns := 0
	for _, r := range rows {
		sum := 0
		for _, c := range r {
			sum += c.span
		}
		columns = max(columns, sum)
	}

	avail := b.width - st.indent
	width := dimension(attr(n, "width"), decl["width"], st.fontSize, avail)
	if width <= 0 || width > avail {
		width = avail
	}
	colWidth := width / float64(columns)
	x := b.left + st.indent + alignOffset(avail, width, st.align)
	st.align = ""

	newBox := func() TableBox {
		tb := TableBox{X: x, Y: b.cursorY, Width: width, BorderColor: Color{R: 200, G: 200, B: 200}}
		tb.ColumnWidths = make([]float64, columns)
		for i := range tb.ColumnWidths {
			tb.ColumnWidths[i] = colWidth
		}
		return tb
	}

	var headers []TableRow
	box := newBox()
	repeated := 0
	for i, cells := range rows {
		row, err := b.tableRow(cells, st, x, colWidth)
		if err != nil {
			b.err = err
			return
		}
		if b.pc != nil && b.cursorY+row.Height > b.bottom {
			switch {
			case len(box.Rows) == 0 && !b.atTop():
				b.pageBreak()
				box.Y = b.cursorY
			case len(box.Rows) > repeated:
				b.acc.tables = append(b.acc.tables, box)
				b.pageBreak()
				box = newBox()
				for _, h := range headers {
					h = shiftRow(h, b.cursorY-h.Y)
					box.Rows = append(box.Rows, h)
					b.cursorY += h.Height
				}
				repeated = len(headers)
			}
		}
		row = shiftRow(row, b.cursorY-row.Y)
		box.Rows = append(box.Rows, row)
		if i < headerRows {
			headers = append(headers, row)
		}
		b.cursorY += row.Height
	}
	b.acc.tables = append(b.acc.tables, box)
	b.cursorY += blockSpacing
}

func (b *builder) tableRow(cells []cellSource, st textStyle, x, colWidth float64) (TableRow, error) {
	row := TableRow{IsHeader: len(cells) > 0 && cells[0].header}
	maxHeight := 0.0
	cx := x
	for _, c := range cells {
		cellStyle := st.derive(c.node, parseStyleAttr(attr(c.node, "style")))
		cellStyle.indent = 0
		if c.header {
			cellStyle.bold = true
		}
		w := colWidth * float64(c.span)
		inner := w - 2*cellPadding
		if inner <= 0 {
			inner = w
		}
		tb, err := composeTextBox(cellText(c.node, cellStyle.pre), cellStyle, cx+cellPadding, cellPadding, inner, b.opts.Typesetter)
		if err != nil {
			return row, err
		}
		row.Cells = append(row.Cells, TableCell{Text: tb})
		maxHeight = max(maxHeight, tb.Height)
		cx += w
	}
	row.Height = maxHeight + 2*cellPadding
	return row, nil
}

// shiftRow moves a row laid out at its current Y by dy.
func shiftRow(r TableRow, dy float64) TableRow {
	cells := make([]TableCell, len(r.Cells))
	copy(cells, r.Cells)
	for i := range cells {
		cells[i].Text.Y += dy
	}
	r.Cells = cells
	r.Y += dy
	return r
}

// cellText flattens a cell, keeping <br> and block boundaries as newlines.
func cellText(n *html.Node, pre bool) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				if pre {
					sb.WriteString(c.Data)
				} else {
					sb.WriteString(strings.Join(strings.Fields(c.Data), " "))
					if strings.HasSuffix(c.Data, " ") || strings.HasSuffix(c.Data, "\n") {
						sb.WriteString(" ")
					}
				}
			case c.Type == html.ElementNode && c.DataAtom == atom.Br:
				sb.WriteString("\n")
			case c.Type == html.ElementNode && !skipped[c.DataAtom]:
				if blocks[c.DataAtom] && sb.Len() > 0 {
					sb.WriteString("\n")
				}
				visit(c)
			}
		}
	}
	visit(n)
	lines := strings.Split(sb.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}
