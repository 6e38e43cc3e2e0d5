package layout

// Result is a paginated document ready to be drawn. Every coordinate and size
// is in millimetres with the origin at the top-left corner of the page.
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet lists the fonts text boxes refer to by name.
type ResourceSet struct {
	Fonts map[string]FontResource `json:"fonts"`
}

// FontResource names one face. Style is one of regular, bold, italic and
// bolditalic; the renderer maps it to a loaded face.
type FontResource struct {
	Name  string `json:"name"`
	Style string `json:"style"`
}

// Color uses 0-255 RGB components.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page holds the elements drawn on one sheet. Header and footer repeat on
// every page.
type Page struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Margin Margin       `json:"margin"`
	Texts  []TextBox    `json:"texts"`
	Images []ImageBox   `json:"images"`
	Tables []TableBox   `json:"tables"`
	Lines  []Line       `json:"lines,omitempty"`
	Rects  []Rect       `json:"rects,omitempty"`
	Header HeaderFooter `json:"header"`
	Footer HeaderFooter `json:"footer"`
}

// HeaderFooter is a fixed-height band laid out once.
type HeaderFooter struct {
	Height float64    `json:"height"`
	Texts  []TextBox  `json:"texts"`
	Images []ImageBox `json:"images"`
	Lines  []Line     `json:"lines,omitempty"`
	Rects  []Rect     `json:"rects,omitempty"`
}

// shift moves every element of the band down by dy.
func (h *HeaderFooter) shift(dy float64) {
	for i := range h.Texts {
		h.Texts[i].Y += dy
	}
	for i := range h.Images {
		h.Images[i].Y += dy
	}
	for i := range h.Lines {
		h.Lines[i].Y1 += dy
		h.Lines[i].Y2 += dy
	}
	for i := range h.Rects {
		h.Rects[i].Y += dy
	}
}

type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox is a positioned block of wrapped text in a single face.
type TextBox struct {
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"`
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Height     float64    `json:"height"`
	Align      string     `json:"align,omitempty"` // left (default), center, right
	Wrap       string     `json:"wrap,omitempty"`  // anywhere (default), break-word, nowrap
}

// TextLine is one typeset line.
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// ImageBox places an image. Path is the src as written in the document; the
// renderer resolves it.
type ImageBox struct {
	Path   string  `json:"path"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TableBox uses equal column widths.
type TableBox struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width"`
	ColumnWidths []float64  `json:"columnWidths"`
	Rows         []TableRow `json:"rows"`
	BorderColor  Color      `json:"borderColor"`
}

type TableRow struct {
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	IsHeader bool        `json:"isHeader"`
	Cells    []TableCell `json:"cells"`
}

type TableCell struct {
	Text TextBox `json:"text"`
}

// Line is a straight segment; Width <= 0 lets the renderer pick a default.
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Rect is an axis-aligned rectangle, optionally filled.
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// DocumentMeta becomes the PDF info dictionary.
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
