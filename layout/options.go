package layout

// BuildOptions carries the collaborators and defaults used by BuildHTML.
type BuildOptions struct {
	Typesetter Typesetter
	Images     ImageSizer
	Page       PageSpec
	// FontSize is the body font size in points; 11 when zero.
	FontSize float64
	// LineHeight is a factor of the font size; 1.4 when zero.
	LineHeight float64
	Creator    string
}

// PageSpec selects the paper. A <meta name="page-size"> in the document
// overrides Size and Landscape.
type PageSpec struct {
	Size      string // A4 (default), A5, Letter, Legal
	Landscape bool
	Margin    Margin // 20mm on every side when zero
}

// Typesetter splits text into lines that fit width with the given face.
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// ImageSizer reports the natural size of an image, in millimetres.
type ImageSizer interface {
	ImageSize(src string) (width, height float64, err error)
}
