// Package canvasrenderer draws layout results into PDF with
// github.com/tdewolff/canvas and measures text for the layout pass.
package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/scholar/fonts"
	"github.com/ByLCY/scholar/layout"
)

// AssetLoader returns the bytes behind an <img src>.
type AssetLoader interface {
	Load(src string) ([]byte, error)
}

// Options configures a Renderer.
type Options struct {
	// Fonts overrides discovery; FontDirs is searched when it is nil.
	Fonts    *fonts.Set
	FontDirs []string
	Assets   AssetLoader
}

// Renderer draws layout results via github.com/tdewolff/canvas. A Renderer
// is not meant to be shared between concurrent renders; create one per
// document.
type Renderer struct {
	opts Options

	fontOnce sync.Once
	family   *canvas.FontFamily
	fontErr  error

	imgMu  sync.Mutex
	images map[string]image.Image
}

var (
	_ layout.Typesetter = (*Renderer)(nil)
	_ layout.ImageSizer = (*Renderer)(nil)
)

// New creates a renderer. Fonts are loaded lazily on first use or by Probe.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts, images: map[string]image.Image{}}
}

// Probe loads the fonts and reports whether text can be drawn.
func (r *Renderer) Probe() error {
	_, err := r.fontFamily()
	return err
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, errors.New("canvasrenderer: nil layout result")
	}
	if len(result.Pages) == 0 {
		return nil, errors.New("canvasrenderer: no pages to render")
	}

	first := result.Pages[0]
	var out bytes.Buffer
	doc := pdf.New(&out, first.Width, first.Height, nil)
	meta := result.Meta
	doc.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)

	for n, page := range result.Pages {
		if n > 0 {
			doc.NewPage(page.Width, page.Height)
		}
		sheet := canvas.New(page.Width, page.Height)
		p := &painter{r: r, ctx: canvas.NewContext(sheet)}
		// top-left origin, like the layout
		p.ctx.SetCoordSystem(canvas.CartesianIV)
		if err := p.page(page); err != nil {
			return nil, fmt.Errorf("canvasrenderer: page %d: %w", n+1, err)
		}
		sheet.RenderTo(doc)
	}
	if err := doc.Close(); err != nil {
		return nil, fmt.Errorf("canvasrenderer: write pdf: %w", err)
	}
	return out.Bytes(), nil
}
