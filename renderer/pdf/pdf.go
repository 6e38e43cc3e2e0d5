// Package pdf generates PDF documents from HTML templates: the template is
// rendered with the shared engine, laid out on pages and drawn with canvas.
package pdf

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/ByLCY/scholar/layout"
	"github.com/ByLCY/scholar/renderer"
	canvasrenderer "github.com/ByLCY/scholar/renderer/canvas"
	"github.com/ByLCY/scholar/renderer/template"
)

const (
	Format = "pdf"
	// Suffix locates the HTML source of a PDF template.
	Suffix = ".html"
)

// Options configures a Generator.
type Options struct {
	Root    string
	Engine  *template.Engine
	Backend *Backend
	// BaseURL resolves relative <img src>; the template root when empty.
	BaseURL string
	Assets  canvasrenderer.AssetLoader
	Page    layout.PageSpec
	// FontSize is the body size in points.
	FontSize float64
	// DebugDir receives the page model of every render as JSON when set.
	DebugDir string
	Logger   *slog.Logger
}

// Generator renders HTML templates to PDF.
type Generator struct {
	opts Options
}

var _ renderer.Generator = (*Generator)(nil)

// New returns a Generator. Options.Backend is required.
func New(opts Options) (*Generator, error) {
	if opts.Backend == nil {
		return nil, errors.New("pdf: backend is required")
	}
	if opts.Engine == nil {
		e, err := template.New(template.WithBaseDir(opts.Root))
		if err != nil {
			return nil, err
		}
		opts.Engine = e
	}
	if opts.Assets == nil {
		base := opts.BaseURL
		if base == "" {
			base = opts.Root
		}
		loader, err := NewURLLoader(base, nil)
		if err != nil {
			return nil, err
		}
		opts.Assets = loader
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{opts: opts}, nil
}

func (g *Generator) Extension() string { return Format }

func (g *Generator) Generate(folder, name string, ctx renderer.Context) ([]byte, error) {
	backend := g.opts.Backend
	if !backend.Available() {
		return nil, &renderer.BackendUnavailableError{Format: Format, Hint: backend.Hint(), Err: backend.Err()}
	}

	ref := renderer.TemplateRef{Folder: folder, Name: name}
	path := ref.Path(g.opts.Root, Suffix)
	src, err := g.opts.Engine.RenderFile(path, ctx.Map())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &renderer.TemplateNotFoundError{Format: Format, Path: path}
		}
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: err}
	}

	release, err := backend.acquire(context.Background())
	if err != nil {
		return nil, err
	}
	defer release()

	r := canvasrenderer.New(canvasrenderer.Options{Fonts: backend.set, Assets: g.opts.Assets})
	res, err := layout.BuildHTML(src, layout.BuildOptions{
		Typesetter: r,
		Images:     r,
		Page:       g.opts.Page,
		FontSize:   g.opts.FontSize,
		Creator:    "scholar",
	})
	if err != nil {
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: err}
	}
	if g.opts.DebugDir != "" {
		if err := layout.WriteDebugJSON(res, g.opts.DebugDir, filepath.Join(folder, name)); err != nil {
			g.opts.Logger.Warn("write layout debug json", "template", ref.String(), "error", err)
		}
	}

	data, err := r.Render(res)
	if err != nil {
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: err}
	}
	g.opts.Logger.Debug("document generated", "format", Format, "template", path, "pages", len(res.Pages), "bytes", len(data))
	return data, nil
}
