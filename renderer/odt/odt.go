// Package odt generates OpenDocument Text files from .odt templates whose
// content and styles carry template tags.
package odt

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/ByLCY/scholar/renderer"
	"github.com/ByLCY/scholar/renderer/office"
	"github.com/ByLCY/scholar/renderer/template"
)

const (
	// Format is the registry identifier and output extension.
	Format = "odt"
	// Suffix is appended to the template name to locate the package.
	Suffix = ".odt"
	// Mimetype is the value ODF stores in the mimetype entry.
	Mimetype = "application/vnd.oasis.opendocument.text"
)

// Parts are the package entries rendered through the template engine.
var Parts = []string{"content.xml", "styles.xml"}

var errNotODT = errors.New("template is not an OpenDocument text package")

// Options configures a Generator.
type Options struct {
	Root    string
	Engine  *template.Engine
	Scratch renderer.ScratchDir
	Logger  *slog.Logger
}

// Generator renders .odt templates.
type Generator struct {
	opts Options
}

var _ renderer.Generator = (*Generator)(nil)

// New returns a Generator. A nil Engine gets a strict default engine.
func New(opts Options) (*Generator, error) {
	if opts.Engine == nil {
		e, err := template.New(template.WithBaseDir(opts.Root))
		if err != nil {
			return nil, err
		}
		opts.Engine = e
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{opts: opts}, nil
}

func (g *Generator) Extension() string { return Format }

func (g *Generator) Generate(folder, name string, ctx renderer.Context) ([]byte, error) {
	ref := renderer.TemplateRef{Folder: folder, Name: name}
	path := ref.Path(g.opts.Root, Suffix)

	pkg, err := office.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &renderer.TemplateNotFoundError{Format: Format, Path: path}
		}
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: err}
	}
	if mt := pkg.Entry(office.MimetypeEntry); mt == nil || string(bytes.TrimSpace(mt.Data)) != Mimetype {
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: errNotODT}
	}

	if err := pkg.RenderParts(g.opts.Engine, ctx.Map(), Parts...); err != nil {
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: err}
	}

	data, err := g.opts.Scratch.Roundtrip(Format, func(w io.Writer) error {
		_, err := pkg.WriteTo(w)
		return err
	})
	if err != nil {
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: err}
	}
	g.opts.Logger.Debug("document generated", "format", Format, "template", path, "bytes", len(data))
	return data, nil
}
