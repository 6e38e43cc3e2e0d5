// Package docx generates Word documents from .docx templates.
package docx

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/ByLCY/scholar/renderer"
	"github.com/ByLCY/scholar/renderer/office"
	"github.com/ByLCY/scholar/renderer/template"
)

const (
	Format = "docx"
	Suffix = ".docx"

	documentPart = "word/document.xml"
	contentTypes = "[Content_Types].xml"
)

// Parts are the package entries rendered through the template engine.
var Parts = []string{
	documentPart,
	"word/header*.xml",
	"word/footer*.xml",
	"word/footnotes.xml",
	"word/endnotes.xml",
}

var errNotDOCX = errors.New("template is not a Word package")

type Options struct {
	Root    string
	Engine  *template.Engine
	Scratch renderer.ScratchDir
	Logger  *slog.Logger
}

// Generator renders .docx templates.
type Generator struct {
	opts Options
}

var _ renderer.Generator = (*Generator)(nil)

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
	if pkg.Entry(documentPart) == nil || pkg.Entry(contentTypes) == nil {
		return nil, &renderer.RenderError{Format: Format, Template: ref.String(), Err: errNotDOCX}
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
