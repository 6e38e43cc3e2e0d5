// Package builtin registers the PDF, ODT and DOCX generators.
package builtin

import (
	"fmt"
	"log/slog"

	"github.com/ByLCY/scholar/layout"
	"github.com/ByLCY/scholar/renderer"
	"github.com/ByLCY/scholar/renderer/docx"
	"github.com/ByLCY/scholar/renderer/odt"
	"github.com/ByLCY/scholar/renderer/pdf"
	"github.com/ByLCY/scholar/renderer/template"
)

// Options configures every built-in generator.
type Options struct {
	TemplateRoot  string
	StaticBaseURL string
	ScratchDir    string
	Page          layout.PageSpec
	FontSize      float64
	LayoutDebug   string
	PDF           pdf.BackendOptions
	// Backend replaces the probed PDF backend.
	Backend *pdf.Backend
	Logger  *slog.Logger
}

// Status describes one registered format.
type Status struct {
	Format    string `json:"format"`
	Available bool   `json:"available"`
	Hint      string `json:"hint,omitempty"`
}

// Availability reports per-format readiness after Register.
type Availability struct {
	backend *pdf.Backend
}

// Register binds pdf, odt and docx in reg. pdf is registered even when its
// backend is unavailable; its generators then fail with
// renderer.BackendUnavailableError.
func Register(reg *renderer.Registry, opts Options) (*Availability, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := template.New(template.WithBaseDir(opts.TemplateRoot))
	if err != nil {
		return nil, fmt.Errorf("builtin: template engine: %w", err)
	}
	backend := opts.Backend
	if backend == nil {
		bo := opts.PDF
		if bo.Logger == nil {
			bo.Logger = logger
		}
		backend = pdf.NewBackend(bo)
	}
	scratch := renderer.ScratchDir{Dir: opts.ScratchDir}

	pdfOpts := pdf.Options{
		Root:     opts.TemplateRoot,
		Engine:   engine,
		Backend:  backend,
		BaseURL:  opts.StaticBaseURL,
		Page:     opts.Page,
		FontSize: opts.FontSize,
		DebugDir: opts.LayoutDebug,
		Logger:   logger,
	}
	odtOpts := odt.Options{Root: opts.TemplateRoot, Engine: engine, Scratch: scratch, Logger: logger}
	docxOpts := docx.Options{Root: opts.TemplateRoot, Engine: engine, Scratch: scratch, Logger: logger}

	// Build each once so the factories below cannot fail.
	if _, err := pdf.New(pdfOpts); err != nil {
		return nil, fmt.Errorf("builtin: pdf: %w", err)
	}
	if _, err := odt.New(odtOpts); err != nil {
		return nil, fmt.Errorf("builtin: odt: %w", err)
	}
	if _, err := docx.New(docxOpts); err != nil {
		return nil, fmt.Errorf("builtin: docx: %w", err)
	}

	reg.RegisterAll(
		renderer.Descriptor{Format: pdf.Format, Factory: func() renderer.Generator { return must(pdf.New(pdfOpts)) }},
		renderer.Descriptor{Format: odt.Format, Factory: func() renderer.Generator { return must(odt.New(odtOpts)) }},
		renderer.Descriptor{Format: docx.Format, Factory: func() renderer.Generator { return must(docx.New(docxOpts)) }},
	)
	logger.Info("document generators registered", "formats", reg.AvailableFormats(), "pdf_available", backend.Available())
	return &Availability{backend: backend}, nil
}

func must(g renderer.Generator, err error) renderer.Generator {
	if err != nil {
		panic(err)
	}
	return g
}

// Formats lists every format in reg with its readiness. Formats registered
// outside this package are reported as available.
func (a *Availability) Formats(reg *renderer.Registry) []Status {
	formats := reg.AvailableFormats()
	out := make([]Status, 0, len(formats))
	for _, f := range formats {
		st := Status{Format: f, Available: true}
		if f == pdf.Format && a != nil && !a.backend.Available() {
			st.Available = false
			st.Hint = a.backend.Hint()
		}
		out = append(out, st)
	}
	return out
}

// PDFBackend returns the backend shared by the registered pdf generators.
func (a *Availability) PDFBackend() *pdf.Backend { return a.backend }
