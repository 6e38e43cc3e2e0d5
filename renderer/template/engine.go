// Package template is the Jinja-style substitution engine shared by every
// generator: HTML sources for PDF and the XML parts of ODT/DOCX packages are
// all rendered through the same pongo2 template set.
package template

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/ByLCY/scholar/binding"
	"github.com/ByLCY/scholar/dsl"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	baseDir string
	strict  bool
	filters map[string]pongo2.FilterFunction
	globals map[string]any
}

// WithBaseDir roots {% include %} and {% extends %} lookups at dir.
func WithBaseDir(dir string) Option {
	return func(c *config) { c.baseDir = strings.TrimSpace(dir) }
}

// WithStrict toggles the check that every referenced path exists in the
// context. It is on by default.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithFilter registers a pongo2 filter when the engine is built. Filters are
// process-wide in pongo2; an existing filter with the same name is kept.
func WithFilter(name string, fn pongo2.FilterFunction) Option {
	return func(c *config) {
		if c.filters == nil {
			c.filters = map[string]pongo2.FilterFunction{}
		}
		c.filters[name] = fn
	}
}

// WithGlobals seeds values visible to every template.
func WithGlobals(data map[string]any) Option {
	return func(c *config) {
		if c.globals == nil {
			c.globals = make(map[string]any, len(data))
		}
		for k, v := range data {
			c.globals[k] = v
		}
	}
}

// MissingKeysError lists context paths a template reads but the context lacks.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return "missing context keys: " + strings.Join(e.Keys, ", ")
}

// SyntaxError reports a template that cannot be parsed.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return "template syntax: " + e.Err.Error() }

func (e *SyntaxError) Unwrap() error { return e.Err }

// Engine renders template sources with a context map.
type Engine struct {
	mu     sync.RWMutex
	set    *pongo2.TemplateSet
	strict bool
}

var filtersOnce sync.Once

// New builds an Engine.
func New(opts ...Option) (*Engine, error) {
	cfg := &config{strict: true}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	// without a base dir, include/extends resolve against the working directory
	loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
	if err != nil {
		return nil, fmt.Errorf("template: create local loader: %w", err)
	}

	filtersOnce.Do(registerDefaultFilters)
	for name, fn := range cfg.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("template: register filter %q: %w", name, err)
		}
	}

	set := pongo2.NewSet("scholar", loader)
	if len(cfg.globals) > 0 {
		set.Globals = pongo2.Context{}
		set.Globals.Update(cfg.globals)
	}
	return &Engine{set: set, strict: cfg.strict}, nil
}

// Check verifies src parses and, in strict mode, that data provides every
// path src reads.
func (e *Engine) Check(src string, data map[string]any) error {
	analysis, err := dsl.Analyze(src)
	if err != nil {
		return &SyntaxError{Err: err}
	}
	if !e.strict {
		return nil
	}
	if missing := binding.Missing(e.withGlobals(data), analysis); len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}

// RenderString renders src with data.
func (e *Engine) RenderString(src string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("template: engine is nil")
	}
	if err := e.Check(src, data); err != nil {
		return "", err
	}

	e.mu.RLock()
	tpl, err := e.set.FromString(src)
	e.mu.RUnlock()
	if err != nil {
		return "", &SyntaxError{Err: err}
	}

	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("template: execute: %w", err)
	}
	return out, nil
}

// RenderFile reads path and renders it with data. A missing file is reported
// through an error satisfying os.IsNotExist.
func (e *Engine) RenderFile(path string, data map[string]any) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return e.RenderString(string(src), data)
}

func (e *Engine) withGlobals(data map[string]any) map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.set.Globals) == 0 {
		return data
	}
	merged := make(map[string]any, len(data)+len(e.set.Globals))
	for k, v := range e.set.Globals {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	return merged
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
