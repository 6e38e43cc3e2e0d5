package pdf

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/ByLCY/scholar/fonts"
	canvasrenderer "github.com/ByLCY/scholar/renderer/canvas"
)

// DefaultHint tells an operator how to make the backend available.
const DefaultHint = "install a TrueType font family (fonts-dejavu-core or fonts-liberation) " +
	"or point documents.pdf.fonts.regular at a .ttf file"

// BackendOptions configures the process-wide PDF engine.
type BackendOptions struct {
	// Fonts lists explicit face files; discovery in FontDirs (or the system
	// font directories) is used when Fonts has no regular face.
	Fonts    map[fonts.Style]string
	FontDirs []string
	// MaxConcurrent bounds simultaneous renders; 2 when zero.
	MaxConcurrent int64
	Hint          string
	// Discover replaces font loading, mostly for tests.
	Discover func() (*fonts.Set, error)
	Logger   *slog.Logger
}

// Backend holds the result of the one-time availability probe and the
// render limiter shared by every PDF generator.
type Backend struct {
	set  *fonts.Set
	err  error
	hint string
	sem  *semaphore.Weighted
}

// NewBackend probes the engine once. It never fails: an unusable engine is
// recorded and reported by every Generate call.
func NewBackend(opts BackendOptions) *Backend {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := opts.MaxConcurrent
	if n <= 0 {
		n = 2
	}
	b := &Backend{hint: opts.Hint, sem: semaphore.NewWeighted(n)}
	if b.hint == "" {
		b.hint = DefaultHint
	}

	discover := opts.Discover
	if discover == nil {
		discover = func() (*fonts.Set, error) {
			if opts.Fonts[fonts.Regular] != "" {
				return fonts.LoadFiles(opts.Fonts)
			}
			return fonts.Discover(opts.FontDirs)
		}
	}
	set, err := discover()
	if err == nil {
		err = canvasrenderer.New(canvasrenderer.Options{Fonts: set}).Probe()
	}
	if err != nil {
		b.err = fmt.Errorf("pdf engine unavailable: %w", err)
		logger.Warn("pdf backend unavailable", "error", err, "hint", b.hint)
		return b
	}
	b.set = set
	logger.Info("pdf backend ready", "font_family", set.Family, "max_concurrent", n)
	return b
}

// Available reports whether the probe succeeded.
func (b *Backend) Available() bool { return b != nil && b.err == nil && b.set != nil }

// Err returns the probe failure, if any.
func (b *Backend) Err() error { return b.err }

// Hint returns the remediation message.
func (b *Backend) Hint() string { return b.hint }

func (b *Backend) acquire(ctx context.Context) (func(), error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { b.sem.Release(1) }, nil
}
