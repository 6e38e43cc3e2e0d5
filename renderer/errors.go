package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors; the typed errors below match them through errors.Is.
var (
	ErrUnsupportedFormat  = errors.New("renderer: unsupported format")
	ErrTemplateNotFound   = errors.New("renderer: template not found")
	ErrRender             = errors.New("renderer: render failed")
	ErrBackendUnavailable = errors.New("renderer: backend unavailable")
)

// UnsupportedFormatError is returned by Registry.Create for unknown formats.
type UnsupportedFormatError struct {
	Format    string
	Available []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("renderer: format %q not supported (available: %s)", e.Format, strings.Join(e.Available, ", "))
}

func (e *UnsupportedFormatError) Is(err error) bool { return err == ErrUnsupportedFormat }

// TemplateNotFoundError means the resolved template path does not exist.
type TemplateNotFoundError struct {
	Format string
	Path   string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("renderer: %s template %s not found", e.Format, e.Path)
}

func (e *TemplateNotFoundError) Is(err error) bool { return err == ErrTemplateNotFound }

// RenderError wraps any failure while substituting a context into a template:
// syntax errors, keys missing from the context, broken packages and
// failures of the scratch file.
type RenderError struct {
	Format   string
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("renderer: render %s template %s: %v", e.Format, e.Template, e.Err)
}

func (e *RenderError) Is(err error) bool { return err == ErrRender }

func (e *RenderError) Unwrap() error { return e.Err }

// BackendUnavailableError means the rendering engine cannot run in this
// environment. Hint tells an operator how to fix it.
type BackendUnavailableError struct {
	Format string
	Hint   string
	Err    error
}

func (e *BackendUnavailableError) Error() string {
	msg := fmt.Sprintf("renderer: %s backend unavailable", e.Format)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *BackendUnavailableError) Is(err error) bool { return err == ErrBackendUnavailable }

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// IsUnsupportedFormat reports whether err is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool { return errors.Is(err, ErrUnsupportedFormat) }

// IsTemplateNotFound reports whether err is a TemplateNotFoundError.
func IsTemplateNotFound(err error) bool { return errors.Is(err, ErrTemplateNotFound) }

// IsRender reports whether err is a RenderError.
func IsRender(err error) bool { return errors.Is(err, ErrRender) }

// IsBackendUnavailable reports whether err is a BackendUnavailableError.
func IsBackendUnavailable(err error) bool { return errors.Is(err, ErrBackendUnavailable) }
