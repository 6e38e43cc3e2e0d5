package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/ByLCY/scholar/binding"
	"github.com/ByLCY/scholar/domain"
	"github.com/ByLCY/scholar/renderer"
)

// Certificate context keys, in insertion order.
const (
	KeyStudent       = "student"
	KeySpecialty     = "specialty"
	KeyFaculty       = "faculty"
	KeyUniversity    = "university"
	KeyGeneratedDate = "generated_date"
)

// StudentLoader loads a student together with its specialty, faculty and
// university.
type StudentLoader interface {
	StudentWithChain(ctx context.Context, id int64) (*domain.Student, error)
}

// StudentsOptions configures certificate generation.
type StudentsOptions struct {
	Registry *renderer.Registry
	Locale   language.Tag
	Folder   string
	Template string
	// Filename is the download name without extension; ${path} references
	// resolve against the certificate context. Template-${student.id} when
	// empty.
	Filename string
	// Timeout bounds one generation; zero means no limit beyond ctx.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Students is the student use-case service.
type Students struct {
	*CRUD[*domain.Student]
	loader StudentLoader
	opts   StudentsOptions
}

// NewStudents wires the student service.
func NewStudents(repo Repository[*domain.Student], loader StudentLoader, opts StudentsOptions) *Students {
	if opts.Registry == nil {
		opts.Registry = renderer.Default
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Spanish
	}
	if opts.Folder == "" {
		opts.Folder = "certificate"
	}
	if opts.Template == "" {
		opts.Template = "enrollment"
	}
	if opts.Filename == "" {
		opts.Filename = opts.Template + "-${student.id}"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Students{CRUD: NewCRUD(repo), loader: loader, opts: opts}
}

// BuildCertificateContext assembles the certificate context with the
// service locale.
func (s *Students) BuildCertificateContext(st *domain.Student) (renderer.Context, error) {
	return BuildCertificateContext(st, s.opts.Locale)
}

// BuildCertificateContext walks student, specialty, faculty and university
// and snapshots each of them, then adds today's date as a long string in
// locale. A missing link fails with *domain.MissingRelationError.
func BuildCertificateContext(st *domain.Student, locale language.Tag) (renderer.Context, error) {
	sp := st.Specialty
	if sp == nil {
		return renderer.Context{}, &domain.MissingRelationError{Entity: "student", ID: st.ID, Relation: "specialty"}
	}
	f := sp.Faculty
	if f == nil {
		return renderer.Context{}, &domain.MissingRelationError{Entity: "specialty", ID: sp.ID, Relation: "faculty"}
	}
	u := f.University
	if u == nil {
		return renderer.Context{}, &domain.MissingRelationError{Entity: "faculty", ID: f.ID, Relation: "university"}
	}

	ctx := renderer.NewContext(5)
	ctx.Set(KeyStudent, st.Snapshot())
	ctx.Set(KeySpecialty, sp.Snapshot())
	ctx.Set(KeyFaculty, f.Snapshot())
	ctx.Set(KeyUniversity, u.Snapshot())
	ctx.Set(KeyGeneratedDate, FormatLongDate(now(), locale))
	return ctx, nil
}

// GenerateCertificate renders the enrollment certificate of student id in
// format. The format is checked before the student is loaded.
func (s *Students) GenerateCertificate(ctx context.Context, id int64, format string) (*renderer.Document, error) {
	gen, err := s.opts.Registry.Create(format)
	if err != nil {
		return nil, err
	}
	st, err := s.loader.StudentWithChain(ctx, id)
	if err != nil {
		return nil, err
	}
	docCtx, err := s.BuildCertificateContext(st)
	if err != nil {
		return nil, err
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		data, err := gen.Generate(s.opts.Folder, s.opts.Template, docCtx)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		s.opts.Logger.Warn("certificate generation abandoned", "student_id", id, "format", format, "error", ctx.Err())
		return nil, fmt.Errorf("service: generate %s certificate for student %d: %w", format, id, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		s.opts.Logger.Info("certificate generated", "student_id", id, "format", gen.Extension(),
			"bytes", len(r.data), "duration", time.Since(start))
		return renderer.NewDocument(gen.Extension(), documentName(s.opts.Filename, docCtx), r.data), nil
	}
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", " ", "_", "\"", "", "${", "", "}", "")

// documentName expands pattern against ctx and strips characters that do
// not belong in a download name.
func documentName(pattern string, ctx renderer.Context) string {
	name := unsafeName.Replace(binding.Interpolate(pattern, ctx.Map()))
	if name == "" {
		return "document"
	}
	return name
}
