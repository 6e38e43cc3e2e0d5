// Package office reads, rewrites and repacks zip-based document packages
// (OpenDocument and Office Open XML).
package office

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"time"
)

// MimetypeEntry is the ODF entry that must come first and stay uncompressed.
const MimetypeEntry = "mimetype"

// Entry is one file of a package.
type Entry struct {
	Name     string
	Method   uint16
	Modified time.Time
	Data     []byte
}

// Package is a document package held in memory, entries kept in their
// original order.
type Package struct {
	entries []*Entry
	index   map[string]*Entry
}

// Open loads the package at path. A missing file yields an error satisfying
// os.IsNotExist.
func Open(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(data)
}

// Read parses a package from its bytes.
func Read(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("office: open package: %w", err)
	}
	p := &Package{index: make(map[string]*Entry, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("office: open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("office: read %s: %w", f.Name, err)
		}
		e := &Entry{Name: f.Name, Method: f.Method, Modified: f.Modified, Data: content}
		p.entries = append(p.entries, e)
		p.index[f.Name] = e
	}
	return p, nil
}

// Entry returns the entry called name, or nil.
func (p *Package) Entry(name string) *Entry {
	return p.index[name]
}

// Names returns the entry names in package order.
func (p *Package) Names() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Name
	}
	return out
}

// Match returns the entries whose names match any of the path.Match patterns.
func (p *Package) Match(patterns ...string) []*Entry {
	var out []*Entry
	for _, e := range p.entries {
		for _, pat := range patterns {
			if ok, _ := path.Match(pat, e.Name); ok {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Rewrite replaces the content of every entry matching patterns with fn's
// result. The first error aborts and names the entry.
func (p *Package) Rewrite(fn func(name string, data []byte) ([]byte, error), patterns ...string) error {
	for _, e := range p.Match(patterns...) {
		out, err := fn(e.Name, e.Data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		e.Data = out
	}
	return nil
}

// WriteTo serializes the package. A mimetype entry is written first and
// stored, as ODF readers detect the format from it.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	ordered := make([]*Entry, 0, len(p.entries))
	if mt := p.index[MimetypeEntry]; mt != nil {
		ordered = append(ordered, mt)
	}
	for _, e := range p.entries {
		if e.Name != MimetypeEntry {
			ordered = append(ordered, e)
		}
	}

	for _, e := range ordered {
		hdr := &zip.FileHeader{Name: e.Name, Method: e.Method, Modified: e.Modified}
		if e.Name == MimetypeEntry {
			// no extra field, so the media type sits at a fixed offset
			hdr.Method = zip.Store
			hdr.Modified = time.Time{}
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return cw.n, fmt.Errorf("office: write %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return cw.n, fmt.Errorf("office: write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("office: finish package: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// Renderer is the part of the template engine the package rewriter needs.
type Renderer interface {
	RenderString(src string, data map[string]any) (string, error)
}

// RenderParts runs every entry matching patterns through r after PrepareXML.
// A part that is no longer well-formed XML after rendering is an error.
func (p *Package) RenderParts(r Renderer, data map[string]any, patterns ...string) error {
	return p.Rewrite(func(_ string, b []byte) ([]byte, error) {
		out, err := r.RenderString(PrepareXML(string(b)), data)
		if err != nil {
			return nil, err
		}
		if err := CheckXML([]byte(out)); err != nil {
			return nil, fmt.Errorf("rendered part is not well-formed: %w", err)
		}
		return []byte(out), nil
	}, patterns...)
}
