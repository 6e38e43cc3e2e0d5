// Package renderer defines the document generator contract, the registry that
// maps format identifiers to generators and the error kinds generators return.
package renderer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Generator turns a named template and a Context into a document of one
// specific format. Generate returns a fresh byte slice owned by the caller.
type Generator interface {
	// Extension is the fixed, lowercase format identifier without a leading dot.
	Extension() string
	// Generate resolves folder/name plus the generator's template suffix,
	// renders ctx into it and returns the document bytes.
	Generate(folder, name string, ctx Context) ([]byte, error)
}

// Factory builds a new Generator instance for every Create call.
type Factory func() Generator

// Descriptor pairs a format identifier with its factory.
type Descriptor struct {
	Format  string
	Factory Factory
}

// TemplateRef identifies a template by folder and name; the suffix is chosen
// by the generator.
type TemplateRef struct {
	Folder string
	Name   string
}

// Path joins the reference under root using suffix (".odt", ".html", ...).
func (t TemplateRef) Path(root, suffix string) string {
	return filepath.Join(root, t.Folder, t.Name+suffix)
}

func (t TemplateRef) String() string {
	return t.Folder + "/" + t.Name
}

// Document is a generated file ready to be streamed to a client.
type Document struct {
	Format      string
	Filename    string
	ContentType string
	Data        []byte
}

// NewDocument wraps data produced by a generator for format.
func NewDocument(format, basename string, data []byte) *Document {
	format = strings.ToLower(format)
	return &Document{
		Format:      format,
		Filename:    fmt.Sprintf("%s.%s", basename, format),
		ContentType: ContentType(format),
		Data:        data,
	}
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"odt":  "application/vnd.oasis.opendocument.text",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"html": "text/html; charset=utf-8",
}

// ContentType returns the MIME type implied by a generator extension.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}
