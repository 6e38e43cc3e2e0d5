package dsl_test

import (
	"testing"

	"github.com/ByLCY/scholar/dsl"
)

const sampleTemplate = `
<h1>{{ university.name|upper }}</h1>
{# a comment with {{ ignored }} #}
<p>Se certifica que {{ student.last_name }}, {{ student.first_name }}
   (legajo {{ student["file_number"] }}) cursa {{ specialty.name|default:fallback.name }}.</p>
{% for course in student.courses %}
  <li>{{ forloop.Counter }} {{ course.title }}</li>
{% endfor %}
{% with dean=faculty.dean %}{{ dean }}{% endwith %}
{% if generated_date and not hidden %}{{ generated_date }}{% endif %}
`

func TestScanFindsTagsInOrder(t *testing.T) {
	tags := dsl.Scan(sampleTemplate)
	if len(tags) == 0 {
		t.Fatalf("expected tags")
	}
	if tags[0].Kind != dsl.OutputTag || tags[0].Source != "university.name|upper" {
		t.Fatalf("unexpected first tag: %+v", tags[0])
	}
	var sawFor bool
	for _, tag := range tags {
		if tag.Kind == dsl.StatementTag && tag.Name == "for" {
			sawFor = true
		}
		if tag.Source == "ignored" {
			t.Fatalf("comment content must be skipped")
		}
	}
	if !sawFor {
		t.Fatalf("expected a for statement")
	}
}

func TestAnalyzeCollectsReferences(t *testing.T) {
	a, err := dsl.Analyze(sampleTemplate)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	got := map[string]bool{}
	for _, ref := range a.References {
		got[ref.String()] = true
	}
	for _, want := range []string{
		"university.name",
		"student.last_name",
		"student.first_name",
		"student.file_number",
		"specialty.name",
		"fallback.name",
		"student.courses",
		"course.title",
		"faculty.dean",
		"dean",
		"generated_date",
		"hidden",
	} {
		if !got[want] {
			t.Fatalf("missing reference %q in %v", want, got)
		}
	}
	for _, unwanted := range []string{"upper", "default", "forloop.Counter", "and", "not"} {
		if got[unwanted] {
			t.Fatalf("unexpected reference %q", unwanted)
		}
	}
	if !a.Declared["course"] || !a.Declared["dean"] {
		t.Fatalf("expected loop and with variables declared, got %v", a.Declared)
	}
}

func TestAnalyzeForWithTwoVariables(t *testing.T) {
	a, err := dsl.Analyze(`{% for key, value in grades %}{{ key }}={{ value }}{% endfor %}`)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !a.Declared["key"] || !a.Declared["value"] {
		t.Fatalf("expected key and value declared, got %v", a.Declared)
	}
	if len(a.References) != 3 || a.References[0].String() != "grades" {
		t.Fatalf("unexpected references: %v", a.References)
	}
}

func TestParseBodyKeepsFilterArguments(t *testing.T) {
	body, err := dsl.ParseBody(`student.birth_date|date:"02/01/2006"`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("expected path and filter, got %d items", len(body.Items))
	}
	if body.Items[0].Path == nil || body.Items[0].Path.String() != "student.birth_date" {
		t.Fatalf("unexpected path: %+v", body.Items[0])
	}
	f := body.Items[1].Filter
	if f == nil || f.Name != "date" || f.Arg == nil || f.Arg.Literal == nil {
		t.Fatalf("unexpected filter: %+v", body.Items[1])
	}
}

func TestAnalyzeScopesDeclarations(t *testing.T) {
	a, err := dsl.Analyze(`{% for student in students %}{{ student.name }}{% endfor %}` +
		`{% with dean=faculty.dean %}{{ dean }}{% endwith %}{{ student.id }} {{ dean }}` +
		`{% set title = university.name %}{{ title }}`)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	want := []struct {
		path  string
		local bool
	}{
		{"students", false},
		{"student.name", true},
		{"faculty.dean", false},
		{"dean", true},
		{"student.id", false},
		{"dean", false},
		{"university.name", false},
		{"title", true},
	}
	if len(a.References) != len(want) {
		t.Fatalf("want %d references, got %v", len(want), a.References)
	}
	for i, w := range want {
		ref := a.References[i]
		if ref.String() != w.path || ref.Local != w.local {
			t.Fatalf("reference %d: got %s local=%v, want %s local=%v", i, ref, ref.Local, w.path, w.local)
		}
	}
	if !a.Declared["student"] || !a.Declared["dean"] || !a.Declared["title"] {
		t.Fatalf("declared names: %v", a.Declared)
	}
}

func TestAnalyzeMarksDefaultedReferences(t *testing.T) {
	a, err := dsl.Analyze(`{{ student.nickname|default:"-" }}{{ student.alias|lower|default_if_none:"" }}{{ student.name|upper }}{{ x|default:fallback.name }}`)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	optional := map[string]bool{}
	for _, ref := range a.References {
		optional[ref.String()] = ref.Optional
	}
	for path, want := range map[string]bool{
		"student.nickname": true,
		"student.alias":    true,
		"student.name":     false,
		"x":                true,
		"fallback.name":    false,
	} {
		got, ok := optional[path]
		if !ok || got != want {
			t.Fatalf("%s: optional=%v present=%v, want %v", path, got, ok, want)
		}
	}
}
