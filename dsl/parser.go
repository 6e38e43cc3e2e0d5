// Package dsl parses the tags of Jinja-style templates ({{ ... }} and
// {% ... %}) far enough to list the context paths a template reads and the
// names it declares itself (loop variables, with/set bindings, macro args).
package dsl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	tagLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Punct", Pattern: `==|!=|<=|>=|&&|\|\||[|.:\[\](),=<>!+\-*/%~]`},
		{Name: "Other", Pattern: `.`},
	})

	bodyParser = participle.MustBuild[Body](
		participle.Lexer(tagLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	tagPattern = regexp.MustCompile(`(?s)\{\{-?(.*?)-?\}\}|\{%-?(.*?)-?%\}|\{#.*?#\}`)
)

// Body is the token stream of a single tag.
type Body struct {
	Items []*Item `parser:"@@*"`
}

// Item is one element of a tag body.
type Item struct {
	Filter  *Filter `parser:"  '|' @@"`
	Path    *Path   `parser:"| @@"`
	Literal *string `parser:"| @(String | Number)"`
	Punct   *string `parser:"| @(Punct | Other)"`
}

// Filter is a pipe filter with an optional colon argument.
type Filter struct {
	Name string `parser:"@Ident"`
	Arg  *Item  `parser:"( ':' @@ )?"`
}

// Path is a dotted/indexed variable reference such as student.name or items[0].
type Path struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Head string         `parser:"@Ident"`
	Tail []*Segment     `parser:"@@*"`
}

// Segment is a single .field or [index] step of a Path.
type Segment struct {
	Field *string `parser:"  '.' @(Ident | Number)"`
	Index *string `parser:"| '[' @(String | Number | Ident) ']'"`
}

// Parts returns the path as a list of keys. Quoted indexes are unquoted.
func (p *Path) Parts() []string {
	out := []string{p.Head}
	for _, s := range p.Tail {
		switch {
		case s.Field != nil:
			out = append(out, *s.Field)
		case s.Index != nil:
			out = append(out, strings.Trim(*s.Index, `"'`))
		}
	}
	return out
}

func (p *Path) String() string { return strings.Join(p.Parts(), ".") }

// TagKind distinguishes output tags from statement tags.
type TagKind int

const (
	OutputTag TagKind = iota
	StatementTag
)

// Tag is a template tag found in a source text.
type Tag struct {
	Kind   TagKind
	Name   string // statement name (for, if, with...); empty for output tags
	Source string
	Offset int
}

// Reference is a context path read by a template.
type Reference struct {
	Path   []string
	Offset int
	// Local is set when the head names a loop, with, set or macro variable
	// in scope at the reference.
	Local bool
	// Optional is set when a default filter handles an absent value.
	Optional bool
}

func (r Reference) String() string { return strings.Join(r.Path, ".") }

// Analysis lists what a template reads and declares.
type Analysis struct {
	Tags       []Tag
	References []Reference
	// Declared holds every name the template declares anywhere.
	Declared map[string]bool

	scopes []map[string]bool
}

var keywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"true": true, "false": true, "True": true, "False": true,
	"none": true, "None": true, "nil": true, "reversed": true, "sorted": true,
	"as": true, "only": true, "with": true, "forloop": true, "loop": true,
}

// blockTags never reference the context by themselves.
var blockTags = map[string]bool{
	"else": true, "endif": true, "endfor": true, "endwith": true, "endblock": true,
	"endmacro": true, "endautoescape": true, "endfilter": true, "endspaceless": true,
	"endcomment": true, "comment": true, "autoescape": true, "spaceless": true,
	"block": true, "extends": true, "include": true, "import": true, "cycle": true,
	"now": true, "firstof": false, "templatetag": true, "lorem": true, "widthratio": false,
	"empty": true,
}

// scopeEnd lists the tags that close a variable scope.
var scopeEnd = map[string]bool{"endfor": true, "endwith": true, "endmacro": true}

// defaultFilters turn an absent value into a fallback.
var defaultFilters = map[string]bool{"default": true, "default_if_none": true}

// Scan returns the tags of src in order of appearance; comments are skipped.
func Scan(src string) []Tag {
	var tags []Tag
	for _, m := range tagPattern.FindAllStringSubmatchIndex(src, -1) {
		switch {
		case m[2] >= 0:
			tags = append(tags, Tag{Kind: OutputTag, Source: strings.TrimSpace(src[m[2]:m[3]]), Offset: m[0]})
		case m[4] >= 0:
			body := strings.TrimSpace(src[m[4]:m[5]])
			name := body
			if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
				name = body[:i]
			}
			tags = append(tags, Tag{Kind: StatementTag, Name: name, Source: body, Offset: m[0]})
		}
	}
	return tags
}

// ParseBody parses the inside of a tag.
func ParseBody(src string) (*Body, error) {
	return bodyParser.ParseString("", src)
}

// Analyze collects references and declarations for every tag in src.
func Analyze(src string) (*Analysis, error) {
	a := &Analysis{Declared: map[string]bool{}, scopes: []map[string]bool{{}}}
	a.Tags = Scan(src)
	for _, tag := range a.Tags {
		if err := a.addTag(tag); err != nil {
			return nil, err
		}
	}
	a.scopes = nil
	return a, nil
}

func (a *Analysis) push(names ...string) {
	scope := make(map[string]bool, len(names))
	for _, n := range names {
		scope[n] = true
		a.Declared[n] = true
	}
	a.scopes = append(a.scopes, scope)
}

func (a *Analysis) pop() {
	if len(a.scopes) > 1 {
		a.scopes = a.scopes[:len(a.scopes)-1]
	}
}

func (a *Analysis) declare(name string) {
	a.scopes[len(a.scopes)-1][name] = true
	a.Declared[name] = true
}

func (a *Analysis) inScope(name string) bool {
	for _, scope := range a.scopes {
		if scope[name] {
			return true
		}
	}
	return false
}

func (a *Analysis) addTag(tag Tag) error {
	source := tag.Source
	if tag.Kind == StatementTag {
		if scopeEnd[tag.Name] {
			a.pop()
			return nil
		}
		if blockTags[tag.Name] {
			return nil
		}
		source = strings.TrimSpace(strings.TrimPrefix(source, tag.Name))
	}
	body, err := ParseBody(source)
	if err != nil {
		return fmt.Errorf("dsl: tag at offset %d: %w", tag.Offset, err)
	}

	items := body.Items
	switch tag.Name {
	case "for":
		// for a, b in expr: expr is read outside the loop scope
		var vars []string
		for i, it := range items {
			if it.Path != nil && it.Path.Head == "in" && len(it.Path.Tail) == 0 {
				for _, decl := range items[:i] {
					if decl.Path != nil {
						vars = append(vars, decl.Path.Head)
					}
				}
				items = items[i+1:]
				break
			}
		}
		a.collectAll(items, tag.Offset)
		a.push(vars...)
		return nil
	case "with":
		// with name=expr other=expr
		vars, kept := assignments(items)
		a.collectAll(kept, tag.Offset)
		a.push(vars...)
		return nil
	case "set":
		vars, kept := assignments(items)
		a.collectAll(kept, tag.Offset)
		for _, v := range vars {
			a.declare(v)
		}
		return nil
	case "macro":
		var args []string
		for _, it := range items {
			if it.Path != nil {
				args = append(args, it.Path.Head)
			}
		}
		a.push(args...)
		return nil
	}

	a.collectAll(items, tag.Offset)
	return nil
}

// assignments splits name=expr pairs into the names and the expressions.
func assignments(items []*Item) (names []string, rest []*Item) {
	for i, it := range items {
		if it.Path != nil && len(it.Path.Tail) == 0 && i+1 < len(items) && isPunct(items[i+1], "=") {
			names = append(names, it.Path.Head)
			continue
		}
		rest = append(rest, it)
	}
	return names, rest
}

func (a *Analysis) collectAll(items []*Item, offset int) {
	for i, it := range items {
		call := i+1 < len(items) && isPunct(items[i+1], "(")
		a.collect(it, offset, call, defaulted(items[i+1:]))
	}
}

// defaulted reports whether the filter chain starting at items applies a
// default filter.
func defaulted(items []*Item) bool {
	for _, it := range items {
		if it.Filter == nil {
			return false
		}
		if defaultFilters[it.Filter.Name] {
			return true
		}
	}
	return false
}

func (a *Analysis) collect(it *Item, offset int, call, optional bool) {
	switch {
	case it.Filter != nil:
		if it.Filter.Arg != nil {
			a.collect(it.Filter.Arg, offset, false, false)
		}
	case it.Path != nil:
		if keywords[it.Path.Head] || call {
			return
		}
		a.References = append(a.References, Reference{
			Path:     it.Path.Parts(),
			Offset:   offset,
			Local:    a.inScope(it.Path.Head),
			Optional: optional,
		})
	}
}

func isPunct(it *Item, v string) bool {
	return it != nil && it.Punct != nil && *it.Punct == v
}
