package office

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
)

var (
	// a delimiter whose two characters ended up in different runs/spans
	splitOpen  = regexp.MustCompile(`\{((?:<[^>]*>)+)([{%#])`)
	splitClose = regexp.MustCompile(`([}%#])((?:<[^>]*>)+)\}`)

	tagBody   = regexp.MustCompile(`(?s)(\{\{|\{%|\{#)(.*?)(\}\}|%\}|#\})`)
	markup    = regexp.MustCompile(`<[^>]*>`)
	unescaper = strings.NewReplacer(
		"&quot;", `"`,
		"&apos;", `'`,
		"&#39;", `'`,
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"“", `"`,
		"”", `"`,
		"‘", `'`,
		"’", `'`,
	)
)

// PrepareXML makes template tags inside a word-processor XML part usable by
// the template engine: delimiters split across runs are rejoined and
// entity-escaped or typographic quotes inside a tag are turned back into
// plain characters. Markup found inside a tag is moved after it; when that
// markup only closes a run and reopens an identical one, both halves are
// dropped so the tag stays in the first run. Text outside tags is left
// untouched.
func PrepareXML(src string) string {
	src = splitOpen.ReplaceAllString(src, "{$2$1")
	src = splitClose.ReplaceAllString(src, "$1}$2")
	return tagBody.ReplaceAllStringFunc(src, func(m string) string {
		parts := tagBody.FindStringSubmatch(m)
		moved := markup.FindAllString(parts[2], -1)
		body := markup.ReplaceAllString(parts[2], "")
		return parts[1] + unescaper.Replace(body) + parts[3] + relocate(moved)
	})
}

type element struct {
	raw  string
	name string
}

// relocate returns the markup that has to follow a tag so the part keeps
// the element structure it had. Pairs opened and closed inside the tag are
// discarded.
func relocate(tags []string) string {
	var closes, opens []element
	for _, raw := range tags {
		name, kind := classify(raw)
		switch kind {
		case openTag:
			opens = append(opens, element{raw, name})
		case closeTag:
			if n := len(opens); n > 0 && opens[n-1].name == name {
				opens = opens[:n-1]
				continue
			}
			closes = append(closes, element{raw, name})
		}
	}
	if mirrored(closes, opens) {
		return ""
	}
	var sb strings.Builder
	for _, e := range closes {
		sb.WriteString(e.raw)
	}
	for _, e := range opens {
		sb.WriteString(e.raw)
	}
	return sb.String()
}

// mirrored reports whether opens reopens, outermost first, exactly the
// elements closes ends, innermost first: a run boundary.
func mirrored(closes, opens []element) bool {
	if len(closes) != len(opens) {
		return false
	}
	for i, c := range closes {
		if opens[len(opens)-1-i].name != c.name {
			return false
		}
	}
	return true
}

type tagKind int

const (
	otherTag tagKind = iota
	openTag
	closeTag
)

func classify(raw string) (string, tagKind) {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	switch {
	case strings.HasPrefix(inner, "?"), strings.HasPrefix(inner, "!"), strings.HasSuffix(inner, "/"):
		return "", otherTag
	case strings.HasPrefix(inner, "/"):
		return strings.TrimSpace(inner[1:]), closeTag
	}
	name := inner
	if i := strings.IndexAny(inner, " \t\r\n"); i >= 0 {
		name = inner[:i]
	}
	return name, openTag
}

// CheckXML reports the first well-formedness error in data.
func CheckXML(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
