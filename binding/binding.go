// Package binding resolves dotted paths against template data and checks
// that every path a template reads is present.
package binding

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/scholar/dsl"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate replaces ${path.to.value} in text with values from data.
// Unknown paths are left untouched.
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := Resolve(data, SplitPath(path)); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// SplitPath turns "a.b[0].c" into ["a", "b", "0", "c"].
func SplitPath(path string) []string {
	var out []string
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			out = append(out, name)
		}
		out = append(out, indexes...)
	}
	return out
}

// Resolve walks data along path. Maps are indexed by key, slices by
// position and structs by exported field name.
func Resolve(data any, path []string) (any, bool) {
	current := data
	for _, key := range path {
		next, ok := descend(current, key)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Missing returns the references of a that cannot be resolved in data,
// sorted and without duplicates. References to variables in scope, paths
// guarded by a default filter and paths that descend into opaque values
// (strings, numbers) are not reported.
func Missing(data map[string]any, a *dsl.Analysis) []string {
	seen := map[string]bool{}
	var missing []string
	for _, ref := range a.References {
		if len(ref.Path) == 0 || ref.Local || ref.Optional {
			continue
		}
		if resolvable(data, ref.Path) {
			continue
		}
		key := ref.String()
		if !seen[key] {
			seen[key] = true
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

func resolvable(data map[string]any, path []string) bool {
	var current any = data
	for _, key := range path {
		switch c := current.(type) {
		case map[string]any, []any:
		default:
			rv := reflect.ValueOf(c)
			if !rv.IsValid() {
				return false
			}
			switch reflect.Indirect(rv).Kind() {
			case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			default:
				// scalars expose methods/attributes to the engine; accept
				return true
			}
		}
		next, ok := descend(current, key)
		if !ok {
			return false
		}
		current = next
	}
	return true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, strings.Trim(rest[1:end], `"'`))
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descend(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case nil:
		return nil, false
	}

	rv := reflect.Indirect(reflect.ValueOf(current))
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	case reflect.Struct:
		f := rv.FieldByName(key)
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	}
	return nil, false
}
