// Package fonts locates TrueType/OpenType faces on the host for the PDF
// backend.
package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoFonts is returned when no usable regular face is found.
var ErrNoFonts = errors.New("fonts: no usable font found")

// Style selects one face of a family.
type Style string

const (
	Regular    Style = "regular"
	Bold       Style = "bold"
	Italic     Style = "italic"
	BoldItalic Style = "bolditalic"
)

// Styles lists every face the renderer may ask for.
var Styles = []Style{Regular, Bold, Italic, BoldItalic}

// Family names candidate files for each style, in order of preference.
type Family struct {
	Name  string
	Files map[Style][]string
}

// Candidates are tried in order until one provides a regular face.
var Candidates = []Family{
	{Name: "DejaVu Sans", Files: map[Style][]string{
		Regular: {"DejaVuSans.ttf"}, Bold: {"DejaVuSans-Bold.ttf"},
		Italic: {"DejaVuSans-Oblique.ttf"}, BoldItalic: {"DejaVuSans-BoldOblique.ttf"},
	}},
	{Name: "Liberation Sans", Files: map[Style][]string{
		Regular: {"LiberationSans-Regular.ttf"}, Bold: {"LiberationSans-Bold.ttf"},
		Italic: {"LiberationSans-Italic.ttf"}, BoldItalic: {"LiberationSans-BoldItalic.ttf"},
	}},
	{Name: "Noto Sans", Files: map[Style][]string{
		Regular: {"NotoSans-Regular.ttf"}, Bold: {"NotoSans-Bold.ttf"},
		Italic: {"NotoSans-Italic.ttf"}, BoldItalic: {"NotoSans-BoldItalic.ttf"},
	}},
	{Name: "FreeSans", Files: map[Style][]string{
		Regular: {"FreeSans.ttf", "FreeSans.otf"}, Bold: {"FreeSansBold.ttf", "FreeSansBold.otf"},
		Italic: {"FreeSansOblique.ttf"}, BoldItalic: {"FreeSansBoldOblique.ttf"},
	}},
	{Name: "Arial", Files: map[Style][]string{
		Regular: {"arial.ttf", "Arial.ttf"}, Bold: {"arialbd.ttf", "Arial Bold.ttf"},
		Italic: {"ariali.ttf", "Arial Italic.ttf"}, BoldItalic: {"arialbi.ttf", "Arial Bold Italic.ttf"},
	}},
}

// Set holds the faces found for one family. Missing styles fall back to
// Regular.
type Set struct {
	Family string
	Paths  map[Style]string
	Data   map[Style][]byte
}

// Face returns the bytes for style, falling back to the regular face.
func (s *Set) Face(style Style) []byte {
	if b, ok := s.Data[style]; ok {
		return b
	}
	return s.Data[Regular]
}

// SystemDirs returns the usual font directories of the running OS.
func SystemDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		return []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	default:
		return []string{"/usr/share/fonts", "/usr/local/share/fonts", filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts")}
	}
}

// LoadFiles builds a Set from explicit paths. The regular face is required.
func LoadFiles(paths map[Style]string) (*Set, error) {
	if paths[Regular] == "" {
		return nil, fmt.Errorf("%w: regular face not configured", ErrNoFonts)
	}
	set := &Set{Family: "custom", Paths: map[Style]string{}, Data: map[Style][]byte{}}
	for style, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("fonts: read %s face %s: %w", style, path, err)
		}
		set.Paths[style] = path
		set.Data[style] = data
	}
	return set, nil
}

// Discover searches dirs (SystemDirs when empty) for the first candidate
// family with a regular face.
func Discover(dirs []string) (*Set, error) {
	if len(dirs) == 0 {
		dirs = SystemDirs()
	}
	index := indexDirs(dirs)
	for _, fam := range Candidates {
		paths := map[Style]string{}
		for _, style := range Styles {
			for _, name := range fam.Files[style] {
				if p, ok := index[strings.ToLower(name)]; ok {
					paths[style] = p
					break
				}
			}
		}
		if paths[Regular] == "" {
			continue
		}
		set, err := LoadFiles(paths)
		if err != nil {
			continue
		}
		set.Family = fam.Name
		return set, nil
	}
	return nil, fmt.Errorf("%w in %s", ErrNoFonts, strings.Join(dirs, ", "))
}

func indexDirs(dirs []string) map[string]string {
	index := map[string]string{}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			key := strings.ToLower(d.Name())
			if _, seen := index[key]; !seen {
				index[key] = path
			}
			return nil
		})
	}
	return index
}
