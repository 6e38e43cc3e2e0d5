package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/ByLCY/scholar/fonts"
	"github.com/ByLCY/scholar/layout"
)

var body = layout.FontResource{Name: "regular", Style: "regular"}

// newTestRenderer skips the test when the host has no usable font.
func newTestRenderer(t *testing.T, assets AssetLoader) *Renderer {
	t.Helper()
	set, err := fonts.Discover(nil)
	if err != nil {
		t.Skipf("no system fonts: %v", err)
	}
	r := New(Options{Fonts: set, Assets: assets})
	if err := r.Probe(); err != nil {
		t.Fatalf("probe: %v", err)
	}
	return r
}

type mapAssets map[string][]byte

func (m mapAssets) Load(src string) ([]byte, error) {
	if b, ok := m[src]; ok {
		return b, nil
	}
	return nil, errors.New("not found")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := newTestRenderer(t, nil)
	fontSizeMM := 12 * layout.PtToMm
	lines, err := r.LayoutLines("hello world again", 10, body, fontSizeMM, fontSizeMM*1.2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
}

func TestGreedyWrapHonorsNewlines(t *testing.T) {
	r := newTestRenderer(t, nil)
	fontSizeMM := 12 * layout.PtToMm
	lines, err := r.LayoutLines("foo\n\nbar", 100, body, fontSizeMM, fontSizeMM*1.2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].Content)
	}
}

// TestLineHeightsInvariant: the first line has no gap, the others a gap of
// max(lineHeight - textHeight, 0), and every line the font's text height.
func TestLineHeightsInvariant(t *testing.T) {
	r := newTestRenderer(t, nil)
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.3

	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	lines, err := r.LayoutLines(content, 40, body, fontSizeMM, lineHeightMM, "")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %d", len(lines))
	}
	textHeight := lines[0].Height
	if textHeight <= 0 {
		t.Fatalf("invalid text height: %g", textHeight)
	}
	wantLeading := math.Max(lineHeightMM-textHeight, 0)
	if lines[0].GapBefore != 0 {
		t.Fatalf("first line GapBefore must be 0, got %g", lines[0].GapBefore)
	}
	const eps = 1e-6
	for i := 1; i < len(lines); i++ {
		if diff := math.Abs(lines[i].GapBefore - wantLeading); diff > eps {
			t.Fatalf("line %d GapBefore: got=%g want=%g", i, lines[i].GapBefore, wantLeading)
		}
		if diff := math.Abs(lines[i].Height - textHeight); diff > eps {
			t.Fatalf("line %d Height: got=%g want=%g", i, lines[i].Height, textHeight)
		}
	}
}

func TestGreedyWrapWidthLimit(t *testing.T) {
	r := newTestRenderer(t, nil)
	fontSizeMM := 12 * layout.PtToMm
	limit := 30.0
	lines, err := r.LayoutLines("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", limit, body, fontSizeMM, fontSizeMM*1.2, "")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected the word to be split")
	}
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
	}
}

// A line exactly as wide as the box followed by a newline must not produce
// an extra blank line.
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := newTestRenderer(t, nil)
	fontSizeMM := 12 * layout.PtToMm
	first := "SAMPLE-A"
	measured, err := r.LayoutLines(first, 1e6, body, fontSizeMM, fontSizeMM*1.2, "")
	if err != nil || len(measured) != 1 {
		t.Fatalf("measure: %v %d", err, len(measured))
	}
	lines, err := r.LayoutLines(first+"\nSAMPLE-B", measured[0].Width, body, fontSizeMM, fontSizeMM*1.2, "")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) != 2 || lines[0].Content != first || lines[1].Content != "SAMPLE-B" {
		t.Fatalf("unexpected lines %+v", lines)
	}
}

func TestImageSizeAt96DPI(t *testing.T) {
	r := New(Options{Assets: mapAssets{"logo.png": pngBytes(t, 96, 48)}})
	w, h, err := r.ImageSize("logo.png")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w-25.4) > 1e-9 || math.Abs(h-12.7) > 1e-9 {
		t.Fatalf("size %gx%g", w, h)
	}
	if _, _, err := r.ImageSize("missing.png"); err == nil {
		t.Fatalf("missing asset should fail")
	}
	if _, _, err := New(Options{}).ImageSize("logo.png"); err == nil {
		t.Fatalf("renderer without assets should fail")
	}
}

func TestProbeFailsWithoutFonts(t *testing.T) {
	r := New(Options{FontDirs: []string{t.TempDir()}})
	if err := r.Probe(); !errors.Is(err, fonts.ErrNoFonts) {
		t.Fatalf("want ErrNoFonts, got %v", err)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	assets := mapAssets{"logo.png": pngBytes(t, 40, 20)}
	r := newTestRenderer(t, assets)
	res, err := layout.BuildHTML(`<html><head><title>Constancia</title></head><body>
<header><img src="logo.png"></header>
<h1>Constancia de alumno regular</h1>
<p>Se deja constancia que <b>Ada Lovelace</b> es alumna regular.</p>
<table><tr><th>Campo</th><th>Valor</th></tr><tr><td>Legajo</td><td>12345</td></tr></table>
<hr><footer><p style="text-align:right">17 de octubre de 2026</p></footer></body></html>`,
		layout.BuildOptions{Typesetter: r, Images: r})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	data, err := r.Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 8)])
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := New(Options{})
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("nil result accepted")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("result without pages accepted")
	}
}
