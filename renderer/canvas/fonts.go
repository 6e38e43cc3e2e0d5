package canvasrenderer

import (
	"fmt"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/scholar/fonts"
	"github.com/ByLCY/scholar/layout"
)

var faceStyles = map[fonts.Style]canvas.FontStyle{
	fonts.Regular:    canvas.FontRegular,
	fonts.Bold:       canvas.FontBold,
	fonts.Italic:     canvas.FontRegular | canvas.FontItalic,
	fonts.BoldItalic: canvas.FontBold | canvas.FontItalic,
}

// fontFamily loads every face once. Missing styles reuse the regular face.
func (r *Renderer) fontFamily() (*canvas.FontFamily, error) {
	r.fontOnce.Do(func() {
		set := r.opts.Fonts
		if set == nil {
			set, r.fontErr = fonts.Discover(r.opts.FontDirs)
			if r.fontErr != nil {
				return
			}
		}
		family := canvas.NewFontFamily(set.Family)
		for _, style := range fonts.Styles {
			if err := family.LoadFont(set.Face(style), 0, faceStyles[style]); err != nil {
				r.fontErr = fmt.Errorf("canvasrenderer: load %s %s face: %w", set.Family, style, err)
				return
			}
		}
		r.family = family
	})
	return r.family, r.fontErr
}

func (r *Renderer) fontFace(name string, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.fontFamily()
	if err != nil {
		return nil, err
	}
	style, ok := faceStyles[fonts.Style(name)]
	if !ok {
		style = canvas.FontRegular
	}
	return family.Face(sizePt, colorFromLayout(col), style, canvas.FontNormal), nil
}
