package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ByLCY/scholar/layout"
)

var errNoAssets = errors.New("no asset loader configured")

// ImageSize implements layout.ImageSizer at 96 pixels per inch.
func (r *Renderer) ImageSize(src string) (float64, float64, error) {
	img, err := r.image(src)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return float64(b.Dx()) * layout.PxToMm, float64(b.Dy()) * layout.PxToMm, nil
}

// image loads and decodes src once per renderer.
func (r *Renderer) image(src string) (image.Image, error) {
	r.imgMu.Lock()
	defer r.imgMu.Unlock()
	if img, ok := r.images[src]; ok {
		return img, nil
	}
	if r.opts.Assets == nil {
		return nil, fmt.Errorf("canvasrenderer: image %s: %w", src, errNoAssets)
	}
	data, err := r.opts.Assets.Load(src)
	if err != nil {
		return nil, fmt.Errorf("canvasrenderer: load image %s: %w", src, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("canvasrenderer: decode image %s: %w", src, err)
	}
	r.images[src] = img
	return img, nil
}
