package utils

import (
	"image"
	"image/draw"
)

// AsPremultiplied reinterprets an image whose color channels were stored
// already multiplied by alpha (a "pma" atlas page).
//
// The raw channel bytes are copied unchanged into an *image.RGBA, so pages
// are not multiplied by alpha a second time on upload.
//
// Parameters:
//   - img: The decoded page image. Must not be nil.
//
// Returns:
//   - An *image.RGBA holding the same bytes as the source.
//
// Performance:
//   - One full copy of the page, call during loading only
func AsPremultiplied(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		// Paletted or gray pages: expand to straight RGBA bytes first
		nrgba = image.NewNRGBA(bounds)
		draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)
	}
	out := &image.RGBA{
		Pix:    make([]uint8, len(nrgba.Pix)),
		Stride: nrgba.Stride,
		Rect:   nrgba.Rect,
	}
	copy(out.Pix, nrgba.Pix)
	return out
}

// FitRect scales a content box to fit inside a container while keeping its
// aspect ratio, and centers it.
//
// Returns:
//   - scale: The uniform scale factor, 0 if either box is empty
//   - offsetX, offsetY: The top-left corner of the fitted content in container coordinates
func FitRect(contentW, contentH, containerW, containerH float64) (scale, offsetX, offsetY float64) {
	if contentW <= 0 || contentH <= 0 || containerW <= 0 || containerH <= 0 {
		return 0, 0, 0
	}
	scale = min(containerW/contentW, containerH/contentH)
	offsetX = (containerW - contentW*scale) / 2
	offsetY = (containerH - contentH*scale) / 2
	return scale, offsetX, offsetY
}

// CoverRect is FitRect for backgrounds: the content fills the whole container
// and overflows on one axis.
func CoverRect(contentW, contentH, containerW, containerH float64) (scale, offsetX, offsetY float64) {
	if contentW <= 0 || contentH <= 0 || containerW <= 0 || containerH <= 0 {
		return 0, 0, 0
	}
	scale = max(containerW/contentW, containerH/contentH)
	offsetX = (containerW - contentW*scale) / 2
	offsetY = (containerH - contentH*scale) / 2
	return scale, offsetX, offsetY
}
