package image

import (
	"fmt"
	"image"

	"github.com/jmylchreest/tessera/internal/field"
	"golang.org/x/image/draw"
)

// CropRect returns the part of bounds left after trimming crop from each side.
func CropRect(bounds image.Rectangle, crop field.Crop) (image.Rectangle, error) {
	r := image.Rect(bounds.Min.X+crop.Left, bounds.Min.Y+crop.Top, bounds.Max.X-crop.Right, bounds.Max.Y-crop.Bottom)
	if crop.Left < 0 || crop.Top < 0 || crop.Right < 0 || crop.Bottom < 0 || r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: crop %+v leaves nothing of %dx%d", field.ErrInvalidDimensions, crop, bounds.Dx(), bounds.Dy())
	}
	return r, nil
}

// Fit copies the region r of img into a new image whose longest side is at
// most limit, keeping the aspect ratio. Regions within the limit are copied
// pixel for pixel; a non-positive limit disables scaling.
func Fit(img image.Image, r image.Rectangle, limit int) *image.NRGBA {
	w, h := r.Dx(), r.Dy()
	if limit > 0 && (w > limit || h > limit) {
		if w >= h {
			w, h = limit, max(1, h*limit/w)
		} else {
			w, h = max(1, w*limit/h), limit
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == r.Dx() && h == r.Dy() {
		draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, r, draw.Src, nil)
	return dst
}
