package field

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/jmylchreest/tessera/internal/colour"
	"golang.org/x/image/draw"
)

// FromRawPixels builds a matrix from an interleaved, row-major device colour buffer
// of width x height pixels. The channel count (3 for RGB, 4 for RGBA) is derived
// from the buffer length. The crop margins are trimmed before conversion.
func FromRawPixels(buf []byte, width, height int, crop Crop) (*Matrix, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: cannot determine image size %dx%d", ErrInvalidDimensions, width, height)
	}
	pixels := width * height
	if len(buf)%pixels != 0 {
		return nil, fmt.Errorf("%w: buffer of %d bytes does not hold %dx%d pixels", ErrInvalidDimensions, len(buf), width, height)
	}
	channels := len(buf) / pixels
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: unsupported channel count %d (expected 3 or 4)", ErrInvalidDimensions, channels)
	}

	cols, rows, err := crop.validate(width, height)
	if err != nil {
		return nil, err
	}

	m := &Matrix{rows: rows, cols: cols, cells: make([]colour.Colour, 0, rows*cols)}
	for y := crop.Top; y < height-crop.Bottom; y++ {
		for x := crop.Left; x < width-crop.Right; x++ {
			idx := (y*width + x) * channels
			c := colour.RGB(buf[idx], buf[idx+1], buf[idx+2])
			if channels == 4 {
				c.A = buf[idx+3]
			}
			m.cells = append(m.cells, c)
		}
	}
	return m, nil
}

// ToRawPixels returns the matrix as an interleaved RGBA buffer (4 bytes per pixel).
func (m *Matrix) ToRawPixels() []byte {
	buf := make([]byte, 0, len(m.cells)*4)
	for _, c := range m.cells {
		buf = append(buf, c.R, c.G, c.B, c.A)
	}
	return buf
}

// FromImage converts a decoded image into a matrix, trimming the crop margins.
func FromImage(img image.Image, crop Crop) (*Matrix, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", ErrInvalidDimensions)
	}
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	return FromRawPixels(nrgba.Pix, bounds.Dx(), bounds.Dy(), crop)
}

// ToImage returns the matrix as a non-premultiplied RGBA image, one pixel per cell.
func (m *Matrix) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.cols, m.rows))
	for i, c := range m.cells {
		img.SetNRGBA(i%m.cols, i/m.cols, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	}
	return img
}

// AverageColour returns the mean colour in Lab space.
// When trimOutliers is k > 0, the k darkest and k lightest cells (by Lab lightness)
// are dropped first; k is reduced so that at least one cell always remains.
// An empty matrix averages to black.
func (m *Matrix) AverageColour(trimOutliers int) colour.Colour {
	if len(m.cells) == 0 {
		return colour.Black
	}

	labs := make([]colour.Lab, len(m.cells))
	var alpha float64
	for i, c := range m.cells {
		labs[i] = c.Lab()
		alpha += float64(c.A)
	}
	alpha /= float64(len(m.cells))

	if k := trimOutliers; k > 0 {
		if 2*k >= len(labs) {
			k = (len(labs) - 1) / 2
		}
		sort.SliceStable(labs, func(i, j int) bool { return labs[i].L < labs[j].L })
		labs = labs[k : len(labs)-k]
	}

	var sum colour.Lab
	for _, l := range labs {
		sum = sum.Add(l)
	}
	return colour.FromLab(sum.Scale(1/float64(len(labs))), uint8(alpha+0.5))
}
