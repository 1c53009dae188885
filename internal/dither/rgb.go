package dither

import (
	"fmt"
	"image/color"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/quantize"
	rgbdither "github.com/makeworld-the-better-one/dither/v2"
)

// rgbMatrices maps standard kernel names to their linear RGB counterparts.
var rgbMatrices = map[string]rgbdither.ErrorDiffusionMatrix{
	FloydSteinberg.name: rgbdither.FloydSteinberg,
	Stucki.name:         rgbdither.Stucki,
	Atkinson.name:       rgbdither.Atkinson,
	Burkes.name:         rgbdither.Burkes,
	Sierra3.name:        rgbdither.Sierra,
	SierraLite.name:     rgbdither.SierraLite,
}

// DiffuseRGB dithers source against palette with error diffusion in linear
// RGB instead of Lab. It exists to compare against Diffuse and only accepts
// the standard kernels by name. Atkinson here keeps its classic 1/8 taps.
func DiffuseRGB(source *field.Matrix, palette []colour.Colour, kernel Kernel) (*field.Matrix, error) {
	if len(palette) == 0 {
		return nil, quantize.ErrEmptyPalette
	}
	matrix, ok := rgbMatrices[kernel.name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no RGB diffusion matrix", ErrInvalidKernel, kernel.name)
	}

	colours := make([]color.Color, len(palette))
	for i, c := range palette {
		// The ditherer rejects translucent palette entries.
		c.A = 255
		colours[i] = c
	}
	d := rgbdither.NewDitherer(colours)
	if d == nil {
		return nil, quantize.ErrEmptyPalette
	}
	d.Matrix = matrix

	out, err := field.FromImage(d.DitherCopy(source.ToImage()), field.Crop{})
	if err != nil {
		return nil, fmt.Errorf("failed to read dithered image: %w", err)
	}
	return out, nil
}
