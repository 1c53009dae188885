package dither

import (
	"fmt"
	"math/rand"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
)

// ApplyNoise returns a copy of m with every cell's Lab channels scaled by 1+n,
// where n is drawn uniformly from [mean-variance/2, mean+variance/2).
// Perturbing a smooth gradient this way breaks up the regular patterns error
// diffusion produces on flat input.
func ApplyNoise(m *field.Matrix, mean, variance float64, rng *rand.Rand) (*field.Matrix, error) {
	if rng == nil {
		return nil, fmt.Errorf("noise requires a random source")
	}
	if variance < 0 {
		return nil, fmt.Errorf("noise variance must not be negative, got %v", variance)
	}
	return m.Map(func(c colour.Colour, _, _ int) colour.Colour {
		noise := rng.Float64()*variance + mean - variance/2
		return colour.Scale(c, 1+noise)
	}), nil
}
