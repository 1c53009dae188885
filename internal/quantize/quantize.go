// Package quantize maps colours onto a fixed palette by nearest match.
package quantize

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
)

// ErrEmptyPalette is returned when a match is requested against no candidates.
var ErrEmptyPalette = errors.New("palette is empty")

// Finder picks the palette entry that should replace source.
type Finder[T colour.HasColour] func(source colour.Colour, palette []T) (T, error)

// FindClosest scans palette linearly and returns the entry with the smallest
// distance to source. Ties go to the entry that appears first, so palette order
// matters.
func FindClosest[T colour.HasColour](source colour.HasColour, palette []T, distance colour.DistanceFunc) (T, error) {
	var best T
	if len(palette) == 0 {
		return best, ErrEmptyPalette
	}

	best = palette[0]
	bestDistance := distance(source, best)
	for _, candidate := range palette[1:] {
		if d := distance(source, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best, nil
}

// Closest binds a distance function into a Finder.
func Closest[T colour.HasColour](distance colour.DistanceFunc) Finder[T] {
	return func(source colour.Colour, palette []T) (T, error) {
		return FindClosest(source, palette, distance)
	}
}

// Quantize replaces every cell with the effective colour of its closest palette
// entry, without propagating any error. The source field is not modified.
func Quantize[T colour.HasColour](source *field.Matrix, palette []T, find Finder[T]) (*field.Matrix, error) {
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}

	var findErr error
	out := source.Map(func(c colour.Colour, row, col int) colour.Colour {
		if findErr != nil {
			return c
		}
		chosen, err := find(c, palette)
		if err != nil {
			findErr = fmt.Errorf("failed to quantize cell (%d, %d): %w", row, col, err)
			return c
		}
		return chosen.EffectiveColour()
	})
	if findErr != nil {
		return nil, findErr
	}
	return out, nil
}
