// Package gradient synthesizes one and two dimensional colour gradients by
// interpolating in Lab space.
package gradient

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
)

var (
	// ErrTooFewSteps is returned when fewer than two steps are requested.
	ErrTooFewSteps = errors.New("at least 2 steps are required for a gradient")

	// ErrInsufficientStops is returned when the stops cannot cover every step.
	ErrInsufficientStops = errors.New("not enough gradient stops")
)

// Stop anchors a colour at a relative position in [0, 1].
type Stop struct {
	Position float64
	Colour   colour.Colour
}

// Linear returns steps colours from start to end. The first and last elements are
// exactly start and end; element i in between is start.Mix(end, i/steps).
//
// The divisor is steps rather than steps-1, so the penultimate element does not
// sit evenly before end. Tile layouts built on top of this rely on that spacing.
func Linear(start, end colour.Colour, steps int) ([]colour.Colour, error) {
	if steps < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSteps, steps)
	}

	out := make([]colour.Colour, 0, steps)
	out = append(out, start)
	for step := 1; step < steps-1; step++ {
		out = append(out, start.Mix(end, float64(step)/float64(steps)))
	}
	return append(out, end), nil
}

// NormalizeStops returns a sorted copy of stops with synthetic stops at 0 and 1
// duplicating the nearest extreme colour when those positions are missing.
func NormalizeStops(stops []Stop) ([]Stop, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no stops given", ErrInsufficientStops)
	}
	for _, s := range stops {
		if s.Position < 0 || s.Position > 1 {
			return nil, fmt.Errorf("stop position %v outside [0, 1]", s.Position)
		}
	}

	sorted := make([]Stop, len(stops), len(stops)+2)
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	if first := sorted[0]; first.Position > 0 {
		sorted = append([]Stop{{Position: 0, Colour: first.Colour}}, sorted...)
	}
	if last := sorted[len(sorted)-1]; last.Position < 1 {
		sorted = append(sorted, Stop{Position: 1, Colour: last.Colour})
	}
	return sorted, nil
}

// MultiStop returns steps colours sampled along a piecewise gradient. Element i
// sits at ratio i/steps and mixes the enclosing pair of stops; the last element
// is exactly the last stop's colour.
func MultiStop(stops []Stop, steps int) ([]colour.Colour, error) {
	if steps < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSteps, steps)
	}
	normalized, err := NormalizeStops(stops)
	if err != nil {
		return nil, err
	}

	out := make([]colour.Colour, 0, steps)
	next := 1
	for step := 0; step < steps-1; step++ {
		ratio := float64(step) / float64(steps)
		for next < len(normalized) && normalized[next].Position < ratio {
			next++
		}
		if next >= len(normalized) {
			return nil, fmt.Errorf("%w: nothing covers position %v", ErrInsufficientStops, ratio)
		}

		prev, cur := normalized[next-1], normalized[next]
		width := cur.Position - prev.Position
		t := 1.0
		if width > 0 {
			t = (ratio - prev.Position) / width
		}
		out = append(out, prev.Colour.Mix(cur.Colour, t))
	}
	return append(out, normalized[len(normalized)-1].Colour), nil
}

// Broadcast replicates a one dimensional gradient across rows to form a field
// with no vertical variation.
func Broadcast(oneD []colour.Colour, rows int) (*field.Matrix, error) {
	if rows < 1 {
		return nil, fmt.Errorf("%w: rows must be at least 1, got %d", field.ErrInvalidDimensions, rows)
	}
	grid := make([][]colour.Colour, rows)
	for row := range grid {
		grid[row] = oneD
	}
	return field.FromRows(grid)
}

// Horizontal builds a rows x cols field fading from start on the left to end on the right.
func Horizontal(start, end colour.Colour, rows, cols int) (*field.Matrix, error) {
	oneD, err := Linear(start, end, cols)
	if err != nil {
		return nil, err
	}
	return Broadcast(oneD, rows)
}

// HorizontalMultiStop is Horizontal for a piecewise gradient.
func HorizontalMultiStop(stops []Stop, rows, cols int) (*field.Matrix, error) {
	oneD, err := MultiStop(stops, cols)
	if err != nil {
		return nil, err
	}
	return Broadcast(oneD, rows)
}
