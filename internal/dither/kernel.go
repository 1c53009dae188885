// Package dither implements perceptual error-diffusion dithering over a colour
// field, together with the standard diffusion kernels and noise injection.
package dither

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// weightTolerance absorbs float rounding when checking that weights sum to at most 1.
const weightTolerance = 1e-9

// ErrInvalidKernel is returned by NewKernel for weights that cannot drive a
// causal diffusion.
var ErrInvalidKernel = errors.New("invalid dither kernel")

// Kernel is a fixed weight matrix that governs how much quantization error each
// not-yet-visited neighbour receives. Row 0 is the current row; the current cell
// sits at column Anchor() of row 0.
type Kernel struct {
	name    string
	rows    int
	cols    int
	weights []float64
}

// NewKernel builds a kernel from raw weights, dividing each by divisor.
// Weights must be non-negative, sum to at most 1 and never target the current
// cell or cells to its left on the current row.
func NewKernel(name string, weights [][]float64, divisor float64) (Kernel, error) {
	if len(weights) == 0 || len(weights[0]) == 0 {
		return Kernel{}, fmt.Errorf("%w: %s has no weights", ErrInvalidKernel, name)
	}
	if divisor <= 0 {
		return Kernel{}, fmt.Errorf("%w: %s divisor must be positive, got %v", ErrInvalidKernel, name, divisor)
	}

	k := Kernel{
		name:    name,
		rows:    len(weights),
		cols:    len(weights[0]),
		weights: make([]float64, 0, len(weights)*len(weights[0])),
	}
	anchor := k.Anchor()

	var sum float64
	for row, line := range weights {
		if len(line) != k.cols {
			return Kernel{}, fmt.Errorf("%w: %s row %d has %d weights, expected %d", ErrInvalidKernel, name, row, len(line), k.cols)
		}
		for col, raw := range line {
			w := raw / divisor
			if w < 0 {
				return Kernel{}, fmt.Errorf("%w: %s weight (%d, %d) is negative", ErrInvalidKernel, name, row, col)
			}
			if w > 0 && row == 0 && col <= anchor {
				return Kernel{}, fmt.Errorf("%w: %s weight (%d, %d) targets an already finalized cell", ErrInvalidKernel, name, row, col)
			}
			sum += w
			k.weights = append(k.weights, w)
		}
	}
	if sum > 1+weightTolerance {
		return Kernel{}, fmt.Errorf("%w: %s weights sum to %v", ErrInvalidKernel, name, sum)
	}
	return k, nil
}

// MustKernel is NewKernel for package-level kernel tables; it panics on invalid weights.
func MustKernel(name string, weights [][]float64, divisor float64) Kernel {
	k, err := NewKernel(name, weights, divisor)
	if err != nil {
		panic(err)
	}
	return k
}

// Zero returns an all-zero kernel of the given size. Diffusing with it is
// equivalent to flat quantization.
func Zero(rows, cols int) Kernel {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return Kernel{name: "zero", rows: rows, cols: cols, weights: make([]float64, rows*cols)}
}

// Name returns the kernel's display name.
func (k Kernel) Name() string { return k.name }

// Rows returns the kernel height.
func (k Kernel) Rows() int { return k.rows }

// Cols returns the kernel width.
func (k Kernel) Cols() int { return k.cols }

// Weight returns the normalized weight at (row, col), or 0 outside the kernel.
func (k Kernel) Weight(row, col int) float64 {
	if row < 0 || row >= k.rows || col < 0 || col >= k.cols {
		return 0
	}
	return k.weights[row*k.cols+col]
}

// Anchor returns the column of the current cell within row 0. Odd widths are
// centred; even widths anchor one column left of centre so the cell right after
// the current one receives the leading weight.
func (k Kernel) Anchor() int {
	if k.cols%2 == 1 {
		return k.cols / 2
	}
	return k.cols/2 - 1
}

// Sum returns the total of all normalized weights.
func (k Kernel) Sum() float64 {
	var sum float64
	for _, w := range k.weights {
		sum += w
	}
	return sum
}

func (k Kernel) String() string {
	return k.name
}

// Standard kernels. Every one of them redistributes the full error.
var (
	FloydSteinberg = MustKernel("floyd-steinberg", [][]float64{
		{0, 0, 7},
		{3, 5, 1},
	}, 16)

	Stucki = MustKernel("stucki", [][]float64{
		{0, 0, 0, 8, 4},
		{2, 4, 8, 4, 2},
		{1, 2, 4, 2, 1},
	}, 42)

	// Atkinson is normalized over its six taps, so each tap carries 1/6 of the
	// error rather than the 1/8 found in the literature.
	Atkinson = MustKernel("atkinson", [][]float64{
		{0, 0, 1, 1},
		{1, 1, 1, 0},
		{0, 1, 0, 0},
	}, 6)

	Burkes = MustKernel("burkes", [][]float64{
		{0, 0, 0, 8, 4},
		{2, 4, 8, 4, 2},
	}, 32)

	Sierra3 = MustKernel("sierra3", [][]float64{
		{0, 0, 0, 5, 3},
		{2, 4, 5, 4, 2},
		{0, 2, 3, 2, 0},
	}, 32)

	SierraLite = MustKernel("sierra-lite", [][]float64{
		{0, 0, 2},
		{1, 1, 0},
	}, 4)
)

var kernels = map[string]Kernel{
	FloydSteinberg.name: FloydSteinberg,
	Stucki.name:         Stucki,
	Atkinson.name:       Atkinson,
	Burkes.name:         Burkes,
	Sierra3.name:        Sierra3,
	SierraLite.name:     SierraLite,
}

// KernelByName looks up a standard kernel. Matching ignores case, and "none"
// selects a 1x1 zero kernel.
func KernelByName(name string) (Kernel, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "none" || key == "zero" {
		return Zero(1, 1), nil
	}
	if k, ok := kernels[key]; ok {
		return k, nil
	}
	return Kernel{}, fmt.Errorf("unknown dither kernel %q (valid: %s)", name, strings.Join(KernelNames(), ", "))
}

// KernelNames returns the names of the standard kernels in sorted order.
func KernelNames() []string {
	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
