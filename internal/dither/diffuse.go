package dither

import (
	"fmt"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/quantize"
)

// Options configures a diffusion pass. Zero values select the defaults: no
// diffusion kernel, closest match by Lab distance and Lab quantization error.
type Options[T colour.HasColour] struct {
	Kernel  Kernel
	Closest quantize.Finder[T]
	Error   colour.ErrorFunc

	// OnFinalColour is called once per cell, in scan order, after the cell is finalized.
	OnFinalColour func(row, col int, chosen T)

	// Debug receives a copy of the working buffer after each cell.
	Debug func(snapshot *field.Matrix)
}

// Diffuse quantizes source against palette in a single row-major scan and
// spreads each cell's quantization error to its unvisited neighbours according
// to the kernel. The source is left untouched; the returned matrix is the
// working buffer and every cell in it is a palette colour.
func Diffuse[T colour.HasColour](source *field.Matrix, palette []T, opts Options[T]) (*field.Matrix, error) {
	if len(palette) == 0 {
		return nil, quantize.ErrEmptyPalette
	}

	find := opts.Closest
	if find == nil {
		find = quantize.Closest[T](colour.EuclideanLab)
	}
	quantErr := opts.Error
	if quantErr == nil {
		quantErr = colour.LabError
	}
	kernel := opts.Kernel
	if kernel.weights == nil {
		kernel = Zero(1, 1)
	}
	anchor := kernel.Anchor()

	dithered := source.Clone()
	rows, cols := dithered.Rows(), dithered.Cols()

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			old, err := dithered.Get(row, col)
			if err != nil {
				return nil, err
			}
			chosen, err := find(old, palette)
			if err != nil {
				return nil, fmt.Errorf("failed to quantize cell (%d, %d): %w", row, col, err)
			}
			if err := dithered.Set(row, col, chosen.EffectiveColour()); err != nil {
				return nil, err
			}
			if opts.OnFinalColour != nil {
				opts.OnFinalColour(row, col, chosen)
			}

			residual := quantErr(old, chosen)
			for dRow := 0; dRow < kernel.rows; dRow++ {
				for dCol := 0; dCol < kernel.cols; dCol++ {
					w := kernel.Weight(dRow, dCol)
					if w <= 0 {
						continue
					}
					tRow, tCol := row+dRow, col+dCol-anchor
					if !dithered.InBounds(tRow, tCol) {
						continue
					}
					target, err := dithered.Get(tRow, tCol)
					if err != nil {
						return nil, err
					}
					if err := dithered.Set(tRow, tCol, colour.AddErrorWithRatio(target, residual, w)); err != nil {
						return nil, err
					}
				}
			}

			if opts.Debug != nil {
				opts.Debug(dithered.Clone())
			}
		}
	}
	return dithered, nil
}
