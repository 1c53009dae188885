package tiling

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmylchreest/tessera/internal/field"
)

// Matrix returns the tile names as a rows x cols grid. Cells without a tile
// are empty strings; tiles outside the grid are ignored.
func (m *Model) Matrix() [][]string {
	grid := make([][]string, m.Options.Rows)
	for row := range grid {
		grid[row] = make([]string, m.Options.Cols)
	}
	for _, t := range m.Tiles {
		if t.Coords.Row < 0 || t.Coords.Row >= m.Options.Rows || t.Coords.Col < 0 || t.Coords.Col >= m.Options.Cols {
			continue
		}
		grid[t.Coords.Row][t.Coords.Col] = t.Name
	}
	return grid
}

// FromMatrix builds a model from a grid of tile names sized per opts. Every
// cell must be named.
func FromMatrix(grid [][]string, opts Options) (*Model, error) {
	if len(grid) != opts.Rows {
		return nil, fmt.Errorf("%w: matrix has %d rows, expected %d", field.ErrInvalidDimensions, len(grid), opts.Rows)
	}

	model := &Model{Options: opts, Tiles: make([]Tile, 0, opts.Rows*opts.Cols)}
	for row, line := range grid {
		if len(line) != opts.Cols {
			return nil, fmt.Errorf("%w: matrix row %d has %d columns, expected %d", field.ErrInvalidDimensions, row, len(line), opts.Cols)
		}
		for col, name := range line {
			if name == "" {
				return nil, fmt.Errorf("%w: no tile at (%d, %d)", ErrIncomplete, row, col)
			}
			model.Tiles = append(model.Tiles, Tile{Name: name, Coords: field.Coords{Row: row, Col: col}})
		}
	}
	return model, nil
}

// FormatMatrix renders a tile name grid one row per line with the names
// concatenated. Empty cells print as ".".
func FormatMatrix(grid [][]string) string {
	var b strings.Builder
	for row, line := range grid {
		if row > 0 {
			b.WriteByte('\n')
		}
		for _, name := range line {
			if name == "" {
				name = "."
			}
			b.WriteString(name)
		}
	}
	return b.String()
}

// Validate checks that every tile lies inside the grid, names a known tile
// type and occupies a distinct cell, and that the tiles cover the grid.
// Builders never emit duplicates on their own, but models assembled or edited
// by hand can.
func (m *Model) Validate() error {
	if err := m.Options.Validate(); err != nil {
		return err
	}

	var errs []error
	seen := make(map[field.Coords]string, len(m.Tiles))
	for _, t := range m.Tiles {
		at := t.Coords
		if at.Row < 0 || at.Row >= m.Options.Rows || at.Col < 0 || at.Col >= m.Options.Cols {
			errs = append(errs, fmt.Errorf("%w: %q at (%d, %d) in %dx%d grid", ErrOutOfBounds, t.Name, at.Row, at.Col, m.Options.Rows, m.Options.Cols))
			continue
		}
		if _, ok := m.Options.TileType(t.Name); !ok {
			errs = append(errs, fmt.Errorf("%w: %q at (%d, %d)", ErrUnknownTile, t.Name, at.Row, at.Col))
		}
		if prev, ok := seen[at]; ok {
			errs = append(errs, fmt.Errorf("%w: %q and %q both at (%d, %d)", ErrDuplicateCoords, prev, t.Name, at.Row, at.Col))
			continue
		}
		seen[at] = t.Name
	}
	if want := m.Options.Rows * m.Options.Cols; len(seen) != want {
		errs = append(errs, fmt.Errorf("%w: %d of %d cells placed", ErrIncomplete, len(seen), want))
	}
	return errors.Join(errs...)
}

// TileCount is the number of tiles of one type in a model.
type TileCount struct {
	Name    string
	Count   int
	Percent float64
}

// Stats summarizes how many tiles of each type a model uses.
type Stats struct {
	Total  int
	Counts []TileCount
}

// Stats counts tiles per type. Counts are ordered by descending count, then by
// name; tile types defined in the options but unused are listed with zero.
func (m *Model) Stats() Stats {
	counts := make(map[string]int, len(m.Options.TileTypes))
	for _, tt := range m.Options.TileTypes {
		counts[tt.Name] = 0
	}
	for _, t := range m.Tiles {
		counts[t.Name]++
	}

	stats := Stats{Total: len(m.Tiles), Counts: make([]TileCount, 0, len(counts))}
	for name, n := range counts {
		tc := TileCount{Name: name, Count: n}
		if stats.Total > 0 {
			tc.Percent = float64(n) / float64(stats.Total) * 100
		}
		stats.Counts = append(stats.Counts, tc)
	}
	sort.Slice(stats.Counts, func(i, j int) bool {
		if stats.Counts[i].Count != stats.Counts[j].Count {
			return stats.Counts[i].Count > stats.Counts[j].Count
		}
		return stats.Counts[i].Name < stats.Counts[j].Name
	})
	return stats
}
