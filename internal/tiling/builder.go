package tiling

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/gradient"
)

// normalizeStops returns a sorted copy of stops with synthetic stops at 0 and 1
// carrying the nearest extreme tile name when those positions are missing.
func normalizeStops(stops []Stop) ([]Stop, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no stops given", ErrInsufficientStops)
	}
	for _, s := range stops {
		if s.Position < 0 || s.Position > 1 {
			return nil, fmt.Errorf("stop %q position %v outside [0, 1]", s.TileName, s.Position)
		}
	}

	sorted := make([]Stop, len(stops), len(stops)+2)
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	if first := sorted[0]; first.Position > 0 {
		sorted = append([]Stop{{Position: 0, TileName: first.TileName}}, sorted...)
	}
	if last := sorted[len(sorted)-1]; last.Position < 1 {
		sorted = append(sorted, Stop{Position: 1, TileName: last.TileName})
	}
	return sorted, nil
}

func checkStopNames(opts Options) error {
	for _, s := range opts.Gradient.Stops {
		if _, ok := opts.TileType(s.TileName); !ok {
			return fmt.Errorf("%w: gradient stop names %q", ErrUnknownTile, s.TileName)
		}
	}
	return nil
}

// BuildGradient lays tiles out column by column along the gradient stops. Each
// column mixes the tile types of its enclosing stop pair in proportion to how
// far across the pair it sits, and shuffles the mix across the column's rows
// with rng so the transition looks speckled rather than split.
func BuildGradient(opts Options, rng *rand.Rand) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkStopNames(opts); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("gradient tiling requires a random source")
	}

	stops, err := normalizeStops(opts.Gradient.Stops)
	if err != nil {
		return nil, err
	}

	model := &Model{Options: opts, Tiles: make([]Tile, 0, opts.Rows*opts.Cols)}
	prev, cur := stops[0], stops[1]
	next := 2
	column := make([]string, opts.Rows)

	for col := 0; col < opts.Cols; col++ {
		relativeX := float64(col) / float64(opts.Cols)
		for relativeX > cur.Position {
			if next >= len(stops) {
				return nil, fmt.Errorf("%w: nothing covers column %d at %v", ErrInsufficientStops, col, relativeX)
			}
			prev, cur = cur, stops[next]
			next++
		}

		fraction := 1.0
		if width := cur.Position - prev.Position; width > 0 {
			fraction = (relativeX - prev.Position) / width
		}
		fromCurrent := int(math.Round(fraction * float64(opts.Rows)))

		for row := range column {
			if row < fromCurrent {
				column[row] = cur.TileName
			} else {
				column[row] = prev.TileName
			}
		}
		rng.Shuffle(len(column), func(i, j int) {
			column[i], column[j] = column[j], column[i]
		})

		for row, name := range column {
			model.Tiles = append(model.Tiles, Tile{Name: name, Coords: field.Coords{Row: row, Col: col}})
		}
	}
	return model, nil
}

// BuildRandom picks a tile type uniformly at random for every cell.
func BuildRandom(opts Options, rng *rand.Rand) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.TileTypes) == 0 {
		return nil, ErrNoTileTypes
	}
	if rng == nil {
		return nil, fmt.Errorf("random tiling requires a random source")
	}

	model := &Model{Options: opts, Tiles: make([]Tile, 0, opts.Rows*opts.Cols)}
	for row := 0; row < opts.Rows; row++ {
		for col := 0; col < opts.Cols; col++ {
			tt := opts.TileTypes[rng.Intn(len(opts.TileTypes))]
			model.Tiles = append(model.Tiles, Tile{Name: tt.Name, Coords: field.Coords{Row: row, Col: col}})
		}
	}
	return model, nil
}

// BuildSingle fills every cell with the first tile type.
func BuildSingle(opts Options) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.TileTypes) == 0 {
		return nil, ErrNoTileTypes
	}

	name := opts.TileTypes[0].Name
	model := &Model{Options: opts, Tiles: make([]Tile, 0, opts.Rows*opts.Cols)}
	for row := 0; row < opts.Rows; row++ {
		for col := 0; col < opts.Cols; col++ {
			model.Tiles = append(model.Tiles, Tile{Name: name, Coords: field.Coords{Row: row, Col: col}})
		}
	}
	return model, nil
}

// BuildDithered renders the gradient stops as a smooth colour gradient of the
// stop tiles' colours and error-diffuses it against every tile type. The first
// skipRows rows are diffused but dropped from the model, so the kept rows start
// with error already spread across them instead of the regular pattern of a
// fresh scan.
//
// The returned matrix is the full dithered field, warm-up rows included.
func BuildDithered(opts Options, kernel dither.Kernel, skipRows int) (*Model, *field.Matrix, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if len(opts.TileTypes) == 0 {
		return nil, nil, ErrNoTileTypes
	}
	if skipRows < 0 {
		return nil, nil, fmt.Errorf("skip rows must not be negative, got %d", skipRows)
	}
	if err := checkStopNames(opts); err != nil {
		return nil, nil, err
	}
	if len(opts.Gradient.Stops) == 0 {
		return nil, nil, fmt.Errorf("%w: no stops given", ErrInsufficientStops)
	}

	colourStops := make([]gradient.Stop, 0, len(opts.Gradient.Stops))
	for _, s := range opts.Gradient.Stops {
		tt, _ := opts.TileType(s.TileName)
		colourStops = append(colourStops, gradient.Stop{Position: s.Position, Colour: tt.EffectiveColour()})
	}

	var oneD []colour.Colour
	if opts.Cols == 1 {
		normalized, err := gradient.NormalizeStops(colourStops)
		if err != nil {
			return nil, nil, err
		}
		oneD = []colour.Colour{normalized[0].Colour}
	} else {
		var err error
		if oneD, err = gradient.MultiStop(colourStops, opts.Cols); err != nil {
			return nil, nil, fmt.Errorf("failed to build colour gradient: %w", err)
		}
	}
	source, err := gradient.Broadcast(oneD, opts.Rows+skipRows)
	if err != nil {
		return nil, nil, err
	}

	model := &Model{Options: opts, Tiles: make([]Tile, 0, opts.Rows*opts.Cols)}
	dithered, err := dither.Diffuse(source, opts.TileTypes, dither.Options[TileType]{
		Kernel: kernel,
		OnFinalColour: func(row, col int, chosen TileType) {
			if row < skipRows {
				return
			}
			model.Tiles = append(model.Tiles, Tile{Name: chosen.Name, Coords: field.Coords{Row: row - skipRows, Col: col}})
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dither tiling: %w", err)
	}
	return model, dithered, nil
}
