package tiling

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
	"golang.org/x/image/draw"
)

// DrawOptions controls tile size and the grout between tiles, in pixels.
type DrawOptions struct {
	TileWidth     int
	TileHeight    int
	Spacing       int
	SpacingColour colour.Colour
}

// Validate checks that tiles have a visible size and spacing is not negative.
func (o DrawOptions) Validate() error {
	if o.TileWidth < 1 || o.TileHeight < 1 {
		return fmt.Errorf("%w: tile size must be at least 1x1, got %dx%d", field.ErrInvalidDimensions, o.TileWidth, o.TileHeight)
	}
	if o.Spacing < 0 {
		return fmt.Errorf("%w: spacing must not be negative, got %d", field.ErrInvalidDimensions, o.Spacing)
	}
	return nil
}

// TileRect returns the pixel rectangle of the tile at (row, col).
func (o DrawOptions) TileRect(row, col int) image.Rectangle {
	left := o.Spacing + col*(o.Spacing+o.TileWidth)
	top := o.Spacing + row*(o.Spacing+o.TileHeight)
	return image.Rect(left, top, left+o.TileWidth, top+o.TileHeight)
}

// CanvasSize returns the pixel size of a rows x cols tiling, spacing included
// on every side.
func (o DrawOptions) CanvasSize(rows, cols int) image.Point {
	return image.Point{
		X: cols*(o.TileWidth+o.Spacing) + o.Spacing,
		Y: rows*(o.TileHeight+o.Spacing) + o.Spacing,
	}
}

// Render paints the model onto a new canvas filled with the spacing colour.
// Sampled tiles pick one of their loaded samples at random through rng.
func Render(model *Model, opts DrawOptions, rng *rand.Rand) (*image.RGBA, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := model.Options.Validate(); err != nil {
		return nil, err
	}

	size := opts.CanvasSize(model.Options.Rows, model.Options.Cols)
	canvas := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.SpacingColour), image.Point{}, draw.Src)

	types := make(map[string]TileType, len(model.Options.TileTypes))
	for _, tt := range model.Options.TileTypes {
		types[tt.Name] = tt
	}

	for _, t := range model.Tiles {
		tt, ok := types[t.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q at (%d, %d)", ErrUnknownTile, t.Name, t.Coords.Row, t.Coords.Col)
		}
		if t.Coords.Row < 0 || t.Coords.Row >= model.Options.Rows || t.Coords.Col < 0 || t.Coords.Col >= model.Options.Cols {
			return nil, fmt.Errorf("%w: %q at (%d, %d)", ErrOutOfBounds, t.Name, t.Coords.Row, t.Coords.Col)
		}

		img := tt.Image
		if img == nil {
			img = Solid{Colour: tt.EffectiveColour()}
		}
		img.draw(canvas, opts.TileRect(t.Coords.Row, t.Coords.Col), rng)
	}
	return canvas, nil
}
