// Package tiling maps colour gradients onto a grid of named tile types and
// renders the resulting layouts.
package tiling

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/field"
	"golang.org/x/image/draw"
)

var (
	// ErrInsufficientStops is returned when the gradient stops cannot cover every column.
	ErrInsufficientStops = errors.New("not enough gradient stops")

	// ErrUnknownTile is returned when a stop or tile names a tile type that does not exist.
	ErrUnknownTile = errors.New("unknown tile type")

	// ErrOutOfBounds is returned for tiles placed outside the grid.
	ErrOutOfBounds = errors.New("tile outside grid")

	// ErrDuplicateCoords is returned when two tiles occupy the same cell.
	ErrDuplicateCoords = errors.New("duplicate tile coordinates")

	// ErrIncomplete is returned when some grid cells have no tile.
	ErrIncomplete = errors.New("tiling does not cover the grid")

	// ErrNoTileTypes is returned by builders that need at least one tile type.
	ErrNoTileTypes = errors.New("no tile types defined")
)

// TileImage is how a tile type looks once laid. The set of implementations is
// closed: Solid and Sampled.
type TileImage interface {
	colour.HasColour

	// draw paints the tile into rect of dst.
	draw(dst draw.Image, rect image.Rectangle, rng *rand.Rand)
}

// Solid is a tile of one flat colour.
type Solid struct {
	Colour colour.Colour
}

// EffectiveColour returns the tile colour.
func (s Solid) EffectiveColour() colour.Colour { return s.Colour }

func (s Solid) draw(dst draw.Image, rect image.Rectangle, _ *rand.Rand) {
	draw.Draw(dst, rect, image.NewUniform(s.Colour), image.Point{}, draw.Src)
}

// Sampled is a tile photographed from real samples. Dir and Samples name the
// source images; Crop trims their borders and Darken lowers the perceived
// lightness of the averaged colour.
//
// Colour and Images are filled in by a sampler before the tile type is used as
// a palette entry or rendered.
type Sampled struct {
	Dir     string
	Samples []string
	Crop    field.Crop
	Darken  float64

	Colour colour.Colour
	Images []image.Image
}

// EffectiveColour returns the resolved average colour of the samples.
func (s *Sampled) EffectiveColour() colour.Colour { return s.Colour }

// draw scales a randomly chosen sample into rect. Tiles with no loaded
// samples fall back to their average colour.
func (s *Sampled) draw(dst draw.Image, rect image.Rectangle, rng *rand.Rand) {
	if len(s.Images) == 0 {
		Solid{Colour: s.Colour}.draw(dst, rect, rng)
		return
	}

	img := s.Images[0]
	if len(s.Images) > 1 && rng != nil {
		img = s.Images[rng.Intn(len(s.Images))]
	}

	b := img.Bounds()
	src := image.Rect(b.Min.X+s.Crop.Left, b.Min.Y+s.Crop.Top, b.Max.X-s.Crop.Right, b.Max.Y-s.Crop.Bottom)
	if src.Empty() {
		src = b
	}
	draw.ApproxBiLinear.Scale(dst, rect, img, src, draw.Src, nil)
}

// TileType is a named kind of tile. It is a palette entry for quantization and
// dithering through its effective colour.
type TileType struct {
	Name  string
	Image TileImage
}

// EffectiveColour returns the colour the tile type contributes to a palette.
func (t TileType) EffectiveColour() colour.Colour {
	if t.Image == nil {
		return colour.Black
	}
	return t.Image.EffectiveColour()
}

// Tile places one tile type at a grid cell.
type Tile struct {
	Name   string
	Coords field.Coords
}

// Stop anchors a tile type at a relative horizontal position in [0, 1].
type Stop struct {
	Position float64
	TileName string
}

// Gradient is an ordered-by-position list of stops.
type Gradient struct {
	Stops []Stop
}

// Options describes the grid a builder fills.
type Options struct {
	Rows      int
	Cols      int
	TileTypes []TileType
	Gradient  Gradient
}

// Validate checks the grid size and that tile type names are present and unique.
func (o Options) Validate() error {
	if o.Rows < 1 || o.Cols < 1 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", field.ErrInvalidDimensions, o.Rows, o.Cols)
	}
	seen := make(map[string]bool, len(o.TileTypes))
	for i, tt := range o.TileTypes {
		if tt.Name == "" {
			return fmt.Errorf("tile type %d has no name", i)
		}
		if seen[tt.Name] {
			return fmt.Errorf("tile type %q defined more than once", tt.Name)
		}
		seen[tt.Name] = true
	}
	return nil
}

// TileType looks up a tile type by name.
func (o Options) TileType(name string) (TileType, bool) {
	for _, tt := range o.TileTypes {
		if tt.Name == name {
			return tt, true
		}
	}
	return TileType{}, false
}

// Model is a complete tiling: the options it was built from and the placed tiles.
type Model struct {
	Options Options
	Tiles   []Tile
}
