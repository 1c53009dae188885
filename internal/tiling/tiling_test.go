package tiling

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/field"
)

var (
	turquoise = colour.RGB(64, 224, 208)
	green     = colour.RGB(0, 100, 0)
	yellow    = colour.RGB(240, 220, 40)
)

func testTileTypes() []TileType {
	return []TileType{
		{Name: "T", Image: Solid{Colour: turquoise}},
		{Name: "G", Image: Solid{Colour: green}},
		{Name: "Y", Image: Solid{Colour: yellow}},
	}
}

func twoStopOptions(rows, cols int) Options {
	return Options{
		Rows:      rows,
		Cols:      cols,
		TileTypes: testTileTypes(),
		Gradient: Gradient{Stops: []Stop{
			{Position: 0, TileName: "T"},
			{Position: 1, TileName: "G"},
		}},
	}
}

func TestBuildGradientCoverage(t *testing.T) {
	opts := twoStopOptions(4, 10)
	model, err := BuildGradient(opts, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("BuildGradient: %v", err)
	}

	if len(model.Tiles) != 40 {
		t.Fatalf("len(Tiles) = %d, want 40", len(model.Tiles))
	}
	if err := model.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	perColumn := make(map[int]int)
	for _, tile := range model.Tiles {
		if tile.Name == "G" {
			perColumn[tile.Coords.Col]++
		}
	}
	for col := 0; col < 10; col++ {
		want := int(math.Round(float64(col) / 10 * 4))
		if perColumn[col] != want {
			t.Errorf("column %d has %d G tiles, want %d", col, perColumn[col], want)
		}
	}
	if perColumn[0] != 0 {
		t.Error("column 0 must be entirely the start stop's tile")
	}
}

func TestBuildGradientSyntheticStops(t *testing.T) {
	opts := Options{
		Rows:      3,
		Cols:      10,
		TileTypes: testTileTypes(),
		Gradient: Gradient{Stops: []Stop{
			{Position: 0.5, TileName: "G"},
			{Position: 0.1, TileName: "T"},
		}},
	}
	model, err := BuildGradient(opts, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("BuildGradient: %v", err)
	}

	grid := model.Matrix()
	for row := range grid {
		if grid[row][0] != "T" || grid[row][1] != "T" {
			t.Errorf("row %d starts %q%q, want TT before the first stop", row, grid[row][0], grid[row][1])
		}
		for col := 5; col < 10; col++ {
			if grid[row][col] != "G" {
				t.Errorf("(%d, %d) = %q, want G after the last stop", row, col, grid[row][col])
			}
		}
	}

	if opts.Gradient.Stops[0].TileName != "G" {
		t.Error("BuildGradient reordered the caller's stops")
	}
}

func TestBuildGradientDeterministic(t *testing.T) {
	opts := twoStopOptions(6, 12)
	a, _ := BuildGradient(opts, rand.New(rand.NewSource(9)))
	b, _ := BuildGradient(opts, rand.New(rand.NewSource(9)))
	if FormatMatrix(a.Matrix()) != FormatMatrix(b.Matrix()) {
		t.Error("same seed produced different layouts")
	}
}

func TestBuildGradientErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{
			name:    "no stops",
			mutate:  func(o *Options) { o.Gradient.Stops = nil },
			wantErr: ErrInsufficientStops,
		},
		{
			name:    "unknown stop tile",
			mutate:  func(o *Options) { o.Gradient.Stops[1].TileName = "Q" },
			wantErr: ErrUnknownTile,
		},
		{
			name:    "empty grid",
			mutate:  func(o *Options) { o.Rows = 0 },
			wantErr: field.ErrInvalidDimensions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := twoStopOptions(2, 4)
			tt.mutate(&opts)
			if _, err := BuildGradient(opts, rng); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildRandomAndSingle(t *testing.T) {
	opts := twoStopOptions(3, 5)

	random, err := BuildRandom(opts, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("BuildRandom: %v", err)
	}
	if err := random.Validate(); err != nil {
		t.Errorf("random model invalid: %v", err)
	}

	single, err := BuildSingle(opts)
	if err != nil {
		t.Fatalf("BuildSingle: %v", err)
	}
	for _, tile := range single.Tiles {
		if tile.Name != "T" {
			t.Fatalf("single tiling placed %q, want T", tile.Name)
		}
	}

	opts.TileTypes = nil
	if _, err := BuildSingle(opts); !errors.Is(err, ErrNoTileTypes) {
		t.Errorf("error = %v, want ErrNoTileTypes", err)
	}
}

func TestBuildDithered(t *testing.T) {
	opts := twoStopOptions(3, 16)
	model, dithered, err := BuildDithered(opts, dither.Stucki, 2)
	if err != nil {
		t.Fatalf("BuildDithered: %v", err)
	}

	if dithered.Rows() != 5 || dithered.Cols() != 16 {
		t.Errorf("dithered size = %dx%d, want 5x16", dithered.Rows(), dithered.Cols())
	}
	if err := model.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	grid := model.Matrix()
	for row := range grid {
		for col, name := range grid[row] {
			tt, _ := opts.TileType(name)
			got, _ := dithered.Get(row+2, col)
			if got != tt.EffectiveColour() {
				t.Errorf("(%d, %d): tile %q colour %v, dithered %v", row, col, name, tt.EffectiveColour(), got)
			}
		}
	}
	if grid[0][0] != "T" {
		t.Errorf("(0, 0) = %q, want T at the start of the gradient", grid[0][0])
	}
}

func TestValidate(t *testing.T) {
	opts := twoStopOptions(1, 2)
	tests := []struct {
		name    string
		tiles   []Tile
		wantErr error
	}{
		{
			name: "duplicate",
			tiles: []Tile{
				{Name: "T", Coords: field.Coords{Row: 0, Col: 0}},
				{Name: "G", Coords: field.Coords{Row: 0, Col: 0}},
			},
			wantErr: ErrDuplicateCoords,
		},
		{
			name: "out of bounds",
			tiles: []Tile{
				{Name: "T", Coords: field.Coords{Row: 0, Col: 0}},
				{Name: "T", Coords: field.Coords{Row: 0, Col: 1}},
				{Name: "T", Coords: field.Coords{Row: 1, Col: 0}},
			},
			wantErr: ErrOutOfBounds,
		},
		{
			name: "unknown",
			tiles: []Tile{
				{Name: "T", Coords: field.Coords{Row: 0, Col: 0}},
				{Name: "Z", Coords: field.Coords{Row: 0, Col: 1}},
			},
			wantErr: ErrUnknownTile,
		},
		{
			name:    "incomplete",
			tiles:   []Tile{{Name: "T", Coords: field.Coords{Row: 0, Col: 0}}},
			wantErr: ErrIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &Model{Options: opts, Tiles: tt.tiles}
			if err := model.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	opts := twoStopOptions(2, 3)
	grid := [][]string{{"T", "G", "Y"}, {"Y", "T", "G"}}

	model, err := FromMatrix(grid, opts)
	if err != nil {
		t.Fatalf("FromMatrix: %v", err)
	}
	if got := FormatMatrix(model.Matrix()); got != "TGY\nYTG" {
		t.Errorf("FormatMatrix = %q, want %q", got, "TGY\nYTG")
	}

	if _, err := FromMatrix([][]string{{"T", "", "Y"}, {"Y", "T", "G"}}, opts); !errors.Is(err, ErrIncomplete) {
		t.Errorf("error = %v, want ErrIncomplete", err)
	}
	if _, err := FromMatrix([][]string{{"T"}}, opts); !errors.Is(err, field.ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}

	partial := &Model{Options: opts, Tiles: []Tile{{Name: "T", Coords: field.Coords{Row: 1, Col: 2}}}}
	if got := FormatMatrix(partial.Matrix()); got != "...\n..T" {
		t.Errorf("FormatMatrix = %q, want %q", got, "...\n..T")
	}
}

func TestStats(t *testing.T) {
	opts := twoStopOptions(1, 4)
	model, _ := FromMatrix([][]string{{"T", "G", "G", "G"}}, opts)

	stats := model.Stats()
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	want := []TileCount{
		{Name: "G", Count: 3, Percent: 75},
		{Name: "T", Count: 1, Percent: 25},
		{Name: "Y", Count: 0, Percent: 0},
	}
	if len(stats.Counts) != len(want) {
		t.Fatalf("Counts = %+v, want %+v", stats.Counts, want)
	}
	for i := range want {
		if stats.Counts[i] != want[i] {
			t.Errorf("Counts[%d] = %+v, want %+v", i, stats.Counts[i], want[i])
		}
	}
}

func TestRenderSolid(t *testing.T) {
	opts := twoStopOptions(1, 2)
	model, _ := FromMatrix([][]string{{"T", "G"}}, opts)
	grout := colour.RGB(169, 169, 169)
	drawOpts := DrawOptions{TileWidth: 4, TileHeight: 3, Spacing: 1, SpacingColour: grout}

	img, err := Render(model, drawOpts, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(11, 5) {
		t.Fatalf("canvas size = %v, want (11,5)", got)
	}

	tests := []struct {
		x, y int
		want colour.Colour
	}{
		{x: 0, y: 0, want: grout},
		{x: 1, y: 1, want: turquoise},
		{x: 4, y: 3, want: turquoise},
		{x: 5, y: 2, want: grout},
		{x: 6, y: 1, want: green},
		{x: 9, y: 3, want: green},
		{x: 10, y: 4, want: grout},
	}
	for _, tt := range tests {
		if got := colour.FromColor(img.At(tt.x, tt.y)); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderSampled(t *testing.T) {
	red := colour.RGB(255, 0, 0)
	sample := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			sample.Set(x, y, color.NRGBA{R: 0, G: 0, B: 255, A: 255})
		}
	}
	for y := 2; y < 4; y++ {
		for x := 2; x < 4; x++ {
			sample.Set(x, y, red)
		}
	}

	opts := Options{
		Rows: 1,
		Cols: 1,
		TileTypes: []TileType{{
			Name: "S",
			Image: &Sampled{
				Crop:   field.Crop{Left: 2, Top: 2, Right: 2, Bottom: 2},
				Colour: red,
				Images: []image.Image{sample},
			},
		}},
	}
	model, _ := BuildSingle(opts)

	img, err := Render(model, DrawOptions{TileWidth: 8, TileHeight: 8}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := colour.FromColor(img.At(4, 4)); got != red {
		t.Errorf("centre pixel = %v, want the cropped red sample", got)
	}
}

func TestRenderUnknownTile(t *testing.T) {
	model := &Model{Options: twoStopOptions(1, 1), Tiles: []Tile{{Name: "Q"}}}
	_, err := Render(model, DrawOptions{TileWidth: 1, TileHeight: 1}, nil)
	if !errors.Is(err, ErrUnknownTile) {
		t.Errorf("error = %v, want ErrUnknownTile", err)
	}
	if err != nil && !strings.Contains(err.Error(), "Q") {
		t.Errorf("error %q should name the tile", err)
	}
}

func TestTileTypeIsPaletteEntry(t *testing.T) {
	var entry colour.HasColour = TileType{Name: "T", Image: Solid{Colour: turquoise}}
	if entry.EffectiveColour() != turquoise {
		t.Errorf("EffectiveColour() = %v, want %v", entry.EffectiveColour(), turquoise)
	}
	if (TileType{Name: "empty"}).EffectiveColour() != colour.Black {
		t.Error("tile type without image should read as black")
	}
}
