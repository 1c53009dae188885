// Package config loads tiling plans: JSON files describing the grid, the tile
// types, the gradient stops and how the result is rendered.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/tiling"
)

// Environment variables that override plan values.
const (
	EnvKernel     = "TESSERA_KERNEL"
	EnvSeed       = "TESSERA_SEED"
	EnvSampleRoot = "TESSERA_SAMPLE_ROOT"
	EnvCacheDir   = "TESSERA_CACHE_DIR"
)

// Builder names accepted in a plan.
const (
	BuilderGradient = "gradient"
	BuilderDithered = "dithered"
	BuilderRandom   = "random"
	BuilderSingle   = "single"
)

// ValidBuilders lists the accepted builder names.
func ValidBuilders() []string {
	return []string{BuilderGradient, BuilderDithered, BuilderRandom, BuilderSingle}
}

// Plan is the on-disk description of a tiling.
type Plan struct {
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	Builder string `json:"builder,omitempty"`

	// Kernel and SkipRows apply to the dithered builder.
	Kernel   string `json:"kernel,omitempty"`
	SkipRows int    `json:"skipRows,omitempty"`

	// Seed fixes the shuffle for gradient and random builders. When unset the
	// seed is derived from the plan file contents.
	Seed *int64 `json:"seed,omitempty"`

	SampleRoot string `json:"sampleRoot,omitempty"`
	CacheDir   string `json:"cacheDir,omitempty"`

	Tile      TileSize   `json:"tile"`
	TileTypes []TileSpec `json:"tileTypes"`
	Stops     []StopSpec `json:"stops,omitempty"`

	Output string `json:"output,omitempty"`
}

// TileSize is the rendered tile and grout size in pixels.
type TileSize struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Spacing       int    `json:"spacing"`
	SpacingColour string `json:"spacingColour,omitempty"`
}

// TileSpec describes one tile type. Exactly one of Colour or Dir/Samples is set.
type TileSpec struct {
	Name    string      `json:"name"`
	Colour  string      `json:"colour,omitempty"`
	Dir     string      `json:"dir,omitempty"`
	Samples []string    `json:"samples,omitempty"`
	Crop    *field.Crop `json:"crop,omitempty"`
	Darken  float64     `json:"darken,omitempty"`
}

// IsSampled reports whether the tile colour comes from sample images.
func (t TileSpec) IsSampled() bool {
	return t.Colour == ""
}

// StopSpec anchors a tile type at a relative position across the grid.
type StopSpec struct {
	Position float64 `json:"position"`
	Tile     string  `json:"tile"`
}

// Load reads and validates the plan at path. Environment overrides are not applied.
func Load(path string) (*Plan, []byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 - User-specified plan path, intended to be read
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read plan: %w", err)
	}
	plan, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return plan, data, nil
}

// Parse decodes a plan, rejecting unknown fields, and fills in defaults.
func Parse(data []byte) (*Plan, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	plan.applyDefaults()
	return &plan, nil
}

func (p *Plan) applyDefaults() {
	if p.Builder == "" {
		p.Builder = BuilderGradient
	}
	if p.Kernel == "" {
		p.Kernel = dither.Stucki.Name()
	}
	if p.Tile.Width == 0 {
		p.Tile.Width = 50
	}
	if p.Tile.Height == 0 {
		p.Tile.Height = p.Tile.Width
	}
	if p.Tile.SpacingColour == "" {
		p.Tile.SpacingColour = "#a9a9a9"
	}
}

// ApplyEnv overrides plan values from the environment through lookup, which
// is normally os.LookupEnv.
func (p *Plan) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvKernel); ok && v != "" {
		p.Kernel = v
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		p.Seed = &s
	}
	if v, ok := lookup(EnvSampleRoot); ok && v != "" {
		p.SampleRoot = v
	}
	if v, ok := lookup(EnvCacheDir); ok && v != "" {
		p.CacheDir = v
	}
	return nil
}

// Validate checks the plan for mistakes that would only surface later as
// confusing builder or render errors. All problems are reported together.
func (p *Plan) Validate() error {
	var errs []error

	if p.Rows < 1 || p.Cols < 1 {
		errs = append(errs, fmt.Errorf("grid must be at least 1x1, got %dx%d", p.Rows, p.Cols))
	}
	if !slices.Contains(ValidBuilders(), p.Builder) {
		errs = append(errs, fmt.Errorf("unknown builder %q (valid: %s)", p.Builder, strings.Join(ValidBuilders(), ", ")))
	}
	if p.Builder == BuilderDithered {
		if _, err := dither.KernelByName(p.Kernel); err != nil {
			errs = append(errs, err)
		}
	}
	if p.SkipRows < 0 {
		errs = append(errs, fmt.Errorf("skipRows must not be negative, got %d", p.SkipRows))
	}
	if p.Tile.Width < 1 || p.Tile.Height < 1 || p.Tile.Spacing < 0 {
		errs = append(errs, fmt.Errorf("invalid tile size %dx%d with spacing %d", p.Tile.Width, p.Tile.Height, p.Tile.Spacing))
	}
	if _, err := colour.ParseHex(p.Tile.SpacingColour); err != nil {
		errs = append(errs, fmt.Errorf("spacing colour: %w", err))
	}

	if len(p.TileTypes) == 0 {
		errs = append(errs, errors.New("at least one tile type is required"))
	}
	names := make(map[string]bool, len(p.TileTypes))
	for i, t := range p.TileTypes {
		switch {
		case t.Name == "":
			errs = append(errs, fmt.Errorf("tile type %d has no name", i))
		case names[t.Name]:
			errs = append(errs, fmt.Errorf("tile type %q defined more than once", t.Name))
		}
		names[t.Name] = true

		if t.IsSampled() {
			if t.Dir == "" && len(t.Samples) == 0 {
				errs = append(errs, fmt.Errorf("tile type %q needs a colour or sample images", t.Name))
			}
		} else {
			if _, err := colour.ParseHex(t.Colour); err != nil {
				errs = append(errs, fmt.Errorf("tile type %q: %w", t.Name, err))
			}
			if t.Dir != "" || len(t.Samples) > 0 {
				errs = append(errs, fmt.Errorf("tile type %q sets both a colour and sample images", t.Name))
			}
		}
		if t.Darken < 0 || t.Darken > 1 {
			errs = append(errs, fmt.Errorf("tile type %q darken %v outside [0, 1]", t.Name, t.Darken))
		}
	}

	needsStops := p.Builder == BuilderGradient || p.Builder == BuilderDithered
	if needsStops && len(p.Stops) == 0 {
		errs = append(errs, fmt.Errorf("builder %q needs gradient stops", p.Builder))
	}
	for _, s := range p.Stops {
		if s.Position < 0 || s.Position > 1 {
			errs = append(errs, fmt.Errorf("stop %q position %v outside [0, 1]", s.Tile, s.Position))
		}
		if !names[s.Tile] {
			errs = append(errs, fmt.Errorf("stop names unknown tile type %q", s.Tile))
		}
	}

	return errors.Join(errs...)
}

// TilingOptions converts the plan into builder options. Sampled tile types
// come back unresolved; their colours must be sampled before building.
func (p *Plan) TilingOptions() (tiling.Options, error) {
	opts := tiling.Options{
		Rows:      p.Rows,
		Cols:      p.Cols,
		TileTypes: make([]tiling.TileType, 0, len(p.TileTypes)),
	}

	for _, t := range p.TileTypes {
		tt := tiling.TileType{Name: t.Name}
		if t.IsSampled() {
			sampled := &tiling.Sampled{Dir: t.Dir, Samples: t.Samples, Darken: t.Darken}
			if t.Crop != nil {
				sampled.Crop = *t.Crop
			}
			tt.Image = sampled
		} else {
			c, err := colour.ParseHex(t.Colour)
			if err != nil {
				return tiling.Options{}, fmt.Errorf("tile type %q: %w", t.Name, err)
			}
			if t.Darken > 0 {
				c = c.Darken(t.Darken)
			}
			tt.Image = tiling.Solid{Colour: c}
		}
		opts.TileTypes = append(opts.TileTypes, tt)
	}

	for _, s := range p.Stops {
		opts.Gradient.Stops = append(opts.Gradient.Stops, tiling.Stop{Position: s.Position, TileName: s.Tile})
	}
	return opts, nil
}

// DrawOptions converts the plan's tile size into render options.
func (p *Plan) DrawOptions() (tiling.DrawOptions, error) {
	spacing, err := colour.ParseHex(p.Tile.SpacingColour)
	if err != nil {
		return tiling.DrawOptions{}, fmt.Errorf("spacing colour: %w", err)
	}
	return tiling.DrawOptions{
		TileWidth:     p.Tile.Width,
		TileHeight:    p.Tile.Height,
		Spacing:       p.Tile.Spacing,
		SpacingColour: spacing,
	}, nil
}

// Save writes the plan to path as indented JSON.
func (p *Plan) Save(path string) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(p); err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { // #nosec G306 - plans are not secret
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}

// Example returns a small solid-colour plan used to seed new plan files.
func Example() *Plan {
	plan := &Plan{
		Rows:    7,
		Cols:    40,
		Builder: BuilderGradient,
		Tile:    TileSize{Width: 50, Height: 50, Spacing: 1},
		TileTypes: []TileSpec{
			{Name: "T", Colour: "#40e0d0"},
			{Name: "M", Colour: "#1e5f8c"},
			{Name: "O", Colour: "#2e8b57"},
		},
		Stops: []StopSpec{
			{Position: 0.1, Tile: "T"},
			{Position: 0.5, Tile: "M"},
			{Position: 0.9, Tile: "O"},
		},
		Output: "tiling.png",
	}
	plan.applyDefaults()
	return plan
}
