package field

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/jmylchreest/tessera/internal/colour"
)

var (
	red   = colour.RGB(255, 0, 0)
	green = colour.RGB(0, 255, 0)
	blue  = colour.RGB(0, 0, 255)
	grey  = colour.RGB(128, 128, 128)
)

func mustRows(t *testing.T, rows [][]colour.Colour) *Matrix {
	t.Helper()
	m, err := FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	return m
}

func TestNewDefaultsToBlack(t *testing.T) {
	m, err := New(2, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 3 {
		t.Fatalf("size = %dx%d, want 2x3", m.Rows(), m.Cols())
	}
	for at, c := range m.All() {
		if c != colour.Black {
			t.Errorf("cell %+v = %v, want black", at, c)
		}
	}

	if _, err := New(-1, 2); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("New(-1, 2) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestGetSetBounds(t *testing.T) {
	m, _ := New(2, 2)

	if err := m.Set(1, 1, red); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := m.Get(1, 1); got != red {
		t.Errorf("Get(1, 1) = %v, want red", got)
	}

	tests := []struct {
		name     string
		row, col int
	}{
		{name: "negative row", row: -1, col: 0},
		{name: "negative col", row: 0, col: -1},
		{name: "row too large", row: 2, col: 0},
		{name: "col too large", row: 0, col: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Get(tt.row, tt.col); !errors.Is(err, ErrIndex) {
				t.Errorf("Get error = %v, want ErrIndex", err)
			}
			if err := m.Set(tt.row, tt.col, red); !errors.Is(err, ErrIndex) {
				t.Errorf("Set error = %v, want ErrIndex", err)
			}
			var idxErr *IndexError
			if _, err := m.Get(tt.row, tt.col); !errors.As(err, &idxErr) || idxErr.Row != tt.row || idxErr.Col != tt.col {
				t.Errorf("expected *IndexError for (%d, %d), got %v", tt.row, tt.col, err)
			}
		})
	}
}

func TestFromRowsRagged(t *testing.T) {
	_, err := FromRows([][]colour.Colour{{red, green}, {blue}})
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := mustRows(t, [][]colour.Colour{{red, green}})
	c := m.Clone()
	_ = c.Set(0, 0, blue)

	if got, _ := m.Get(0, 0); got != red {
		t.Errorf("mutating the clone changed the original: %v", got)
	}
	if !m.Equal(mustRows(t, [][]colour.Colour{{red, green}})) {
		t.Error("original should be unchanged")
	}
}

func TestMapIsPure(t *testing.T) {
	m := mustRows(t, [][]colour.Colour{{red, green}, {blue, grey}})
	before := m.Clone()

	mapped := m.Map(func(c colour.Colour, row, col int) colour.Colour {
		if row == col {
			return colour.White
		}
		return c
	})

	if !m.Equal(before) {
		t.Error("Map mutated its receiver")
	}
	want := mustRows(t, [][]colour.Colour{{colour.White, green}, {blue, colour.White}})
	if !mapped.Equal(want) {
		t.Error("Map produced unexpected cells")
	}
}

func TestScalePixel(t *testing.T) {
	m := mustRows(t, [][]colour.Colour{{red, green}, {blue, grey}})

	one, err := m.ScalePixel(1)
	if err != nil {
		t.Fatalf("ScalePixel(1): %v", err)
	}
	if !one.Equal(m.Clone()) {
		t.Error("ScalePixel(1) should equal Clone()")
	}

	three, err := m.ScalePixel(3)
	if err != nil {
		t.Fatalf("ScalePixel(3): %v", err)
	}
	if three.Rows() != 6 || three.Cols() != 6 {
		t.Fatalf("size = %dx%d, want 6x6", three.Rows(), three.Cols())
	}
	for at, c := range three.All() {
		want, _ := m.Get(at.Row/3, at.Col/3)
		if c != want {
			t.Errorf("cell %+v = %v, want %v", at, c, want)
		}
	}

	if _, err := m.ScalePixel(0); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("ScalePixel(0) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestScalePixelWithBorder(t *testing.T) {
	m := mustRows(t, [][]colour.Colour{{red, green}})
	border := colour.White

	one, _ := m.ScalePixelWithBorder(1, &border)
	if !one.Equal(m) {
		t.Error("factor 1 with border should be a plain clone")
	}

	scaled, err := m.ScalePixelWithBorder(4, &border)
	if err != nil {
		t.Fatalf("ScalePixelWithBorder: %v", err)
	}
	if scaled.Rows() != 4 || scaled.Cols() != 8 {
		t.Fatalf("size = %dx%d, want 4x8", scaled.Rows(), scaled.Cols())
	}

	tests := []struct {
		row, col int
		want     colour.Colour
	}{
		{0, 0, border},
		{0, 3, border},
		{3, 0, border},
		{1, 1, red},
		{3, 3, red},
		{1, 4, border},
		{0, 6, border},
		{1, 5, green},
		{3, 7, green},
	}
	for _, tt := range tests {
		if got, _ := scaled.Get(tt.row, tt.col); got != tt.want {
			t.Errorf("cell (%d, %d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}

	filled, _ := Filled(2, 2, red)
	small, err := filled.ScalePixelWithBorder(2, &grey)
	if err != nil {
		t.Fatalf("ScalePixelWithBorder(2): %v", err)
	}
	kept := 0
	for at, c := range small.All() {
		interior := at.Row%2 == 1 && at.Col%2 == 1
		switch {
		case interior && c != red:
			t.Errorf("factor 2 cell %+v = %v, want source colour", at, c)
		case !interior && c != grey:
			t.Errorf("factor 2 cell %+v = %v, want border", at, c)
		case interior:
			kept++
		}
	}
	if kept != 4 {
		t.Errorf("factor 2 kept %d source cells, want 4", kept)
	}

	plain, _ := m.ScalePixelWithBorder(4, nil)
	unbordered, _ := m.ScalePixel(4)
	if !plain.Equal(unbordered) {
		t.Error("nil border should match ScalePixel")
	}
}

func TestCrop(t *testing.T) {
	m := mustRows(t, [][]colour.Colour{
		{red, red, red},
		{red, green, red},
		{red, blue, red},
	})

	cropped, err := m.Crop(Crop{Left: 1, Top: 1, Right: 1})
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if !cropped.Equal(mustRows(t, [][]colour.Colour{{green}, {blue}})) {
		t.Error("unexpected crop result")
	}

	if _, err := m.Crop(Crop{Left: 2, Right: 1}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("over-crop error = %v, want ErrInvalidDimensions", err)
	}
	if _, err := m.Crop(Crop{Left: -1}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("negative crop error = %v, want ErrInvalidDimensions", err)
	}
}

func TestFromRawPixels(t *testing.T) {
	rgb := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 128, 128, 128,
	}

	m, err := FromRawPixels(rgb, 2, 2, Crop{})
	if err != nil {
		t.Fatalf("FromRawPixels: %v", err)
	}
	if !m.Equal(mustRows(t, [][]colour.Colour{{red, green}, {blue, grey}})) {
		t.Error("unexpected cells from 3-channel buffer")
	}

	rgba := m.ToRawPixels()
	if len(rgba) != 16 {
		t.Fatalf("ToRawPixels length = %d, want 16", len(rgba))
	}
	if rgba[3] != 255 {
		t.Errorf("alpha should default to opaque, got %d", rgba[3])
	}

	back, err := FromRawPixels(rgba, 2, 2, Crop{})
	if err != nil {
		t.Fatalf("FromRawPixels(rgba): %v", err)
	}
	if !back.Equal(m) {
		t.Error("raw pixel round trip changed the field")
	}

	cropped, err := FromRawPixels(rgb, 2, 2, Crop{Top: 1, Left: 1})
	if err != nil {
		t.Fatalf("FromRawPixels with crop: %v", err)
	}
	if !cropped.Equal(mustRows(t, [][]colour.Colour{{grey}})) {
		t.Error("crop should keep only the bottom-right pixel")
	}
}

func TestFromRawPixelsInvalid(t *testing.T) {
	tests := []struct {
		name          string
		buf           []byte
		width, height int
		crop          Crop
	}{
		{name: "zero width", buf: make([]byte, 12), width: 0, height: 2},
		{name: "zero height", buf: make([]byte, 12), width: 2, height: 0},
		{name: "short buffer", buf: make([]byte, 5), width: 2, height: 1},
		{name: "two channels", buf: make([]byte, 8), width: 2, height: 2},
		{name: "crop too large", buf: make([]byte, 12), width: 2, height: 2, crop: Crop{Top: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromRawPixels(tt.buf, tt.width, tt.height, tt.crop); !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("error = %v, want ErrInvalidDimensions", err)
			}
		})
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 13, 12))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	img.Set(12, 11, color.RGBA{B: 255, A: 255})

	m, err := FromImage(img, Crop{})
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 3 {
		t.Fatalf("size = %dx%d, want 2x3", m.Rows(), m.Cols())
	}
	if got, _ := m.Get(0, 0); got != red {
		t.Errorf("top-left = %v, want red", got)
	}
	if got, _ := m.Get(1, 2); got != blue {
		t.Errorf("bottom-right = %v, want blue", got)
	}

	out := m.ToImage()
	if got := colour.FromColor(out.At(2, 1)); got != blue {
		t.Errorf("ToImage pixel = %v, want blue", got)
	}

	if _, err := FromImage(nil, Crop{}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("FromImage(nil) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestAverageColour(t *testing.T) {
	uniform, _ := Filled(3, 3, grey)
	if got := uniform.AverageColour(0); got != grey {
		t.Errorf("average of uniform field = %v, want %v", got, grey)
	}

	// One black and one white outlier around a grey body.
	m := mustRows(t, [][]colour.Colour{{colour.Black, grey, grey, grey, colour.White}})
	if got := m.AverageColour(1); got != grey {
		t.Errorf("trimmed average = %v, want %v", got, grey)
	}
	if got := m.AverageColour(0); got == grey {
		t.Error("untrimmed average should be pulled by the outliers")
	}

	// Trimming more than the field holds keeps the median cell.
	if got := m.AverageColour(10); got != grey {
		t.Errorf("over-trimmed average = %v, want %v", got, grey)
	}

	empty, _ := New(0, 0)
	if got := empty.AverageColour(0); got != colour.Black {
		t.Errorf("empty average = %v, want black", got)
	}
}
