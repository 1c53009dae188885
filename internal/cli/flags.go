package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/tessera/internal/colour"
	"github.com/jmylchreest/tessera/internal/dither"
	"github.com/jmylchreest/tessera/internal/field"
	"github.com/jmylchreest/tessera/internal/gradient"
	"github.com/spf13/pflag"
)

// kernelValue is a pflag.Value holding a diffusion kernel selected by name.
type kernelValue struct {
	kernel dither.Kernel
}

var _ pflag.Value = (*kernelValue)(nil)

func newKernelValue(k dither.Kernel) *kernelValue {
	return &kernelValue{kernel: k}
}

func (v *kernelValue) String() string {
	return v.kernel.Name()
}

func (v *kernelValue) Set(s string) error {
	k, err := dither.KernelByName(s)
	if err != nil {
		return err
	}
	v.kernel = k
	return nil
}

func (v *kernelValue) Type() string {
	return "kernel"
}

// Quantization modes shared by the gradient and dither commands.
const (
	modeNone    = "none"
	modeFlat    = "flat"
	modeDiffuse = "diffuse"
	modeRGB     = "rgb"
)

func validateMode(mode string) error {
	switch mode {
	case modeNone, modeFlat, modeDiffuse, modeRGB:
		return nil
	default:
		return fmt.Errorf("invalid mode: %s (valid: %s, %s, %s, %s)", mode, modeNone, modeFlat, modeDiffuse, modeRGB)
	}
}

// parsePalette parses hex colours. An empty list yields black and white.
func parsePalette(values []string) ([]colour.Colour, error) {
	if len(values) == 0 {
		return []colour.Colour{colour.Black, colour.White}, nil
	}
	palette := make([]colour.Colour, 0, len(values))
	for _, v := range values {
		c, err := colour.ParseHex(v)
		if err != nil {
			return nil, fmt.Errorf("invalid palette colour: %w", err)
		}
		palette = append(palette, c)
	}
	return palette, nil
}

// parseStop parses "POSITION:HEX", for example "0.25:#ff8800".
func parseStop(s string) (gradient.Stop, error) {
	pos, hex, ok := strings.Cut(s, ":")
	if !ok {
		return gradient.Stop{}, fmt.Errorf("invalid stop %q: expected POSITION:HEX", s)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(pos), 64)
	if err != nil {
		return gradient.Stop{}, fmt.Errorf("invalid stop position %q: %w", pos, err)
	}
	c, err := colour.ParseHex(strings.TrimSpace(hex))
	if err != nil {
		return gradient.Stop{}, fmt.Errorf("invalid stop colour: %w", err)
	}
	return gradient.Stop{Position: p, Colour: c}, nil
}

func parseStops(values []string) ([]gradient.Stop, error) {
	stops := make([]gradient.Stop, 0, len(values))
	for _, v := range values {
		s, err := parseStop(v)
		if err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, nil
}

// parseCrop parses "LEFT,TOP,RIGHT,BOTTOM" or a single value for all sides.
func parseCrop(s string) (field.Crop, error) {
	if s == "" {
		return field.Crop{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 4 {
		return field.Crop{}, fmt.Errorf("invalid crop %q: expected N or LEFT,TOP,RIGHT,BOTTOM", s)
	}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return field.Crop{}, fmt.Errorf("invalid crop value %q", p)
		}
		values[i] = v
	}
	if len(values) == 1 {
		return field.Crop{Left: values[0], Top: values[0], Right: values[0], Bottom: values[0]}, nil
	}
	return field.Crop{Left: values[0], Top: values[1], Right: values[2], Bottom: values[3]}, nil
}

// parseBorder returns nil for an empty value.
func parseBorder(s string) (*colour.Colour, error) {
	if s == "" {
		return nil, nil
	}
	c, err := colour.ParseHex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid border colour: %w", err)
	}
	return &c, nil
}

func kernelList() string {
	return strings.Join(append(dither.KernelNames(), "none"), ", ")
}
