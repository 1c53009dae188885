// Package colour provides the colour value type used across tessera together with
// its perceptual (CIE L*a*b*) conversions, mixing and distance primitives.
package colour

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Colour is an immutable device sRGB colour with an alpha channel.
// All operations return new values.
type Colour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Lab is a colour in CIE L*a*b* space (D65 white point).
// L is in [0, 100]; a and b are roughly in [-128, 127] for in-gamut colours.
// A Lab value is not clamped and may describe a colour outside the sRGB gamut,
// which is what quantization errors look like.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

var (
	// Black is opaque black, the default content of a new colour field.
	Black = Colour{R: 0, G: 0, B: 0, A: 255}

	// White is opaque white.
	White = Colour{R: 255, G: 255, B: 255, A: 255}
)

// RGB creates an opaque colour from 8-bit channels.
func RGB(r, g, b uint8) Colour {
	return Colour{R: r, G: g, B: b, A: 255}
}

// FromColor converts any color.Color into a Colour (non-premultiplied).
func FromColor(c color.Color) Colour {
	if c == nil {
		return Black
	}
	if col, ok := c.(Colour); ok {
		return col
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Colour{R: n.R, G: n.G, B: n.B, A: n.A}
}

// RGBA implements color.Color. The receiver is treated as non-premultiplied.
func (c Colour) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// EffectiveColour returns the colour itself; it makes every Colour a HasColour.
func (c Colour) EffectiveColour() Colour {
	return c
}

// Hex returns the colour as "#rrggbb", or "#rrggbbaa" when not fully opaque.
func (c Colour) Hex() string {
	if c.A != 255 {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Colour) String() string {
	return c.Hex()
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading # is optional).
func ParseHex(s string) (Colour, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var digits [8]uint8
	for i := 0; i < len(hex) && i < len(digits); i++ {
		v, ok := hexDigit(hex[i])
		if !ok {
			return Colour{}, fmt.Errorf("invalid hex colour %q: bad digit %q", s, hex[i])
		}
		digits[i] = v
	}

	switch len(hex) {
	case 3:
		return RGB(digits[0]*17, digits[1]*17, digits[2]*17), nil
	case 6:
		return RGB(digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]), nil
	case 8:
		return Colour{
			R: digits[0]<<4 | digits[1],
			G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5],
			A: digits[6]<<4 | digits[7],
		}, nil
	default:
		return Colour{}, fmt.Errorf("invalid hex colour %q: expected 3, 6 or 8 digits", s)
	}
}

// MustParseHex is like ParseHex but panics on malformed input.
// Intended for package-level literals and tests.
func MustParseHex(s string) Colour {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// Lab converts the colour to CIE L*a*b*. The alpha channel is ignored.
func (c Colour) Lab() Lab {
	l, a, b := c.colorful().Lab()
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// FromLab converts a Lab triple back to device space, clamping every channel
// that falls outside the sRGB gamut. Out-of-gamut input is not an error.
func FromLab(lab Lab, alpha uint8) Colour {
	col := colorful.Lab(lab.L/100, lab.A/100, lab.B/100).Clamped()
	r, g, b := col.RGB255()
	return Colour{R: r, G: g, B: b, A: alpha}
}

// Mix interpolates linearly between c and other in Lab space.
// A ratio of 0 yields c and a ratio of 1 yields other; alpha is interpolated linearly.
func (c Colour) Mix(other Colour, ratio float64) Colour {
	from, to := c.Lab(), other.Lab()
	mixed := Lab{
		L: from.L + (to.L-from.L)*ratio,
		A: from.A + (to.A-from.A)*ratio,
		B: from.B + (to.B-from.B)*ratio,
	}
	alpha := float64(c.A) + (float64(other.A)-float64(c.A))*ratio
	return FromLab(mixed, clampByte(alpha))
}

// Darken reduces the Lab lightness proportionally: L' = L * (1 - amount).
// Amounts above 1 clamp to black; negative amounts lighten.
func (c Colour) Darken(amount float64) Colour {
	lab := c.Lab()
	lab.L *= 1 - amount
	return FromLab(lab, c.A)
}

func (c Colour) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
