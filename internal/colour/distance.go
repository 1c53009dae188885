package colour

import "math"

// HasColour is implemented by anything that exposes an effective colour:
// raw colours, tile types whose colour comes from sampled images, and so on.
// Distance and quantization functions only ever see values through it.
type HasColour interface {
	EffectiveColour() Colour
}

// DistanceFunc measures how far apart two colours look.
// Implementations must be symmetric and return 0 for identical colours.
type DistanceFunc func(a, b HasColour) float64

// ErrorFunc computes the quantization error left when source is replaced by chosen.
type ErrorFunc func(source, chosen HasColour) Lab

// EuclideanLab is the standard distance: sqrt(dL² + da² + db²) in Lab space.
func EuclideanLab(a, b HasColour) float64 {
	la := a.EffectiveColour().Lab()
	lb := b.EffectiveColour().Lab()
	return la.Distance(lb)
}

// LabError is the standard quantization error: source minus chosen, per Lab channel.
// The result is not clamped and is generally not a valid colour by itself.
func LabError(source, chosen HasColour) Lab {
	return source.EffectiveColour().Lab().Sub(chosen.EffectiveColour().Lab())
}

// AddErrorWithRatio returns c shifted by err*ratio in Lab space, clamped back to sRGB.
// This is the error injection step of error diffusion.
func AddErrorWithRatio(c Colour, err Lab, ratio float64) Colour {
	return FromLab(c.Lab().Add(err.Scale(ratio)), c.A)
}

// Scale multiplies every Lab channel of c by factor, clamping on the way back.
func Scale(c Colour, factor float64) Colour {
	return FromLab(c.Lab().Scale(factor), c.A)
}

// Add returns the component-wise sum of two Lab triples.
func (l Lab) Add(o Lab) Lab {
	return Lab{L: l.L + o.L, A: l.A + o.A, B: l.B + o.B}
}

// Sub returns the component-wise difference l - o.
func (l Lab) Sub(o Lab) Lab {
	return Lab{L: l.L - o.L, A: l.A - o.A, B: l.B - o.B}
}

// Scale multiplies every component by f.
func (l Lab) Scale(f float64) Lab {
	return Lab{L: l.L * f, A: l.A * f, B: l.B * f}
}

// Distance is the Euclidean distance between two Lab triples.
func (l Lab) Distance(o Lab) float64 {
	d := l.Sub(o)
	return math.Sqrt(d.L*d.L + d.A*d.A + d.B*d.B)
}
