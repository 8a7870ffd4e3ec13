// Package paint is the drawing surface effects render to. The host supplies an
// ebiten-backed Painter; tests use Recorder.
package paint

import (
	"image/color"
	"math"
)

// Painter draws filled primitives in logical pixels.
type Painter interface {
	Size() (width, height int)
	FillRect(x, y, w, h float32, c color.NRGBA)
	FillCircle(cx, cy, r float32, c color.NRGBA)
}

// Fade scales c's alpha by f in [0,1].
func Fade(c color.NRGBA, f float64) color.NRGBA {
	if f <= 0 {
		c.A = 0
		return c
	}
	if f < 1 {
		c.A = uint8(math.Round(float64(c.A) * f))
	}
	return c
}

// WithAlpha replaces c's alpha with a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(clamp01(a) * 255))
	return c
}

// HSV converts hue (degrees), saturation and value (0-1) to an opaque color.
func HSV(h, s, v float64) color.NRGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.NRGBA{R: uint8((r + m) * 255), G: uint8((g + m) * 255), B: uint8((b + m) * 255), A: 255}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
