package glitch

import (
	"image/color"
	"math"
	"time"

	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/paint"
	"github.com/iburimskiy/backdrop/internal/perf"
)

const (
	glowRings     = 10
	gradientBands = 24
	scanlineStep  = 3

	// Dot pattern standing in for procedural noise. Two offset lattices.
	fallbackStepA = 8
	fallbackStepB = 12
)

// NoiseLayer composites the noise generator's surface at the given opacity.
type NoiseLayer interface {
	DrawNoise(opacity float64)
}

// glow is one drifting radial gradient. Positions are fractions of the viewport.
type glow struct {
	x, y   float64
	radius float64 // fraction of the larger viewport side
	period float64 // drift period in seconds
}

var glows = [3]glow{
	{x: 0.10, y: 0.20, radius: 0.55, period: 18},
	{x: 0.90, y: 0.80, radius: 0.45, period: 26},
	{x: 0.50, y: 0.50, radius: 0.40, period: 32},
}

// silhouette approximates the central figure as overlapping discs, in units of
// 0.4 * the smaller viewport side.
var silhouette = [...]struct{ x, y, r float64 }{
	{0, 0, 0.55},
	{-0.45, -0.2, 0.35},
	{0.45, -0.15, 0.38},
	{-0.2, 0.45, 0.3},
	{0.25, 0.4, 0.32},
	{0, -0.55, 0.25},
}

// GradientOpacities returns the three gradient strengths for an intensity.
func GradientOpacities(intensity noise.Intensity, mobile bool) (g1, g2, g3 float64) {
	switch intensity {
	case noise.Subtle:
		g1, g2, g3 = 0.06, 0.04, 0.25
	case noise.Intense:
		g1, g2, g3 = 0.12, 0.08, 0.45
	default:
		g1, g2, g3 = 0.08, 0.06, 0.35
	}
	if mobile {
		g1 *= 0.8
		g2 *= 0.8
		g3 *= 0.9
	}
	return g1, g2, g3
}

// Draw renders every layer back to front. nl may be nil, in which case the noise
// layer is skipped unless the static pattern is in use.
func (b *Background) Draw(p paint.Painter, nl NoiseLayer) {
	if !b.mounted || p == nil {
		return
	}
	layer := b.layerOpacity()
	if layer <= 0 {
		return
	}
	w, h := p.Size()
	fw, fh := float64(w), float64(h)
	if b.failure != nil {
		drawErrorGradient(p, fw, fh, layer)
		return
	}

	now := b.clock.Now()
	elapsed := now.Sub(b.mountedAt).Seconds()
	motion := !b.snap.ReducedMotion && b.mode != perf.ModeMinimal
	op := b.Opacities()

	p.FillRect(0, 0, float32(fw), float32(fh), paint.Fade(b.palette.Background, layer))
	b.drawGlows(p, fw, fh, elapsed, motion, layer)
	b.drawSilhouette(p, fw, fh, op.Silhouette*layer)

	if b.mode != perf.ModeMinimal {
		if b.Fallback() {
			drawDotPattern(p, fw, fh, op.Noise*layer)
		} else if nl != nil {
			nl.DrawNoise(op.Noise * layer)
		}
	}
	drawScanlines(p, fw, fh, paint.WithAlpha(b.palette.Accent2, 0.1*op.Scanline*layer))

	if motion {
		b.drawStrips(p, fw, fh, now, layer)
		b.drawParticles(p, fw, fh, now, layer)
	}
}

func (b *Background) drawGlows(p paint.Painter, w, h, elapsed float64, motion bool, layer float64) {
	g1, g2, g3 := GradientOpacities(b.intensity, b.snap.IsMobile)
	colors := [3]color.NRGBA{b.palette.Accent3, b.palette.Accent2, b.palette.Accent1}
	strength := [3]float64{g1, g2, g2}
	side := math.Max(w, h)

	for i, g := range glows {
		cx, cy := g.x*w, g.y*h
		if motion {
			t := elapsed / g.period
			cx += b.simplex.Eval2(t, float64(i)*10) * 0.05 * w
			cy += b.simplex.Eval2(float64(i)*10, t) * 0.05 * h
		}
		ring := strength[i] * layer / glowRings
		for k := glowRings; k >= 1; k-- {
			r := g.radius * side * float64(k) / glowRings
			p.FillCircle(float32(cx), float32(cy), float32(r), paint.WithAlpha(colors[i], ring))
		}
	}

	// Top-down darkening into the background color.
	band := h / gradientBands
	for i := 0; i < gradientBands; i++ {
		a := g3 * layer * (1 - float64(i)/gradientBands)
		p.FillRect(0, float32(float64(i)*band), float32(w), float32(band+1), paint.WithAlpha(color.NRGBA{}, a))
	}
}

func (b *Background) drawSilhouette(p paint.Painter, w, h, alpha float64) {
	if alpha <= 0 {
		return
	}
	offset := b.jitterOffset
	if b.jitterActive {
		offset *= 2
	}
	unit := 0.4 * math.Min(w, h)
	cx, cy := w/2, h/2
	channels := [3]struct {
		c      color.NRGBA
		dx, dy float64
	}{
		{b.palette.Accent1, -offset, 0},
		{b.palette.Accent2, offset, 0},
		{b.palette.Accent3, 0, offset / 2},
	}
	for _, ch := range channels {
		c := paint.WithAlpha(ch.c, alpha)
		for _, d := range silhouette {
			p.FillCircle(float32(cx+d.x*unit+ch.dx), float32(cy+d.y*unit+ch.dy), float32(d.r*unit), c)
		}
	}
}

func drawDotPattern(p paint.Painter, w, h, alpha float64) {
	if alpha <= 0 {
		return
	}
	white := color.NRGBA{R: 255, G: 255, B: 255}
	a := paint.WithAlpha(white, 0.1*alpha)
	for y := float64(fallbackStepA) / 4; y < h; y += fallbackStepA {
		for x := float64(fallbackStepA) / 4; x < w; x += fallbackStepA {
			p.FillRect(float32(x), float32(y), 1, 1, a)
		}
	}
	a = paint.WithAlpha(white, 0.05*alpha)
	for y := float64(fallbackStepB) * 3 / 4; y < h; y += fallbackStepB {
		for x := float64(fallbackStepB) * 3 / 4; x < w; x += fallbackStepB {
			p.FillRect(float32(x), float32(y), 1, 1, a)
		}
	}
}

func drawScanlines(p paint.Painter, w, h float64, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	for y := 1.0; y < h; y += scanlineStep {
		p.FillRect(0, float32(y), float32(w), 1, c)
	}
}

// drawErrorGradient is the last-resort static background.
func drawErrorGradient(p paint.Painter, w, h, layer float64) {
	from := color.NRGBA{R: 10, G: 2, B: 16, A: 204}
	to := color.NRGBA{R: 20, G: 5, B: 30, A: 153}
	band := h / gradientBands
	for i := 0; i < gradientBands; i++ {
		c := Blend(from, to, float64(i)/(gradientBands-1))
		p.FillRect(0, float32(float64(i)*band), float32(w), float32(band+1), paint.Fade(c, layer))
	}
}

// StripPose is where a strip is drawn and how visible it is at now. A strip
// sweeps from one width left of its anchor to 1.2 widths right of it.
func StripPose(s Strip, now time.Time) (dx, alpha float64, live bool) {
	if s.Lifetime <= 0 {
		return 0, 0, false
	}
	t := float64(now.Sub(s.Born)) / float64(s.Lifetime)
	if t < 0 || t > 1 {
		return 0, 0, false
	}
	dx = -s.Width + 2.2*s.Width*t
	alpha = s.Opacity * math.Sin(math.Pi*t)
	return dx, alpha, true
}

func (b *Background) drawStrips(p paint.Painter, w, h float64, now time.Time, layer float64) {
	for _, s := range b.strips {
		dx, alpha, live := StripPose(s, now)
		if !live || alpha <= 0 {
			continue
		}
		x := s.Left/100*w + dx
		y := s.Top / 100 * h
		p.FillRect(float32(x), float32(y), float32(s.Width), float32(s.Height),
			paint.WithAlpha(paint.HSV(s.Hue, 0.8, 1), alpha*layer))
	}
}

// ParticleOffset is a particle's displacement along its direction at elapsed.
// Before its delay the particle rests at its anchor.
func ParticleOffset(pt Particle, elapsed time.Duration) (dx, dy, pulse float64) {
	t := elapsed - pt.Delay
	if t < 0 || pt.Period <= 0 {
		return 0, 0, 1
	}
	phase := 2 * math.Pi * float64(t) / float64(pt.Period)
	d := pt.Distance * math.Sin(phase)
	rad := pt.Direction * math.Pi / 180
	return math.Cos(rad) * d, math.Sin(rad) * d, 0.7 + 0.3*math.Cos(phase)
}

func (b *Background) drawParticles(p paint.Painter, w, h float64, now time.Time, layer float64) {
	elapsed := now.Sub(b.mountedAt)
	for _, pt := range b.particles {
		dx, dy, pulse := ParticleOffset(pt, elapsed)
		x := pt.X/100*w + dx
		y := pt.Y/100*h + dy
		p.FillCircle(float32(x), float32(y), float32(pt.Size/2), paint.WithAlpha(pt.Color, pt.Opacity*pulse*layer))
	}
}
