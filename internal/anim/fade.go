package anim

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	fadeFrequency = 6.0
	fadeDamping   = 1.0
	settleEpsilon = 0.002
)

// Fade eases a layer opacity toward a target with a critically damped spring.
type Fade struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
}

func NewFade(fps int, initial float64) *Fade {
	if fps <= 0 {
		fps = 60
	}
	return &Fade{
		spring: harmonica.NewSpring(harmonica.FPS(fps), fadeFrequency, fadeDamping),
		pos:    initial,
		target: initial,
	}
}

func (f *Fade) SetTarget(v float64) { f.target = clamp01(v) }

func (f *Fade) Target() float64 { return f.target }

// Jump moves straight to v and stops the spring.
func (f *Fade) Jump(v float64) {
	f.target = clamp01(v)
	f.pos, f.vel = f.target, 0
}

// Step advances one frame and returns the new opacity.
func (f *Fade) Step() float64 {
	if f.Settled() {
		f.pos, f.vel = f.target, 0
		return f.pos
	}
	f.pos, f.vel = f.spring.Update(f.pos, f.vel, f.target)
	return f.Value()
}

// Value is the current opacity clamped to [0,1].
func (f *Fade) Value() float64 { return clamp01(f.pos) }

func (f *Fade) Settled() bool {
	return math.Abs(f.pos-f.target) < settleEpsilon && math.Abs(f.vel) < settleEpsilon
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
