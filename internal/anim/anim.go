// Package anim holds declarative, time-based animation descriptors. An Animation is
// built once per element and sampled by the renderer; nothing about an element is
// mutated frame to frame.
package anim

import (
	"math"
	"time"
)

// Keyframes names a motion curve.
type Keyframes int

const (
	// Float rises from below the viewport to above it, swaying by Drift and fading
	// in and out at the ends.
	Float Keyframes = iota
	// FloatSimple rises straight up at constant opacity. Used under reduced motion.
	FloatSimple
)

func (k Keyframes) String() string {
	switch k {
	case Float:
		return "bubble-float"
	case FloatSimple:
		return "bubble-float-simple"
	}
	return "unknown"
}

const (
	fadeInEnd    = 0.1
	fadeOutStart = 0.9
)

// Animation is an infinite, looping keyframe animation.
type Animation struct {
	Keyframes Keyframes
	Duration  time.Duration
	Delay     time.Duration
	// Drift is the peak horizontal offset in pixels.
	Drift float64
}

// Pose is the sampled state of an Animation.
type Pose struct {
	// Rise is vertical progress: 0 is fully below the viewport, 1 fully above.
	Rise    float64
	OffsetX float64
	Opacity float64
	Visible bool
}

// Sample evaluates the animation at elapsed time since mount. It is a pure function.
func (a Animation) Sample(elapsed time.Duration) Pose {
	t := elapsed - a.Delay
	if t < 0 || a.Duration <= 0 {
		return Pose{}
	}
	cycle := float64(t%a.Duration) / float64(a.Duration)
	p := EaseInOut(cycle)

	if a.Keyframes == FloatSimple {
		return Pose{Rise: p, Opacity: 1, Visible: true}
	}

	opacity := 1.0
	switch {
	case cycle < fadeInEnd:
		opacity = cycle / fadeInEnd
	case cycle > fadeOutStart:
		opacity = (1 - cycle) / (1 - fadeOutStart)
	}
	return Pose{
		Rise:    p,
		OffsetX: a.Drift * math.Sin(math.Pi*cycle),
		Opacity: opacity,
		Visible: true,
	}
}

// EaseInOut is a smoothstep approximation of CSS ease-in-out on [0,1].
func EaseInOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
