// Package tier maps a capability snapshot plus the embedding page's requested
// parameters to the quality tier an effect should render at.
package tier

import (
	"math"

	"github.com/iburimskiy/backdrop/internal/capability"
)

const (
	// MaxCount is the hard ceiling on element count.
	MaxCount = 20
	// MinCount is the floor below which neither tiering nor degradation goes.
	MinCount = 3
	// LowEndCount caps count on low-end devices.
	LowEndCount = 5

	MobileCountScale = 0.6
	TabletCountScale = 0.8

	MobileSizeScale = 0.7
	MobileMinSize   = 15.0
	TabletSizeScale = 0.85
	TabletMinSize   = 18.0

	LowEndDurationScale = 1.5
	MobileDurationScale = 1.2

	// Drift is the desktop horizontal drift amplitude in pixels.
	Drift = 20.0
	// MaxDelay staggers animation starts, in seconds.
	MaxDelay = 5.0
)

// Range is a closed numeric interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Normalize returns r with Min <= Max.
func (r Range) Normalize() Range {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r
}

func (r Range) Scale(f float64) Range {
	return Range{Min: r.Min * f, Max: r.Max * f}.Normalize()
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Lerp maps t in [0,1) onto the range, clamped against rounding.
func (r Range) Lerp(t float64) float64 {
	v := r.Min + t*(r.Max-r.Min)
	return math.Min(math.Max(v, r.Min), r.Max)
}

// Base is what the embedding page asks for before tiering.
type Base struct {
	Count    int
	MinSize  float64
	MaxSize  float64
	Duration Range
}

// DefaultBase mirrors the light theme's stock request.
func DefaultBase() Base {
	return Base{Count: 15, MinSize: 20, MaxSize: 80, Duration: Range{Min: 15, Max: 25}}
}

// Tier is the resolved parameter bundle for the current capability class.
type Tier struct {
	Count         int
	Size          Range
	Duration      Range
	Drift         Range
	Delay         Range
	ReducedMotion bool
}

// Resolve is deterministic and applies its steps in a fixed order.
func Resolve(snap capability.Snapshot, base Base) Tier {
	count := float64(base.Count)
	switch {
	case snap.IsLowEndDevice:
		count = math.Min(count, LowEndCount)
	case snap.IsMobile:
		count = math.Floor(count * MobileCountScale)
	case snap.IsTablet:
		count = math.Floor(count * TabletCountScale)
	}
	n := int(count)
	if n > MaxCount {
		n = MaxCount
	}
	if n < MinCount {
		n = MinCount
	}

	size := Range{Min: math.Max(base.MinSize, 0), Max: math.Max(base.MaxSize, 0)}.Normalize()
	sizeScale := 1.0
	switch {
	case snap.IsMobile:
		sizeScale = MobileSizeScale
		size = scaleFloor(size, MobileSizeScale, MobileMinSize)
	case snap.IsTablet:
		sizeScale = TabletSizeScale
		size = scaleFloor(size, TabletSizeScale, TabletMinSize)
	}

	duration := Range{Min: math.Max(base.Duration.Min, 0), Max: math.Max(base.Duration.Max, 0)}.Normalize()
	switch {
	case snap.IsLowEndDevice:
		duration = duration.Scale(LowEndDurationScale)
	case snap.IsMobile:
		duration = duration.Scale(MobileDurationScale)
	}

	drift := Range{Min: -Drift * sizeScale, Max: Drift * sizeScale}
	if snap.ReducedMotion {
		drift = Range{}
	}

	return Tier{
		Count:         n,
		Size:          size,
		Duration:      duration,
		Drift:         drift,
		Delay:         Range{Min: 0, Max: MaxDelay},
		ReducedMotion: snap.ReducedMotion,
	}
}

func scaleFloor(r Range, f, floor float64) Range {
	return Range{
		Min: math.Max(r.Min*f, floor),
		Max: math.Max(r.Max*f, floor),
	}.Normalize()
}
