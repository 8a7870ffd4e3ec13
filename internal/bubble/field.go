// Package bubble renders the light theme's floating bubbles. Element parameters are
// computed once; motion is a declarative animation sampled at draw time, so the
// field has no per-frame position state.
package bubble

import (
	"image/color"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/anim"
	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/loop"
	"github.com/iburimskiy/backdrop/internal/paint"
	"github.com/iburimskiy/backdrop/internal/perf"
	"github.com/iburimskiy/backdrop/internal/tier"
)

const (
	// ResizeDebounce delays re-tiering after the last viewport change.
	ResizeDebounce = 150 * time.Millisecond
	// PerformanceCheckInterval is how often a low-end field looks at frame timing.
	PerformanceCheckInterval = 5 * time.Second
	// SlowFPS is the mean frame rate below which a low-end field sheds an element.
	SlowFPS = perf.ReduceBelowFPS
)

// Options configure a Field. Zero values pick defaults.
type Options struct {
	Base     tier.Base
	Palette  []color.NRGBA
	Override string
	FPS      int
	Clock    loop.Clock
	Rand     *rand.Rand
	Logger   *zap.Logger
}

// Field owns the visible bubbles exclusively.
type Field struct {
	prober   capability.Prober
	viewport *capability.Viewport
	clock    loop.Clock
	rng      *rand.Rand
	log      *zap.Logger

	base     tier.Base
	palette  []color.NRGBA
	override string

	sched          *loop.Scheduler
	resize         *loop.Debouncer
	removeListener func()
	perfCheck      loop.ID
	monitor        *perf.Monitor
	fade           *anim.Fade

	snap       capability.Snapshot
	tier       tier.Tier
	elements   []Element
	limit      int
	seq        int
	generation int
	mounted    bool
	mountedAt  time.Time
}

func New(prober capability.Prober, viewport *capability.Viewport, opts Options) *Field {
	if opts.Base == (tier.Base{}) {
		opts.Base = tier.DefaultBase()
	}
	if opts.Clock == nil {
		opts.Clock = loop.SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if viewport == nil {
		viewport = capability.NewViewport()
	}
	return &Field{
		prober:   prober,
		viewport: viewport,
		clock:    opts.Clock,
		rng:      opts.Rand,
		log:      opts.Logger.Named("bubble"),
		base:     opts.Base,
		palette:  opts.Palette,
		override: opts.Override,
		monitor:  perf.NewMonitor(perf.DefaultWindow),
		fade:     anim.NewFade(opts.FPS, paint.OpacityFromClass(opts.Override)),
	}
}

// Mount probes the device, generates the elements and attaches listeners.
// Mounting a mounted field does nothing.
func (f *Field) Mount() {
	if f.mounted {
		return
	}
	f.mounted = true
	f.sched = loop.NewScheduler(f.clock)
	f.resize = loop.NewDebouncer(f.sched, ResizeDebounce, f.refresh)
	f.mountedAt = f.clock.Now()
	f.monitor.Reset()
	f.limit = 0
	f.elements = nil

	f.refresh()
	f.removeListener = f.viewport.OnChange(f.resize.Trigger)
}

// Unmount releases listeners, timers and elements. It is idempotent.
func (f *Field) Unmount() {
	if !f.mounted {
		return
	}
	f.mounted = false
	if f.removeListener != nil {
		f.removeListener()
		f.removeListener = nil
	}
	f.resize.Stop()
	f.sched.Close()
	f.perfCheck = 0
	f.elements = nil
}

func (f *Field) Mounted() bool { return f.mounted }

// Tick runs due timers and feeds the frame-timing monitor. Call once per host frame.
func (f *Field) Tick() {
	if !f.mounted {
		return
	}
	f.monitor.Frame(f.clock.Now())
	f.sched.Tick()
	f.fade.Step()
}

// SetBase changes the requested parameters. Elements are regenerated only when
// the resolved count changes.
func (f *Field) SetBase(b tier.Base) {
	f.base = b
	if f.mounted {
		f.refresh()
	}
}

// SetPalette affects elements generated from now on.
func (f *Field) SetPalette(p []color.NRGBA) { f.palette = p }

// SetOverride applies a visual override class such as "opacity-0". A mounted
// field fades to it; an unmounted one starts at it. Never regenerates or restarts
// the animation.
func (f *Field) SetOverride(class string) {
	f.override = class
	if !f.mounted {
		f.fade.Jump(paint.OpacityFromClass(class))
		return
	}
	f.fade.SetTarget(paint.OpacityFromClass(class))
}

func (f *Field) Override() string { return f.override }

// Opacity is the current layer opacity.
func (f *Field) Opacity() float64 { return f.fade.Value() }

func (f *Field) Tier() tier.Tier               { return f.tier }
func (f *Field) Snapshot() capability.Snapshot { return f.snap }

// Generation counts wholesale regenerations since construction.
func (f *Field) Generation() int { return f.generation }

// Elements returns a copy of the current elements.
func (f *Field) Elements() []Element {
	out := make([]Element, len(f.elements))
	copy(out, f.elements)
	return out
}

// refresh re-probes, re-tiers and regenerates if the effective count moved.
func (f *Field) refresh() {
	if !f.mounted {
		return
	}
	f.snap = f.prober.Probe()
	f.tier = tier.Resolve(f.snap, f.base)

	if f.snap.IsLowEndDevice && f.perfCheck == 0 {
		f.perfCheck = f.sched.Every(PerformanceCheckInterval, f.checkPerformance)
	} else if !f.snap.IsLowEndDevice && f.perfCheck != 0 {
		f.sched.Cancel(f.perfCheck)
		f.perfCheck = 0
	}
	// Shedding only applies while the device is low end.
	if !f.snap.IsLowEndDevice {
		f.limit = 0
	}

	n := f.effectiveCount()
	if f.elements != nil && n == len(f.elements) {
		return
	}
	f.regenerate(n)
}

func (f *Field) effectiveCount() int {
	n := f.tier.Count
	if f.limit > 0 && f.limit < n {
		n = f.limit
	}
	return n
}

func (f *Field) regenerate(n int) {
	elements := make([]Element, n)
	for i := range elements {
		f.seq++
		elements[i] = NewElement(elementID(f.seq), f.tier, f.palette, f.rng)
	}
	f.elements = elements
	f.generation++
	f.log.Debug("bubbles regenerated",
		zap.Int("count", n),
		zap.Int("viewport_width", f.snap.ViewportWidth),
		zap.Bool("low_end", f.snap.IsLowEndDevice),
		zap.Bool("reduced_motion", f.tier.ReducedMotion))
}

// checkPerformance drops one element when the mean frame rate stays low.
func (f *Field) checkPerformance() {
	if !f.mounted {
		return
	}
	fps := f.monitor.FPS()
	if fps <= 0 || fps >= SlowFPS || len(f.elements) <= tier.MinCount {
		return
	}
	f.elements = f.elements[:len(f.elements)-1]
	f.limit = len(f.elements)
	f.log.Info("low frame rate, shedding a bubble",
		zap.Float64("fps", fps),
		zap.Int("remaining", len(f.elements)))
}

// Draw renders every visible element at its animation pose for the current time.
func (f *Field) Draw(p paint.Painter) {
	if !f.mounted || p == nil {
		return
	}
	layer := f.fade.Value()
	if layer <= 0 {
		return
	}
	w, h := p.Size()
	fw, fh := float64(w), float64(h)
	elapsed := f.clock.Now().Sub(f.mountedAt)

	for i := range f.elements {
		el := &f.elements[i]
		pose := el.Animation.Sample(elapsed)
		if !pose.Visible {
			continue
		}
		alpha := pose.Opacity * layer
		if alpha <= 0 {
			continue
		}
		r := el.Size / 2
		cx := el.X/100*fw + r + pose.OffsetX
		cy := fh + r - pose.Rise*(fh+2*r)
		p.FillCircle(float32(cx), float32(cy), float32(r), paint.Fade(el.Color, alpha))
	}
}
