// Package glitch is the dark theme's composition: neon gradients, a chromatic
// silhouette, procedural noise, scanlines, glitch strips and floating particles.
package glitch

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/loop"
	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/paint"
	"github.com/iburimskiy/backdrop/internal/perf"
)

const (
	ResizeDebounce           = 150 * time.Millisecond
	PerformanceCheckInterval = 5 * time.Second

	// NarrowMobileWidth is the width below which mobile devices get no particles.
	NarrowMobileWidth = 480

	// StripCleanupSlack is added to a strip's lifetime before it is removed.
	StripCleanupSlack = 100 * time.Millisecond
)

// Options configure a Background. Zero values pick defaults.
type Options struct {
	Intensity noise.Intensity
	Palette   *Palette
	Override  string
	Modulator noise.Modulator
	Clock     loop.Clock
	Rand      *rand.Rand
	Logger    *zap.Logger
}

// Strip is a short-lived horizontal glitch bar. Position is in percent of the
// viewport, size in logical pixels.
type Strip struct {
	ID       int
	Left     float64
	Top      float64
	Width    float64
	Height   float64
	Opacity  float64
	Hue      float64
	Born     time.Time
	Lifetime time.Duration
}

// Particle floats back and forth along one direction. Position is in percent.
type Particle struct {
	X, Y      float64
	Size      float64
	Color     color.NRGBA
	Opacity   float64
	Delay     time.Duration
	Period    time.Duration
	Direction float64 // degrees
	Distance  float64
}

// Background owns its scheduler, noise generator and every transient element.
type Background struct {
	prober    capability.Prober
	viewport  *capability.Viewport
	clock     loop.Clock
	rng       *rand.Rand
	log       *zap.Logger
	intensity noise.Intensity
	palette   Palette
	override  string
	simplex   opensimplex.Noise

	noise          *noise.Generator
	sched          *loop.Scheduler
	resize         *loop.Debouncer
	removeListener func()
	monitor        *perf.Monitor

	snap         capability.Snapshot
	mode         perf.Mode
	failure      error
	mounted      bool
	mountedAt    time.Time
	particles    []Particle
	strips       []Strip
	stripTimers  map[loop.ID]struct{}
	stripSeq     int
	jitterTimer  loop.ID
	jitterEnd    loop.ID
	glitchTimer  loop.ID
	perfCheck    loop.ID
	jitterOffset float64
	jitterActive bool
}

func New(surface noise.Surface, prober capability.Prober, viewport *capability.Viewport, opts Options) *Background {
	if opts.Intensity == "" {
		opts.Intensity = noise.Normal
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
	if viewport == nil {
		viewport = capability.NewViewport()
	}
	palette := DefaultPalette()
	if opts.Palette != nil {
		palette = *opts.Palette
	}
	return &Background{
		prober:    prober,
		viewport:  viewport,
		clock:     opts.Clock,
		rng:       opts.Rand,
		log:       opts.Logger.Named("glitch"),
		intensity: opts.Intensity,
		palette:   palette,
		override:  opts.Override,
		simplex:   opensimplex.New(opts.Rand.Int63()),
		noise: noise.New(surface, prober, viewport, noise.Options{
			Intensity: opts.Intensity,
			Modulator: opts.Modulator,
			Clock:     opts.Clock,
			Rand:      opts.Rand,
			Logger:    opts.Logger,
		}),
		monitor:     perf.NewMonitor(perf.DefaultWindow),
		stripTimers: make(map[loop.ID]struct{}),
	}
}

// Mount probes the device, starts the noise generator and schedules jitter and
// strips. A failed probe leaves only the static error gradient.
func (b *Background) Mount() {
	if b.mounted {
		return
	}
	b.mounted = true
	b.sched = loop.NewScheduler(b.clock)
	b.resize = loop.NewDebouncer(b.sched, ResizeDebounce, b.refresh)
	b.mountedAt = b.clock.Now()
	b.monitor.Reset()
	b.mode = perf.ModeNormal
	b.failure = nil

	if !b.probe() {
		return
	}
	b.noise.Mount()
	if b.noise.Unavailable() {
		b.log.Warn("drawing context not supported, using the static noise pattern")
	}
	b.refresh()
	b.removeListener = b.viewport.OnChange(b.resize.Trigger)
}

// probe takes a capability snapshot, recording a failure instead of panicking.
func (b *Background) probe() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(fmt.Errorf("capability detection panicked: %v", r))
			ok = false
		}
	}()
	if b.prober == nil {
		b.fail(errors.New("no capability prober"))
		return false
	}
	b.snap = b.prober.Probe()
	return true
}

func (b *Background) fail(err error) {
	b.failure = err
	b.log.Error("glitch background failed, rendering static fallback", zap.Error(err))
}

// refresh re-probes and rebuilds particles, then starts or stops the motion
// timers to match the reduced-motion preference.
func (b *Background) refresh() {
	if !b.mounted || b.failure != nil {
		return
	}
	if !b.probe() {
		return
	}
	b.particles = b.generateParticles()

	if b.snap.ReducedMotion {
		b.stopMotion()
		return
	}
	if b.jitterTimer == 0 && b.jitterEnd == 0 {
		b.scheduleJitter()
	}
	if b.glitchTimer == 0 {
		b.scheduleStrip()
	}
	if b.perfCheck == 0 && !b.Fallback() {
		b.perfCheck = b.sched.Every(PerformanceCheckInterval, b.checkPerformance)
	}
}

func (b *Background) stopMotion() {
	for _, id := range []loop.ID{b.jitterTimer, b.jitterEnd, b.glitchTimer, b.perfCheck} {
		b.sched.Cancel(id)
	}
	b.jitterTimer, b.jitterEnd, b.glitchTimer, b.perfCheck = 0, 0, 0, 0
	b.jitterActive = false
	b.mode = perf.ModeNormal
}

// ParticleCount is how many particles a viewport gets.
func ParticleCount(snap capability.Snapshot) int {
	if snap.ReducedMotion || (snap.IsMobile && snap.ViewportWidth < NarrowMobileWidth) {
		return 0
	}
	area := snap.ViewportWidth * snap.ViewportHeight
	if snap.IsMobile {
		return min(20, area/30000)
	}
	return min(80, area/15000)
}

func (b *Background) generateParticles() []Particle {
	n := ParticleCount(b.snap)
	if n == 0 {
		return nil
	}
	mobile := b.snap.IsMobile
	pick := func(m, d float64) float64 {
		if mobile {
			return m
		}
		return d
	}
	out := make([]Particle, n)
	for i := range out {
		c := b.palette.Accent1
		if b.rng.Float64() > 0.5 {
			c = b.palette.Accent2
		}
		out[i] = Particle{
			X:         b.rng.Float64() * 100,
			Y:         b.rng.Float64() * 100,
			Size:      b.rng.Float64()*pick(2, 3) + 1,
			Color:     c,
			Opacity:   b.rng.Float64()*pick(0.6, 0.8) + pick(0.1, 0.2),
			Delay:     seconds(b.rng.Float64() * pick(5, 10)),
			Period:    seconds(b.rng.Float64()*pick(6, 8) + pick(8, 12)),
			Direction: b.rng.Float64() * 360,
			Distance:  b.rng.Float64()*pick(20, 30) + pick(5, 10),
		}
	}
	return out
}

// jitterDelay is the wait before the next chromatic jitter.
func (b *Background) jitterDelay() time.Duration {
	if b.snap.IsMobile {
		return millis(2000 + b.rng.Float64()*3000)
	}
	return millis(1200 + b.rng.Float64()*2200)
}

func (b *Background) scheduleJitter() {
	b.jitterTimer = b.sched.After(b.jitterDelay(), func() {
		b.jitterTimer = 0
		if !b.mounted || b.snap.ReducedMotion {
			return
		}
		b.triggerJitter()
		b.scheduleJitter()
	})
}

func (b *Background) triggerJitter() {
	base, floor, span, minDur := 6.0, 2.0, 400.0, 250.0
	if b.snap.IsMobile {
		base, floor, span, minDur = 3, 1, 200, 150
	}
	b.jitterOffset = b.rng.Float64()*base + floor
	b.jitterActive = true

	b.sched.Cancel(b.jitterEnd)
	b.jitterEnd = b.sched.After(millis(minDur+b.rng.Float64()*span), func() {
		b.jitterActive = false
		b.jitterEnd = 0
	})
}

// stripDelay is the wait before the next glitch strip.
func (b *Background) stripDelay() time.Duration {
	if b.snap.IsMobile {
		return millis(500 + b.rng.Float64()*2000)
	}
	return millis(350 + b.rng.Float64()*1400)
}

func (b *Background) scheduleStrip() {
	b.glitchTimer = b.sched.After(b.stripDelay(), func() {
		b.glitchTimer = 0
		if !b.mounted || b.snap.ReducedMotion {
			return
		}
		if b.mode != perf.ModeMinimal {
			b.spawnStrip()
		}
		b.scheduleStrip()
	})
}

func (b *Background) spawnStrip() {
	mobile := b.snap.IsMobile
	pick := func(m, d float64) float64 {
		if mobile {
			return m
		}
		return d
	}
	b.stripSeq++
	s := Strip{
		ID:       b.stripSeq,
		Width:    b.rng.Float64()*pick(100, 200) + pick(30, 50),
		Height:   b.rng.Float64()*pick(4, 8) + 2,
		Top:      b.rng.Float64() * 100,
		Left:     b.rng.Float64()*120 - 10,
		Opacity:  b.rng.Float64()*pick(0.6, 0.8) + pick(0.1, 0.2),
		Hue:      b.rng.Float64() * 360,
		Born:     b.clock.Now(),
		Lifetime: millis(b.rng.Float64()*pick(600, 800) + pick(300, 400)),
	}
	b.strips = append(b.strips, s)

	var timer loop.ID
	timer = b.sched.After(s.Lifetime+StripCleanupSlack, func() {
		delete(b.stripTimers, timer)
		b.removeStrip(s.ID)
	})
	b.stripTimers[timer] = struct{}{}
}

func (b *Background) removeStrip(id int) {
	for i := range b.strips {
		if b.strips[i].ID == id {
			b.strips = append(b.strips[:i], b.strips[i+1:]...)
			return
		}
	}
}

func (b *Background) checkPerformance() {
	if !b.mounted {
		return
	}
	fps := b.monitor.FPS()
	next := perf.NextMode(b.mode, fps)
	if next == b.mode {
		return
	}
	fields := []zap.Field{zap.Float64("fps", fps), zap.Stringer("from", b.mode), zap.Stringer("to", next)}
	if next == perf.ModeNormal {
		b.log.Info("frame rate recovered, restoring effects", fields...)
	} else {
		b.log.Warn("low frame rate, reducing effects", fields...)
	}
	b.mode = next
}

// Tick runs timers, the noise generator and the frame-timing monitor. Call once
// per host frame.
func (b *Background) Tick() {
	if !b.mounted {
		return
	}
	b.monitor.Frame(b.clock.Now())
	b.sched.Tick()
	if b.mode != perf.ModeMinimal {
		b.noise.Tick()
	}
}

// Unmount stops every timer, drops strips and particles and tears the noise
// generator down. It is idempotent.
func (b *Background) Unmount() {
	if !b.mounted {
		return
	}
	b.mounted = false
	if b.removeListener != nil {
		b.removeListener()
		b.removeListener = nil
	}
	b.resize.Stop()
	for id := range b.stripTimers {
		b.sched.Cancel(id)
		delete(b.stripTimers, id)
	}
	b.sched.Close()
	b.jitterTimer, b.jitterEnd, b.glitchTimer, b.perfCheck = 0, 0, 0, 0
	b.jitterActive = false
	b.strips = nil
	b.particles = nil
	b.noise.Unmount()
}

func (b *Background) Mounted() bool { return b.mounted }

// SetOverride applies a visual override class; only opacity classes have an effect.
func (b *Background) SetOverride(class string) { b.override = class }

func (b *Background) Override() string { return b.override }

// SetPalette takes effect immediately for drawn layers and for particles
// generated from now on.
func (b *Background) SetPalette(p Palette) { b.palette = p }

func (b *Background) Palette() Palette { return b.palette }

func (b *Background) Snapshot() capability.Snapshot { return b.snap }

func (b *Background) Mode() perf.Mode { return b.mode }

// Failure is the error that forced the static gradient, if any.
func (b *Background) Failure() error { return b.failure }

// Fallback reports that noise is drawn with the static dot pattern instead of the
// generator.
func (b *Background) Fallback() bool {
	return b.noise.Unavailable() || b.noise.Disabled()
}

// Noise exposes the generator so hosts can composite its surface.
func (b *Background) Noise() *noise.Generator { return b.noise }

func (b *Background) JitterActive() bool { return b.jitterActive }

// ChromaticOffset is the last jitter's channel separation in pixels.
func (b *Background) ChromaticOffset() float64 { return b.jitterOffset }

func (b *Background) Particles() []Particle {
	out := make([]Particle, len(b.particles))
	copy(out, b.particles)
	return out
}

func (b *Background) Strips() []Strip {
	out := make([]Strip, len(b.strips))
	copy(out, b.strips)
	return out
}

// PendingStripTimers counts strip cleanup timeouts not yet fired.
func (b *Background) PendingStripTimers() int { return len(b.stripTimers) }

// Opacities are the palette's layer opacities after mobile scaling.
func (b *Background) Opacities() Opacities {
	o := b.palette.Opacities
	if b.snap.IsMobile {
		o.Noise *= 0.7
		o.Scanline *= 0.8
		o.Silhouette *= 0.7
	}
	return o
}

func (b *Background) layerOpacity() float64 {
	return paint.OpacityFromClass(b.override)
}

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
func millis(ms float64) time.Duration { return time.Duration(ms * float64(time.Millisecond)) }
