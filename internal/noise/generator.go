// Package noise draws grayscale static onto a surface at a throttled frame rate.
// Failures never reach the caller: they latch the generator off and log once.
package noise

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/loop"
)

const (
	// ResizeDebounce delays buffer reallocation after the last viewport change.
	ResizeDebounce = 100 * time.Millisecond

	NormalFPS  = 12
	IntenseFPS = 15

	MobileScale = 0.5
	SubtleScale = 0.7

	// SparseDensity is the share of pixel positions the fallback paints per frame.
	SparseDensity = 0.1
)

// Options configure a Generator. Zero values pick defaults.
type Options struct {
	Intensity Intensity
	Modulator Modulator
	Clock     loop.Clock
	Rand      *rand.Rand
	Logger    *zap.Logger
}

// Generator owns its pixel buffer and scheduler exclusively.
type Generator struct {
	surface   Surface
	prober    capability.Prober
	viewport  *capability.Viewport
	intensity Intensity
	modulator Modulator
	clock     loop.Clock
	rng       *rand.Rand
	log       *zap.Logger

	sched          *loop.Scheduler
	resize         *loop.Debouncer
	removeListener func()
	frameID        loop.ID

	ctx         Context
	frame       *Frame
	backingW    int
	backingH    int
	sparse      bool
	disabled    bool
	unavailable bool
	mounted     bool
	lastFrame   time.Time
	drawn       int
	warned      map[string]bool
}

func New(surface Surface, prober capability.Prober, viewport *capability.Viewport, opts Options) *Generator {
	if opts.Intensity == "" {
		opts.Intensity = Normal
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
	return &Generator{
		surface:   surface,
		prober:    prober,
		viewport:  viewport,
		intensity: opts.Intensity,
		modulator: opts.Modulator,
		clock:     opts.Clock,
		rng:       opts.Rand,
		log:       opts.Logger.Named("noise").With(zap.String("intensity", string(opts.Intensity))),
		warned:    make(map[string]bool),
	}
}

// FrameInterval is the minimum time between two drawn frames.
func (g *Generator) FrameInterval() time.Duration {
	fps := NormalFPS
	if g.intensity == Intense {
		fps = IntenseFPS
	}
	return time.Second / time.Duration(fps)
}

// ResolutionScale is the extra scale-down applied on top of the pixel ratio.
func ResolutionScale(mobile bool, intensity Intensity) float64 {
	switch {
	case mobile:
		return MobileScale
	case intensity == Subtle:
		return SubtleScale
	}
	return 1
}

// Mount acquires the context, allocates the buffer, attaches the resize listener
// and queues the first frame, in that order.
func (g *Generator) Mount() {
	if g.mounted {
		return
	}
	g.mounted = true
	g.sched = loop.NewScheduler(g.clock)
	g.resize = loop.NewDebouncer(g.sched, ResizeDebounce, g.setup)
	g.lastFrame = time.Time{}
	if g.disabled {
		return
	}

	if g.surface == nil {
		g.unavailable = true
		g.latch("no drawing surface", ErrContextUnavailable)
		return
	}
	ctx, err := g.surface.Context()
	if err != nil {
		g.latch("drawing context acquisition failed", err)
		return
	}
	if ctx == nil {
		g.unavailable = true
		g.latch("drawing context unavailable", ErrContextUnavailable)
		return
	}
	g.ctx = ctx

	g.setup()
	if g.disabled {
		return
	}
	g.removeListener = g.viewport.OnChange(g.resize.Trigger)
	g.frameID = g.sched.RequestFrame(g.animate)
}

// setup measures the surface and reallocates the buffer. The previous buffer is
// dropped, never reused.
func (g *Generator) setup() {
	if !g.mounted || g.disabled {
		return
	}
	snap := g.prober.Probe()
	dw, dh := g.surface.DisplaySize()
	scale := ResolutionScale(snap.IsMobile, g.intensity) * snap.CappedPixelRatio()
	w := int(math.Floor(math.Max(dw, 0) * scale))
	h := int(math.Floor(math.Max(dh, 0) * scale))

	g.frame = nil
	if err := g.ctx.SetBackingSize(w, h); err != nil {
		g.latch("surface setup failed", err)
		return
	}
	g.backingW, g.backingH = w, h

	frame, err := g.ctx.NewFrame(w, h)
	if err == nil && frame != nil && (frame.Width != w || frame.Height != h || len(frame.Pix) != w*h*4) {
		err = fmt.Errorf("noise: context returned a %dx%d buffer for %dx%d", frame.Width, frame.Height, w, h)
	}
	if err != nil || frame == nil {
		g.sparse = true
		g.warnOnce("pixel buffer allocation failed, falling back to sparse drawing", zap.Error(err))
		return
	}
	g.sparse = false
	g.frame = frame
	g.log.Debug("noise buffer allocated", zap.Int("width", w), zap.Int("height", h))
}

// Tick drives timers and frame callbacks. Call once per host frame.
func (g *Generator) Tick() {
	if !g.mounted {
		return
	}
	g.sched.Tick()
}

func (g *Generator) animate(now time.Time) {
	if !g.mounted || g.disabled {
		return
	}
	if g.lastFrame.IsZero() || now.Sub(g.lastFrame) >= g.FrameInterval() {
		g.draw()
		g.lastFrame = now
	}
	if g.mounted && !g.disabled {
		g.frameID = g.sched.RequestFrame(g.animate)
	}
}

func (g *Generator) draw() {
	defer func() {
		if r := recover(); r != nil {
			g.latch("noise frame panicked", fmt.Errorf("%v", r))
		}
	}()

	var err error
	if g.frame != nil {
		err = g.fillFrame()
	} else {
		err = g.drawSparse()
	}
	if err != nil {
		g.latch("noise frame failed", err)
		return
	}
	g.drawn++
}

// alphaRange is [base, base+span).
func (g *Generator) alphaRange() (base, span uint32) {
	if g.intensity == Intense {
		return 15, 40
	}
	return 8, 25
}

func (g *Generator) gain() float64 {
	if g.modulator == nil {
		return 1
	}
	l := g.modulator.Level()
	if l < 0 {
		l = 0
	}
	if l > 1 {
		l = 1
	}
	return 1 + l
}

func (g *Generator) fillFrame() error {
	pix := g.frame.Pix
	base, span := g.alphaRange()
	gain := g.gain()
	for i := 0; i+3 < len(pix); i += 4 {
		r := g.rng.Uint32()
		v := byte(r)
		a := base + (r>>8)%span
		if gain != 1 {
			a = uint32(math.Min(255, float64(a)*gain))
		}
		pix[i] = v
		pix[i+1] = v
		pix[i+2] = v
		pix[i+3] = byte(a)
	}
	return g.ctx.PutFrame(g.frame)
}

func (g *Generator) drawSparse() error {
	g.ctx.Clear()
	w, h := g.backingW, g.backingH
	if w == 0 || h == 0 {
		return nil
	}
	n := int(float64(w*h) * SparseDensity)
	lo, span := 0.03, 0.1
	if g.intensity == Intense {
		lo, span = 0.05, 0.15
	}
	gain := g.gain()
	for i := 0; i < n; i++ {
		a := math.Min(1, (lo+g.rng.Float64()*span)*gain)
		c := color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a * 255)}
		if err := g.ctx.FillPixel(g.rng.Intn(w), g.rng.Intn(h), c); err != nil {
			return err
		}
	}
	return nil
}

// latch permanently disables this instance.
func (g *Generator) latch(msg string, err error) {
	g.disabled = true
	if g.sched != nil {
		g.sched.Cancel(g.frameID)
	}
	g.frameID = 0
	g.warnOnce(msg, zap.Error(err))
}

func (g *Generator) warnOnce(msg string, fields ...zap.Field) {
	if g.warned[msg] {
		return
	}
	g.warned[msg] = true
	g.log.Warn(msg, fields...)
}

// Unmount cancels the frame callback and resize timer, removes the listener,
// clears the surface and releases the buffer. It is idempotent.
func (g *Generator) Unmount() {
	if !g.mounted {
		return
	}
	g.mounted = false
	g.sched.Cancel(g.frameID)
	g.frameID = 0
	g.resize.Stop()
	if g.removeListener != nil {
		g.removeListener()
		g.removeListener = nil
	}
	g.sched.Close()
	if g.ctx != nil {
		g.ctx.Clear()
	}
	g.frame = nil
}

func (g *Generator) Mounted() bool { return g.mounted }

// Disabled reports the latched error state.
func (g *Generator) Disabled() bool { return g.disabled }

// Unavailable reports that the surface offered no drawing context at all.
func (g *Generator) Unavailable() bool { return g.unavailable }

// Sparse reports the degraded per-pixel drawing mode.
func (g *Generator) Sparse() bool { return g.sparse }

// Frame is the live pixel buffer, nil in sparse mode or after teardown.
func (g *Generator) Frame() *Frame { return g.frame }

// BackingSize is the current backing-store size in pixels.
func (g *Generator) BackingSize() (int, int) { return g.backingW, g.backingH }

// FramesDrawn counts frames written since construction.
func (g *Generator) FramesDrawn() int { return g.drawn }
