// Package stage composes the light and dark backdrops and switches between them
// with the theme. It has no host dependencies; the scene package drives it.
package stage

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/bubble"
	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/glitch"
	"github.com/iburimskiy/backdrop/internal/loop"
	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/paint"
	"github.com/iburimskiy/backdrop/internal/theme"
)

// LightBackground fills the window behind the bubbles in the light theme.
var LightBackground = color.NRGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}

// Track is the optional ambient audio.
type Track interface {
	noise.Modulator
	TogglePause() bool
	Status() string
	Stop()
}

// Deps are the host-provided collaborators. Zero values pick defaults.
type Deps struct {
	Prober   capability.Prober
	Viewport *capability.Viewport
	Surface  noise.Surface
	Track    Track
	Detect   theme.Detector
	Clock    loop.Clock
	Rand     *rand.Rand
	Logger   *zap.Logger
}

// Stage owns the bubble field, the glitch background and the theme selector.
type Stage struct {
	deps Deps
	log  *zap.Logger
	opts *config.Options

	theme         *theme.Selector
	removeTheme   func()
	bubbles       *bubble.Field
	glitch        *glitch.Background
	intensity     noise.Intensity
	glitchPalette glitch.Palette
	started       bool
}

func New(opts *config.Options, deps Deps) (*Stage, error) {
	if opts == nil {
		opts = config.Default()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if deps.Prober == nil {
		return nil, errors.New("stage: no capability prober")
	}
	if deps.Viewport == nil {
		deps.Viewport = capability.NewViewport()
	}
	if deps.Clock == nil {
		deps.Clock = loop.SystemClock{}
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	palette, err := opts.Bubbles.Colors()
	if err != nil {
		return nil, err
	}
	gp, err := opts.Glitch.Palette.Parse()
	if err != nil {
		return nil, err
	}

	s := &Stage{
		deps:          deps,
		log:           deps.Logger.Named("stage"),
		opts:          opts,
		theme:         theme.NewSelector(opts.ThemeChoice(), deps.Detect, deps.Logger),
		intensity:     opts.Intensity(),
		glitchPalette: gp,
	}
	s.bubbles = bubble.New(deps.Prober, deps.Viewport, bubble.Options{
		Base:     opts.Bubbles.Base(),
		Palette:  palette,
		Override: s.bubbleOverride(),
		FPS:      config.TPS,
		Clock:    deps.Clock,
		Rand:     deps.Rand,
		Logger:   deps.Logger,
	})
	s.glitch = s.newGlitch()
	return s, nil
}

func (s *Stage) newGlitch() *glitch.Background {
	var mod noise.Modulator
	if s.deps.Track != nil {
		mod = s.deps.Track
	}
	palette := s.glitchPalette
	return glitch.New(s.deps.Surface, s.deps.Prober, s.deps.Viewport, glitch.Options{
		Intensity: s.intensity,
		Palette:   &palette,
		Override:  s.opts.Glitch.Override,
		Modulator: mod,
		Clock:     s.deps.Clock,
		Rand:      s.deps.Rand,
		Logger:    s.deps.Logger,
	})
}

// bubbleOverride is the configured class, or the theme's default when none is set.
func (s *Stage) bubbleOverride() string {
	if s.opts.Bubbles.Override != "" {
		return s.opts.Bubbles.Override
	}
	if s.theme.IsDark() {
		return config.DarkBubbleOverride
	}
	return config.LightBubbleOverride
}

// Start mounts the bubble field, and the glitch background when dark. The host
// calls it once the viewport size is known.
func (s *Stage) Start() {
	if s.started {
		return
	}
	s.started = true
	s.bubbles.Mount()
	s.removeTheme = s.theme.OnChange(func(theme.Theme) { s.applyTheme() })
	s.applyTheme()
	s.log.Info("stage started", zap.String("theme", string(s.theme.Current())))
}

func (s *Stage) applyTheme() {
	s.bubbles.SetOverride(s.bubbleOverride())
	if s.theme.IsDark() {
		s.glitch.Mount()
	} else {
		s.glitch.Unmount()
	}
}

// Tick advances every mounted effect by one host frame.
func (s *Stage) Tick() {
	if !s.started {
		return
	}
	s.bubbles.Tick()
	s.glitch.Tick()
}

// Draw paints the glitch background under the bubbles. nl composites the noise
// surface and may be nil.
func (s *Stage) Draw(p paint.Painter, nl glitch.NoiseLayer) {
	if !s.started {
		return
	}
	if !s.glitch.Mounted() {
		w, h := p.Size()
		p.FillRect(0, 0, float32(w), float32(h), LightBackground)
	}
	s.glitch.Draw(p, nl)
	s.bubbles.Draw(p)
}

// ToggleTheme flips light and dark.
func (s *Stage) ToggleTheme() theme.Theme { return s.theme.Toggle() }

// TogglePause pauses or resumes the ambient track, if any.
func (s *Stage) TogglePause() {
	if s.deps.Track != nil {
		s.deps.Track.TogglePause()
	}
}

// Apply swaps in reloaded options. Bubbles regenerate only if their resolved
// count changes; a new intensity rebuilds the glitch background.
func (s *Stage) Apply(opts *config.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	palette, err := opts.Bubbles.Colors()
	if err != nil {
		return err
	}
	gp, err := opts.Glitch.Palette.Parse()
	if err != nil {
		return err
	}
	prevTheme := s.opts.ThemeChoice()
	s.opts = opts

	s.bubbles.SetPalette(palette)
	s.bubbles.SetBase(opts.Bubbles.Base())
	s.glitchPalette = gp
	s.glitch.SetPalette(gp)
	s.glitch.SetOverride(opts.Glitch.Override)

	if in := opts.Intensity(); in != s.intensity {
		mounted := s.glitch.Mounted()
		s.glitch.Unmount()
		s.intensity = in
		s.glitch = s.newGlitch()
		if mounted {
			s.glitch.Mount()
		}
		s.log.Info("noise intensity changed", zap.String("intensity", string(in)))
	}

	if t := opts.ThemeChoice(); t != prevTheme && (t == theme.Light || t == theme.Dark) {
		_ = s.theme.Set(t)
	}
	s.bubbles.SetOverride(s.bubbleOverride())
	return nil
}

// Status is the overlay line: theme, bubble count, glitch mode and track.
func (s *Stage) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "theme %s  bubbles %d", s.theme.Current(), len(s.bubbles.Elements()))
	if s.glitch.Mounted() {
		fmt.Fprintf(&b, "  glitch %s", s.glitch.Mode())
		if s.glitch.Fallback() {
			b.WriteString(" (static noise)")
		}
	}
	if s.deps.Track != nil {
		if st := s.deps.Track.Status(); st != "" {
			b.WriteString("  ♪ " + st)
		}
	}
	return b.String()
}

func (s *Stage) Theme() *theme.Selector     { return s.theme }
func (s *Stage) Bubbles() *bubble.Field     { return s.bubbles }
func (s *Stage) Glitch() *glitch.Background { return s.glitch }
func (s *Stage) Options() *config.Options   { return s.opts }

// Close unmounts everything and stops the track. It is idempotent.
func (s *Stage) Close() {
	if s.removeTheme != nil {
		s.removeTheme()
		s.removeTheme = nil
	}
	s.glitch.Unmount()
	s.bubbles.Unmount()
	if s.deps.Track != nil {
		s.deps.Track.Stop()
	}
	s.started = false
}
