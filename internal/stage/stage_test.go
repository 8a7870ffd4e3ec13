package stage

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/loop"
	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/paint"
	"github.com/iburimskiy/backdrop/internal/theme"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeTrack struct {
	level   float64
	paused  bool
	stopped int
}

func (f *fakeTrack) Level() float64 { return f.level }
func (f *fakeTrack) TogglePause() bool {
	f.paused = !f.paused
	return f.paused
}
func (f *fakeTrack) Status() string { return "00:10 / 01:00" }
func (f *fakeTrack) Stop()          { f.stopped++ }

type harness struct {
	stage *Stage
	vp    *capability.Viewport
	clock *loop.ManualClock
	track *fakeTrack
}

func newHarness(t *testing.T, mutate func(*config.Options), detect theme.Detector) *harness {
	t.Helper()
	opts := config.Default()
	opts.Theme = "light"
	if mutate != nil {
		mutate(opts)
	}
	h := &harness{
		vp:    capability.NewViewport(),
		clock: loop.NewManualClock(epoch),
		track: &fakeTrack{},
	}
	s, err := New(opts, Deps{
		Prober:   capability.NewProber(capability.StaticEnvironment{Width: 1280, Height: 800, PixelRatio: 1}),
		Viewport: h.vp,
		Track:    h.track,
		Detect:   detect,
		Clock:    h.clock,
		Rand:     rand.New(rand.NewSource(5)),
	})
	require.NoError(t, err)
	h.stage = s
	return h
}

func (h *harness) run(d time.Duration) {
	for e := time.Duration(0); e < d; e += 16 * time.Millisecond {
		h.clock.Advance(16 * time.Millisecond)
		h.stage.Tick()
	}
}

func TestStage_LightStart(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.stage.Start()
	defer h.stage.Close()

	assert.True(t, h.stage.Bubbles().Mounted())
	assert.Equal(t, config.LightBubbleOverride, h.stage.Bubbles().Override())
	assert.False(t, h.stage.Glitch().Mounted())

	rec := paint.NewRecorder(1280, 800)
	h.stage.Draw(rec, nil)
	require.NotEmpty(t, rec.Ops)
	assert.Equal(t, LightBackground, rec.Ops[0].Color)
	assert.Zero(t, rec.Count("circle"), "bubbles start faded out")

	h.run(3 * time.Second)
	rec.Reset()
	h.stage.Draw(rec, nil)
	assert.Positive(t, rec.Count("circle"))
}

func TestStage_ToggleMountsGlitchOnlyInDark(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.stage.Start()
	defer h.stage.Close()
	ids := h.stage.Bubbles().Elements()

	assert.Equal(t, theme.Dark, h.stage.ToggleTheme())
	assert.True(t, h.stage.Glitch().Mounted())
	assert.Equal(t, config.DarkBubbleOverride, h.stage.Bubbles().Override())
	assert.Equal(t, ids, h.stage.Bubbles().Elements(), "theme switch keeps the bubbles")

	h.run(2 * time.Second)
	assert.InDelta(t, 0, h.stage.Bubbles().Opacity(), 0.01)

	assert.Equal(t, theme.Light, h.stage.ToggleTheme())
	assert.False(t, h.stage.Glitch().Mounted())
	assert.Equal(t, 1, h.vp.Listeners(), "only the bubble field listens")
}

func TestStage_SystemDarkStartsGlitch(t *testing.T) {
	h := newHarness(t, func(o *config.Options) { o.Theme = "system" }, func() (bool, error) { return true, nil })
	h.stage.Start()
	defer h.stage.Close()

	assert.True(t, h.stage.Theme().IsDark())
	assert.True(t, h.stage.Glitch().Mounted())
	assert.True(t, h.stage.Glitch().Fallback(), "no surface means the static pattern")
}

func TestStage_ExplicitBubbleOverrideWins(t *testing.T) {
	h := newHarness(t, func(o *config.Options) { o.Bubbles.Override = "opacity-30" }, nil)
	h.stage.Start()
	defer h.stage.Close()

	h.stage.ToggleTheme()
	assert.Equal(t, "opacity-30", h.stage.Bubbles().Override())
}

func TestStage_ApplyReload(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.stage.Start()
	defer h.stage.Close()
	h.stage.ToggleTheme()
	oldGlitch := h.stage.Glitch()
	gen := h.stage.Bubbles().Generation()

	same := config.Default()
	same.Theme = "light"
	require.NoError(t, h.stage.Apply(same))
	assert.Equal(t, gen, h.stage.Bubbles().Generation(), "unchanged count keeps elements")
	assert.Same(t, oldGlitch, h.stage.Glitch())
	assert.True(t, h.stage.Theme().IsDark(), "unchanged theme option leaves the toggle alone")

	next := config.Default()
	next.Theme = "light"
	next.Bubbles.Count = 8
	next.Glitch.Intensity = string(noise.Intense)
	require.NoError(t, h.stage.Apply(next))

	assert.Len(t, h.stage.Bubbles().Elements(), 8)
	assert.NotSame(t, oldGlitch, h.stage.Glitch())
	assert.False(t, oldGlitch.Mounted())
	assert.True(t, h.stage.Glitch().Mounted())

	next2 := config.Default()
	next2.Theme = "dark"
	next2.Bubbles.Count = 8
	next2.Glitch.Intensity = string(noise.Intense)
	h.stage.ToggleTheme()
	require.NoError(t, h.stage.Apply(next2))
	assert.True(t, h.stage.Theme().IsDark())
}

func TestStage_ApplyRejectsInvalid(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.stage.Start()
	defer h.stage.Close()

	bad := config.Default()
	bad.Bubbles.Palette = []string{"nope"}
	err := h.stage.Apply(bad)
	assert.True(t, errors.Is(err, config.ErrInvalid))
	assert.Empty(t, h.stage.Options().Bubbles.Palette)
}

func TestStage_StatusAndTrack(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.stage.Start()
	defer h.stage.Close()

	assert.Equal(t, "theme light  bubbles 15  ♪ 00:10 / 01:00", h.stage.Status())
	h.stage.ToggleTheme()
	assert.Contains(t, h.stage.Status(), "glitch normal (static noise)")

	h.stage.TogglePause()
	assert.True(t, h.track.paused)
}

func TestStage_CloseReleasesEverything(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.stage.Start()
	h.stage.ToggleTheme()
	h.stage.Close()
	h.stage.Close()

	assert.False(t, h.stage.Bubbles().Mounted())
	assert.False(t, h.stage.Glitch().Mounted())
	assert.Zero(t, h.vp.Listeners())
	assert.Equal(t, 2, h.track.stopped)

	rec := paint.NewRecorder(100, 100)
	h.stage.Draw(rec, nil)
	assert.Zero(t, rec.Count(""))
}

func TestNew_RequiresProber(t *testing.T) {
	_, err := New(nil, Deps{})
	assert.Error(t, err)
}
