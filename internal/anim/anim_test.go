package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSample_BeforeDelayIsHidden(t *testing.T) {
	a := Animation{Keyframes: Float, Duration: 10 * time.Second, Delay: 2 * time.Second, Drift: 20}
	assert.False(t, a.Sample(time.Second).Visible)
	assert.True(t, a.Sample(2*time.Second).Visible)
}

func TestSample_IsPureAndLoops(t *testing.T) {
	a := Animation{Keyframes: Float, Duration: 10 * time.Second, Drift: 20}
	at := 3 * time.Second
	assert.Equal(t, a.Sample(at), a.Sample(at))
	assert.InDelta(t, a.Sample(at).Rise, a.Sample(at+10*time.Second).Rise, 1e-9)
}

func TestSample_FloatShape(t *testing.T) {
	a := Animation{Keyframes: Float, Duration: 10 * time.Second, Drift: 20}

	start := a.Sample(0)
	assert.Zero(t, start.Rise)
	assert.Zero(t, start.Opacity)

	mid := a.Sample(5 * time.Second)
	assert.InDelta(t, 0.5, mid.Rise, 1e-9)
	assert.InDelta(t, 20, mid.OffsetX, 1e-9)
	assert.Equal(t, 1.0, mid.Opacity)

	late := a.Sample(9500 * time.Millisecond)
	assert.InDelta(t, 0.5, late.Opacity, 1e-9)
}

func TestSample_SimpleHasNoDrift(t *testing.T) {
	a := Animation{Keyframes: FloatSimple, Duration: 10 * time.Second, Drift: 20}
	for s := 0; s < 10; s++ {
		p := a.Sample(time.Duration(s) * time.Second)
		assert.Zero(t, p.OffsetX)
		assert.Equal(t, 1.0, p.Opacity)
	}
	assert.Equal(t, "bubble-float-simple", FloatSimple.String())
}

func TestSample_ZeroDuration(t *testing.T) {
	assert.False(t, Animation{}.Sample(time.Hour).Visible)
}

func TestEaseInOut(t *testing.T) {
	assert.Zero(t, EaseInOut(-1))
	assert.Equal(t, 1.0, EaseInOut(2))
	assert.InDelta(t, 0.5, EaseInOut(0.5), 1e-9)
	assert.Less(t, EaseInOut(0.1), 0.1)
}

func TestFade_ConvergesToTarget(t *testing.T) {
	f := NewFade(60, 0.75)
	assert.True(t, f.Settled())

	f.SetTarget(0)
	for i := 0; i < 600 && !f.Settled(); i++ {
		v := f.Step()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.True(t, f.Settled())
	assert.Equal(t, 0.0, f.Step())

	f.SetTarget(3)
	assert.Equal(t, 1.0, f.Target())
}

func TestFade_JumpSkipsTheSpring(t *testing.T) {
	f := NewFade(60, 1)
	f.SetTarget(0.5)
	f.Step()
	f.Jump(0)
	assert.Equal(t, 0.0, f.Value())
	assert.Equal(t, 0.0, f.Target())
	assert.True(t, f.Settled())
	assert.Equal(t, 0.0, f.Step())

	f.Jump(-1)
	assert.Equal(t, 0.0, f.Value())
}
