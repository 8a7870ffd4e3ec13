package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitor_AveragesWindow(t *testing.T) {
	m := NewMonitor(4)
	assert.Zero(t, m.FPS())

	for i := 0; i < 4; i++ {
		m.Record(time.Second / 60)
	}
	assert.InDelta(t, 60, m.FPS(), 0.5)

	// Window slides: four slow frames push the fast ones out.
	for i := 0; i < 4; i++ {
		m.Record(time.Second / 20)
	}
	assert.Equal(t, 4, m.Samples())
	assert.InDelta(t, 20, m.FPS(), 0.5)
}

func TestMonitor_FrameUsesTimestamps(t *testing.T) {
	m := NewMonitor(10)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		m.Frame(start.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	assert.Equal(t, 4, m.Samples())
	assert.InDelta(t, 10, m.FPS(), 0.01)

	m.Reset()
	assert.Zero(t, m.Samples())
	assert.Zero(t, m.FPS())
}

func TestMonitor_IgnoresNonPositive(t *testing.T) {
	m := NewMonitor(0)
	m.Record(0)
	m.Record(-time.Second)
	assert.Zero(t, m.Samples())
}

func TestNextMode(t *testing.T) {
	tests := []struct {
		from Mode
		fps  float64
		want Mode
	}{
		{ModeNormal, 60, ModeNormal},
		{ModeNormal, 25, ModeReduced},
		{ModeNormal, 10, ModeReduced},
		{ModeReduced, 10, ModeMinimal},
		{ModeReduced, 40, ModeReduced},
		{ModeReduced, 50, ModeNormal},
		{ModeMinimal, 20, ModeMinimal},
		{ModeMinimal, 50, ModeNormal},
		{ModeMinimal, 0, ModeMinimal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextMode(tt.from, tt.fps), "%s @ %.0f", tt.from, tt.fps)
	}
}
