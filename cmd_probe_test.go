package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/tier"
)

func TestRenderProbe(t *testing.T) {
	snap := capability.NewProber(capability.StaticEnvironment{Width: 400, Height: 800, PixelRatio: 3, MemoryGB: 2}).Probe()
	out := renderProbe(snap, tier.Resolve(snap, tier.DefaultBase()), noise.Normal)

	assert.Contains(t, out, "400x800")
	assert.Contains(t, out, "320,000")
	assert.Contains(t, out, "mobile")
	assert.Contains(t, out, "2.0 GiB")
	assert.Contains(t, out, "particles")
}

func TestDeviceClass(t *testing.T) {
	assert.Equal(t, "mobile", deviceClass(capability.Snapshot{IsMobile: true}))
	assert.Equal(t, "tablet", deviceClass(capability.Snapshot{IsTablet: true}))
	assert.Equal(t, "desktop", deviceClass(capability.Snapshot{}))
}
