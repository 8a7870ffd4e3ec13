package capability

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted by HintEnvironment.
const (
	EnvReducedMotion = "BACKDROP_REDUCED_MOTION"
	EnvDeviceMemory  = "BACKDROP_DEVICE_MEMORY"
	EnvConnection    = "BACKDROP_CONNECTION"
)

// HintEnvironment layers optional hints from environment variables over a base
// Environment. A desktop process has no media query or network information API,
// so these variables stand in for them.
type HintEnvironment struct {
	Base   Environment
	Lookup func(string) (string, bool)
}

func NewHintEnvironment(base Environment) *HintEnvironment {
	return &HintEnvironment{Base: base, Lookup: os.LookupEnv}
}

func (e *HintEnvironment) lookup(key string) (string, bool) {
	if e.Lookup == nil {
		return "", false
	}
	v, ok := e.Lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *HintEnvironment) Viewport() (int, int) {
	if e.Base == nil {
		return 0, 0
	}
	return e.Base.Viewport()
}

func (e *HintEnvironment) DevicePixelRatio() float64 {
	if e.Base == nil {
		return 1
	}
	return e.Base.DevicePixelRatio()
}

func (e *HintEnvironment) ReducedMotion() (bool, bool) {
	if v, ok := e.lookup(EnvReducedMotion); ok {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b, true
		}
		// "reduce" mirrors the media query value.
		return strings.EqualFold(v, "reduce"), true
	}
	if e.Base == nil {
		return false, false
	}
	return e.Base.ReducedMotion()
}

func (e *HintEnvironment) DeviceMemoryGB() (float64, bool) {
	if v, ok := e.lookup(EnvDeviceMemory); ok {
		if gb, err := strconv.ParseFloat(v, 64); err == nil && gb > 0 {
			return gb, true
		}
	}
	if e.Base == nil {
		return 0, false
	}
	return e.Base.DeviceMemoryGB()
}

func (e *HintEnvironment) Connection() (string, bool) {
	if v, ok := e.lookup(EnvConnection); ok {
		return v, true
	}
	if e.Base == nil {
		return "", false
	}
	return e.Base.Connection()
}
