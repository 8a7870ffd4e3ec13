package capability

import "strings"

// Environment exposes the host signals a Prober reads. Optional hints return
// ok=false when the host has no such API; that is read as "capable".
type Environment interface {
	Viewport() (width, height int)
	DevicePixelRatio() float64
	ReducedMotion() (reduce bool, ok bool)
	DeviceMemoryGB() (gb float64, ok bool)
	Connection() (effectiveType string, ok bool)
}

// Prober produces capability snapshots.
type Prober interface {
	Probe() Snapshot
}

// EnvProber derives snapshots from an Environment.
type EnvProber struct {
	Env Environment
}

func NewProber(env Environment) *EnvProber {
	return &EnvProber{Env: env}
}

func (p *EnvProber) Probe() Snapshot {
	if p == nil || p.Env == nil {
		return Snapshot{DevicePixelRatio: 1}
	}

	w, h := p.Env.Viewport()
	snap := Snapshot{
		ViewportWidth:    w,
		ViewportHeight:   h,
		DevicePixelRatio: p.Env.DevicePixelRatio(),
	}
	if snap.DevicePixelRatio <= 0 {
		snap.DevicePixelRatio = 1
	}

	// A zero-width viewport means the host has not laid out yet; assume desktop.
	if w > 0 {
		snap.IsMobile = w < MobileMaxWidth
		snap.IsTablet = !snap.IsMobile && w < TabletMaxWidth
	}

	if reduce, ok := p.Env.ReducedMotion(); ok {
		snap.ReducedMotion = reduce
	}
	if gb, ok := p.Env.DeviceMemoryGB(); ok && gb > 0 {
		snap.DeviceMemoryGB = gb
	}
	if conn, ok := p.Env.Connection(); ok {
		snap.Connection = strings.ToLower(strings.TrimSpace(conn))
	}

	snap.IsLowEndDevice = snap.ReducedMotion ||
		isSlowConnection(snap.Connection) ||
		(snap.DeviceMemoryGB > 0 && snap.DeviceMemoryGB < LowMemoryGB)

	return snap
}

func isSlowConnection(effectiveType string) bool {
	switch effectiveType {
	case "slow-2g", "2g":
		return true
	}
	return false
}

// StaticEnvironment is a fixed Environment. Zero-valued hints are reported as
// unsupported unless the matching Has flag is set.
type StaticEnvironment struct {
	Width, Height int
	PixelRatio    float64

	Reduce    bool
	HasReduce bool

	MemoryGB float64
	Conn     string
}

func (e StaticEnvironment) Viewport() (int, int)      { return e.Width, e.Height }
func (e StaticEnvironment) DevicePixelRatio() float64 { return e.PixelRatio }
func (e StaticEnvironment) ReducedMotion() (bool, bool) {
	return e.Reduce, e.HasReduce || e.Reduce
}
func (e StaticEnvironment) DeviceMemoryGB() (float64, bool) { return e.MemoryGB, e.MemoryGB > 0 }
func (e StaticEnvironment) Connection() (string, bool)      { return e.Conn, e.Conn != "" }

// FixedProber always returns the same snapshot.
type FixedProber Snapshot

func (p FixedProber) Probe() Snapshot { return Snapshot(p) }
