// Package capability answers "what can this device handle" as a pure query over an
// injectable Environment, so effects never read host globals directly.
package capability

const (
	// MobileMaxWidth is the first viewport width that is no longer mobile.
	MobileMaxWidth = 768
	// TabletMaxWidth is the first viewport width that is desktop.
	TabletMaxWidth = 1024
	// LowMemoryGB is the device memory below which a device counts as low-end.
	LowMemoryGB = 4.0
	// MaxPixelRatio caps device pixel ratio for any backing store.
	MaxPixelRatio = 2.0
)

// Snapshot is a point-in-time read of viewport size and accessibility and
// performance hints. It is recomputed on mount and on (debounced) viewport change.
type Snapshot struct {
	ViewportWidth    int
	ViewportHeight   int
	DevicePixelRatio float64
	IsMobile         bool
	IsTablet         bool
	ReducedMotion    bool
	IsLowEndDevice   bool

	// DeviceMemoryGB and Connection are zero when the host exposes no hint.
	DeviceMemoryGB float64
	Connection     string
}

// CappedPixelRatio returns the pixel ratio clamped to [1, MaxPixelRatio].
func (s Snapshot) CappedPixelRatio() float64 {
	r := s.DevicePixelRatio
	if r <= 0 {
		r = 1
	}
	if r > MaxPixelRatio {
		r = MaxPixelRatio
	}
	return r
}
