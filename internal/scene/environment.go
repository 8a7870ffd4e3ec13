package scene

import "github.com/hajimehoshi/ebiten/v2"

// windowEnvironment reports the window as the viewport. Motion, memory and
// network hints are unknown on the desktop and come from capability.HintEnvironment.
type windowEnvironment struct {
	width, height int
}

// resize reports whether the size changed.
func (e *windowEnvironment) resize(w, h int) bool {
	if w == e.width && h == e.height {
		return false
	}
	e.width, e.height = w, h
	return true
}

func (e *windowEnvironment) Viewport() (int, int) { return e.width, e.height }

func (e *windowEnvironment) DevicePixelRatio() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

func (e *windowEnvironment) ReducedMotion() (bool, bool)     { return false, false }
func (e *windowEnvironment) DeviceMemoryGB() (float64, bool) { return 0, false }
func (e *windowEnvironment) Connection() (string, bool)      { return "", false }
