package noise

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrContextUnavailable reports a surface with no 2D drawing context.
var ErrContextUnavailable = errors.New("noise: drawing context unavailable")

// Surface is where the noise is shown.
type Surface interface {
	// DisplaySize is the on-screen size in logical pixels.
	DisplaySize() (width, height float64)
	// Context acquires the drawing context. A nil Context with a nil error means
	// the host does not support one.
	Context() (Context, error)
}

// Context is the drawing context of a Surface. Pixel coordinates are backing-store
// pixels.
type Context interface {
	SetBackingSize(width, height int) error
	// NewFrame allocates a pixel buffer matching the backing store.
	NewFrame(width, height int) (*Frame, error)
	// PutFrame writes the whole buffer to the surface in one operation.
	PutFrame(f *Frame) error
	// FillPixel paints one 1x1 rectangle. Used by the sparse fallback only.
	FillPixel(x, y int, c color.NRGBA) error
	Clear()
}

// Frame is a non-premultiplied RGBA pixel buffer, 4 bytes per pixel.
type Frame struct {
	Width, Height int
	Pix           []byte
}

// AllocFrame returns a zeroed frame of the given size.
func AllocFrame(width, height int) (*Frame, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("noise: invalid frame size %dx%d", width, height)
	}
	return &Frame{Width: width, Height: height, Pix: make([]byte, width*height*4)}, nil
}

// Intensity selects resolution, frame rate and alpha range.
type Intensity string

const (
	Subtle  Intensity = "subtle"
	Normal  Intensity = "normal"
	Intense Intensity = "intense"
)

// ParseIntensity accepts subtle, normal or intense; "" is normal.
func ParseIntensity(s string) (Intensity, error) {
	switch Intensity(strings.ToLower(strings.TrimSpace(s))) {
	case "", Normal:
		return Normal, nil
	case Subtle:
		return Subtle, nil
	case Intense:
		return Intense, nil
	}
	return Normal, fmt.Errorf("noise: unknown intensity %q", s)
}

// Modulator scales noise alpha, e.g. by audio level. Level is in [0,1].
type Modulator interface {
	Level() float64
}

// Premultiply writes src's pixels into dst with color scaled by alpha, the layout
// GPU images expect. dst must be at least as long as src.
func Premultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		dst[i] = byte(uint32(src[i]) * a / 255)
		dst[i+1] = byte(uint32(src[i+1]) * a / 255)
		dst[i+2] = byte(uint32(src[i+2]) * a / 255)
		dst[i+3] = src[i+3]
	}
}
