package scene

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/backdrop/internal/noise"
)

// NoiseSurface is a noise.Surface and noise.Context backed by an offscreen image
// stretched over the window.
type NoiseSurface struct {
	width, height float64
	img           *ebiten.Image
	scratch       []byte
	// unsupported makes Context report no drawing context.
	unsupported bool
}

func NewNoiseSurface(unsupported bool) *NoiseSurface {
	return &NoiseSurface{unsupported: unsupported}
}

// Resize records the window's logical size.
func (s *NoiseSurface) Resize(w, h int) { s.width, s.height = float64(w), float64(h) }

func (s *NoiseSurface) DisplaySize() (float64, float64) { return s.width, s.height }

func (s *NoiseSurface) Context() (noise.Context, error) {
	if s.unsupported {
		return nil, nil
	}
	return s, nil
}

func (s *NoiseSurface) SetBackingSize(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("scene: invalid backing size %dx%d", w, h)
	}
	if s.img != nil {
		b := s.img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return nil
		}
		s.img.Deallocate()
		s.img = nil
	}
	s.scratch = nil
	if w == 0 || h == 0 {
		return nil
	}
	s.img = ebiten.NewImage(w, h)
	return nil
}

func (s *NoiseSurface) NewFrame(w, h int) (*noise.Frame, error) {
	return noise.AllocFrame(w, h)
}

func (s *NoiseSurface) PutFrame(f *noise.Frame) error {
	if s.img == nil {
		return nil
	}
	b := s.img.Bounds()
	if f.Width != b.Dx() || f.Height != b.Dy() {
		return fmt.Errorf("scene: frame %dx%d does not match surface %dx%d", f.Width, f.Height, b.Dx(), b.Dy())
	}
	if len(s.scratch) != len(f.Pix) {
		s.scratch = make([]byte, len(f.Pix))
	}
	noise.Premultiply(s.scratch, f.Pix)
	s.img.WritePixels(s.scratch)
	return nil
}

func (s *NoiseSurface) FillPixel(x, y int, c color.NRGBA) error {
	if s.img == nil {
		return nil
	}
	s.img.Set(x, y, c)
	return nil
}

func (s *NoiseSurface) Clear() {
	if s.img != nil {
		s.img.Clear()
	}
}

// draw stretches the noise over dst at opacity.
func (s *NoiseSurface) draw(dst *ebiten.Image, opacity float64) {
	if s.img == nil || opacity <= 0 {
		return
	}
	sb, db := s.img.Bounds(), dst.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.ColorScale.ScaleAlpha(float32(opacity))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(s.img, op)
}
