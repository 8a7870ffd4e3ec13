package scene

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// painter draws the effects' primitives onto the screen and composites the
// noise surface.
type painter struct {
	dst   *ebiten.Image
	noise *NoiseSurface
}

func (p painter) Size() (int, int) {
	b := p.dst.Bounds()
	return b.Dx(), b.Dy()
}

func (p painter) FillRect(x, y, w, h float32, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	vector.DrawFilledRect(p.dst, x, y, w, h, c, false)
}

func (p painter) FillCircle(cx, cy, r float32, c color.NRGBA) {
	if c.A == 0 || r <= 0 {
		return
	}
	vector.DrawFilledCircle(p.dst, cx, cy, r, c, true)
}

func (p painter) DrawNoise(opacity float64) {
	if p.noise != nil {
		p.noise.draw(p.dst, opacity)
	}
}
