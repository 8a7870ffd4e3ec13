package paint

import "image/color"

// Op is one recorded draw call.
type Op struct {
	Kind       string
	X, Y, W, H float32
	Color      color.NRGBA
}

// Recorder is a Painter that keeps every call instead of drawing.
type Recorder struct {
	Width, Height int
	Ops           []Op
}

func NewRecorder(w, h int) *Recorder { return &Recorder{Width: w, Height: h} }

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

func (r *Recorder) FillRect(x, y, w, h float32, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: "rect", X: x, Y: y, W: w, H: h, Color: c})
}

func (r *Recorder) FillCircle(cx, cy, rad float32, c color.NRGBA) {
	r.Ops = append(r.Ops, Op{Kind: "circle", X: cx, Y: cy, W: rad, H: rad, Color: c})
}

// Count returns how many ops of kind were recorded; "" counts all.
func (r *Recorder) Count(kind string) int {
	if kind == "" {
		return len(r.Ops)
	}
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
