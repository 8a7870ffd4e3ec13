package bubble

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"github.com/iburimskiy/backdrop/internal/anim"
	"github.com/iburimskiy/backdrop/internal/tier"
)

// PastelPalette is the light theme's default bubble palette.
var PastelPalette = []color.NRGBA{
	{R: 135, G: 206, B: 235, A: 153}, // sky blue
	{R: 221, G: 160, B: 221, A: 153}, // plum
	{R: 152, G: 251, B: 152, A: 153}, // mint
	{R: 255, G: 218, B: 185, A: 153}, // peach
	{R: 255, G: 182, B: 193, A: 153}, // light pink
	{R: 173, G: 216, B: 230, A: 153}, // light blue
}

// Element is one floating bubble. It is immutable after generation; its motion is
// the Animation, sampled by the renderer.
type Element struct {
	ID              string
	Size            float64
	X               float64 // left edge, percent of viewport width
	Color           color.NRGBA
	DurationSeconds float64
	DelaySeconds    float64
	Drift           float64
	Animation       anim.Animation
}

// NewElement draws every field independently from the tier's ranges.
func NewElement(id string, t tier.Tier, palette []color.NRGBA, rng *rand.Rand) Element {
	if len(palette) == 0 {
		palette = PastelPalette
	}
	el := Element{
		ID:              id,
		Size:            t.Size.Lerp(rng.Float64()),
		X:               100 * rng.Float64(),
		Color:           palette[rng.Intn(len(palette))],
		DurationSeconds: t.Duration.Lerp(rng.Float64()),
		DelaySeconds:    t.Delay.Lerp(rng.Float64()),
		Drift:           t.Drift.Lerp(rng.Float64()),
	}

	kf := anim.Float
	if t.ReducedMotion {
		kf = anim.FloatSimple
	}
	el.Animation = anim.Animation{
		Keyframes: kf,
		Duration:  seconds(el.DurationSeconds),
		Delay:     seconds(el.DelaySeconds),
		Drift:     el.Drift,
	}
	return el
}

func elementID(seq int) string { return fmt.Sprintf("bubble-%d", seq) }

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
