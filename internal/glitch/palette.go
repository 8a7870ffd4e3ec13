package glitch

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Opacities are the base opacities of the translucent layers.
type Opacities struct {
	Noise      float64 `yaml:"noise"`
	Scanline   float64 `yaml:"scanline"`
	Silhouette float64 `yaml:"silhouette"`
}

// PaletteSpec is the caller-facing palette with hex colors.
type PaletteSpec struct {
	BackgroundColor string    `yaml:"background_color"`
	AccentColor1    string    `yaml:"accent_color_1"`
	AccentColor2    string    `yaml:"accent_color_2"`
	AccentColor3    string    `yaml:"accent_color_3"`
	Opacities       Opacities `yaml:"opacities"`
}

// DefaultPaletteSpec is the neon pink/aqua/purple scheme on near-black.
func DefaultPaletteSpec() PaletteSpec {
	return PaletteSpec{
		BackgroundColor: "#0a0210",
		AccentColor1:    "#ff2d95",
		AccentColor2:    "#6efff6",
		AccentColor3:    "#8b5cff",
		Opacities:       Opacities{Noise: 0.06, Scanline: 0.06, Silhouette: 0.12},
	}
}

// Palette is a parsed PaletteSpec.
type Palette struct {
	Background color.NRGBA
	Accent1    color.NRGBA
	Accent2    color.NRGBA
	Accent3    color.NRGBA
	Opacities  Opacities
}

func DefaultPalette() Palette {
	p, err := DefaultPaletteSpec().Parse()
	if err != nil {
		panic(err)
	}
	return p
}

// Parse converts hex colors. Empty fields take the default's value.
func (s PaletteSpec) Parse() (Palette, error) {
	def := PaletteSpec{
		BackgroundColor: "#0a0210",
		AccentColor1:    "#ff2d95",
		AccentColor2:    "#6efff6",
		AccentColor3:    "#8b5cff",
	}
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}

	var p Palette
	var err error
	if p.Background, err = ParseColor(pick(s.BackgroundColor, def.BackgroundColor)); err != nil {
		return Palette{}, fmt.Errorf("background color: %w", err)
	}
	if p.Accent1, err = ParseColor(pick(s.AccentColor1, def.AccentColor1)); err != nil {
		return Palette{}, fmt.Errorf("accent color 1: %w", err)
	}
	if p.Accent2, err = ParseColor(pick(s.AccentColor2, def.AccentColor2)); err != nil {
		return Palette{}, fmt.Errorf("accent color 2: %w", err)
	}
	if p.Accent3, err = ParseColor(pick(s.AccentColor3, def.AccentColor3)); err != nil {
		return Palette{}, fmt.Errorf("accent color 3: %w", err)
	}
	p.Opacities = Opacities{
		Noise:      clamp01(s.Opacities.Noise),
		Scanline:   clamp01(s.Opacities.Scanline),
		Silhouette: clamp01(s.Opacities.Silhouette),
	}
	return p, nil
}

// ParseColor reads "#rrggbb" or "#rgb" into an opaque color.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Blend mixes a toward b in Lab space; t=0 is a, t=1 is b. Alpha is interpolated
// linearly.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	t = clamp01(t)
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	r, g, bl := ca.BlendLab(cb, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
