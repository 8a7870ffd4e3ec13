// Package config holds fixed tunables and the user-editable YAML options.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/backdrop/internal/glitch"
	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/theme"
	"github.com/iburimskiy/backdrop/internal/tier"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "backdrop"

	// TPS is the host update rate; effects assume it for spring stepping.
	TPS = 60

	// Layer overrides applied to the bubble field per theme.
	LightBubbleOverride = "opacity-75"
	DarkBubbleOverride  = "opacity-0"

	// Bubble palette alpha, 60% like the pastel defaults.
	BubbleAlpha = 153

	// RingSize is the default ambient track tap length in stereo samples.
	RingSize = 8192

	FileName       = "backdrop.yaml"
	ReloadDebounce = 200 * time.Millisecond

	EnvTheme     = "BACKDROP_THEME"
	EnvIntensity = "BACKDROP_INTENSITY"
	EnvBubbles   = "BACKDROP_BUBBLES"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Window struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	Fullscreen bool   `yaml:"fullscreen"`
}

// Bubbles are the light theme's requested parameters before tiering.
type Bubbles struct {
	Count    int        `yaml:"count"`
	MinSize  float64    `yaml:"min_size"`
	MaxSize  float64    `yaml:"max_size"`
	Duration tier.Range `yaml:"duration"`
	Palette  []string   `yaml:"palette,omitempty"`
	Override string     `yaml:"override,omitempty"`
}

type Glitch struct {
	Intensity string             `yaml:"intensity"`
	Palette   glitch.PaletteSpec `yaml:"palette"`
	Override  string             `yaml:"override,omitempty"`
}

type Audio struct {
	Track    string `yaml:"track,omitempty"`
	RingSize int    `yaml:"ring_size"`
}

type Logging struct {
	Level string `yaml:"level"`
	// Outputs are zap sink URLs or paths; empty means stderr.
	Outputs []string `yaml:"outputs,omitempty"`
}

type Options struct {
	Window  Window  `yaml:"window"`
	Theme   string  `yaml:"theme"`
	Bubbles Bubbles `yaml:"bubbles"`
	Glitch  Glitch  `yaml:"glitch"`
	Audio   Audio   `yaml:"audio"`
	Logging Logging `yaml:"logging"`
}

func Default() *Options {
	base := tier.DefaultBase()
	return &Options{
		Window: Window{Width: WindowWidth, Height: WindowHeight, Title: WindowTitle},
		Theme:  string(theme.System),
		Bubbles: Bubbles{
			Count:    base.Count,
			MinSize:  base.MinSize,
			MaxSize:  base.MaxSize,
			Duration: base.Duration,
		},
		Glitch: Glitch{
			Intensity: string(noise.Normal),
			Palette:   glitch.DefaultPaletteSpec(),
		},
		Audio:   Audio{RingSize: RingSize},
		Logging: Logging{Level: "info"},
	}
}

// DefaultPath is backdrop.yaml under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(dir, "backdrop", FileName)
}

// Load reads path over the defaults and applies environment overrides. A missing
// file yields the defaults.
func Load(path string) (*Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, opts); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := opts.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Save writes the options as YAML, creating the directory if needed.
func (o *Options) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := o.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (o *Options) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// ApplyEnv overrides theme, intensity and bubble count from the environment.
func (o *Options) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTheme); ok && v != "" {
		o.Theme = v
	}
	if v, ok := lookup(EnvIntensity); ok && v != "" {
		o.Glitch.Intensity = v
	}
	if v, ok := lookup(EnvBubbles); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvBubbles, v)
		}
		o.Bubbles.Count = n
	}
	return nil
}

// Validate reports the first problem found, wrapped in ErrInvalid.
func (o *Options) Validate() error {
	if o.Window.Width <= 0 || o.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, o.Window.Width, o.Window.Height)
	}
	if _, err := theme.Parse(o.Theme); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := noise.ParseIntensity(o.Glitch.Intensity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	b := o.Bubbles
	if b.Count < 0 {
		return fmt.Errorf("%w: bubble count %d", ErrInvalid, b.Count)
	}
	if b.MinSize <= 0 || b.MaxSize <= 0 {
		return fmt.Errorf("%w: bubble sizes must be positive", ErrInvalid)
	}
	if b.Duration.Min <= 0 || b.Duration.Max <= 0 {
		return fmt.Errorf("%w: bubble durations must be positive", ErrInvalid)
	}
	if _, err := b.Colors(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := o.Glitch.Palette.Parse(); err != nil {
		return fmt.Errorf("%w: glitch palette: %v", ErrInvalid, err)
	}
	if o.Audio.RingSize < 0 {
		return fmt.Errorf("%w: audio ring size %d", ErrInvalid, o.Audio.RingSize)
	}
	return nil
}

// Base converts the bubble options for the tier resolver. Inverted ranges are
// normalized there.
func (b Bubbles) Base() tier.Base {
	return tier.Base{Count: b.Count, MinSize: b.MinSize, MaxSize: b.MaxSize, Duration: b.Duration}
}

// Colors parses the bubble palette; nil means the built-in pastels.
func (b Bubbles) Colors() ([]color.NRGBA, error) {
	if len(b.Palette) == 0 {
		return nil, nil
	}
	out := make([]color.NRGBA, len(b.Palette))
	for i, hex := range b.Palette {
		c, err := glitch.ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("bubble palette[%d] %q: %w", i, hex, err)
		}
		c.A = BubbleAlpha
		out[i] = c
	}
	return out, nil
}

// ThemeChoice is the parsed theme; Validate has already checked it.
func (o *Options) ThemeChoice() theme.Theme {
	t, _ := theme.Parse(o.Theme)
	return t
}

func (o *Options) Intensity() noise.Intensity {
	i, _ := noise.ParseIntensity(o.Glitch.Intensity)
	return i
}
