package config

import (
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/theme"
	"github.com/iburimskiy/backdrop/internal/tier"
)

func TestDefault_IsValid(t *testing.T) {
	opts := Default()
	require.NoError(t, opts.Validate())
	assert.Equal(t, tier.DefaultBase(), opts.Bubbles.Base())
	assert.Equal(t, theme.System, opts.ThemeChoice())
	assert.Equal(t, noise.Normal, opts.Intensity())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvIntensity, "")
	t.Setenv(EnvBubbles, "")

	opts, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvIntensity, "")
	t.Setenv(EnvBubbles, "")

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
theme: dark
bubbles:
  count: 30
  palette: ["#ff0000", "#00f"]
glitch:
  intensity: intense
  palette:
    accent_color_1: "#123456"
`), 0o644))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, theme.Dark, opts.ThemeChoice())
	assert.Equal(t, 30, opts.Bubbles.Count)
	assert.Equal(t, 80.0, opts.Bubbles.MaxSize, "unset fields keep defaults")
	assert.Equal(t, noise.Intense, opts.Intensity())

	colors, err := opts.Bubbles.Colors()
	require.NoError(t, err)
	require.Len(t, colors, 2)
	assert.Equal(t, uint8(255), colors[1].B)
	assert.Equal(t, uint8(BubbleAlpha), colors[0].A)

	p, err := opts.Glitch.Palette.Parse()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x12), p.Accent1.R)
	assert.Equal(t, uint8(0x6e), p.Accent2.R, "other accents keep the default")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvTheme, "light")
	t.Setenv(EnvIntensity, "subtle")
	t.Setenv(EnvBubbles, "7")

	opts, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, theme.Light, opts.ThemeChoice())
	assert.Equal(t, noise.Subtle, opts.Intensity())
	assert.Equal(t, 7, opts.Bubbles.Count)
}

func TestApplyEnv_BadCount(t *testing.T) {
	opts := Default()
	err := opts.ApplyEnv(func(k string) (string, bool) {
		if k == EnvBubbles {
			return "many", true
		}
		return "", false
	})
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("theme: [unclosed"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"theme", func(o *Options) { o.Theme = "sepia" }},
		{"intensity", func(o *Options) { o.Glitch.Intensity = "loud" }},
		{"negative count", func(o *Options) { o.Bubbles.Count = -1 }},
		{"zero size", func(o *Options) { o.Bubbles.MinSize = 0 }},
		{"zero duration", func(o *Options) { o.Bubbles.Duration = tier.Range{} }},
		{"bubble color", func(o *Options) { o.Bubbles.Palette = []string{"pink"} }},
		{"glitch color", func(o *Options) { o.Glitch.Palette.AccentColor3 = "#xyz" }},
		{"window", func(o *Options) { o.Window.Width = 0 }},
		{"ring size", func(o *Options) { o.Audio.RingSize = -4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Default()
			tt.mutate(opts)
			assert.True(t, errors.Is(opts.Validate(), ErrInvalid))
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	opts := Default()
	opts.Theme = "dark"
	opts.Bubbles.Override = "opacity-50"
	require.NoError(t, opts.Save(path))

	var got Options
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, *opts, got)
}

// config is loaded by headless packages, so it must not pull in audio output or
// the window toolkit.
func TestPackage_ImportsNoHostLibraries(t *testing.T) {
	pkgs, err := parser.ParseDir(token.NewFileSet(), ".", func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ImportsOnly)
	require.NoError(t, err)
	require.Contains(t, pkgs, "config")

	for name, file := range pkgs["config"].Files {
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(path, "/internal/audio"), "%s imports %s", name, path)
			assert.False(t, strings.HasPrefix(path, "github.com/faiface/beep"), "%s imports %s", name, path)
			assert.False(t, strings.HasPrefix(path, "github.com/hajimehoshi/ebiten"), "%s imports %s", name, path)
		}
	}
}
