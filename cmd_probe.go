package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/glitch"
	"github.com/iburimskiy/backdrop/internal/noise"
	"github.com/iburimskiy/backdrop/internal/tier"
)

var (
	probeWidth  int
	probeHeight int
	probeRatio  float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff2d95"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b5cff")).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6efff6"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#8b5cff")).Padding(0, 1)
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print the capability snapshot and the effect parameters it resolves to",
	Long: `Probes a viewport the way the window would and prints what each effect
would do with it. Motion, memory and network hints come from
BACKDROP_REDUCED_MOTION, BACKDROP_DEVICE_MEMORY and BACKDROP_CONNECTION.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions()
		if err != nil {
			return err
		}
		w, h := probeWidth, probeHeight
		if w <= 0 {
			w = opts.Window.Width
		}
		if h <= 0 {
			h = opts.Window.Height
		}

		env := capability.NewHintEnvironment(capability.StaticEnvironment{Width: w, Height: h, PixelRatio: probeRatio})
		snap := capability.NewProber(env).Probe()
		t := tier.Resolve(snap, opts.Bubbles.Base())
		intensity := opts.Intensity()

		fmt.Fprintln(cmd.OutOrStdout(), renderProbe(snap, t, intensity))
		return nil
	},
}

func renderProbe(snap capability.Snapshot, t tier.Tier, intensity noise.Intensity) string {
	var b strings.Builder
	row := func(k, v string) {
		b.WriteString(keyStyle.Render(k) + valueStyle.Render(v) + "\n")
	}

	b.WriteString(titleStyle.Render("device") + "\n")
	row("viewport", fmt.Sprintf("%dx%d (%s px)", snap.ViewportWidth, snap.ViewportHeight,
		humanize.Comma(int64(snap.ViewportWidth*snap.ViewportHeight))))
	row("pixel ratio", fmt.Sprintf("%.2g (capped %.2g)", snap.DevicePixelRatio, snap.CappedPixelRatio()))
	row("class", deviceClass(snap))
	row("reduced motion", fmt.Sprint(snap.ReducedMotion))
	memory := "unknown"
	if snap.DeviceMemoryGB > 0 {
		memory = humanize.IBytes(uint64(snap.DeviceMemoryGB * (1 << 30)))
	}
	row("memory", memory)
	if snap.Connection != "" {
		row("connection", snap.Connection)
	}
	row("low end", fmt.Sprint(snap.IsLowEndDevice))

	b.WriteString("\n" + titleStyle.Render("bubbles") + "\n")
	row("count", fmt.Sprint(t.Count))
	row("size", fmt.Sprintf("%.0f-%.0f px", t.Size.Min, t.Size.Max))
	row("duration", fmt.Sprintf("%.1f-%.1f s", t.Duration.Min, t.Duration.Max))
	row("drift", fmt.Sprintf("±%.0f px", t.Drift.Max))

	b.WriteString("\n" + titleStyle.Render("glitch") + "\n")
	scale := noise.ResolutionScale(snap.IsMobile, intensity) * snap.CappedPixelRatio()
	row("noise", fmt.Sprintf("%s, %.2gx resolution", intensity, scale))
	row("particles", fmt.Sprint(glitch.ParticleCount(snap)))

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func deviceClass(snap capability.Snapshot) string {
	switch {
	case snap.IsMobile:
		return "mobile"
	case snap.IsTablet:
		return "tablet"
	}
	return "desktop"
}
