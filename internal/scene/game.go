// Package scene hosts the backdrop in an ebiten window.
package scene

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/audio"
	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/stage"
)

const helpLine = "T theme  O config  A audio  Space pause  H overlay  Esc/Q quit"

// Game implements ebiten.Game around a stage.Stage.
type Game struct {
	stage    *stage.Stage
	env      *windowEnvironment
	viewport *capability.Viewport
	surface  *NoiseSurface
	player   *audio.Player
	log      *zap.Logger

	// reload hands options from the config watcher goroutine to Update.
	reloadMu  sync.Mutex
	reload    *config.Options
	reloadErr error

	configPath  string
	onConfig    func(path string)
	showOverlay bool
	lastErr     error
	quitting    atomic.Bool
}

// Update handles input, applies pending reloads and advances the effects.
func (g *Game) Update() error {
	if g.quitting.Load() {
		return ebiten.Termination
	}
	g.applyReload()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.stage.ToggleTheme()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.stage.TogglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.showOverlay = !g.showOverlay
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.setErr(g.openConfigDialog())
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.setErr(g.openAudioDialog())
	}

	g.stage.Tick()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	p := painter{dst: screen, noise: g.surface}
	g.stage.Draw(p, p)
	if !g.showOverlay {
		return
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  fps %.0f", g.stage.Status(), ebiten.ActualFPS()), 8, 8)
	ebitenutil.DebugPrintAt(screen, helpLine, 8, 24)
	if g.lastErr != nil {
		ebitenutil.DebugPrintAt(screen, "error: "+g.lastErr.Error(), 8, 40)
	}
}

// Layout keeps the screen at the window's logical size. The first call starts
// the stage; later size changes notify viewport listeners.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.env.resize(outsideWidth, outsideHeight) {
		g.surface.Resize(outsideWidth, outsideHeight)
		g.viewport.Notify()
	}
	g.stage.Start()
	return outsideWidth, outsideHeight
}

// quit ends the game at the next Update. Safe from any goroutine.
func (g *Game) quit() { g.quitting.Store(true) }

func (g *Game) setErr(err error) {
	if err == nil {
		return
	}
	g.lastErr = err
	g.log.Warn("action failed", zap.Error(err))
}

// queueReload is the config watcher callback.
func (g *Game) queueReload(opts *config.Options, err error) {
	g.reloadMu.Lock()
	defer g.reloadMu.Unlock()
	g.reload, g.reloadErr = opts, err
}

func (g *Game) applyReload() {
	g.reloadMu.Lock()
	opts, err := g.reload, g.reloadErr
	g.reload, g.reloadErr = nil, nil
	g.reloadMu.Unlock()

	if err != nil {
		g.setErr(err)
		return
	}
	if opts == nil {
		return
	}
	if err := g.stage.Apply(opts); err != nil {
		g.setErr(err)
		return
	}
	g.lastErr = nil
}

func (g *Game) openConfigDialog() error {
	path, err := zenity.SelectFile(
		zenity.Title("Open Backdrop Config"),
		zenity.FileFilters{{Name: "YAML", Patterns: []string{"*.yaml", "*.yml"}}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	if err != nil {
		return err
	}

	opts, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := g.stage.Apply(opts); err != nil {
		return err
	}
	g.configPath = path
	if g.onConfig != nil {
		g.onConfig(path)
	}
	g.log.Info("config opened", zap.String("path", path))
	return nil
}

func (g *Game) openAudioDialog() error {
	path, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{Name: "Audio", Patterns: audio.Extensions}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	if err != nil {
		return err
	}
	return g.player.Load(path)
}
