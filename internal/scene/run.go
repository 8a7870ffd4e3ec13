package scene

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/audio"
	"github.com/iburimskiy/backdrop/internal/capability"
	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/stage"
	"github.com/iburimskiy/backdrop/internal/theme"
)

// Settings are run-time choices that are not part of the config file.
type Settings struct {
	ConfigPath string
	// Watch reloads ConfigPath when it changes on disk.
	Watch bool
	// Track overrides the configured ambient track.
	Track string
	// StaticNoise pretends the noise surface has no drawing context.
	StaticNoise bool
	Overlay     bool
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(ctx context.Context, opts *config.Options, set Settings, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	env := &windowEnvironment{}
	viewport := capability.NewViewport()
	surface := NewNoiseSurface(set.StaticNoise)
	player := audio.NewPlayer(opts.Audio.RingSize, log)

	st, err := stage.New(opts, stage.Deps{
		Prober:   capability.NewProber(capability.NewHintEnvironment(env)),
		Viewport: viewport,
		Surface:  surface,
		Track:    player,
		Detect:   theme.SystemDetector,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("build stage: %w", err)
	}
	defer st.Close()

	g := &Game{
		stage:       st,
		env:         env,
		viewport:    viewport,
		surface:     surface,
		player:      player,
		log:         log.Named("scene"),
		configPath:  set.ConfigPath,
		showOverlay: set.Overlay,
	}

	var watcher *config.Watcher
	watch := func(path string) {
		if watcher != nil {
			watcher.Stop()
			watcher = nil
		}
		w, err := config.NewWatcher(path, g.queueReload, log)
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			log.Warn("config hot reload disabled", zap.String("path", path), zap.Error(err))
			return
		}
		watcher = w
	}
	if set.Watch && set.ConfigPath != "" {
		watch(set.ConfigPath)
		g.onConfig = watch
	}
	defer func() {
		if watcher != nil {
			watcher.Stop()
		}
	}()

	track := opts.Audio.Track
	if set.Track != "" {
		track = set.Track
	}
	if track != "" {
		if err := player.Load(track); err != nil {
			log.Warn("ambient track not loaded", zap.String("path", track), zap.Error(err))
		}
	}

	ebiten.SetWindowSize(opts.Window.Width, opts.Window.Height)
	ebiten.SetWindowTitle(opts.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(opts.Window.Fullscreen)
	ebiten.SetTPS(config.TPS)

	go func() {
		<-ctx.Done()
		g.quit()
	}()

	log.Info("starting", zap.String("theme", string(st.Theme().Current())))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
