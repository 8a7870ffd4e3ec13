package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/scene"
)

var runSettings scene.Settings

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the backdrop window (default)",
	Long: `Opens the backdrop window.

Keys: T toggle theme, O open a config file, A open an audio track,
Space pause audio, H toggle the overlay, Esc or Q quit.`,
	Args: cobra.NoArgs,
	RunE: runBackdrop,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&runSettings.Watch, "watch", true, "Reload the config file when it changes")
	cmd.Flags().StringVar(&runSettings.Track, "track", "", "Ambient audio track (wav, mp3, flac)")
	cmd.Flags().BoolVar(&runSettings.StaticNoise, "static-noise", false, "Use the static noise pattern instead of the generator")
	cmd.Flags().BoolVar(&runSettings.Overlay, "overlay", false, "Show the status overlay")
}

func runBackdrop(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runSettings.ConfigPath = configPath
	logger.Debug("options loaded", zap.String("config", configPath), zap.String("theme", opts.Theme))
	if err := scene.Run(ctx, opts, runSettings, logger); err != nil {
		return fmt.Errorf("backdrop: %w", err)
	}
	return nil
}
