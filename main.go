package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "backdrop",
	Short: "Animated theme-aware desktop backdrop",
	Long: `backdrop renders floating pastel bubbles in the light theme and a neon
glitch composition with procedural noise in the dark theme. Effects scale down
on small or low-end displays.

Run without a subcommand to open the window.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions()
		level, outputs := "", []string(nil)
		if err == nil {
			level, outputs = opts.Logging.Level, opts.Logging.Outputs
		}
		logger, err = logging.New(level, outputs, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBackdrop,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Config file")

	addRunFlags(rootCmd)
	addRunFlags(runCmd)
	probeCmd.Flags().IntVar(&probeWidth, "width", 0, "Viewport width (default: configured window width)")
	probeCmd.Flags().IntVar(&probeHeight, "height", 0, "Viewport height (default: configured window height)")
	probeCmd.Flags().Float64Var(&probeRatio, "pixel-ratio", 1, "Device pixel ratio")
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(runCmd, probeCmd, configCmd)
}

// loadOptions reads the config file named by --config.
func loadOptions() (*config.Options, error) {
	return config.Load(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
