package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	cfg    *adapter.Config
	logger *slog.Logger

	platformFlag string
	debugFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Browse and play movies and shows from the terminal",
	Long: `marquee is a terminal front end for streaming movies and series.

Browse trending titles, search the catalog, open a detail overlay with
trailers and episodes, and hand playback to mpv, vlc or iina.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runBrowser,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&platformFlag, "platform", "", "capability provider: auto, desktop or direct")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log at debug level")

	rootCmd.AddCommand(helperCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(clearCacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if platformFlag != "" {
		cfg.Platform.Mode = adapter.PlatformMode(platformFlag)
	}
	if debugFlag {
		cfg.Logging.Level = "DEBUG"
	}

	logger, err = adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version, "command", cmd.Name())
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marquee %s\n", Version)
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove resume points and remembered trailer positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := adapter.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	},
}
