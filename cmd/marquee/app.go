package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/source/opensubtitles"
	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/adapter/source/yifysubs"
	"github.com/mmcdole/marquee/internal/details"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/overlay"
	"github.com/mmcdole/marquee/internal/platform"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/subtitle"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// catalogTTL bounds how long trending rows are reused
const catalogTTL = 10 * time.Minute

func runBrowser(cmd *cobra.Command, args []string) error {
	if !cfg.IsConfigured() {
		return runSetupFlow(cmd.Context())
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("marquee needs an interactive terminal")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	caps, err := platform.Resolve(ctx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to resolve platform: %w", err)
	}
	logger.Info("capabilities resolved", "platform", caps.Name())

	device, err := store.NewDeviceStore(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("failed to open device store: %w", err)
	}
	defer device.Close()

	meta := newMetadataClient()
	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, cfg.Player.SubtitleFlag, logger)

	var (
		subs     *subtitle.Service
		language string
	)
	if cfg.Subtitles.Enabled {
		subs = subtitle.NewService([]domain.SubtitleRepository{
			opensubtitles.NewResolver(cfg.Subtitles.OpenSubtitlesURL, caps.Fetcher(), logger),
			yifysubs.NewResolver(cfg.Subtitles.YifyURL, caps.Fetcher(), logger),
		}, logger)
		language = cfg.Subtitles.Language
	}

	playbackSvc := service.NewPlaybackService(caps, subtitleResolver(subs), launcher, device, language, logger)

	model := tui.NewModel(tui.Deps{
		Catalog:  service.NewCatalogService(meta, catalogTTL, logger),
		Library:  service.NewLibraryService(caps.CloudAPI(), cfg.Cloud.CacheTTL, nil, logger),
		Playback: playbackSvc,
		Loader:   details.NewLoader(details.NewAggregator(meta, logger)),
		Overlay:  overlay.NewController(meta, meta, playbackSvc, device, logger),
		Device:   device,
		Now:      time.Now,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func newMetadataClient() *tmdb.Client {
	return tmdb.NewClient(tmdb.Options{
		BaseURL:           cfg.Metadata.BaseURL,
		ImageBaseURL:      cfg.Metadata.ImageBaseURL,
		APIKey:            cfg.Metadata.APIKey,
		Language:          cfg.Metadata.Language,
		RequestsPerSecond: cfg.Metadata.RequestsPerSecond,
	}, logger)
}

// subtitleResolver keeps a nil *subtitle.Service from becoming a non-nil
// interface value.
func subtitleResolver(s *subtitle.Service) interface {
	Resolve(ctx context.Context, imdbID string, season, episode int) []domain.Subtitle
} {
	if s == nil {
		return nil
	}
	return s
}
