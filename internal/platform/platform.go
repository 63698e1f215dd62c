// Package platform resolves how privileged network capabilities are reached:
// directly from this process, or through a desktop helper over a unix socket.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/adapter/source/consumet"
	"github.com/mmcdole/marquee/internal/adapter/source/supabase"
	"github.com/mmcdole/marquee/internal/domain"
)

// Fetcher executes a single GET and returns the body
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
}

// Capabilities is the surface consumers use for stream resolution, the
// cloud library and provider fetches. It is resolved once at startup.
type Capabilities interface {
	// Name identifies the implementation ("direct" or "desktop")
	Name() string

	// GetStream resolves a playable stream
	GetStream(ctx context.Context, q domain.StreamQuery) (*domain.StreamResult, error)

	// CloudAPI returns the cloud library, or nil when it is not configured
	CloudAPI() domain.CloudLibraryRepository

	// Fetcher returns the transport subtitle providers should use
	Fetcher() Fetcher
}

// handshakeTimeout bounds the helper health check in auto mode
const handshakeTimeout = 500 * time.Millisecond

// Resolve picks the capability implementation for cfg
func Resolve(ctx context.Context, cfg *adapter.Config, logger *slog.Logger) (Capabilities, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Platform.Mode {
	case adapter.PlatformDirect:
		return NewDirectFromConfig(cfg, logger), nil

	case adapter.PlatformDesktop:
		d := NewDesktop(cfg.Platform.Socket, logger)
		if err := d.Handshake(ctx); err != nil {
			return nil, fmt.Errorf("desktop helper at %s: %w", cfg.Platform.Socket, err)
		}
		return d, nil

	case adapter.PlatformAuto, "":
		d := NewDesktop(cfg.Platform.Socket, logger)
		hsCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
		defer cancel()
		err := d.Handshake(hsCtx)
		if err == nil {
			logger.Info("using desktop helper", "socket", cfg.Platform.Socket)
			return d, nil
		}
		logger.Debug("desktop helper not reachable, using direct access", "error", err)
		return NewDirectFromConfig(cfg, logger), nil

	default:
		return nil, fmt.Errorf("unknown platform mode %q", cfg.Platform.Mode)
	}
}

// Direct reaches every backend with plain HTTPS from this process
type Direct struct {
	streams domain.StreamRepository
	cloud   domain.CloudLibraryRepository
	fetcher Fetcher
}

// NewDirect wires the given backends. A nil cloud means not configured.
func NewDirect(streams domain.StreamRepository, cloud domain.CloudLibraryRepository, fetcher Fetcher) *Direct {
	if fetcher == nil {
		fetcher = adapter.NewHTTPFetcher(nil)
	}
	return &Direct{streams: streams, cloud: cloud, fetcher: fetcher}
}

// NewDirectFromConfig builds the backends named in cfg
func NewDirectFromConfig(cfg *adapter.Config, logger *slog.Logger) *Direct {
	streams := consumet.NewClient(cfg.Streams.BaseURL, cfg.Streams.Provider, logger)

	var cloud domain.CloudLibraryRepository
	if cfg.HasCloud() {
		cloud = supabase.NewClient(cfg.Cloud.URL, cfg.Cloud.AnonKey, logger)
	}

	return NewDirect(streams, cloud, adapter.NewHTTPFetcher(nil))
}

func (d *Direct) Name() string { return "direct" }

func (d *Direct) GetStream(ctx context.Context, q domain.StreamQuery) (*domain.StreamResult, error) {
	if d.streams == nil {
		return nil, domain.ErrNotConfigured
	}
	return d.streams.GetStream(ctx, q)
}

func (d *Direct) CloudAPI() domain.CloudLibraryRepository { return d.cloud }

func (d *Direct) Fetcher() Fetcher { return d.fetcher }
