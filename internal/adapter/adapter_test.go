package adapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Metadata.BaseURL)
	assert.Equal(t, 10*time.Minute, cfg.Cloud.CacheTTL)
	assert.Equal(t, PlatformAuto, cfg.Platform.Mode)
	assert.False(t, cfg.IsConfigured())
	assert.False(t, cfg.HasCloud())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
metadata:
  api_key: from-file
cloud:
  url: https://example.supabase.co
  cache_ttl: 5m
platform:
  mode: direct
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("MARQUEE_CLOUD_ANON_KEY", "from-env")

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Metadata.APIKey)
	assert.Equal(t, "from-env", cfg.Cloud.AnonKey)
	assert.Equal(t, 5*time.Minute, cfg.Cloud.CacheTTL)
	assert.Equal(t, PlatformDirect, cfg.Platform.Mode)
	assert.True(t, cfg.HasCloud())
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MARQUEE_METADATA_API_KEY=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("MARQUEE_METADATA_API_KEY") })

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Metadata.APIKey)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Metadata.APIKey = "k"
	cfg.Subtitles.Language = "fr"

	require.NoError(t, saveConfig(viper.New(), cfg, dir))

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "k", loaded.Metadata.APIKey)
	assert.Equal(t, "fr", loaded.Subtitles.Language)
	assert.Equal(t, cfg.Cloud.CacheTTL, loaded.Cloud.CacheTTL)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestSetupLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "marquee.log")
	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("hello", "k", "v")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestBuildArgs(t *testing.T) {
	opts := LaunchOptions{
		Title:       "Heat",
		SubtitleURL: "https://subs/heat.srt",
		Headers:     map[string]string{"Referer": "https://host/", "Origin": "https://host"},
	}

	assert.Equal(t, []string{
		"--force-media-title=Heat",
		"--sub-file=https://subs/heat.srt",
		"--http-header-fields=Origin: https://host,Referer: https://host/",
	}, buildArgs(players["mpv"], opts))

	assert.Equal(t, []string{
		"--meta-title=Heat",
		"--sub-file=https://subs/heat.srt",
		"--http-referrer=https://host/",
	}, buildArgs(players["vlc"], opts))

	assert.Empty(t, buildArgs(playerConfig{}, opts))
}

func TestNewLauncherDetectsSubtitleFlag(t *testing.T) {
	l := NewLauncher("/usr/local/bin/iina-cli", nil, "", NullLogger())
	assert.Equal(t, "--mpv-sub-file=", l.subtitleFlag)

	l = NewLauncher("myplayer", nil, "--subs=", NullLogger())
	assert.Equal(t, "--subs=", l.subtitleFlag)
}

func TestLaunchWithoutPlayers(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = orig })

	_, err := NewLauncher("", nil, "", NullLogger()).Launch("https://stream/master.m3u8", LaunchOptions{})
	assert.ErrorContains(t, err, "no supported player found")
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "trailers", r.Header.Get("X-Agent"))
			w.Write([]byte("body"))
		case "/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client())
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/ok", http.Header{"X-Agent": {"trailers"}})
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))

	_, err = f.Fetch(ctx, srv.URL+"/missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.Fetch(ctx, srv.URL+"/broken", nil)
	assert.ErrorContains(t, err, "unexpected status 502")

	_, err = f.Fetch(ctx, "file:///etc/passwd", nil)
	assert.ErrorContains(t, err, "unsupported scheme")
}
