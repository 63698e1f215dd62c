package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlatformMode selects how privileged capabilities are reached
type PlatformMode string

const (
	PlatformAuto    PlatformMode = "auto"    // desktop helper when reachable, else direct
	PlatformDesktop PlatformMode = "desktop" // always through the helper process
	PlatformDirect  PlatformMode = "direct"  // plain HTTPS from this process
)

// Config holds all application configuration
type Config struct {
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Streams   StreamsConfig   `mapstructure:"streams"`
	Cloud     CloudConfig     `mapstructure:"cloud"`
	Subtitles SubtitlesConfig `mapstructure:"subtitles"`
	Player    PlayerConfig    `mapstructure:"player"`
	Platform  PlatformConfig  `mapstructure:"platform"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// MetadataConfig holds the movie database API settings
type MetadataConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	ImageBaseURL      string  `mapstructure:"image_base_url"`
	Language          string  `mapstructure:"language"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// StreamsConfig holds the stream resolver settings
type StreamsConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Provider string `mapstructure:"provider"` // e.g. "flixhq"
}

// CloudConfig holds the cloud library backend settings
type CloudConfig struct {
	URL      string        `mapstructure:"url"`
	AnonKey  string        `mapstructure:"anon_key"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// SubtitlesConfig holds subtitle provider settings
type SubtitlesConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Language         string `mapstructure:"language"` // preferred ISO 639-1 code
	OpenSubtitlesURL string `mapstructure:"opensubtitles_url"`
	YifyURL          string `mapstructure:"yify_url"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command      string   `mapstructure:"command"`
	Args         []string `mapstructure:"args"`
	SubtitleFlag string   `mapstructure:"subtitle_flag"` // e.g., "--sub-file="
}

// PlatformConfig holds capability provider settings
type PlatformConfig struct {
	Mode   PlatformMode `mapstructure:"mode"`
	Socket string       `mapstructure:"socket"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// CacheConfig holds on-device storage configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Metadata: MetadataConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p/original",
			Language:          "en-US",
			RequestsPerSecond: 20,
		},
		Streams: StreamsConfig{
			BaseURL:  "http://localhost:3000",
			Provider: "flixhq",
		},
		Cloud: CloudConfig{
			CacheTTL: 10 * time.Minute,
		},
		Subtitles: SubtitlesConfig{
			Enabled:          true,
			Language:         "en",
			OpenSubtitlesURL: "https://rest.opensubtitles.org",
			YifyURL:          "https://yifysubtitles.ch",
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		Platform: PlatformConfig{
			Mode:   PlatformAuto,
			Socket: defaultSocketPath(),
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "cache")
	}
}

// defaultSocketPath returns where the desktop helper listens
func defaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "marquee.sock")
	}
	return filepath.Join(os.TempDir(), "marquee.sock")
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return loadConfig(viper.GetViper(), defaultConfigPath(), ".")
}

// loadConfig reads config.yaml from the given directories. A .env file in
// the first directory is loaded into the environment before viper reads it;
// variables already set win.
func loadConfig(v *viper.Viper, dirs ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(dirs) > 0 {
		envFile := filepath.Join(dirs[0], ".env")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading %s: %w", envFile, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// Environment variable overrides, e.g. MARQUEE_METADATA_API_KEY
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// bindEnvKeys registers the keys AutomaticEnv cannot discover on its own
// because Unmarshal only visits keys viper already knows about.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"metadata.api_key", "metadata.base_url", "metadata.language",
		"streams.base_url", "streams.provider",
		"cloud.url", "cloud.anon_key", "cloud.cache_ttl",
		"subtitles.enabled", "subtitles.language",
		"player.command",
		"platform.mode", "platform.socket",
		"logging.file", "logging.level",
		"cache.dir",
	} {
		_ = v.BindEnv(key)
	}
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return saveConfig(viper.GetViper(), cfg, defaultConfigPath())
}

func saveConfig(v *viper.Viper, cfg *Config, configPath string) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("metadata.api_key", cfg.Metadata.APIKey)
	v.Set("metadata.base_url", cfg.Metadata.BaseURL)
	v.Set("metadata.image_base_url", cfg.Metadata.ImageBaseURL)
	v.Set("metadata.language", cfg.Metadata.Language)
	v.Set("metadata.requests_per_second", cfg.Metadata.RequestsPerSecond)

	v.Set("streams.base_url", cfg.Streams.BaseURL)
	v.Set("streams.provider", cfg.Streams.Provider)

	v.Set("cloud.url", cfg.Cloud.URL)
	v.Set("cloud.anon_key", cfg.Cloud.AnonKey)
	v.Set("cloud.cache_ttl", cfg.Cloud.CacheTTL.String())

	v.Set("subtitles.enabled", cfg.Subtitles.Enabled)
	v.Set("subtitles.language", cfg.Subtitles.Language)
	v.Set("subtitles.opensubtitles_url", cfg.Subtitles.OpenSubtitlesURL)
	v.Set("subtitles.yify_url", cfg.Subtitles.YifyURL)

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)
	v.Set("player.subtitle_flag", cfg.Player.SubtitleFlag)

	v.Set("platform.mode", string(cfg.Platform.Mode))
	v.Set("platform.socket", cfg.Platform.Socket)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)

	v.Set("cache.dir", cfg.Cache.Dir)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the metadata API key is set
func (c *Config) IsConfigured() bool {
	return c.Metadata.APIKey != ""
}

// HasCloud returns true if cloud library credentials are present
func (c *Config) HasCloud() bool {
	return c.Cloud.URL != "" && c.Cloud.AnonKey != ""
}

// ClearCache removes all cached data
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
