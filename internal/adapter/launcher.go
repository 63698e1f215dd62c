package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// LaunchOptions carries what a player needs besides the stream URL
type LaunchOptions struct {
	Title       string            // Window/media title
	SubtitleURL string            // Optional external subtitle track
	Headers     map[string]string // HTTP headers the stream host expects
}

// Process is a launched player
type Process struct {
	Player string
	cmd    *exec.Cmd
}

// Wait blocks until the player exits
func (p *Process) Wait() error {
	if p == nil || p.cmd == nil {
		return nil
	}
	return p.cmd.Wait()
}

// Launcher launches stream URLs in an external player
type Launcher struct {
	command      string   // configured player command, empty for auto-detection
	args         []string // additional arguments for the player
	subtitleFlag string   // subtitle flag prefix, e.g., "--sub-file="
	logger       *slog.Logger
}

// playerConfig defines how a known player takes its options
type playerConfig struct {
	subtitleFlag string // e.g. "--sub-file="
	titleFlag    string // e.g. "--force-media-title="
	headerFlag   string // flag taking "Key: Value" pairs, comma separated
	referrerFlag string // used when headerFlag is empty
	paths        map[string][]string
}

// players registry - single source of truth for all player configuration
var players = map[string]playerConfig{
	"mpv": {
		subtitleFlag: "--sub-file=",
		titleFlag:    "--force-media-title=",
		headerFlag:   "--http-header-fields=",
		paths: map[string][]string{
			"darwin":  {"mpv"},
			"linux":   {"mpv"},
			"windows": {"mpv"},
		},
	},
	"vlc": {
		subtitleFlag: "--sub-file=",
		titleFlag:    "--meta-title=",
		referrerFlag: "--http-referrer=",
		paths: map[string][]string{
			"darwin":  {"vlc", "/Applications/VLC.app/Contents/MacOS/VLC"},
			"linux":   {"vlc"},
			"windows": {"vlc"},
		},
	},
	"iina": {
		subtitleFlag: "--mpv-sub-file=",
		titleFlag:    "--mpv-force-media-title=",
		headerFlag:   "--mpv-http-header-fields=",
		paths: map[string][]string{
			"darwin": {"iina-cli"},
		},
	},
	"celluloid": {
		subtitleFlag: "--mpv-sub-file=",
		headerFlag:   "--mpv-http-header-fields=",
		paths: map[string][]string{
			"linux": {"celluloid"},
		},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "mpv", "vlc"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"mpv", "vlc"},
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// NewLauncher creates a new Launcher with auto-detection of subtitle flags
func NewLauncher(command string, args []string, subtitleFlag string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}

	resolvedFlag := subtitleFlag
	if resolvedFlag == "" && command != "" {
		if cfg, ok := players[playerName(command)]; ok {
			resolvedFlag = cfg.subtitleFlag
			logger.Debug("auto-detected player subtitle flag", "player", playerName(command), "flag", resolvedFlag)
		}
	}

	return &Launcher{
		command:      command,
		args:         args,
		subtitleFlag: resolvedFlag,
		logger:       logger,
	}
}

// playerName normalizes a command path to a registry key
func playerName(command string) string {
	base := filepath.Base(command)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(base)
	return strings.TrimSuffix(base, "-cli")
}

// Launch starts the configured or first detected player. The returned
// process can be waited on to learn when playback ended.
func (l *Launcher) Launch(url string, opts LaunchOptions) (*Process, error) {
	if l.command != "" {
		cfg := players[playerName(l.command)]
		cfg.subtitleFlag = l.subtitleFlag
		args := append(append([]string{}, l.args...), buildArgs(cfg, opts)...)
		if opts.SubtitleURL != "" && l.subtitleFlag == "" {
			l.logger.Warn("cannot attach subtitles - unknown player, configure subtitle_flag in config",
				"command", l.command)
		}
		return l.start(playerName(l.command), l.command, args, url)
	}

	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"] // default
	}

	for _, name := range candidates {
		cfg := players[name]
		for _, path := range cfg.paths[runtime.GOOS] {
			if _, err := lookPath(path); err != nil {
				l.logger.Debug("launch path not available", "player", name, "path", path, "error", err)
				continue
			}
			args := append(append([]string{}, l.args...), buildArgs(cfg, opts)...)
			return l.start(name, path, args, url)
		}
	}

	return nil, fmt.Errorf("no supported player found (tried %s)", strings.Join(candidates, ", "))
}

func (l *Launcher) start(name, path string, args []string, url string) (*Process, error) {
	args = append(args, url)
	l.logger.Info("launching player", "player", name, "command", path, "args", args)

	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return &Process{Player: name, cmd: cmd}, nil
}

// buildArgs renders launch options into player flags
func buildArgs(cfg playerConfig, opts LaunchOptions) []string {
	var args []string

	if opts.Title != "" && cfg.titleFlag != "" {
		args = append(args, cfg.titleFlag+opts.Title)
	}
	if opts.SubtitleURL != "" && cfg.subtitleFlag != "" {
		args = append(args, cfg.subtitleFlag+opts.SubtitleURL)
	}

	if len(opts.Headers) > 0 {
		switch {
		case cfg.headerFlag != "":
			keys := make([]string, 0, len(opts.Headers))
			for k := range opts.Headers {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fields := make([]string, 0, len(keys))
			for _, k := range keys {
				fields = append(fields, k+": "+opts.Headers[k])
			}
			args = append(args, cfg.headerFlag+strings.Join(fields, ","))
		case cfg.referrerFlag != "":
			if ref, ok := opts.Headers["Referer"]; ok {
				args = append(args, cfg.referrerFlag+ref)
			}
		}
	}

	return args
}
