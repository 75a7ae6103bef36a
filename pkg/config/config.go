// Package config loads, normalizes and validates player configuration.
//
// Settings come from a TOML file layered over repository defaults. Command
// line flags are applied by the caller after Load.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns an annotated config file with every default spelled out.
func SampleConfig() string {
	return sampleConfig
}

type Story struct {
	// Path is the story file. Asset directories are resolved relative to
	// its parent unless assets.root is set.
	Path string `toml:"path"`
	// Start overrides the initial scene of the story.
	Start string `toml:"start"`
}

type Display struct {
	Title            string `toml:"title"`
	Width            int    `toml:"width"`
	Height           int    `toml:"height"`
	Fullscreen       bool   `toml:"fullscreen"`
	EffectDurationMS int    `toml:"effect_duration_ms"`
}

type Dialogue struct {
	RevealSpeedMS int    `toml:"reveal_speed_ms"`
	StartLabel    string `toml:"start_label"`
	ContinueLabel string `toml:"continue_label"`
	FontSize      int    `toml:"font_size"`
	NameFontSize  int    `toml:"name_font_size"`
}

type Audio struct {
	SampleRate  int     `toml:"sample_rate"`
	MusicVolume float64 `toml:"music_volume"`
	VoiceVolume float64 `toml:"voice_volume"`
	SoundVolume float64 `toml:"sound_volume"`
	Muted       bool    `toml:"muted"`
}

type Assets struct {
	Root               string      `toml:"root"`
	Dirs               assets.Dirs `toml:"dirs"`
	LoadTimeoutSeconds int         `toml:"load_timeout_seconds"`
	PreloadWorkers     int         `toml:"preload_workers"`
	// PreloadAll loads every asset of the story behind the loading screen.
	PreloadAll bool `toml:"preload_all"`
}

type Saves struct {
	Enabled bool `toml:"enabled"`
	// Driver is "sqlite" or "postgres".
	Driver                  string `toml:"driver"`
	DSN                     string `toml:"dsn"`
	AutosaveIntervalSeconds int    `toml:"autosave_interval_seconds"`
}

type Debug struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
}

type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates every setting of the player.
type Config struct {
	Story    Story    `toml:"story"`
	Display  Display  `toml:"display"`
	Dialogue Dialogue `toml:"dialogue"`
	Audio    Audio    `toml:"audio"`
	Assets   Assets   `toml:"assets"`
	Saves    Saves    `toml:"saves"`
	Debug    Debug    `toml:"debug"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the default location of the config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/galplayer/config.toml")
}

// Load reads the config at path, or the default location when path is empty.
// A missing file is not an error; defaults are used. It returns the resolved
// path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) RevealSpeed() time.Duration {
	return time.Duration(c.Dialogue.RevealSpeedMS) * time.Millisecond
}

func (c *Config) EffectDuration() time.Duration {
	return time.Duration(c.Display.EffectDurationMS) * time.Millisecond
}

func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.Assets.LoadTimeoutSeconds) * time.Second
}

func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.Saves.AutosaveIntervalSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path expansion rules.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
