package config

import (
	"errors"
	"fmt"

	"github.com/cbodonnell/galplayer/pkg/log"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDisplay(); err != nil {
		return err
	}
	if c.Dialogue.RevealSpeedMS < 0 {
		return errors.New("dialogue.reveal_speed_ms must be zero or positive")
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if c.Assets.LoadTimeoutSeconds <= 0 {
		return errors.New("assets.load_timeout_seconds must be positive")
	}
	if err := c.validateSaves(); err != nil {
		return err
	}
	if c.Debug.Enabled && c.Debug.Bind == "" {
		return errors.New("debug.bind must be set when the debug server is enabled")
	}
	if _, err := log.ParseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func (c *Config) validateDisplay() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Display.EffectDurationMS < 0 {
		return errors.New("display.effect_duration_ms must be zero or positive")
	}
	return nil
}

func (c *Config) validateAudio() error {
	switch c.Audio.SampleRate {
	case 22050, 44100, 48000:
	default:
		return fmt.Errorf("audio.sample_rate %d is not supported", c.Audio.SampleRate)
	}
	for name, v := range map[string]float64{
		"music_volume": c.Audio.MusicVolume,
		"voice_volume": c.Audio.VoiceVolume,
		"sound_volume": c.Audio.SoundVolume,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("audio.%s must be between 0 and 1", name)
		}
	}
	return nil
}

func (c *Config) validateSaves() error {
	if !c.Saves.Enabled {
		return nil
	}
	switch c.Saves.Driver {
	case savesDriverSQLite, savesDriverPostgres:
	case savesDriverMemory:
		return nil
	default:
		return fmt.Errorf("saves.driver %q must be sqlite, postgres or memory", c.Saves.Driver)
	}
	if c.Saves.DSN == "" {
		return fmt.Errorf("saves.dsn is required (or set %s)", envSavesDSN)
	}
	if c.Saves.AutosaveIntervalSeconds < 0 {
		return errors.New("saves.autosave_interval_seconds must be zero or positive")
	}
	return nil
}
