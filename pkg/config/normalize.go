package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cbodonnell/galplayer/pkg/assets"
)

// Normalize fills blank settings with defaults and expands paths. Load calls
// it; callers that change settings afterwards should call it again.
func (c *Config) Normalize() error {
	if err := c.normalizeStory(); err != nil {
		return err
	}
	if err := c.normalizeAssets(); err != nil {
		return err
	}
	if err := c.normalizeSaves(); err != nil {
		return err
	}
	c.normalizeDialogue()
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func (c *Config) normalizeStory() error {
	if strings.TrimSpace(c.Story.Path) == "" {
		c.Story.Path = defaultStoryPath
	}
	var err error
	if c.Story.Path, err = expandPath(c.Story.Path); err != nil {
		return fmt.Errorf("story.path: %w", err)
	}
	c.Story.Start = strings.TrimSpace(c.Story.Start)
	return nil
}

func (c *Config) normalizeAssets() error {
	if strings.TrimSpace(c.Assets.Root) == "" {
		c.Assets.Root = filepath.Dir(c.Story.Path)
	}
	var err error
	if c.Assets.Root, err = expandPath(c.Assets.Root); err != nil {
		return fmt.Errorf("assets.root: %w", err)
	}
	d := &c.Assets.Dirs
	for _, pair := range []struct {
		value *string
		def   string
	}{
		{&d.Backgrounds, assets.DefaultDirs.Backgrounds},
		{&d.Characters, assets.DefaultDirs.Characters},
		{&d.Music, assets.DefaultDirs.Music},
		{&d.Voices, assets.DefaultDirs.Voices},
		{&d.Sounds, assets.DefaultDirs.Sounds},
	} {
		*pair.value = strings.Trim(filepath.ToSlash(strings.TrimSpace(*pair.value)), "/")
		if *pair.value == "" {
			*pair.value = pair.def
		}
	}
	if c.Assets.PreloadWorkers <= 0 {
		c.Assets.PreloadWorkers = defaultPreloadWorkers
	}
	return nil
}

func (c *Config) normalizeSaves() error {
	c.Saves.Driver = strings.ToLower(strings.TrimSpace(c.Saves.Driver))
	if c.Saves.Driver == "" {
		c.Saves.Driver = defaultSavesDriver
	}
	if dsn := strings.TrimSpace(os.Getenv(envSavesDSN)); dsn != "" {
		c.Saves.DSN = dsn
	}
	if c.Saves.Driver == savesDriverSQLite {
		if strings.TrimSpace(c.Saves.DSN) == "" {
			c.Saves.DSN = defaultSavesDSN
		}
		var err error
		if c.Saves.DSN, err = expandPath(c.Saves.DSN); err != nil {
			return fmt.Errorf("saves.dsn: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeDialogue() {
	if strings.TrimSpace(c.Dialogue.StartLabel) == "" {
		c.Dialogue.StartLabel = defaultStartLabel
	}
	if strings.TrimSpace(c.Dialogue.ContinueLabel) == "" {
		c.Dialogue.ContinueLabel = defaultContinueLabel
	}
	if c.Dialogue.FontSize <= 0 {
		c.Dialogue.FontSize = defaultFontSize
	}
	if c.Dialogue.NameFontSize <= 0 {
		c.Dialogue.NameFontSize = defaultNameFontSize
	}
}
