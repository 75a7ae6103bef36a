package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cbodonnell/galplayer/pkg/config"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

// ensureConfig loads the config once and installs the default logger at the
// configured level.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		parsedLogLevel, err := log.ParseLogLevel(level)
		if err != nil {
			c.configErr = fmt.Errorf("parse log level: %w", err)
			return
		}
		log.SetDefaultLogger(log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel))
		log.Debug("Log level set to %s", parsedLogLevel)
		c.config = cfg
	})
	return c.config, c.configErr
}

// storyPath returns the story named on the command line, or the configured
// one. A story given as an argument also moves the asset root next to it
// unless assets.root was set explicitly.
func (c *commandContext) storyPath(args []string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if len(args) == 0 {
		return cfg.Story.Path, nil
	}
	path, err := config.ExpandPath(args[0])
	if err != nil {
		return "", err
	}
	if cfg.Assets.Root == filepath.Dir(cfg.Story.Path) {
		cfg.Assets.Root = filepath.Dir(path)
	}
	cfg.Story.Path = path
	return path, nil
}

func (c *commandContext) loadStory(args []string) (*narrative.Story, error) {
	path, err := c.storyPath(args)
	if err != nil {
		return nil, err
	}
	story, err := narrative.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load story: %w", err)
	}
	return story, nil
}

// storyID keys saves: the story title, or the file name without extensions.
func storyID(story *narrative.Story, path string) string {
	if strings.TrimSpace(story.Title) != "" {
		return story.Title
	}
	base := filepath.Base(strings.TrimSuffix(path, ".zst"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
