package config

import "github.com/cbodonnell/galplayer/pkg/assets"

const (
	defaultStoryPath        = "assets/story/story.json"
	defaultTitle            = "galplayer"
	defaultWidth            = 1920
	defaultHeight           = 1080
	defaultEffectDurationMS = 200
	defaultRevealSpeedMS    = 50
	defaultStartLabel       = "Start"
	defaultContinueLabel    = "Continue"
	defaultFontSize         = 28
	defaultNameFontSize     = 32
	defaultSampleRate       = 44100
	defaultLoadTimeout      = 10
	defaultPreloadWorkers   = 4
	defaultSavesDriver      = "sqlite"
	defaultSavesDSN         = "~/.local/share/galplayer/saves.db"
	defaultAutosaveInterval = 30
	defaultDebugBind        = "127.0.0.1:7788"
	defaultLogLevel         = "info"
	envSavesDSN             = "GALPLAYER_SAVES_DSN"
	savesDriverSQLite       = "sqlite"
	savesDriverPostgres     = "postgres"
	savesDriverMemory       = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Story: Story{
			Path: defaultStoryPath,
		},
		Display: Display{
			Title:            defaultTitle,
			Width:            defaultWidth,
			Height:           defaultHeight,
			EffectDurationMS: defaultEffectDurationMS,
		},
		Dialogue: Dialogue{
			RevealSpeedMS: defaultRevealSpeedMS,
			StartLabel:    defaultStartLabel,
			ContinueLabel: defaultContinueLabel,
			FontSize:      defaultFontSize,
			NameFontSize:  defaultNameFontSize,
		},
		Audio: Audio{
			SampleRate:  defaultSampleRate,
			MusicVolume: 1,
			VoiceVolume: 1,
			SoundVolume: 1,
		},
		Assets: Assets{
			Dirs:               assets.DefaultDirs,
			LoadTimeoutSeconds: defaultLoadTimeout,
			PreloadWorkers:     defaultPreloadWorkers,
			PreloadAll:         true,
		},
		Saves: Saves{
			Enabled:                 true,
			Driver:                  defaultSavesDriver,
			DSN:                     defaultSavesDSN,
			AutosaveIntervalSeconds: defaultAutosaveInterval,
		},
		Debug: Debug{
			Bind: defaultDebugBind,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
