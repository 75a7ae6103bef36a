package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	clientgame "github.com/cbodonnell/galplayer/client/game"
	"github.com/cbodonnell/galplayer/client/fonts"
	"github.com/cbodonnell/galplayer/client/objects"
	"github.com/cbodonnell/galplayer/client/ui"
	"github.com/cbodonnell/galplayer/pkg/api"
	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/audio"
	"github.com/cbodonnell/galplayer/pkg/game"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/repositories"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/cbodonnell/galplayer/pkg/state"
	"github.com/cbodonnell/galplayer/pkg/workers"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
)

const checkpointChannelSize = 16

type playOptions struct {
	resume     bool
	fullscreen bool
	muted      bool
	debug      bool
	noSaves    bool
	start      string
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play [story]",
		Short: "Play a story",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), ctx, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Continue from the latest save of the story")
	cmd.Flags().BoolVar(&opts.fullscreen, "fullscreen", false, "Start in fullscreen")
	cmd.Flags().BoolVar(&opts.muted, "mute", false, "Mute all audio")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable the debug overlay and control API")
	cmd.Flags().BoolVar(&opts.noSaves, "no-saves", false, "Do not record progress")
	cmd.Flags().StringVar(&opts.start, "start", "", "Scene to start from (overrides story.start)")
	return cmd
}

func runPlay(parent context.Context, cctx *commandContext, args []string, opts playOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	story, err := cctx.loadStory(args)
	if err != nil {
		return err
	}
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.fullscreen {
		cfg.Display.Fullscreen = true
	}
	if opts.muted {
		cfg.Audio.Muted = true
	}
	if opts.debug {
		cfg.Debug.Enabled = true
	}
	if opts.noSaves {
		cfg.Saves.Enabled = false
	}
	if opts.start != "" {
		cfg.Story.Start = opts.start
	}
	if err := narrative.Validate(story); err != nil {
		log.Warn("Story has problems, playing anyway: %v", err)
	}
	id := storyID(story, cfg.Story.Path)
	log.Info("Playing %q from %s", id, cfg.Story.Path)

	faces, err := fonts.NewFaces(fonts.Options{
		TextSize: cfg.Dialogue.FontSize,
		NameSize: cfg.Dialogue.NameFontSize,
	})
	if err != nil {
		return err
	}
	stage := objects.NewStage()
	overlay := ui.NewOverlay(ui.NewOverlayOptions{
		Faces:  faces,
		Width:  cfg.Display.Width,
		Height: cfg.Display.Height,
	})
	loader := assets.NewDirLoader(cfg.Assets.Root, assets.FileLoaderOptions{
		Dirs:    cfg.Assets.Dirs,
		Texture: objects.TextureFromImage,
		Device:  audio.NewEbitenDevice(cfg.Audio.SampleRate),
	})

	managerOpts := game.NewGameManagerOptions{
		Config:  cfg,
		Store:   story,
		StoryID: id,
		Surface: stage,
		Overlay: overlay,
		Loader:  loader,
	}

	var resume *models.Save
	var workerWG sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer func() {
		stopWorkers()
		workerWG.Wait()
	}()

	if cfg.Saves.Enabled {
		repository, err := repositories.Open(ctx, cfg.Saves.Driver, cfg.Saves.DSN)
		if err != nil {
			return fmt.Errorf("open saves: %w", err)
		}
		defer repository.Close(context.Background())

		if opts.resume {
			resume, err = repository.LatestSave(ctx, id)
			if err != nil {
				if !repositories.IsNotFound(err) {
					return fmt.Errorf("load latest save: %w", err)
				}
				log.Info("No save found for %q, starting from the beginning", id)
			}
		}

		stateManager := state.NewInMemoryStateManager()
		checkpointChan := make(chan *models.Save, checkpointChannelSize)
		managerOpts.StateManager = stateManager
		managerOpts.CheckpointChan = checkpointChan

		autosaveWorker := workers.NewAutosaveWorker(workers.NewAutosaveWorkerOptions{
			Repository:   repository,
			SaveChan:     checkpointChan,
			StateManager: stateManager,
			Interval:     cfg.AutosaveInterval(),
		})
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			autosaveWorker.Start(workerCtx)
		}()
	} else if opts.resume {
		log.Warn("Saves are disabled, ignoring --resume")
	}

	manager := game.NewGameManager(managerOpts)

	if cfg.Debug.Enabled {
		apiServer := api.NewAPIServer(api.NewAPIServerOptions{
			Addr: cfg.Debug.Bind,
			Game: manager,
		})
		go apiServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Stop(shutdownCtx); err != nil {
				log.Error("Failed to stop API server: %v", err)
			}
		}()
	}

	g, err := clientgame.NewGame(ctx, clientgame.NewGameOptions{
		Debug:   cfg.Debug.Enabled,
		Title:   cfg.Display.Title,
		Width:   cfg.Display.Width,
		Height:  cfg.Display.Height,
		Manager: manager,
		Stage:   stage,
		Overlay: overlay,
		Faces:   faces,
		Resume:  resume,
	})
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	ebiten.SetWindowTitle(cfg.Display.Title)
	ebiten.SetWindowSize(cfg.Display.Width/2, cfg.Display.Height/2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Display.Fullscreen)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	log.Info("Player closed")
	return nil
}
