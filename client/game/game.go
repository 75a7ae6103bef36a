package game

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/galplayer/client/fonts"
	"github.com/cbodonnell/galplayer/client/input"
	"github.com/cbodonnell/galplayer/client/objects"
	"github.com/cbodonnell/galplayer/client/scenes"
	"github.com/cbodonnell/galplayer/client/ui"
	"github.com/cbodonnell/galplayer/pkg/game"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	ctx context.Context
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	title string
	// width and height are the logical screen size. The display layout is
	// computed in the same units.
	width, height int

	manager *game.GameManager
	stage   *objects.Stage
	overlay *ui.Overlay
	faces   *fonts.Faces
	resume  *models.Save

	// mode is the current game mode.
	mode GameMode
	// scene is the current scene.
	scene   scenes.Scene
	loading *scenes.LoadingScene
}

type GameMode int

const (
	GameModeLoading GameMode = iota
	GameModePlay
	GameModeError
)

func (m GameMode) String() string {
	switch m {
	case GameModeLoading:
		return "Loading"
	case GameModePlay:
		return "Play"
	case GameModeError:
		return "Error"
	}
	return "Unknown"
}

type NewGameOptions struct {
	Debug  bool
	Title  string
	Width  int
	Height int

	// Manager must have been created with Stage as its surface and Overlay
	// as its overlay.
	Manager *game.GameManager
	Stage   *objects.Stage
	Overlay *ui.Overlay
	Faces   *fonts.Faces
	// Resume is the save to continue from. Optional.
	Resume *models.Save
}

// NewGame shows the loading screen and boots the manager.
func NewGame(ctx context.Context, opts NewGameOptions) (*Game, error) {
	g := &Game{
		ctx:     ctx,
		debug:   opts.Debug,
		title:   opts.Title,
		width:   opts.Width,
		height:  opts.Height,
		manager: opts.Manager,
		stage:   opts.Stage,
		overlay: opts.Overlay,
		faces:   opts.Faces,
		resume:  opts.Resume,
	}
	g.manager.RegisterHandler(g.handleEvent)

	if err := g.boot(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Mode() GameMode {
	return g.mode
}

func (g *Game) SetScene(scene scenes.Scene) error {
	if g.scene != nil {
		if err := g.scene.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy previous scene: %v", err)
		}
	}

	g.scene = scene
	if err := g.scene.Init(); err != nil {
		return fmt.Errorf("failed to initialize scene: %v", err)
	}

	return nil
}

func (g *Game) boot() error {
	g.loading = scenes.NewLoadingScene(g.faces, g.title)
	if err := g.SetScene(g.loading); err != nil {
		return fmt.Errorf("failed to set loading scene: %v", err)
	}
	g.mode = GameModeLoading

	g.manager.Boot(g.ctx, func(err error) {
		if err != nil {
			log.Error("Failed to preload story: %v", err)
			if err := g.loadError(&ui.ActionableError{Message: "Failed to load the story", Err: err}); err != nil {
				log.Error("Failed to load error scene: %v", err)
			}
			return
		}
		if err := g.loadPlay(); err != nil {
			log.Error("Failed to load play scene: %v", err)
		}
	})
	return nil
}

func (g *Game) loadPlay() error {
	play := scenes.NewPlayScene(scenes.NewPlaySceneOptions{
		Player:  g.manager,
		Stage:   g.stage,
		Overlay: g.overlay,
		Width:   g.width,
		Height:  g.height,
	})
	if err := g.SetScene(play); err != nil {
		return fmt.Errorf("failed to set play scene: %v", err)
	}
	g.mode = GameModePlay
	g.loading = nil
	g.manager.Start(g.resume)
	return nil
}

func (g *Game) loadError(err *ui.ActionableError) error {
	errorScene := scenes.NewErrorScene(g.faces, err.Message, func() {
		if err := g.boot(); err != nil {
			log.Error("Failed to retry boot: %v", err)
		}
	})
	if err := g.SetScene(errorScene); err != nil {
		return fmt.Errorf("failed to set error scene: %v", err)
	}
	g.mode = GameModeError
	g.loading = nil
	return nil
}

// handleEvent runs on the loop, which is stepped from Update.
func (g *Game) handleEvent(event game.Event) {
	if event.Type == game.EventProgress && g.loading != nil {
		g.loading.SetProgress(event.Progress)
	}
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if input.IsFullscreenToggleJustPressed() {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	// Update the current scene
	if err := g.scene.Update(); err != nil {
		return fmt.Errorf("failed to update scene: %v", err)
	}

	g.manager.Update(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	snap := g.manager.Snapshot()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n   Mode: %s", g.mode))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n   Scene: %s [%d]", snap.Scene, snap.Index))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n   Assets: %d", g.manager.Cache().Len()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.width, g.height
}
