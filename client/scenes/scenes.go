package scenes

import (
	"github.com/cbodonnell/galplayer/client/objects"
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is a full screen state of the player: loading, playing or failed.
type Scene interface {
	objects.Lifecycle

	// Scene specific methods
	GetRoot() objects.GameObject
}

type BaseScene struct {
	Root objects.GameObject
}

func NewBaseScene(root objects.GameObject) *BaseScene {
	return &BaseScene{Root: root}
}

func (s *BaseScene) GetRoot() objects.GameObject {
	return s.Root
}

func (s *BaseScene) Init() error {
	return nil
}

func (s *BaseScene) Destroy() error {
	return nil
}

func (s *BaseScene) Update() error {
	return s.Root.Update()
}

func (s *BaseScene) Draw(screen *ebiten.Image) {
	s.Root.Draw(screen)
}
