package scenes

import (
	"image"

	"github.com/cbodonnell/galplayer/client/input"
	"github.com/cbodonnell/galplayer/client/objects"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Player receives routed activations. *game.GameManager satisfies it.
type Player interface {
	Interact()
	NotifyInteraction()
	Restart()
}

// Overlay is the UI drawn over the stage. *ui.Overlay satisfies it.
type Overlay interface {
	objects.GameObject
	TextArea() (image.Rectangle, bool)
	Controls() []image.Rectangle
	// Confirm presses the shown continue or start button and reports
	// whether there was one.
	Confirm() bool
}

// Activation is a pointer press or a positive key press. Point is only set
// for pointer presses.
type Activation struct {
	Point   image.Point
	Pointer bool
}

// InputSource reports the activations of the current tick.
type InputSource interface {
	Activation() (Activation, bool)
	Restart() bool
}

// PlayScene draws the story and routes activations: the text area skips or
// advances the dialogue, buttons are left to the UI, and anything else only
// counts as a user interaction.
type PlayScene struct {
	*BaseScene

	player  Player
	overlay Overlay
	hits    *input.HitMap
	source  InputSource
}

var _ Scene = &PlayScene{}

type NewPlaySceneOptions struct {
	Player  Player
	Stage   *objects.Stage
	Overlay Overlay
	Width   int
	Height  int
	// Source defaults to ebiten's mouse, touch, keyboard and gamepad state.
	Source InputSource
}

func NewPlayScene(opts NewPlaySceneOptions) *PlayScene {
	source := opts.Source
	if source == nil {
		source = ebitenInput{}
	}
	s := &PlayScene{
		BaseScene: NewBaseScene(objects.NewGroup(opts.Stage, opts.Overlay)),
		player:    opts.Player,
		overlay:   opts.Overlay,
		hits:      input.NewHitMap(opts.Width, opts.Height),
		source:    source,
	}
	s.refreshHits()
	return s
}

func (s *PlayScene) Update() error {
	if s.source.Restart() {
		log.Debug("Restart requested")
		s.player.Restart()
	} else if a, ok := s.source.Activation(); ok {
		s.route(a)
	}

	// the UI handles button clicks during its update
	if err := s.BaseScene.Update(); err != nil {
		return err
	}
	s.refreshHits()
	return nil
}

func (s *PlayScene) route(a Activation) {
	if !a.Pointer && s.overlay.Confirm() {
		log.Trace("Key activation pressed the shown button")
		s.player.NotifyInteraction()
		return
	}

	target := input.TargetTextArea
	if a.Pointer {
		target = s.hits.Hit(a.Point)
	} else if _, ok := s.overlay.TextArea(); !ok {
		target = input.TargetNone
	}
	log.Trace("Activation at %v routed to %s", a.Point, target)

	switch target {
	case input.TargetTextArea:
		s.player.Interact()
	default:
		s.player.NotifyInteraction()
	}
}

func (s *PlayScene) refreshHits() {
	s.hits.Reset()
	if rect, ok := s.overlay.TextArea(); ok {
		s.hits.Add(input.TargetTextArea, rect)
	}
	for _, rect := range s.overlay.Controls() {
		s.hits.Add(input.TargetControl, rect)
	}
}

func (s *PlayScene) Draw(screen *ebiten.Image) {
	s.BaseScene.Draw(screen)
}

type ebitenInput struct{}

func (ebitenInput) Activation() (Activation, bool) {
	if p, ok := input.JustActivated(); ok {
		return Activation{Point: p, Pointer: true}, true
	}
	if input.IsPositiveJustPressed() {
		return Activation{}, true
	}
	return Activation{}, false
}

func (ebitenInput) Restart() bool {
	return input.IsNegativeJustPressed()
}
