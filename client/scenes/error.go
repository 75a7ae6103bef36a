package scenes

import (
	"image/color"

	"github.com/cbodonnell/galplayer/client/fonts"
	"github.com/cbodonnell/galplayer/client/objects"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
)

// ErrorScene shows a message and, when onRetry is set, a retry button.
type ErrorScene struct {
	*BaseScene

	faces   *fonts.Faces
	onRetry func()
	ui      *ebitenui.UI
}

var _ Scene = &ErrorScene{}

func NewErrorScene(faces *fonts.Faces, msg string, onRetry func()) *ErrorScene {
	message := objects.NewTextOverlayObject(faces.Large, msg)
	message.Y = 0.4
	message.SetColor(color.RGBA{R: 255, G: 90, B: 90, A: 255})
	return &ErrorScene{
		BaseScene: NewBaseScene(message),
		faces:     faces,
		onRetry:   onRetry,
	}
}

func (s *ErrorScene) Init() error {
	s.renderUI()
	return s.BaseScene.Init()
}

func (s *ErrorScene) renderUI() {
	rootContainer := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	if s.onRetry != nil {
		button := widget.NewButton(
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
					HorizontalPosition: widget.AnchorLayoutPositionCenter,
					VerticalPosition:   widget.AnchorLayoutPositionCenter,
				}),
			),
			widget.ButtonOpts.Image(&widget.ButtonImage{
				Idle:    image.NewNineSliceColor(color.NRGBA{R: 170, G: 170, B: 180, A: 255}),
				Hover:   image.NewNineSliceColor(color.NRGBA{R: 135, G: 135, B: 150, A: 255}),
				Pressed: image.NewNineSliceColor(color.NRGBA{R: 100, G: 100, B: 120, A: 255}),
			}),
			widget.ButtonOpts.Text("Retry", s.faces.UI, &widget.ButtonTextColor{
				Idle:     color.NRGBA{254, 255, 255, 255},
				Disabled: color.NRGBA{R: 200, G: 200, B: 200, A: 255},
			}),
			widget.ButtonOpts.TextPadding(widget.Insets{
				Left:   30,
				Right:  30,
				Top:    5,
				Bottom: 5,
			}),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				s.onRetry()
			}),
		)
		rootContainer.AddChild(button)
	}

	s.ui = &ebitenui.UI{
		Container: rootContainer,
	}
}

func (s *ErrorScene) Update() error {
	s.ui.Update()
	return s.BaseScene.Update()
}

func (s *ErrorScene) Draw(screen *ebiten.Image) {
	s.BaseScene.Draw(screen)
	s.ui.Draw(screen)
}
