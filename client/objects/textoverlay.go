package objects

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

// TextOverlayObject draws a line of text centered horizontally at a fraction
// of the screen height.
type TextOverlayObject struct {
	face  font.Face
	text  string
	color color.Color
	// Y is the vertical position as a fraction of the screen height.
	Y float64
}

var _ GameObject = &TextOverlayObject{}

func NewTextOverlayObject(face font.Face, text string) *TextOverlayObject {
	return &TextOverlayObject{
		face:  face,
		text:  text,
		color: color.White,
		Y:     0.5,
	}
}

func (o *TextOverlayObject) SetText(text string) {
	o.text = text
}

func (o *TextOverlayObject) SetColor(c color.Color) {
	o.color = c
}

func (o *TextOverlayObject) Update() error {
	return nil
}

func (o *TextOverlayObject) Draw(screen *ebiten.Image) {
	bounds, _ := font.BoundString(o.face, o.text)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(screen.Bounds().Dx())/2-float64(bounds.Max.X>>6)/2, float64(screen.Bounds().Dy())*o.Y-float64(bounds.Min.Y>>6)/2)
	op.ColorScale.ScaleWithColor(o.color)
	text.DrawWithOptions(screen, o.text, o.face, op)
}
