package objects

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ProgressBar is a horizontal bar centered on the screen.
type ProgressBar struct {
	fraction float64
	width    float32
	height   float32
	// Y is the vertical position as a fraction of the screen height.
	Y float64
}

var _ GameObject = &ProgressBar{}

func NewProgressBar(width, height float32) *ProgressBar {
	return &ProgressBar{width: width, height: height, Y: 0.6}
}

// SetFraction clamps f to [0, 1].
func (p *ProgressBar) SetFraction(f float64) {
	switch {
	case f < 0:
		f = 0
	case f > 1:
		f = 1
	}
	p.fraction = f
}

func (p *ProgressBar) Fraction() float64 {
	return p.fraction
}

func (p *ProgressBar) Update() error {
	return nil
}

func (p *ProgressBar) Draw(screen *ebiten.Image) {
	x := float32(screen.Bounds().Dx())/2 - p.width/2
	y := float32(float64(screen.Bounds().Dy()) * p.Y)
	vector.StrokeRect(screen, x, y, p.width, p.height, 2, color.RGBA{0xdd, 0xdd, 0xdd, 0xff}, false)
	vector.DrawFilledRect(screen, x, y, p.width*float32(p.fraction), p.height, color.RGBA{0xdd, 0xdd, 0xdd, 0xff}, false)
}
