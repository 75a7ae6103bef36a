package scenes

import (
	"fmt"

	"github.com/cbodonnell/galplayer/client/fonts"
	"github.com/cbodonnell/galplayer/client/objects"
)

// LoadingScene shows the bulk preload progress.
type LoadingScene struct {
	*BaseScene

	label *objects.TextOverlayObject
	bar   *objects.ProgressBar
}

var _ Scene = &LoadingScene{}

func NewLoadingScene(faces *fonts.Faces, title string) *LoadingScene {
	heading := objects.NewTextOverlayObject(faces.Large, title)
	heading.Y = 0.4
	label := objects.NewTextOverlayObject(faces.UI, "Loading 0%")
	label.Y = 0.55
	bar := objects.NewProgressBar(400, 16)
	return &LoadingScene{
		BaseScene: NewBaseScene(objects.NewGroup(heading, label, bar)),
		label:     label,
		bar:       bar,
	}
}

func (s *LoadingScene) SetProgress(fraction float64) {
	s.bar.SetFraction(fraction)
	s.label.SetText(fmt.Sprintf("Loading %d%%", int(s.bar.Fraction()*100)))
}

func (s *LoadingScene) Progress() float64 {
	return s.bar.Fraction()
}
