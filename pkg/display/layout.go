package display

import "github.com/cbodonnell/galplayer/pkg/narrative"

const (
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080
)

// Placement anchors a node at (X, Y) by the pivot fraction of its texture.
type Placement struct {
	X, Y           float64
	PivotX, PivotY float64
}

// Layout is the static position table for the background and each slot.
type Layout struct {
	Width, Height float64
	Background    Placement
	Slots         [3]Placement
}

// NewLayout stands characters on the bottom edge: left flush with the left
// edge, center centered, right flush with the right edge.
func NewLayout(width, height float64) Layout {
	return Layout{
		Width:      width,
		Height:     height,
		Background: Placement{},
		Slots: [3]Placement{
			narrative.SlotLeft:   {X: 0, Y: height, PivotX: 0, PivotY: 1},
			narrative.SlotCenter: {X: width / 2, Y: height, PivotX: 0.5, PivotY: 1},
			narrative.SlotRight:  {X: width, Y: height, PivotX: 1, PivotY: 1},
		},
	}
}

func DefaultLayout() Layout {
	return NewLayout(DefaultScreenWidth, DefaultScreenHeight)
}
