package objects_test

import (
	"image"
	"testing"

	"github.com/cbodonnell/galplayer/client/objects"
	"github.com/cbodonnell/galplayer/pkg/display"
	"github.com/stretchr/testify/assert"
)

func TestStage_AttachDetach(t *testing.T) {
	s := objects.NewStage()
	bg := &display.Node{Layer: display.LayerBackground}
	left := &display.Node{Layer: display.LayerCharacters}
	right := &display.Node{Layer: display.LayerCharacters}

	s.Attach(display.LayerCharacters, left)
	s.Attach(display.LayerBackground, bg)
	s.Attach(display.LayerCharacters, right)
	assert.Equal(t, []*display.Node{left, right}, s.Nodes(display.LayerCharacters))
	assert.Equal(t, []*display.Node{bg}, s.Nodes(display.LayerBackground))

	s.Detach(display.LayerCharacters, left)
	assert.Equal(t, []*display.Node{right}, s.Nodes(display.LayerCharacters))

	// unknown nodes are ignored
	s.Detach(display.LayerCharacters, left)
	assert.Len(t, s.Nodes(display.LayerCharacters), 1)
}

func TestNodeDrawOptions(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 400)
	tests := []struct {
		name         string
		node         *display.Node
		wantX, wantY float64
	}{
		{
			name:  "bottom center pivot",
			node:  &display.Node{X: 960, Y: 1080, PivotX: 0.5, PivotY: 1},
			wantX: 860,
			wantY: 680,
		},
		{
			name:  "right edge pivot",
			node:  &display.Node{X: 1920, Y: 1080, PivotX: 1, PivotY: 1},
			wantX: 1720,
			wantY: 680,
		},
		{
			name:  "fill",
			node:  &display.Node{Fill: true},
			wantX: 0,
			wantY: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := objects.NodeDrawOptions(tt.node, bounds, 1920, 1080)
			x, y := op.GeoM.Apply(0, 0)
			assert.InDelta(t, tt.wantX, x, 1e-9)
			assert.InDelta(t, tt.wantY, y, 1e-9)
		})
	}

	fill := objects.NodeDrawOptions(&display.Node{Fill: true}, bounds, 1920, 1080)
	x, y := fill.GeoM.Apply(200, 400)
	assert.InDelta(t, 1920, x, 1e-9)
	assert.InDelta(t, 1080, y, 1e-9)
}
