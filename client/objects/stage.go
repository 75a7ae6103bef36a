package objects

import (
	"image"
	"sort"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/display"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// TextureFromImage uploads a decoded image to the GPU. It is safe to call
// from loader goroutines.
func TextureFromImage(img image.Image) assets.Texture {
	return ebiten.NewImageFromImage(img)
}

// Stage is the rendering surface for display nodes. Layers are drawn in
// ascending order and nodes within a layer in attach order.
type Stage struct {
	layers map[display.Layer][]*display.Node
	order  []display.Layer
}

var (
	_ display.Surface = &Stage{}
	_ GameObject      = &Stage{}
)

func NewStage() *Stage {
	return &Stage{
		layers: make(map[display.Layer][]*display.Node),
	}
}

func (s *Stage) Attach(layer display.Layer, node *display.Node) {
	if _, ok := s.layers[layer]; !ok {
		s.order = append(s.order, layer)
		sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	}
	s.layers[layer] = append(s.layers[layer], node)
}

func (s *Stage) Detach(layer display.Layer, node *display.Node) {
	nodes := s.layers[layer]
	for i, n := range nodes {
		if n == node {
			s.layers[layer] = append(nodes[:i], nodes[i+1:]...)
			return
		}
	}
	log.Debug("Detach of unknown %s node %s", layer, node.Ref.Path)
}

// Nodes returns the nodes attached to layer in draw order.
func (s *Stage) Nodes(layer display.Layer) []*display.Node {
	return s.layers[layer]
}

func (s *Stage) Update() error {
	return nil
}

func (s *Stage) Draw(screen *ebiten.Image) {
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	for _, layer := range s.order {
		for _, node := range s.layers[layer] {
			img, ok := node.Texture.(*ebiten.Image)
			if !ok {
				continue
			}
			screen.DrawImage(img, NodeDrawOptions(node, img.Bounds(), sw, sh))
		}
	}
}

// NodeDrawOptions places a node of the given texture bounds on a screen of
// sw by sh and applies its rendered effect.
func NodeDrawOptions(node *display.Node, bounds image.Rectangle, sw, sh float64) *ebiten.DrawImageOptions {
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if node.Fill {
		if w > 0 && h > 0 {
			op.GeoM.Scale(sw/w, sh/h)
		}
	} else {
		op.GeoM.Translate(node.X-node.PivotX*w, node.Y-node.PivotY*h)
	}

	effect := node.Rendered()
	op.ColorScale.Scale(effect.Brightness, effect.Brightness, effect.Brightness, 1)
	op.ColorScale.ScaleAlpha(effect.Alpha)
	return op
}
