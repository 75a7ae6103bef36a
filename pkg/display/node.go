package display

import (
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

type Layer int

const (
	LayerBackground Layer = iota
	LayerCharacters
)

func (l Layer) String() string {
	if l == LayerBackground {
		return "background"
	}
	return "characters"
}

// Effect is the visual treatment of a character node.
type Effect struct {
	Brightness float32
	Alpha      float32
}

var (
	EffectActive   = Effect{Brightness: 1, Alpha: 1}
	EffectInactive = Effect{Brightness: 0.5, Alpha: 1}
)

// Node is a visual attached to the surface. Position is in screen space and
// the pivot is the fraction of the texture anchored at that position.
type Node struct {
	Slot  narrative.Slot
	Layer Layer
	Ref   assets.Ref

	Texture assets.Texture

	X, Y           float64
	PivotX, PivotY float64
	// Fill stretches the texture over the whole screen.
	Fill bool

	target     Effect
	current    Effect
	brightness *gween.Tween
	alpha      *gween.Tween
}

func newNode(layer Layer, slot narrative.Slot, ref assets.Ref, tex assets.Texture, p Placement) *Node {
	return &Node{
		Slot:    slot,
		Layer:   layer,
		Ref:     ref,
		Texture: tex,
		X:       p.X,
		Y:       p.Y,
		PivotX:  p.PivotX,
		PivotY:  p.PivotY,
		Fill:    layer == LayerBackground,
		target:  EffectActive,
		current: EffectActive,
	}
}

// Effect returns the effect the node is set to.
func (n *Node) Effect() Effect {
	return n.target
}

// Rendered returns the effect to draw with this frame. It trails Effect while
// a transition is running.
func (n *Node) Rendered() Effect {
	return n.current
}

func (n *Node) setEffect(e Effect, d time.Duration) {
	n.target = e
	if d <= 0 {
		n.current = e
		n.brightness, n.alpha = nil, nil
		return
	}
	secs := float32(d.Seconds())
	n.brightness = gween.New(n.current.Brightness, e.Brightness, secs, ease.OutQuad)
	n.alpha = gween.New(n.current.Alpha, e.Alpha, secs, ease.OutQuad)
}

func (n *Node) update(dt float32) {
	if n.brightness != nil {
		v, done := n.brightness.Update(dt)
		n.current.Brightness = v
		if done {
			n.brightness = nil
		}
	}
	if n.alpha != nil {
		v, done := n.alpha.Update(dt)
		n.current.Alpha = v
		if done {
			n.alpha = nil
		}
	}
}

// Animating reports whether an effect transition is still running.
func (n *Node) Animating() bool {
	return n.brightness != nil || n.alpha != nil
}
