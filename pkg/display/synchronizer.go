// Package display keeps the nodes on the rendering surface consistent with
// the narrative content being played.
package display

import (
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/narrative"
)

const DefaultEffectDuration = 200 * time.Millisecond

// Surface is the rendering surface nodes are attached to. Attach appends to
// the end of the layer's draw order.
type Surface interface {
	Attach(layer Layer, node *Node)
	Detach(layer Layer, node *Node)
}

// TextureSource hands out textures. *assets.Cache satisfies it.
type TextureSource interface {
	RequestTexture(ref assets.Ref, then func(assets.Texture, error))
}

// Observer is called once per content change handed to UpdateSceneDisplay.
type Observer func(content narrative.Content)

// State is a snapshot of what the synchronizer wants on screen.
type State struct {
	Background string            `json:"background"`
	Slots      map[string]string `json:"slots"`
	Active     string            `json:"active"`
}

type Synchronizer struct {
	surface  Surface
	textures TextureSource
	layout   Layout

	background     *Node
	backgroundPath string
	slots          [3]*Node
	slotPaths      [3]string
	active         narrative.SlotSet

	// generation advances on Clear; loads started before it are dropped.
	generation     uint64
	effectDuration time.Duration

	observers []Observer
	logger    *log.Logger
}

type Options struct {
	Layout         Layout
	EffectDuration time.Duration
}

func NewSynchronizer(surface Surface, textures TextureSource, opts Options) *Synchronizer {
	if opts.Layout.Width == 0 {
		opts.Layout = DefaultLayout()
	}
	return &Synchronizer{
		surface:        surface,
		textures:       textures,
		layout:         opts.Layout,
		active:         narrative.AllSlots,
		effectDuration: opts.EffectDuration,
		logger:         log.With("component", "display"),
	}
}

func (s *Synchronizer) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// UpdateSceneDisplay applies the display fields of content. Fields the content
// does not mention are left as they are.
func (s *Synchronizer) UpdateSceneDisplay(content narrative.Content) {
	if set, ok := content.ActiveSet(); ok {
		s.SetActiveCharacters(set)
	}
	if content.Background != nil {
		s.setBackground(*content.Background)
	}
	for _, slot := range narrative.Slots {
		if path := content.Get(slot); path != nil {
			s.setSlot(slot, *path)
		}
	}
	for _, o := range s.observers {
		o(content)
	}
}

func (s *Synchronizer) setBackground(path string) {
	if path == s.backgroundPath {
		return
	}
	s.backgroundPath = path
	if path == "" {
		s.detachBackground()
		return
	}

	gen := s.generation
	ref := assets.Ref{Kind: assets.KindBackground, Path: path}
	s.textures.RequestTexture(ref, func(tex assets.Texture, err error) {
		if s.generation != gen || s.backgroundPath != path {
			s.logger.Debug("Dropping stale background %s", path)
			return
		}
		if err != nil {
			s.logger.Error("Failed to load background %s: %v", path, err)
			s.backgroundPath = ""
			s.detachBackground()
			return
		}
		s.detachBackground()
		s.background = newNode(LayerBackground, 0, ref, tex, s.layout.Background)
		s.surface.Attach(LayerBackground, s.background)
	})
}

func (s *Synchronizer) detachBackground() {
	if s.background != nil {
		s.surface.Detach(LayerBackground, s.background)
		s.background = nil
	}
}

func (s *Synchronizer) setSlot(slot narrative.Slot, path string) {
	if path == s.slotPaths[slot] {
		return
	}
	s.slotPaths[slot] = path
	if path == "" {
		s.detachSlot(slot)
		return
	}

	gen := s.generation
	ref := assets.Ref{Kind: assets.KindCharacter, Path: path}
	s.textures.RequestTexture(ref, func(tex assets.Texture, err error) {
		if s.generation != gen || s.slotPaths[slot] != path {
			s.logger.Debug("Dropping stale %s character %s", slot, path)
			return
		}
		if err != nil {
			s.logger.Error("Failed to load %s character %s: %v", slot, path, err)
			s.slotPaths[slot] = ""
			s.detachSlot(slot)
			return
		}
		s.detachSlot(slot)
		node := newNode(LayerCharacters, slot, ref, tex, s.layout.Slots[slot])
		node.setEffect(s.effectFor(slot), 0)
		s.slots[slot] = node
		s.reattachCharacters()
	})
}

func (s *Synchronizer) detachSlot(slot narrative.Slot) {
	if n := s.slots[slot]; n != nil {
		s.surface.Detach(LayerCharacters, n)
		s.slots[slot] = nil
	}
}

// reattachCharacters puts every character node back in left, center, right
// order so draw order never depends on load order.
func (s *Synchronizer) reattachCharacters() {
	for _, n := range s.slots {
		if n != nil {
			s.surface.Detach(LayerCharacters, n)
		}
	}
	for _, n := range s.slots {
		if n != nil {
			s.surface.Attach(LayerCharacters, n)
		}
	}
}

func (s *Synchronizer) effectFor(slot narrative.Slot) Effect {
	if s.active.Has(slot) {
		return EffectActive
	}
	return EffectInactive
}

// SetActiveCharacters re-applies the active or inactive effect to every
// displayed character when the set differs from the current one.
func (s *Synchronizer) SetActiveCharacters(set narrative.SlotSet) {
	if set == s.active {
		return
	}
	s.active = set
	for _, slot := range narrative.Slots {
		if n := s.slots[slot]; n != nil {
			n.setEffect(s.effectFor(slot), s.effectDuration)
		}
	}
}

// Clear detaches everything and forgets the current display state.
func (s *Synchronizer) Clear() {
	s.generation++
	s.detachBackground()
	s.backgroundPath = ""
	for _, slot := range narrative.Slots {
		s.detachSlot(slot)
		s.slotPaths[slot] = ""
	}
	s.active = narrative.AllSlots
}

// Update advances effect transitions by dt seconds.
func (s *Synchronizer) Update(dt float32) {
	for _, n := range s.slots {
		if n != nil {
			n.update(dt)
		}
	}
}

func (s *Synchronizer) Background() *Node {
	return s.background
}

func (s *Synchronizer) Character(slot narrative.Slot) *Node {
	return s.slots[slot]
}

func (s *Synchronizer) Active() narrative.SlotSet {
	return s.active
}

func (s *Synchronizer) State() State {
	st := State{
		Background: s.backgroundPath,
		Slots:      make(map[string]string, len(narrative.Slots)),
		Active:     s.active.String(),
	}
	for _, slot := range narrative.Slots {
		if p := s.slotPaths[slot]; p != "" {
			st.Slots[slot.String()] = p
		}
	}
	return st
}
