package display_test

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/display"
	"github.com/cbodonnell/galplayer/pkg/enginetest"
	"github.com/cbodonnell/galplayer/pkg/loop"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type surface struct {
	layers  map[display.Layer][]*display.Node
	attachs int
}

func newSurface() *surface {
	return &surface{layers: make(map[display.Layer][]*display.Node)}
}

func (s *surface) Attach(layer display.Layer, node *display.Node) {
	s.attachs++
	s.layers[layer] = append(s.layers[layer], node)
}

func (s *surface) Detach(layer display.Layer, node *display.Node) {
	nodes := s.layers[layer]
	for i, n := range nodes {
		if n == node {
			s.layers[layer] = append(nodes[:i], nodes[i+1:]...)
			return
		}
	}
}

func (s *surface) paths(layer display.Layer) []string {
	out := []string{}
	for _, n := range s.layers[layer] {
		out = append(out, n.Ref.Path)
	}
	return out
}

type fixture struct {
	loop    *loop.Loop
	loader  *enginetest.Loader
	surface *surface
	sync    *display.Synchronizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := loop.New(nil)
	loader := enginetest.NewLoader()
	cache := assets.NewCache(l, loader, assets.CacheOptions{})
	surf := newSurface()
	return &fixture{
		loop:    l,
		loader:  loader,
		surface: surf,
		sync:    display.NewSynchronizer(surf, cache, display.Options{}),
	}
}

func (f *fixture) apply(t *testing.T, c narrative.Content) {
	t.Helper()
	f.sync.UpdateSceneDisplay(c)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.loop.Settle(ctx))
}

var s = narrative.String

func TestSynchronizer_DiffIdentity(t *testing.T) {
	f := newFixture(t)

	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("x.png"), Center: s("y.png")}})
	left := f.sync.Character(narrative.SlotLeft)
	center := f.sync.Character(narrative.SlotCenter)
	require.NotNil(t, left)
	require.NotNil(t, center)

	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("x.png"), Center: s("z.png")}})
	assert.Same(t, left, f.sync.Character(narrative.SlotLeft), "unchanged slot keeps its node")
	assert.NotSame(t, center, f.sync.Character(narrative.SlotCenter))
	assert.Equal(t, "z.png", f.sync.Character(narrative.SlotCenter).Ref.Path)
	assert.Equal(t, []string{"x.png", "z.png"}, f.surface.paths(display.LayerCharacters))
	assert.Equal(t, 1, f.loader.Loads(assets.Ref{Kind: assets.KindCharacter, Path: "x.png"}))
}

func TestSynchronizer_ActiveSetOnlyChangesEffect(t *testing.T) {
	f := newFixture(t)
	slots := narrative.CharacterSlots{Left: s("x.png"), Right: s("y.png")}

	f.apply(t, narrative.Content{CharacterSlots: slots, ActiveCharacters: []narrative.Slot{narrative.SlotLeft}})
	left := f.sync.Character(narrative.SlotLeft)
	right := f.sync.Character(narrative.SlotRight)
	require.NotNil(t, left)
	require.NotNil(t, right)
	assert.Equal(t, display.EffectActive, left.Effect())
	assert.Equal(t, display.EffectInactive, right.Effect())

	tex, x, y := left.Texture, left.X, left.Y
	attachs := f.surface.attachs

	f.apply(t, narrative.Content{CharacterSlots: slots, ActiveCharacters: []narrative.Slot{}})
	assert.Same(t, left, f.sync.Character(narrative.SlotLeft))
	assert.Same(t, tex, left.Texture)
	assert.Equal(t, x, left.X)
	assert.Equal(t, y, left.Y)
	assert.Equal(t, display.EffectInactive, left.Effect())
	assert.Equal(t, display.EffectInactive, right.Effect())
	assert.Equal(t, attachs, f.surface.attachs, "nothing re-attached")
}

func TestSynchronizer_OmittedActiveSetIsKept(t *testing.T) {
	f := newFixture(t)
	f.apply(t, narrative.Content{
		CharacterSlots:   narrative.CharacterSlots{Left: s("x.png")},
		ActiveCharacters: []narrative.Slot{narrative.SlotRight},
	})
	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Center: s("y.png")}})

	assert.Equal(t, narrative.NewSlotSet(narrative.SlotRight), f.sync.Active())
	assert.Equal(t, display.EffectInactive, f.sync.Character(narrative.SlotCenter).Effect(), "new nodes use the current set")
}

func TestSynchronizer_RenderOrder(t *testing.T) {
	f := newFixture(t)

	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Right: s("r.png")}})
	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Center: s("c.png")}})
	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("l.png")}})
	assert.Equal(t, []string{"l.png", "c.png", "r.png"}, f.surface.paths(display.LayerCharacters))

	// a slow left load must not end up last
	release := f.loader.Block("l2.png")
	f.sync.UpdateSceneDisplay(narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("l2.png"), Right: s("r2.png")}})
	release()
	f.apply(t, narrative.Content{})
	assert.Equal(t, []string{"l2.png", "c.png", "r2.png"}, f.surface.paths(display.LayerCharacters))
}

func TestSynchronizer_EmptyClearsOnlyThatSlot(t *testing.T) {
	f := newFixture(t)
	f.apply(t, narrative.Content{
		Background:     s("bg.png"),
		CharacterSlots: narrative.CharacterSlots{Left: s("x.png"), Right: s("y.png")},
	})
	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("")}})

	assert.Nil(t, f.sync.Character(narrative.SlotLeft))
	assert.NotNil(t, f.sync.Character(narrative.SlotRight))
	assert.Equal(t, []string{"y.png"}, f.surface.paths(display.LayerCharacters))
	assert.Equal(t, []string{"bg.png"}, f.surface.paths(display.LayerBackground))
}

func TestSynchronizer_Background(t *testing.T) {
	f := newFixture(t)
	f.apply(t, narrative.Content{Background: s("a.png")})
	first := f.sync.Background()
	require.NotNil(t, first)
	attachs := f.surface.attachs

	f.apply(t, narrative.Content{Background: s("a.png")})
	assert.Same(t, first, f.sync.Background(), "identical path is a no-op")
	assert.Equal(t, attachs, f.surface.attachs)

	f.apply(t, narrative.Content{Background: s("b.png")})
	assert.Equal(t, []string{"b.png"}, f.surface.paths(display.LayerBackground))

	f.apply(t, narrative.Content{Background: s("")})
	assert.Empty(t, f.surface.paths(display.LayerBackground))
}

func TestSynchronizer_LateLoadAfterClear(t *testing.T) {
	f := newFixture(t)
	release := f.loader.Block("late.png")

	f.sync.UpdateSceneDisplay(narrative.Content{
		Background:     s("late.png"),
		CharacterSlots: narrative.CharacterSlots{Left: s("late.png")},
	})
	f.sync.Clear()
	release()
	f.apply(t, narrative.Content{})

	assert.Nil(t, f.sync.Background())
	assert.Nil(t, f.sync.Character(narrative.SlotLeft))
	assert.Empty(t, f.surface.paths(display.LayerCharacters))
	assert.Empty(t, f.surface.paths(display.LayerBackground))
}

func TestSynchronizer_LateLoadSuperseded(t *testing.T) {
	f := newFixture(t)
	release := f.loader.Block("old.png")

	f.sync.UpdateSceneDisplay(narrative.Content{CharacterSlots: narrative.CharacterSlots{Center: s("old.png")}})
	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Center: s("new.png")}})
	release()
	f.apply(t, narrative.Content{})

	assert.Equal(t, []string{"new.png"}, f.surface.paths(display.LayerCharacters))
}

func TestSynchronizer_FailedLoadLeavesSlotEmpty(t *testing.T) {
	f := newFixture(t)
	f.loader.Fail("broken.png", nil)

	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("x.png")}})
	f.apply(t, narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("broken.png")}})

	assert.Nil(t, f.sync.Character(narrative.SlotLeft))
	assert.Empty(t, f.sync.State().Slots)
}

func TestSynchronizer_EffectTransition(t *testing.T) {
	l := loop.New(nil)
	cache := assets.NewCache(l, enginetest.NewLoader(), assets.CacheOptions{})
	sync := display.NewSynchronizer(newSurface(), cache, display.Options{EffectDuration: 100 * time.Millisecond})

	sync.UpdateSceneDisplay(narrative.Content{CharacterSlots: narrative.CharacterSlots{Left: s("x.png")}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Settle(ctx))

	left := sync.Character(narrative.SlotLeft)
	require.NotNil(t, left)
	sync.SetActiveCharacters(narrative.NewSlotSet())
	assert.Equal(t, display.EffectInactive, left.Effect())
	assert.Equal(t, display.EffectActive, left.Rendered(), "rendering trails the target")
	assert.True(t, left.Animating())

	sync.Update(0.05)
	mid := left.Rendered().Brightness
	assert.Less(t, mid, float32(1))
	assert.Greater(t, mid, display.EffectInactive.Brightness)

	sync.Update(0.1)
	assert.False(t, left.Animating())
	assert.Equal(t, display.EffectInactive, left.Rendered())
}

func TestSynchronizer_ObserverAndState(t *testing.T) {
	f := newFixture(t)
	var seen []string
	f.sync.AddObserver(func(c narrative.Content) {
		seen = append(seen, c.Text)
	})
	f.apply(t, narrative.Content{Text: "one", Background: s("bg.png"), CharacterSlots: narrative.CharacterSlots{Right: s("r.png")}})
	f.apply(t, narrative.Content{Text: "two"})

	assert.Equal(t, []string{"one", "two"}, seen)
	st := f.sync.State()
	assert.Equal(t, "bg.png", st.Background)
	assert.Equal(t, map[string]string{"right": "r.png"}, st.Slots)
	assert.Equal(t, "[left,center,right]", st.Active)
}
