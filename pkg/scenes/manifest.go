package scenes

import (
	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/narrative"
)

// Manifest lists every asset a scene can show or play, without duplicates.
func Manifest(scene *narrative.Scene) []assets.Ref {
	m := &manifest{seen: make(map[assets.Ref]struct{})}
	m.content(scene.EntryDisplay())
	for _, c := range scene.Contents {
		m.content(c)
	}
	return m.refs
}

// StoryManifest lists the assets of every scene of the story.
func StoryManifest(store narrative.Store) []assets.Ref {
	m := &manifest{seen: make(map[assets.Ref]struct{})}
	for _, scene := range store.Scenes() {
		m.content(scene.EntryDisplay())
		for _, c := range scene.Contents {
			m.content(c)
		}
	}
	return m.refs
}

type manifest struct {
	seen map[assets.Ref]struct{}
	refs []assets.Ref
}

func (m *manifest) add(kind assets.Kind, path string) {
	if path == "" {
		return
	}
	ref := assets.Ref{Kind: kind, Path: path}
	if _, ok := m.seen[ref]; ok {
		return
	}
	m.seen[ref] = struct{}{}
	m.refs = append(m.refs, ref)
}

func (m *manifest) content(c narrative.Content) {
	if c.Background != nil {
		m.add(assets.KindBackground, *c.Background)
	}
	for _, slot := range narrative.Slots {
		if p := c.Get(slot); p != nil {
			m.add(assets.KindCharacter, *p)
		}
	}
	m.add(assets.KindMusic, c.Music)
	m.add(assets.KindVoice, c.Voice)
	m.add(assets.KindSound, c.Sound)
}
