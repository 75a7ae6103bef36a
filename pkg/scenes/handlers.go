package scenes

import (
	"fmt"

	"github.com/cbodonnell/galplayer/pkg/audio"
	"github.com/cbodonnell/galplayer/pkg/narrative"
)

const DefaultStartLabel = "Start"

// Handler renders the entry of one scene type. index is the dialog line to
// start from and is zero unless playback is being resumed.
type Handler interface {
	Enter(scene *narrative.Scene, index int) error
}

// enterDisplay shows the scene level background, characters and music.
func (m *Manager) enterDisplay(scene *narrative.Scene) {
	m.display.UpdateSceneDisplay(scene.EntryDisplay())
	m.audio.Play(audio.ChannelMusic, scene.Music)
}

type StartHandler struct {
	m     *Manager
	Label string
}

func (h *StartHandler) Enter(scene *narrative.Scene, _ int) error {
	h.m.enterDisplay(scene)
	if scene.NextScene == "" {
		return fmt.Errorf("start scene %q has no next scene", scene.ID)
	}
	label := scene.Label
	if label == "" {
		label = h.Label
	}
	next := scene.NextScene
	h.m.overlay.ShowStart(label, func() {
		h.m.SwitchScene(next)
	})
	return nil
}

type DialogHandler struct {
	m *Manager
}

func (h *DialogHandler) Enter(scene *narrative.Scene, index int) error {
	if len(scene.Contents) == 0 {
		return fmt.Errorf("dialog scene %q has no contents", scene.ID)
	}
	h.m.enterDisplay(scene)
	h.m.overlay.ShowDialogBox()
	if index > 0 && h.m.dialogue.Seek(index) {
		return nil
	}
	h.m.dialogue.Begin()
	return nil
}

type SelectHandler struct {
	m             *Manager
	ContinueLabel string
}

func (h *SelectHandler) Enter(scene *narrative.Scene, _ int) error {
	h.m.enterDisplay(scene)
	if prompt, ok := scene.Content(0); ok {
		h.m.display.UpdateSceneDisplay(prompt)
		h.m.overlay.ShowDialogBox()
		h.m.overlay.SetName(prompt.Name)
		h.m.overlay.SetText(prompt.Text)
	}
	if len(scene.Choices) > 0 {
		h.m.overlay.ShowChoices(scene.Choices, func(c narrative.Choice) {
			h.m.SwitchScene(c.NextScene)
		})
		return nil
	}
	if scene.NextScene != "" {
		next := scene.NextScene
		h.m.overlay.ShowContinue(h.ContinueLabel, func() {
			h.m.SwitchScene(next)
		})
	}
	return nil
}
