// Package scenes is the scene state machine: it validates scene switches,
// runs each transition as a unit and dispatches to per-type handlers.
package scenes

import (
	"context"
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/audio"
	"github.com/cbodonnell/galplayer/pkg/dialogue"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/queue"
)

const DefaultPreloadTimeout = 30 * time.Second

// Overlay is the UI the scene handlers drive.
type Overlay interface {
	dialogue.Overlay
	ClearAll()
	ShowDialogBox()
	ShowStart(label string, fn func())
	ShowChoices(choices []narrative.Choice, fn func(narrative.Choice))
}

// Display is satisfied by *display.Synchronizer.
type Display interface {
	UpdateSceneDisplay(content narrative.Content)
	Clear()
}

// Audio is satisfied by *audio.Manager.
type Audio interface {
	Play(ch audio.Channel, file string)
	StopAll()
	Reset()
}

// Assets is satisfied by *assets.Cache.
type Assets interface {
	Preload(ctx context.Context, refs []assets.Ref, onProgress func(float64), then func(error))
	Purge()
}

type request struct {
	id    string
	index int
}

// Manager owns the current scene. Transitions requested while another one is
// running are queued and run in order.
type Manager struct {
	store    narrative.Store
	handlers map[narrative.SceneType]Handler

	overlay  Overlay
	display  Display
	audio    Audio
	assets   Assets
	dialogue *dialogue.Controller

	current *narrative.Scene
	busy    bool
	pending queue.Queue[request]
	// epoch advances on every transition and on Restart; a preload finishing
	// under an older epoch is ignored.
	epoch uint64

	preloadTimeout time.Duration
	onProgress     func(float64)
	onEnter        []func(scene *narrative.Scene)

	logger *log.Logger
}

type Options struct {
	PreloadTimeout time.Duration
	StartLabel     string
	ContinueLabel  string
}

// NewManager creates a manager with the start, dialog and select handlers
// registered and makes it the navigator of ctrl.
func NewManager(store narrative.Store, overlay Overlay, display Display, player Audio, cache Assets, ctrl *dialogue.Controller, opts Options) *Manager {
	if opts.PreloadTimeout <= 0 {
		opts.PreloadTimeout = DefaultPreloadTimeout
	}
	if opts.StartLabel == "" {
		opts.StartLabel = DefaultStartLabel
	}
	if opts.ContinueLabel == "" {
		opts.ContinueLabel = dialogue.DefaultContinueLabel
	}
	m := &Manager{
		store:          store,
		handlers:       make(map[narrative.SceneType]Handler),
		overlay:        overlay,
		display:        display,
		audio:          player,
		assets:         cache,
		dialogue:       ctrl,
		pending:        queue.NewInMemoryQueue[request](),
		preloadTimeout: opts.PreloadTimeout,
		logger:         log.With("component", "scenes"),
	}
	m.Register(narrative.SceneTypeStart, &StartHandler{m: m, Label: opts.StartLabel})
	m.Register(narrative.SceneTypeDialog, &DialogHandler{m: m})
	m.Register(narrative.SceneTypeSelect, &SelectHandler{m: m, ContinueLabel: opts.ContinueLabel})
	ctrl.SetNavigator(m)
	return m
}

// Register sets the handler for a scene type, replacing any previous one.
func (m *Manager) Register(t narrative.SceneType, h Handler) {
	m.handlers[t] = h
}

// OnProgress sets the callback receiving scene preload progress.
func (m *Manager) OnProgress(fn func(float64)) {
	m.onProgress = fn
}

// OnEnter registers fn to be called after a scene's handler has run.
func (m *Manager) OnEnter(fn func(scene *narrative.Scene)) {
	m.onEnter = append(m.onEnter, fn)
}

func (m *Manager) SwitchScene(id string) {
	m.SwitchSceneAt(id, 0)
}

// SwitchSceneAt switches to scene id starting from dialog line index. Unknown
// ids and types without a handler are logged and change nothing.
func (m *Manager) SwitchSceneAt(id string, index int) {
	scene, ok := m.store.Scene(id)
	if !ok {
		m.logger.Error("Cannot switch to scene %q: %v", id, narrative.ErrSceneNotFound)
		return
	}
	handler, ok := m.handlers[scene.Type]
	if !ok {
		m.logger.Error("Cannot switch to scene %q: no handler for type %q", id, scene.Type)
		return
	}
	if m.busy {
		m.logger.Debug("Queueing switch to scene %q", id)
		m.pending.Enqueue(request{id: id, index: index})
		return
	}
	m.run(scene, handler, index)
}

func (m *Manager) run(scene *narrative.Scene, handler Handler, index int) {
	m.busy = true
	m.epoch++
	epoch := m.epoch

	m.overlay.ClearAll()
	m.display.Clear()
	m.audio.StopAll()
	m.dialogue.SetScene(scene)
	m.current = scene
	m.logger.Info("Switching to scene %s (%s)", scene.ID, scene.Type)

	ctx, cancel := context.WithTimeout(context.Background(), m.preloadTimeout)
	m.assets.Preload(ctx, Manifest(scene), m.onProgress, func(err error) {
		cancel()
		if epoch != m.epoch {
			return
		}
		if err != nil {
			m.logger.Warn("Scene %s entered with missing assets: %v", scene.ID, err)
		}
		m.enter(scene, handler, index)
	})
}

func (m *Manager) enter(scene *narrative.Scene, handler Handler, index int) {
	if err := handler.Enter(scene, index); err != nil {
		m.logger.Error("Failed to enter scene %s: %v", scene.ID, err)
	}
	m.busy = false
	for _, fn := range m.onEnter {
		fn(scene)
	}
	for !m.busy {
		req, ok := m.pending.Dequeue()
		if !ok {
			return
		}
		m.SwitchSceneAt(req.id, req.index)
	}
}

// Advance forwards to the dialogue controller unless a transition is running.
func (m *Manager) Advance() {
	if m.busy {
		return
	}
	m.dialogue.Advance()
}

// HandleInteraction forwards a text area activation to the dialogue
// controller unless a transition is running.
func (m *Manager) HandleInteraction() {
	if m.busy {
		return
	}
	m.dialogue.HandleInteraction()
}

// Restart drops queued transitions, resets audio and the asset cache, and
// switches to the initial scene.
func (m *Manager) Restart() {
	m.logger.Info("Restarting")
	m.epoch++
	m.busy = false
	m.pending.Clear()
	m.audio.Reset()
	m.overlay.ClearAll()
	m.display.Clear()
	m.dialogue.SetScene(nil)
	m.current = nil
	m.assets.Purge()
	m.SwitchScene(m.store.Initial())
}

// Current returns the active scene, or nil before the first switch.
func (m *Manager) Current() *narrative.Scene {
	return m.current
}

// Busy reports whether a transition is running.
func (m *Manager) Busy() bool {
	return m.busy
}

// Queued returns the number of transitions waiting to run.
func (m *Manager) Queued() int {
	return m.pending.Size()
}

func (m *Manager) Store() narrative.Store {
	return m.store
}
