// Package game wires the playback engine together and drives it one tick at a
// time from the renderer's update callback.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/audio"
	"github.com/cbodonnell/galplayer/pkg/config"
	"github.com/cbodonnell/galplayer/pkg/dialogue"
	"github.com/cbodonnell/galplayer/pkg/display"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/loop"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/queue"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/cbodonnell/galplayer/pkg/scenes"
	"github.com/cbodonnell/galplayer/pkg/state"
	"github.com/google/uuid"
)

type GameManager struct {
	loop     *loop.Loop
	cache    *assets.Cache
	audio    *audio.Manager
	display  *display.Synchronizer
	dialogue *dialogue.Controller
	scenes   *scenes.Manager

	store      narrative.Store
	story      string
	start      string
	preloadAll bool

	commandQueue   queue.Queue[Command]
	stateManager   state.StateManager
	checkpointChan chan<- *models.Save

	session   uuid.UUID
	createdAt int64

	snapshotLock sync.RWMutex
	snapshot     Snapshot

	handlersLock sync.Mutex
	handlers     []EventHandler

	logger *log.Logger
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	// Config defaults to config.Default().
	Config *config.Config
	Store  narrative.Store
	// StoryID keys saves. It usually is the story title.
	StoryID string

	Surface display.Surface
	Overlay scenes.Overlay
	Loader  assets.Loader
	// Clock defaults to the wall clock.
	Clock loop.Clock

	// StateManager receives the playback position after every line. Optional.
	StateManager state.StateManager
	// CheckpointChan receives a save on every scene entry. Sends never block.
	// Optional.
	CheckpointChan chan<- *models.Save
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	l := loop.New(opts.Clock)
	cache := assets.NewCache(l, opts.Loader, assets.CacheOptions{
		Timeout: cfg.LoadTimeout(),
		Workers: cfg.Assets.PreloadWorkers,
	})
	synchronizer := display.NewSynchronizer(opts.Surface, cache, display.Options{
		Layout:         display.NewLayout(float64(cfg.Display.Width), float64(cfg.Display.Height)),
		EffectDuration: cfg.EffectDuration(),
	})
	player := audio.NewManager(cache)
	player.SetVolume(audio.ChannelMusic, cfg.Audio.MusicVolume)
	player.SetVolume(audio.ChannelVoice, cfg.Audio.VoiceVolume)
	player.SetVolume(audio.ChannelSound, cfg.Audio.SoundVolume)
	player.SetMuted(cfg.Audio.Muted)
	ctrl := dialogue.NewController(l, opts.Overlay, synchronizer, player, dialogue.Options{
		RevealSpeed:   cfg.RevealSpeed(),
		ContinueLabel: cfg.Dialogue.ContinueLabel,
	})
	manager := scenes.NewManager(opts.Store, opts.Overlay, synchronizer, player, cache, ctrl, scenes.Options{
		StartLabel:    cfg.Dialogue.StartLabel,
		ContinueLabel: cfg.Dialogue.ContinueLabel,
	})

	gm := &GameManager{
		loop:           l,
		cache:          cache,
		audio:          player,
		display:        synchronizer,
		dialogue:       ctrl,
		scenes:         manager,
		store:          opts.Store,
		story:          opts.StoryID,
		start:          opts.Store.Initial(),
		preloadAll:     cfg.Assets.PreloadAll,
		commandQueue:   queue.NewInMemoryQueue[Command](),
		stateManager:   opts.StateManager,
		checkpointChan: opts.CheckpointChan,
		session:        uuid.New(),
		logger:         log.With("component", "game"),
	}
	if _, ok := opts.Store.Scene(cfg.Story.Start); ok {
		gm.start = cfg.Story.Start
	} else if cfg.Story.Start != "" {
		gm.logger.Warn("Configured start scene %q not found, using %q", cfg.Story.Start, gm.start)
	}

	manager.OnEnter(gm.handleSceneEntered)
	ctrl.OnLine(gm.handleLine)
	gm.refreshSnapshot()
	return gm
}

// Boot preloads every asset of the story when preloading is enabled and calls
// then on the loop. Progress is published as EventProgress.
func (gm *GameManager) Boot(ctx context.Context, then func(error)) {
	if !gm.preloadAll {
		gm.trigger(Event{Type: EventReady, Progress: 1})
		then(nil)
		return
	}
	refs := scenes.StoryManifest(gm.store)
	gm.logger.Info("Preloading %d assets", len(refs))
	started := time.Now()
	gm.cache.Preload(ctx, refs, func(p float64) {
		gm.trigger(Event{Type: EventProgress, Progress: p})
	}, func(err error) {
		if err != nil {
			gm.logger.Error("Failed to preload assets: %v", err)
			gm.trigger(Event{Type: EventBootFailed, Error: err.Error()})
			then(err)
			return
		}
		gm.logger.Info("Preloaded %d assets in %s", len(refs), time.Since(started).Round(time.Millisecond))
		gm.trigger(Event{Type: EventReady, Progress: 1})
		then(nil)
	})
}

// Start enters the start scene, or the saved position when resume belongs to
// this story and its scene still exists. Loop-only.
func (gm *GameManager) Start(resume *models.Save) {
	if resume != nil {
		if _, ok := gm.store.Scene(resume.SceneID); ok && resume.Story == gm.story {
			gm.session = resume.SessionID
			gm.createdAt = resume.CreatedAt
			gm.logger.Info("Resuming session %s at %s[%d]", gm.session, resume.SceneID, resume.Index)
			gm.scenes.SwitchSceneAt(resume.SceneID, resume.Index)
			return
		}
		gm.logger.Warn("Ignoring save for %s[%d]: not part of this story", resume.SceneID, resume.Index)
	}
	gm.scenes.SwitchScene(gm.start)
}

// Enqueue queues a command for the next Update. It is safe to call from any
// goroutine.
func (gm *GameManager) Enqueue(cmd Command) error {
	switch cmd.Type {
	case CommandSwitchScene:
		if _, ok := gm.store.Scene(cmd.Scene); !ok {
			return fmt.Errorf("%w: %q", narrative.ErrSceneNotFound, cmd.Scene)
		}
	case CommandAdvance, CommandInteract, CommandNotify, CommandRestart:
	default:
		return fmt.Errorf("unknown command type: %q", cmd.Type)
	}
	gm.commandQueue.Enqueue(cmd)
	return nil
}

// Update runs queued commands, due loop callbacks and effect tweens. It is
// called once per tick.
func (gm *GameManager) Update(dt time.Duration) {
	gm.processCommands()
	gm.loop.Step()
	gm.display.Update(float32(dt.Seconds()))
	gm.refreshSnapshot()
}

func (gm *GameManager) processCommands() {
	for _, cmd := range gm.commandQueue.ReadAll() {
		log.Trace("Processing command %s", cmd.Type)
		switch cmd.Type {
		case CommandSwitchScene:
			gm.scenes.SwitchSceneAt(cmd.Scene, cmd.Index)
		case CommandAdvance:
			gm.scenes.Advance()
		case CommandInteract:
			gm.Interact()
		case CommandNotify:
			gm.NotifyInteraction()
		case CommandRestart:
			gm.Restart()
		}
	}
}

// Interact handles an activation of the text area: it unlocks audio and
// skips or advances the dialogue. Loop-only.
func (gm *GameManager) Interact() {
	gm.audio.NotifyInteraction()
	gm.scenes.HandleInteraction()
}

// NotifyInteraction records a user activation outside the text area.
// Loop-only.
func (gm *GameManager) NotifyInteraction() {
	gm.audio.NotifyInteraction()
}

// Restart returns to the initial scene with a fresh asset cache. Loop-only.
func (gm *GameManager) Restart() {
	gm.scenes.Restart()
	gm.trigger(Event{Type: EventRestart})
}

func (gm *GameManager) handleSceneEntered(scene *narrative.Scene) {
	save := gm.record(scene.ID, gm.dialogue.Index())
	if gm.checkpointChan != nil {
		select {
		case gm.checkpointChan <- save:
		default:
			gm.logger.Warn("Dropping checkpoint for scene %s: save worker is busy", scene.ID)
		}
	}
	gm.trigger(Event{Type: EventScene})
}

func (gm *GameManager) handleLine(ps dialogue.PlaybackState) {
	gm.record(ps.SceneID, ps.Index)
	gm.trigger(Event{Type: EventLine})
}

// record publishes the position to the state manager and returns it as a
// save.
func (gm *GameManager) record(sceneID string, index int) *models.Save {
	if gm.createdAt == 0 {
		gm.createdAt = gm.loop.Now().UnixMilli()
	}
	save := &models.Save{
		SessionID: gm.session,
		Story:     gm.story,
		SceneID:   sceneID,
		Index:     index,
		CreatedAt: gm.createdAt,
	}
	if gm.stateManager != nil {
		if err := gm.stateManager.Set(context.Background(), save); err != nil {
			gm.logger.Error("Failed to set playback state: %v", err)
		}
	}
	return save
}

// RegisterHandler registers a handler for playback events.
func (gm *GameManager) RegisterHandler(handler EventHandler) {
	gm.handlersLock.Lock()
	defer gm.handlersLock.Unlock()
	gm.handlers = append(gm.handlers, handler)
}

func (gm *GameManager) trigger(event Event) {
	gm.refreshSnapshot()
	event.State = gm.Snapshot()

	gm.handlersLock.Lock()
	handlers := make([]EventHandler, len(gm.handlers))
	copy(handlers, gm.handlers)
	gm.handlersLock.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}

func (gm *GameManager) refreshSnapshot() {
	ps := gm.dialogue.State()
	snap := Snapshot{
		Session:    gm.session.String(),
		Story:      gm.story,
		Scene:      ps.SceneID,
		Index:      ps.Index,
		Revealing:  ps.Revealing,
		Terminal:   ps.Terminal,
		Busy:       gm.scenes.Busy(),
		Queued:     gm.scenes.Queued(),
		Interacted: gm.audio.HasInteracted(),
		Display:    gm.display.State(),
		Audio:      make(map[string]ChannelState, len(audio.Channels)),
	}
	if current := gm.scenes.Current(); current != nil {
		snap.Scene = current.ID
		snap.SceneType = current.Type
	}
	for _, ch := range audio.Channels {
		if ch == audio.ChannelSound {
			continue
		}
		snap.Audio[ch.String()] = ChannelState{
			Current: gm.audio.Current(ch),
			Pending: gm.audio.Pending(ch),
		}
	}

	gm.snapshotLock.Lock()
	gm.snapshot = snap
	gm.snapshotLock.Unlock()
}

// Snapshot returns the state as of the last tick. It is safe to call from any
// goroutine.
func (gm *GameManager) Snapshot() Snapshot {
	gm.snapshotLock.RLock()
	defer gm.snapshotLock.RUnlock()
	return gm.snapshot
}

// HasScene reports whether the story contains id. The store is immutable, so
// this is safe to call from any goroutine.
func (gm *GameManager) HasScene(id string) bool {
	_, ok := gm.store.Scene(id)
	return ok
}

func (gm *GameManager) Loop() *loop.Loop {
	return gm.loop
}

func (gm *GameManager) Cache() *assets.Cache {
	return gm.cache
}

func (gm *GameManager) Audio() *audio.Manager {
	return gm.audio
}

func (gm *GameManager) Display() *display.Synchronizer {
	return gm.display
}

func (gm *GameManager) Dialogue() *dialogue.Controller {
	return gm.dialogue
}

func (gm *GameManager) Scenes() *scenes.Manager {
	return gm.scenes
}

func (gm *GameManager) Store() narrative.Store {
	return gm.store
}

func (gm *GameManager) Session() uuid.UUID {
	return gm.session
}
