package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/config"
	"github.com/cbodonnell/galplayer/pkg/enginetest"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/cbodonnell/galplayer/pkg/state"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var str = narrative.String

func testStory() *narrative.Story {
	return narrative.NewStory("start",
		&narrative.Scene{
			ID: "start", Type: narrative.SceneTypeStart, NextScene: "intro",
			Background: str("title.png"), Music: "title.mp3",
		},
		&narrative.Scene{
			ID: "intro", Type: narrative.SceneTypeDialog, NextScene: "end",
			Contents: []narrative.Content{
				{Background: str("room.png"), CharacterSlots: narrative.CharacterSlots{Left: str("ann.png")}, Name: "Ann", Text: "Hi"},
				{Name: "Ann", Text: "Still here"},
				{Name: "Ann", Text: "Bye", Voice: "ann3.mp3"},
			},
		},
		&narrative.Scene{
			ID: "end", Type: narrative.SceneTypeDialog,
			Contents: []narrative.Content{{Text: "The end"}},
		},
	)
}

type fixture struct {
	gm          *GameManager
	loader      *enginetest.Loader
	overlay     *enginetest.Overlay
	states      *state.InMemoryStateManager
	checkpoints chan *models.Save
	events      []Event
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Dialogue.RevealSpeedMS = 0
	if mutate != nil {
		mutate(&cfg)
	}
	f := &fixture{
		loader:      enginetest.NewLoader(),
		overlay:     enginetest.NewOverlay(),
		states:      state.NewInMemoryStateManager(),
		checkpoints: make(chan *models.Save, 8),
	}
	f.gm = NewGameManager(NewGameManagerOptions{
		Config:         &cfg,
		Store:          testStory(),
		StoryID:        "demo",
		Surface:        enginetest.NewSurface(),
		Overlay:        f.overlay,
		Loader:         f.loader,
		StateManager:   f.states,
		CheckpointChan: f.checkpoints,
	})
	f.gm.RegisterHandler(func(e Event) {
		f.events = append(f.events, e)
	})
	return f
}

func (f *fixture) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f.gm.Update(0)
	require.NoError(t, f.gm.Loop().Settle(ctx))
	f.gm.Update(0)
}

func (f *fixture) eventTypes() []EventType {
	var types []EventType
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

func TestGameManager_Boot(t *testing.T) {
	f := newFixture(t, nil)
	var bootErr error
	booted := false
	f.gm.Boot(context.Background(), func(err error) {
		booted, bootErr = true, err
	})
	f.settle(t)

	require.True(t, booted)
	require.NoError(t, bootErr)
	assert.Equal(t, 1, f.loader.Loads(assets.Ref{Kind: assets.KindBackground, Path: "room.png"}))
	assert.Equal(t, 5, f.gm.Cache().Len())

	types := f.eventTypes()
	require.NotEmpty(t, types)
	assert.Equal(t, EventReady, types[len(types)-1])
	assert.Contains(t, types, EventProgress)

	f.gm.Start(nil)
	f.settle(t)
	snap := f.gm.Snapshot()
	assert.Equal(t, "start", snap.Scene)
	assert.Equal(t, narrative.SceneTypeStart, snap.SceneType)
	assert.Equal(t, "title.png", snap.Display.Background)
	assert.Equal(t, "title.mp3", snap.Audio["music"].Pending)
	assert.False(t, snap.Interacted)
}

func TestGameManager_BootFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.loader.Fail("ann.png", errors.New("corrupt"))

	var bootErr error
	f.gm.Boot(context.Background(), func(err error) {
		bootErr = err
	})
	f.settle(t)

	require.Error(t, bootErr)
	assert.ErrorContains(t, bootErr, "ann.png")
	last := f.events[len(f.events)-1]
	assert.Equal(t, EventBootFailed, last.Type)
	assert.NotEmpty(t, last.Error)
}

func TestGameManager_BootWithoutPreload(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Assets.PreloadAll = false })
	booted := false
	f.gm.Boot(context.Background(), func(err error) {
		booted = err == nil
	})

	assert.True(t, booted)
	assert.Equal(t, 0, f.gm.Cache().Len())
	assert.Equal(t, []EventType{EventReady}, f.eventTypes())
}

func TestGameManager_Enqueue(t *testing.T) {
	f := newFixture(t, nil)
	assert.ErrorIs(t, f.gm.Enqueue(Command{Type: CommandSwitchScene, Scene: "ghost"}), narrative.ErrSceneNotFound)
	assert.Error(t, f.gm.Enqueue(Command{Type: "jump"}))
	assert.NoError(t, f.gm.Enqueue(Command{Type: CommandSwitchScene, Scene: "intro"}))
}

func TestGameManager_processCommands(t *testing.T) {
	tests := []struct {
		name      string
		commands  []Command
		wantScene string
		wantIndex int
		wantText  string
	}{
		{
			name:      "switch scene",
			commands:  []Command{{Type: CommandSwitchScene, Scene: "intro"}},
			wantScene: "intro",
			wantText:  "Hi",
		},
		{
			name:      "switch scene at index",
			commands:  []Command{{Type: CommandSwitchScene, Scene: "intro", Index: 2}},
			wantScene: "intro",
			wantIndex: 2,
			wantText:  "Bye",
		},
		{
			name: "advance and interact",
			commands: []Command{
				{Type: CommandSwitchScene, Scene: "intro"},
				{Type: CommandAdvance},
				{Type: CommandInteract},
			},
			wantScene: "intro",
			wantIndex: 2,
			wantText:  "Bye",
		},
		{
			name: "restart",
			commands: []Command{
				{Type: CommandSwitchScene, Scene: "end"},
				{Type: CommandRestart},
			},
			wantScene: "start",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			for _, cmd := range tt.commands {
				require.NoError(t, f.gm.Enqueue(cmd))
				f.settle(t)
			}
			snap := f.gm.Snapshot()
			assert.Equal(t, tt.wantScene, snap.Scene)
			assert.Equal(t, tt.wantIndex, snap.Index)
			assert.Equal(t, tt.wantText, f.overlay.Text)
			assert.False(t, snap.Busy)
		})
	}
}

func TestGameManager_InteractAdvancesAndUnlocksAudio(t *testing.T) {
	f := newFixture(t, nil)
	f.gm.Start(nil)
	f.settle(t)
	require.Equal(t, "title.mp3", f.gm.Snapshot().Audio["music"].Pending)

	f.gm.NotifyInteraction()
	f.settle(t)
	snap := f.gm.Snapshot()
	assert.True(t, snap.Interacted)
	assert.Equal(t, "title.mp3", snap.Audio["music"].Current)

	require.True(t, f.overlay.Start())
	f.settle(t)
	require.Equal(t, "intro", f.gm.Snapshot().Scene)

	f.gm.Interact()
	f.gm.Interact()
	f.settle(t)
	snap = f.gm.Snapshot()
	assert.Equal(t, 2, snap.Index)
	assert.Equal(t, "ann3.mp3", snap.Audio["voice"].Current)
}

func TestGameManager_RecordsProgress(t *testing.T) {
	f := newFixture(t, nil)
	f.gm.Start(nil)
	f.settle(t)
	require.True(t, f.overlay.Start())
	f.settle(t)
	f.gm.Interact()
	f.settle(t)

	save, err := f.states.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.gm.Session(), save.SessionID)
	assert.Equal(t, "demo", save.Story)
	assert.Equal(t, "intro", save.SceneID)
	assert.Equal(t, 1, save.Index)
	assert.NotZero(t, save.CreatedAt)

	var checkpoints []string
	for len(f.checkpoints) > 0 {
		checkpoints = append(checkpoints, (<-f.checkpoints).SceneID)
	}
	assert.Equal(t, []string{"start", "intro"}, checkpoints)
	assert.Contains(t, f.eventTypes(), EventLine)
	assert.Contains(t, f.eventTypes(), EventScene)
}

func TestGameManager_Resume(t *testing.T) {
	tests := []struct {
		name        string
		save        *models.Save
		wantScene   string
		wantIndex   int
		wantSession bool
	}{
		{
			name:        "saved position",
			save:        &models.Save{SessionID: uuid.New(), Story: "demo", SceneID: "intro", Index: 1, CreatedAt: 42},
			wantScene:   "intro",
			wantIndex:   1,
			wantSession: true,
		},
		{
			name:      "other story",
			save:      &models.Save{SessionID: uuid.New(), Story: "other", SceneID: "intro", Index: 1},
			wantScene: "start",
		},
		{
			name:      "missing scene",
			save:      &models.Save{SessionID: uuid.New(), Story: "demo", SceneID: "gone"},
			wantScene: "start",
		},
		{
			name:      "no save",
			wantScene: "start",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.gm.Start(tt.save)
			f.settle(t)

			snap := f.gm.Snapshot()
			assert.Equal(t, tt.wantScene, snap.Scene)
			assert.Equal(t, tt.wantIndex, snap.Index)
			if tt.wantSession {
				assert.Equal(t, tt.save.SessionID, f.gm.Session())
				save, err := f.states.Get(context.Background())
				require.NoError(t, err)
				assert.Equal(t, int64(42), save.CreatedAt)
			} else if tt.save != nil {
				assert.NotEqual(t, tt.save.SessionID, f.gm.Session())
			}
		})
	}
}

func TestGameManager_ConfiguredStartScene(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Story.Start = "end" })
	f.gm.Start(nil)
	f.settle(t)
	assert.Equal(t, "end", f.gm.Snapshot().Scene)
	assert.Equal(t, "The end", f.overlay.Text)
}
