package workers_test

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/galplayer/pkg/repositories"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/cbodonnell/galplayer/pkg/state"
	"github.com/cbodonnell/galplayer/pkg/workers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latest(t *testing.T, repo repositories.Repository) *models.Save {
	t.Helper()
	save, err := repo.LatestSave(context.Background(), "demo")
	if err != nil {
		return nil
	}
	return save
}

func TestAutosaveWorker_SavesRequests(t *testing.T) {
	repo := repositories.NewInMemoryRepository()
	requests := make(chan *models.Save)
	w := workers.NewAutosaveWorker(workers.NewAutosaveWorkerOptions{
		Repository:   repo,
		SaveChan:     requests,
		StateManager: state.NewInMemoryStateManager(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	session := uuid.New()
	requests <- &models.Save{SessionID: session, Story: "demo", SceneID: "intro"}
	assert.Eventually(t, func() bool {
		s := latest(t, repo)
		return s != nil && s.SceneID == "intro"
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	s := latest(t, repo)
	require.NotNil(t, s)
	assert.NotZero(t, s.CreatedAt)
	assert.Equal(t, session, s.SessionID)
}

func TestAutosaveWorker_PeriodicSaveTracksState(t *testing.T) {
	repo := repositories.NewInMemoryRepository()
	states := state.NewInMemoryStateManager()
	w := workers.NewAutosaveWorker(workers.NewAutosaveWorkerOptions{
		Repository:   repo,
		StateManager: states,
		Interval:     5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	session := uuid.New()
	require.NoError(t, states.Set(ctx, &models.Save{SessionID: session, Story: "demo", SceneID: "intro", Index: 1}))
	assert.Eventually(t, func() bool {
		s := latest(t, repo)
		return s != nil && s.Index == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, states.Set(ctx, &models.Save{SessionID: session, Story: "demo", SceneID: "outro", Index: 0}))
	assert.Eventually(t, func() bool {
		s := latest(t, repo)
		return s != nil && s.SceneID == "outro"
	}, time.Second, 5*time.Millisecond)

	saves, err := repo.ListSaves(ctx, "demo", 0)
	require.NoError(t, err)
	assert.Len(t, saves, 1, "one row per session")
}

func TestAutosaveWorker_FlushesOnShutdown(t *testing.T) {
	repo := repositories.NewInMemoryRepository()
	states := state.NewInMemoryStateManager()
	w := workers.NewAutosaveWorker(workers.NewAutosaveWorkerOptions{
		Repository:   repo,
		StateManager: states,
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, states.Set(ctx, &models.Save{SessionID: uuid.New(), Story: "demo", SceneID: "choice", Index: 0}))
	cancel()
	w.Start(ctx)

	s := latest(t, repo)
	require.NotNil(t, s)
	assert.Equal(t, "choice", s.SceneID)
}
