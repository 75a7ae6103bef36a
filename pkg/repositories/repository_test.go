package repositories_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/galplayer/pkg/repositories"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepository(t *testing.T, repo repositories.Repository) {
	ctx := context.Background()

	_, err := repo.LatestSave(ctx, "demo")
	assert.True(t, repositories.IsNotFound(err), "got %v", err)

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, repo.SaveProgress(ctx, &models.Save{SessionID: first, Story: "demo", SceneID: "intro", Index: 1, CreatedAt: 100, UpdatedAt: 100}))
	require.NoError(t, repo.SaveProgress(ctx, &models.Save{SessionID: second, Story: "demo", SceneID: "choice", CreatedAt: 200, UpdatedAt: 200}))
	require.NoError(t, repo.SaveProgress(ctx, &models.Save{SessionID: uuid.New(), Story: "other", SceneID: "start", CreatedAt: 250, UpdatedAt: 250}))

	latest, err := repo.LatestSave(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, second, latest.SessionID)
	assert.Equal(t, "choice", latest.SceneID)

	// Saving the first session again moves it to the front and keeps its
	// creation time.
	require.NoError(t, repo.SaveProgress(ctx, &models.Save{SessionID: first, Story: "demo", SceneID: "outro", Index: 3, CreatedAt: 300, UpdatedAt: 300}))
	latest, err = repo.LatestSave(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, first, latest.SessionID)
	assert.Equal(t, "outro", latest.SceneID)
	assert.Equal(t, 3, latest.Index)
	assert.Equal(t, int64(100), latest.CreatedAt)
	assert.Equal(t, int64(300), latest.UpdatedAt)

	saves, err := repo.ListSaves(ctx, "demo", 0)
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, first, saves[0].SessionID)
	assert.Equal(t, second, saves[1].SessionID)

	all, err := repo.ListSaves(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "outro", all[0].SceneID)
	assert.Equal(t, "start", all[1].SceneID)

	require.NoError(t, repo.Close(ctx))
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := repositories.NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "nested", "saves.db"))
	require.NoError(t, err)
	testRepository(t, repo)
}

func TestInMemoryRepository(t *testing.T) {
	testRepository(t, repositories.NewInMemoryRepository())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := repositories.Open(context.Background(), "mongo", "")
	assert.Error(t, err)
}
