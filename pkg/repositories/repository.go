package repositories

import (
	"context"

	"github.com/cbodonnell/galplayer/pkg/repositories/models"
)

// Repository persists playback progress. Saves are keyed by session: saving
// again within a session replaces the earlier position.
type Repository interface {
	Close(ctx context.Context) error
	SaveProgress(ctx context.Context, save *models.Save) error
	// LatestSave returns the most recently updated save of story, or
	// *ErrNotFound.
	LatestSave(ctx context.Context, story string) (*models.Save, error)
	// ListSaves returns up to limit saves of story, newest first. An empty
	// story lists every story.
	ListSaves(ctx context.Context, story string, limit int) ([]*models.Save, error)
}
