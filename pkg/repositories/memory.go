package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps saves for the lifetime of the process.
type InMemoryRepository struct {
	lock  sync.RWMutex
	saves map[uuid.UUID]models.Save
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		saves: make(map[uuid.UUID]models.Save),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) SaveProgress(ctx context.Context, save *models.Save) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	next := *save
	if prev, ok := r.saves[save.SessionID]; ok {
		next.CreatedAt = prev.CreatedAt
	}
	r.saves[save.SessionID] = next
	return nil
}

func (r *InMemoryRepository) LatestSave(ctx context.Context, story string) (*models.Save, error) {
	saves, _ := r.ListSaves(ctx, story, 1)
	if len(saves) == 0 || saves[0].Story != story {
		return nil, &ErrNotFound{}
	}
	return saves[0], nil
}

func (r *InMemoryRepository) ListSaves(ctx context.Context, story string, limit int) ([]*models.Save, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var out []*models.Save
	for _, s := range r.saves {
		if story != "" && s.Story != story {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
