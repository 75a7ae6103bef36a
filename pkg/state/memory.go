package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/galplayer/pkg/repositories/models"
)

type InMemoryStateManager struct {
	lock sync.RWMutex
	save *models.Save
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*models.Save, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.save == nil {
		return nil, ErrNoState
	}
	copy := *m.save
	return &copy, nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, save *models.Save) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if save == nil {
		return fmt.Errorf("playback state is nil")
	}

	copy := *save
	m.save = &copy
	return nil
}
