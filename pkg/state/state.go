package state

import (
	"context"
	"errors"

	"github.com/cbodonnell/galplayer/pkg/repositories/models"
)

// ErrNoState is returned by Get before the first Set.
var ErrNoState = errors.New("no playback state")

// StateManager provides shared access to the playback position.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current playback position.
	Get(ctx context.Context) (*models.Save, error)
	// Set sets the current playback position.
	Set(ctx context.Context, save *models.Save) error
}
