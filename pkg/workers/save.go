package workers

import (
	"context"
	"errors"
	"time"

	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/repositories"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/cbodonnell/galplayer/pkg/state"
)

const flushTimeout = 5 * time.Second

type AutosaveWorker struct {
	repository   repositories.Repository
	saveChan     <-chan *models.Save
	stateManager state.StateManager
	interval     time.Duration
	now          func() time.Time

	last *models.Save
}

type NewAutosaveWorkerOptions struct {
	Repository   repositories.Repository
	SaveChan     <-chan *models.Save
	StateManager state.StateManager
	// Interval between periodic saves. Zero disables the ticker; explicit
	// requests are still saved.
	Interval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewAutosaveWorker creates a new AutosaveWorker.
// The worker saves explicit checkpoint requests from the engine and
// periodically saves the current playback position when it has moved.
func NewAutosaveWorker(opts NewAutosaveWorkerOptions) *AutosaveWorker {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &AutosaveWorker{
		repository:   opts.Repository,
		saveChan:     opts.SaveChan,
		stateManager: opts.StateManager,
		interval:     opts.Interval,
		now:          now,
	}
}

// Start runs until ctx is done, then saves the final position once more.
func (w *AutosaveWorker) Start(ctx context.Context) {
	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			w.saveCurrent(flushCtx)
			cancel()
			return
		case save := <-w.saveChan:
			w.save(ctx, save)
		case <-tick:
			w.saveCurrent(ctx)
		}
	}
}

func (w *AutosaveWorker) saveCurrent(ctx context.Context) {
	current, err := w.stateManager.Get(ctx)
	if err != nil {
		if !errors.Is(err, state.ErrNoState) {
			log.Error("Failed to get current playback state: %v", err)
		}
		return
	}
	if current.SamePosition(w.last) {
		return
	}
	w.save(ctx, current)
}

func (w *AutosaveWorker) save(ctx context.Context, save *models.Save) {
	if save == nil {
		return
	}
	now := w.now().UnixMilli()
	if save.CreatedAt == 0 {
		save.CreatedAt = now
	}
	save.UpdatedAt = now
	if err := w.repository.SaveProgress(ctx, save); err != nil {
		log.Error("Failed to save progress: %v", err)
		return
	}
	log.Debug("Saved progress %s at %s[%d]", save.SessionID, save.SceneID, save.Index)
	w.last = save
}
