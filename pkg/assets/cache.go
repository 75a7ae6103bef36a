package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/loop"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLoadTimeout    = 10 * time.Second
	DefaultPreloadWorkers = 4
)

// Cache memoizes textures by ref and audio handles by (kind, path). It is
// owned by the loop: every method must be called from loop callbacks, and
// loads complete through the loop.
type Cache struct {
	loop    *loop.Loop
	loader  Loader
	timeout time.Duration
	workers int
	logger  *log.Logger

	textures map[Ref]Texture
	audio    map[Ref]AudioHandle

	textureWaiters map[Ref][]func(Texture, error)
	audioWaiters   map[Ref][]func(AudioHandle, error)

	// epoch advances on Purge so loads started before it are discarded.
	epoch uint64
}

type CacheOptions struct {
	// Timeout bounds every single load. Zero uses DefaultLoadTimeout.
	Timeout time.Duration
	// Workers bounds concurrent loads during Preload.
	Workers int
}

func NewCache(l *loop.Loop, loader Loader, opts CacheOptions) *Cache {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultLoadTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultPreloadWorkers
	}
	return &Cache{
		loop:           l,
		loader:         loader,
		timeout:        opts.Timeout,
		workers:        opts.Workers,
		logger:         log.With("component", "assets"),
		textures:       make(map[Ref]Texture),
		audio:          make(map[Ref]AudioHandle),
		textureWaiters: make(map[Ref][]func(Texture, error)),
		audioWaiters:   make(map[Ref][]func(AudioHandle, error)),
	}
}

// Texture returns a cached texture.
func (c *Cache) Texture(ref Ref) (Texture, bool) {
	t, ok := c.textures[ref]
	return t, ok
}

// Audio returns a cached audio handle.
func (c *Cache) Audio(ref Ref) (AudioHandle, bool) {
	h, ok := c.audio[ref]
	return h, ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.textures) + len(c.audio)
}

// RequestTexture delivers the texture for ref to then. A cache hit calls then
// immediately; a miss loads off the loop and calls then from a later Step.
// Concurrent requests for the same ref share a single load.
func (c *Cache) RequestTexture(ref Ref, then func(Texture, error)) {
	if t, ok := c.textures[ref]; ok {
		then(t, nil)
		return
	}
	if waiters, ok := c.textureWaiters[ref]; ok {
		c.textureWaiters[ref] = append(waiters, then)
		return
	}
	c.textureWaiters[ref] = []func(Texture, error){then}

	epoch := c.epoch
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	loop.Spawn(c.loop, ctx, func(ctx context.Context) (Texture, error) {
		return c.loader.LoadTexture(ctx, ref)
	}, func(t Texture, err error) {
		cancel()
		err = c.wrapLoadErr(ref, err)
		if err == nil && c.epoch != epoch {
			disposeTexture(t)
			err = ErrPurged
		}
		if err == nil {
			if cached, ok := c.textures[ref]; ok {
				// a preload stored it while this load was running
				disposeTexture(t)
				t = cached
			} else {
				c.textures[ref] = t
			}
		} else {
			c.logger.Error("Failed to load texture %s: %v", ref, err)
		}
		waiters := c.textureWaiters[ref]
		delete(c.textureWaiters, ref)
		for _, w := range waiters {
			w(t, err)
		}
	})
}

// RequestAudio is RequestTexture for audio handles.
func (c *Cache) RequestAudio(ref Ref, then func(AudioHandle, error)) {
	if h, ok := c.audio[ref]; ok {
		then(h, nil)
		return
	}
	if waiters, ok := c.audioWaiters[ref]; ok {
		c.audioWaiters[ref] = append(waiters, then)
		return
	}
	c.audioWaiters[ref] = []func(AudioHandle, error){then}

	epoch := c.epoch
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	loop.Spawn(c.loop, ctx, func(ctx context.Context) (AudioHandle, error) {
		return c.loader.LoadAudio(ctx, ref)
	}, func(h AudioHandle, err error) {
		cancel()
		err = c.wrapLoadErr(ref, err)
		if err == nil && c.epoch != epoch {
			h.Close()
			err = ErrPurged
		}
		if err == nil {
			if cached, ok := c.audio[ref]; ok {
				h.Close()
				h = cached
			} else {
				c.audio[ref] = h
			}
		} else {
			c.logger.Error("Failed to load audio %s: %v", ref, err)
		}
		waiters := c.audioWaiters[ref]
		delete(c.audioWaiters, ref)
		for _, w := range waiters {
			w(h, err)
		}
	})
}

func (c *Cache) wrapLoadErr(ref Ref, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", ref, ErrLoadTimeout)
	}
	return fmt.Errorf("%s: %w", ref, err)
}

type loaded struct {
	ref     Ref
	texture Texture
	audio   AudioHandle
}

// Preload loads every ref that is not cached yet, keeps going past failures,
// and calls then with the aggregate error once all loads have finished.
// onProgress, if set, receives the completed fraction after each asset.
// Both callbacks run on the loop.
func (c *Cache) Preload(ctx context.Context, refs []Ref, onProgress func(float64), then func(error)) {
	todo := c.missing(refs)
	if len(todo) == 0 {
		c.loop.Post(func() {
			if onProgress != nil {
				onProgress(1)
			}
			then(nil)
		})
		return
	}

	epoch := c.epoch
	total := len(todo)
	loop.Spawn(c.loop, ctx, func(ctx context.Context) ([]loaded, error) {
		var (
			mu      sync.Mutex
			results = make([]loaded, 0, total)
			errs    []error
			done    int
		)
		g := errgroup.Group{}
		g.SetLimit(c.workers)
		for _, ref := range todo {
			g.Go(func() error {
				item, err := c.loadOne(ctx, ref)
				mu.Lock()
				defer mu.Unlock()
				done++
				if err != nil {
					errs = append(errs, err)
				} else {
					results = append(results, item)
				}
				// posted under the lock so progress is delivered in order
				if onProgress != nil {
					fraction := float64(done) / float64(total)
					c.loop.Post(func() { onProgress(fraction) })
				}
				return nil
			})
		}
		_ = g.Wait()
		return results, errors.Join(errs...)
	}, func(results []loaded, err error) {
		if c.epoch != epoch {
			for _, item := range results {
				c.dispose(item)
			}
			then(ErrPurged)
			return
		}
		for _, item := range results {
			c.commit(item)
		}
		if err != nil {
			c.logger.Warn("Preload finished with failures: %v", err)
		}
		then(err)
	})
}

func (c *Cache) missing(refs []Ref) []Ref {
	seen := make(map[Ref]struct{}, len(refs))
	todo := make([]Ref, 0, len(refs))
	for _, ref := range refs {
		if ref.Path == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		if ref.Kind.IsAudio() {
			if _, ok := c.audio[ref]; ok {
				continue
			}
		} else if _, ok := c.textures[ref]; ok {
			continue
		}
		todo = append(todo, ref)
	}
	return todo
}

// loadOne runs off the loop and must not touch cache state.
func (c *Cache) loadOne(ctx context.Context, ref Ref) (loaded, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		item loaded
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		item := loaded{ref: ref}
		var err error
		if ref.Kind.IsAudio() {
			item.audio, err = c.loader.LoadAudio(ctx, ref)
		} else {
			item.texture, err = c.loader.LoadTexture(ctx, ref)
		}
		ch <- result{item: item, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			c.logger.Error("Failed to preload %s: %v", ref, r.err)
		}
		return r.item, c.wrapLoadErr(ref, r.err)
	case <-ctx.Done():
		c.logger.Error("Timed out preloading %s", ref)
		return loaded{}, c.wrapLoadErr(ref, ctx.Err())
	}
}

func (c *Cache) commit(item loaded) {
	if item.ref.Kind.IsAudio() {
		if _, ok := c.audio[item.ref]; ok {
			item.audio.Close()
			return
		}
		c.audio[item.ref] = item.audio
		return
	}
	if _, ok := c.textures[item.ref]; ok {
		disposeTexture(item.texture)
		return
	}
	c.textures[item.ref] = item.texture
}

func (c *Cache) dispose(item loaded) {
	if item.audio != nil {
		item.audio.Close()
	}
	if item.texture != nil {
		disposeTexture(item.texture)
	}
}

// Purge destroys every cached resource. Loads still in flight are discarded
// when they complete.
func (c *Cache) Purge() {
	c.epoch++
	for ref, h := range c.audio {
		h.Pause()
		if err := h.Close(); err != nil {
			c.logger.Warn("Failed to close audio %s: %v", ref, err)
		}
	}
	for _, t := range c.textures {
		disposeTexture(t)
	}
	c.textures = make(map[Ref]Texture)
	c.audio = make(map[Ref]AudioHandle)
	c.logger.Info("Asset cache purged")
}
