// Package loop provides the single cooperative timeline the playback engine
// runs on. All engine state is mutated from callbacks executed by Step, which
// the game calls once per tick. Blocking work runs on other goroutines and
// delivers its continuation back onto the loop.
package loop

import (
	"container/heap"
	"context"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/galplayer/pkg/queue"
)

// Clock reports the current time to the loop.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type Loop struct {
	clock Clock
	inbox *queue.InMemoryQueue[func()]
	wake  chan struct{}

	timers timerHeap
	seq    uint64
	// base is the due time of the timer being run, so timers scheduled from
	// timer callbacks do not drift with tick granularity.
	base    time.Time
	running bool

	inflight atomic.Int64
}

// New creates a loop driven by the given clock. A nil clock uses the wall clock.
func New(clock Clock) *Loop {
	if clock == nil {
		clock = SystemClock
	}
	return &Loop{
		clock: clock,
		inbox: queue.NewInMemoryQueue[func()](),
		wake:  make(chan struct{}, 1),
	}
}

// Now returns the loop's notion of the current time.
func (l *Loop) Now() time.Time {
	if l.running {
		return l.base
	}
	return l.clock.Now()
}

// Post schedules fn to run on the loop during the next Step.
// It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.inbox.Enqueue(fn)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After schedules fn to run on the loop once d has elapsed. Loop-only.
func (l *Loop) After(d time.Duration, fn func()) *Timer {
	l.seq++
	t := &Timer{
		due: l.Now().Add(d),
		seq: l.seq,
		fn:  fn,
	}
	heap.Push(&l.timers, t)
	return t
}

// Go runs work on a new goroutine and delivers its error to then on the loop.
// If ctx ends before work returns, then receives ctx.Err() and the late result
// is discarded.
func (l *Loop) Go(ctx context.Context, work func(ctx context.Context) error, then func(error)) {
	Spawn(l, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, work(ctx)
	}, func(_ struct{}, err error) {
		then(err)
	})
}

// Spawn is the value returning form of Loop.Go.
func Spawn[T any](l *Loop, ctx context.Context, work func(ctx context.Context) (T, error), then func(T, error)) {
	type result struct {
		value T
		err   error
	}
	l.inflight.Add(1)
	go func() {
		ch := make(chan result, 1)
		go func() {
			v, err := work(ctx)
			ch <- result{value: v, err: err}
		}()

		var r result
		select {
		case r = <-ch:
		case <-ctx.Done():
			r.err = ctx.Err()
		}
		l.Post(func() {
			l.inflight.Add(-1)
			then(r.value, r.err)
		})
	}()
}

// Pending reports whether work is queued, in flight, or waiting on a timer.
func (l *Loop) Pending() bool {
	return l.inbox.Size() > 0 || l.inflight.Load() > 0 || l.timers.Len() > 0
}

// Step runs every posted callback and every timer that is due, and returns
// how many callbacks ran.
func (l *Loop) Step() int {
	n := 0
	for {
		tasks := l.inbox.ReadAll()
		if len(tasks) == 0 {
			break
		}
		for _, fn := range tasks {
			fn()
			n++
		}
	}

	now := l.clock.Now()
	for l.timers.Len() > 0 {
		next := l.timers[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&l.timers)
		if next.stopped {
			continue
		}
		l.running, l.base = true, next.due
		next.fn()
		l.running = false
		n++

		// callbacks may post more work
		for _, fn := range l.inbox.ReadAll() {
			fn()
			n++
		}
	}
	return n
}

// Settle steps the loop until no goroutine started with Go is in flight and
// the inbox is empty. Timers that are not yet due are left alone.
func (l *Loop) Settle(ctx context.Context) error {
	for {
		l.Step()
		if l.inflight.Load() == 0 && l.inbox.Size() == 0 {
			return nil
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Timer is a callback scheduled with After.
type Timer struct {
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	index   int
}

// Stop prevents the timer from firing. Loop-only.
func (t *Timer) Stop() {
	if t != nil {
		t.stopped = true
	}
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
