// Package poll runs fixed-interval fetch loops, one per backend resource.
//
// Each Loop is independent: a failing fetch in one loop never affects another,
// and a failing cycle never clears previously fetched data. All fetching for a
// loop happens on a single goroutine, so a slow fetch can never overlap the
// next one; the next cycle simply starts after the previous one settles.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Snapshot is the last known-good value for one polled resource.
// It is replaced wholesale on every successful fetch; on failure the previous
// Value is retained and only LastError/FetchedAt change.
type Snapshot[T any] struct {
	Value     *T
	LastError error
	FetchedAt time.Time
}

// FetchFunc performs one fetch cycle
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Loop polls one resource on its own cadence
type Loop[T any] struct {
	name     string
	fetch    FetchFunc[T]
	onUpdate func(Snapshot[T])

	mu       sync.RWMutex
	interval time.Duration
	snap     Snapshot[T]

	stopCh   chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewLoop creates a poll loop. onUpdate fires after every cycle, success or
// failure, with the current snapshot; it may be nil.
func NewLoop[T any](name string, interval time.Duration, fetch FetchFunc[T], onUpdate func(Snapshot[T])) *Loop[T] {
	return &Loop[T]{
		name:     name,
		fetch:    fetch,
		onUpdate: onUpdate,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start performs one immediate fetch, then repeats every interval until Stop
func (l *Loop[T]) Start() {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go l.run()
}

// Stop cancels the loop. No cycle starts after Stop returns.
func (l *Loop[T]) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

// Interval returns the current polling interval
func (l *Loop[T]) Interval() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.interval
}

// SetInterval changes the polling cadence. It applies from the next cycle;
// the rankings loop uses this to speed up while a backtest runs.
func (l *Loop[T]) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	l.mu.Lock()
	changed := l.interval != d
	l.interval = d
	l.mu.Unlock()

	if changed {
		log.Debug().Str("loop", l.name).Dur("interval", d).Msg("Poll interval changed")
	}
}

// Snapshot returns the current snapshot
func (l *Loop[T]) Snapshot() Snapshot[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

func (l *Loop[T]) run() {
	l.cycle()

	for {
		timer := time.NewTimer(l.Interval())
		select {
		case <-l.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
		l.cycle()
	}
}

// cycle runs one fetch and folds the result into the snapshot
func (l *Loop[T]) cycle() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Abort the in-flight request if the loop is stopped mid-fetch
	go func() {
		select {
		case <-l.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	value, err := l.fetch(ctx)

	// A result arriving after Stop is discarded: no snapshot write, no callback
	select {
	case <-l.stopCh:
		return
	default:
	}

	l.mu.Lock()
	if err != nil {
		l.snap.LastError = err
	} else {
		l.snap.Value = &value
		l.snap.LastError = nil
	}
	l.snap.FetchedAt = time.Now()
	snap := l.snap
	onUpdate := l.onUpdate
	l.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("loop", l.name).Msg("Fetch failed, keeping last value")
	}

	if onUpdate != nil {
		onUpdate(snap)
	}
}
