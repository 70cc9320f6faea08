package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmediateFirstFetch(t *testing.T) {
	var fetches int64
	loop := NewLoop("test", time.Hour, func(ctx context.Context) (int, error) {
		atomic.AddInt64(&fetches, 1)
		return 1, nil
	}, nil)

	loop.Start()
	defer loop.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fetches) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSuccessReplacesSnapshotWholesale(t *testing.T) {
	var n int64
	loop := NewLoop("test", 10*time.Millisecond, func(ctx context.Context) (int64, error) {
		return atomic.AddInt64(&n, 1), nil
	}, nil)

	loop.Start()
	defer loop.Stop()

	require.Eventually(t, func() bool {
		snap := loop.Snapshot()
		return snap.Value != nil && *snap.Value >= 3
	}, time.Second, 5*time.Millisecond)

	snap := loop.Snapshot()
	assert.NoError(t, snap.LastError)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestFailurePreservesLastGoodValue(t *testing.T) {
	var cycle int64
	loop := NewLoop("test", 10*time.Millisecond, func(ctx context.Context) (string, error) {
		if atomic.AddInt64(&cycle, 1) == 1 {
			return "good", nil
		}
		return "", errors.New("backend down")
	}, nil)

	loop.Start()
	defer loop.Stop()

	require.Eventually(t, func() bool {
		snap := loop.Snapshot()
		return snap.LastError != nil
	}, time.Second, 5*time.Millisecond)

	snap := loop.Snapshot()
	require.NotNil(t, snap.Value)
	assert.Equal(t, "good", *snap.Value, "stale-but-available: failures never clear good data")
	assert.EqualError(t, snap.LastError, "backend down")
}

func TestErrorClearedOnNextSuccess(t *testing.T) {
	var cycle int64
	loop := NewLoop("test", 10*time.Millisecond, func(ctx context.Context) (int, error) {
		c := atomic.AddInt64(&cycle, 1)
		if c == 1 {
			return 0, errors.New("transient")
		}
		return int(c), nil
	}, nil)

	loop.Start()
	defer loop.Stop()

	require.Eventually(t, func() bool {
		snap := loop.Snapshot()
		return snap.Value != nil && snap.LastError == nil
	}, time.Second, 5*time.Millisecond)
}

func TestNoOverlappingFetches(t *testing.T) {
	var inFlight, maxInFlight int64
	loop := NewLoop("test", 5*time.Millisecond, func(ctx context.Context) (int, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			prev := atomic.LoadInt64(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt64(&maxInFlight, prev, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond) // slower than the interval
		atomic.AddInt64(&inFlight, -1)
		return 0, nil
	}, nil)

	loop.Start()
	time.Sleep(150 * time.Millisecond)
	loop.Stop()

	assert.Equal(t, int64(1), atomic.LoadInt64(&maxInFlight),
		"a slow fetch must never overlap the next one")
}

func TestSetIntervalAdaptsCadence(t *testing.T) {
	// The rankings loop shortens its own interval from inside onUpdate while
	// a backtest runs; the new cadence must apply from the next cycle on.
	var fetches int64
	var loop *Loop[int]
	loop = NewLoop("test", time.Hour, func(ctx context.Context) (int, error) {
		return int(atomic.AddInt64(&fetches, 1)), nil
	}, func(snap Snapshot[int]) {
		loop.SetInterval(5 * time.Millisecond)
	})

	loop.Start()
	defer loop.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fetches) >= 4
	}, time.Second, time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, loop.Interval())
}

func TestStopEndsCycling(t *testing.T) {
	var fetches int64
	loop := NewLoop("test", 5*time.Millisecond, func(ctx context.Context) (int, error) {
		return int(atomic.AddInt64(&fetches, 1)), nil
	}, nil)

	loop.Start()
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&fetches) >= 2
	}, time.Second, time.Millisecond)

	loop.Stop()
	after := atomic.LoadInt64(&fetches)
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt64(&fetches), after+1,
		"at most the in-flight fetch runs to completion after Stop")
}

func TestStopDiscardsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	fetching := make(chan struct{})
	var updates int64
	loop := NewLoop("test", time.Hour, func(ctx context.Context) (int, error) {
		close(fetching)
		<-release
		return 42, nil
	}, func(Snapshot[int]) {
		atomic.AddInt64(&updates, 1)
	})

	loop.Start()
	<-fetching

	// Stop while the first fetch is in flight, then let it return
	loop.Stop()
	close(release)

	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, loop.Snapshot().Value, "a result arriving after Stop never lands")
	assert.Zero(t, atomic.LoadInt64(&updates), "onUpdate never fires after Stop")
}

func TestOnUpdateFiresEveryCycle(t *testing.T) {
	var updates int64
	loop := NewLoop("test", 5*time.Millisecond, func(ctx context.Context) (int, error) {
		return 7, nil
	}, func(snap Snapshot[int]) {
		atomic.AddInt64(&updates, 1)
	})

	loop.Start()
	defer loop.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&updates) >= 3
	}, time.Second, time.Millisecond)
}
