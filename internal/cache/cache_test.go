package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func counting(calls *atomic.Int32, values ...string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		n := calls.Add(1)
		return values[int(n-1)%len(values)], nil
	}
}

func TestGetServesCachedValueWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := cache.New[string](10*time.Minute, clock)

	var calls atomic.Int32
	fetch := counting(&calls, "first", "second")

	v, err := store.Get(context.Background(), "library", fetch)
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	clock.Advance(9*time.Minute + 59*time.Second)
	v, err = store.Get(context.Background(), "library", fetch)
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetRefetchesOnceAfterExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := cache.New[string](10*time.Minute, clock)

	var calls atomic.Int32
	fetch := counting(&calls, "first", "second")

	_, err := store.Get(context.Background(), "library", fetch)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	v, err := store.Get(context.Background(), "library", fetch)
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	v, err = store.Get(context.Background(), "library", fetch)
	require.NoError(t, err)
	assert.Equal(t, "second", v)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	store := cache.New[int](time.Minute, nil)
	boom := errors.New("boom")

	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	_, err := store.Get(context.Background(), "k", fetch)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())

	v, err := store.Get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestKeysAreIndependent(t *testing.T) {
	store := cache.New[string](time.Minute, nil)

	a, _ := store.Get(context.Background(), "issues:1", func(context.Context) (string, error) { return "one", nil })
	b, _ := store.Get(context.Background(), "issues:2", func(context.Context) (string, error) { return "two", nil })

	assert.Equal(t, "one", a)
	assert.Equal(t, "two", b)
	assert.Equal(t, 2, store.Len())
}

func TestConcurrentMissesEachFetch(t *testing.T) {
	store := cache.New[string](time.Minute, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	var started sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			_, _ = store.Get(context.Background(), "cold", fetch)
		}()
	}
	started.Wait()

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 2, calls.Load())
}

func TestNewDefaults(t *testing.T) {
	store := cache.New[string](0, nil)
	assert.Equal(t, cache.DefaultTTL, store.TTL())
}
