package resource

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoader returns the path upper-cased and records each call.
type countingLoader struct {
	calls atomic.Int32
	delay time.Duration
	fail  string
}

func (l *countingLoader) load(ctx context.Context, path string) (string, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if path == l.fail {
		return "", errors.New("boom")
	}
	return strings.ToUpper(path), nil
}

func TestStore_GetCaches(t *testing.T) {
	l := &countingLoader{}
	s := NewStore("text", l.load)
	ctx := context.Background()

	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	v, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	assert.EqualValues(t, 1, l.calls.Load())
	assert.Equal(t, 1, s.Len())
}

func TestStore_GetErrorNotCached(t *testing.T) {
	l := &countingLoader{fail: "bad"}
	s := NewStore("text", l.load)

	_, err := s.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load text bad")
	assert.Zero(t, s.Len())

	_, err = s.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.EqualValues(t, 2, l.calls.Load())
}

func TestStore_ConcurrentGetLoadsOnce(t *testing.T) {
	l := &countingLoader{delay: 20 * time.Millisecond}
	s := NewStore("text", l.load)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Get(context.Background(), "shared")
			assert.NoError(t, err)
			assert.Equal(t, "SHARED", v)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, l.calls.Load())
}

func TestStore_InvalidateAndReload(t *testing.T) {
	l := &countingLoader{}
	s := NewStore("text", l.load)
	ctx := context.Background()

	_, err := s.Get(ctx, "a")
	require.NoError(t, err)

	assert.True(t, s.Invalidate("a"))
	assert.False(t, s.Invalidate("a"))
	assert.Zero(t, s.Len())

	v, err := s.Reload(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", v)
	assert.EqualValues(t, 2, l.calls.Load())
	assert.Equal(t, 1, s.Len())
}

func TestStore_ReloadDuringGet(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 2)
	s := NewStore("gen", func(ctx context.Context, path string) (int, error) {
		n := calls.Add(1)
		started <- struct{}{}
		time.Sleep(100 * time.Millisecond)
		return int(n), nil
	})
	ctx := context.Background()

	first := make(chan int, 1)
	go func() {
		v, err := s.Get(ctx, "a")
		assert.NoError(t, err)
		first <- v
	}()
	<-started

	v, err := s.Reload(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, v, "reload must run the loader again")
	assert.EqualValues(t, 2, calls.Load())

	assert.Equal(t, 1, <-first)

	// The earlier load finished after the invalidation and must not win
	v, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.EqualValues(t, 2, calls.Load())
}

func TestStore_LoadAllOrder(t *testing.T) {
	l := &countingLoader{}
	s := NewStore("text", l.load)

	paths := []string{"d", "c", "b", "a", "c"}
	got, err := s.LoadAll(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C", "B", "A", "C"}, got)
	assert.Equal(t, 4, s.Len())
}

func TestStore_LoadAllError(t *testing.T) {
	l := &countingLoader{fail: "bad"}
	s := NewStore("text", l.load)

	got, err := s.LoadAll(context.Background(), []string{"a", "bad", "c"})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "bad")
}

func TestStore_LoadAllCanceled(t *testing.T) {
	l := &countingLoader{}
	s := NewStore("text", l.load)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := s.LoadAll(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	assert.Zero(t, l.calls.Load())
}

func TestStore_LoadAllEmpty(t *testing.T) {
	s := NewStore("text", (&countingLoader{}).load)

	got, err := s.LoadAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
