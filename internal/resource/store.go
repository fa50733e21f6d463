// Package resource caches loaded assets by path.
//
// Each asset kind gets its own typed Store, so callers never downcast.
package resource

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/objscene/internal/logger"
)

// Loader produces a resource from its path.
type Loader[T any] func(ctx context.Context, path string) (T, error)

// Store caches resources of one kind. It is safe for concurrent use;
// concurrent Gets for the same uncached path run the loader once.
type Store[T any] struct {
	kind  string
	load  Loader[T]
	group singleflight.Group

	mu    sync.RWMutex
	items map[string]T
	gens  map[string]uint64 // Bumped on Invalidate so in-flight loads don't refill the cache
}

// NewStore creates a store. kind names the resource in log output.
func NewStore[T any](kind string, load Loader[T]) *Store[T] {
	return &Store[T]{
		kind:  kind,
		load:  load,
		items: make(map[string]T),
		gens:  make(map[string]uint64),
	}
}

// Get returns the cached resource for path, loading it on first use.
// Failed loads are not cached.
func (s *Store[T]) Get(ctx context.Context, path string) (T, error) {
	if v, ok := s.cached(path); ok {
		logger.Debug("cache hit", zap.String("store", s.kind), zap.String("path", path))
		return v, nil
	}

	res, err, _ := s.group.Do(path, func() (any, error) {
		// Another caller may have finished while we waited
		s.mu.RLock()
		v, ok := s.items[path]
		gen := s.gens[path]
		s.mu.RUnlock()
		if ok {
			return v, nil
		}

		start := time.Now()
		v, err := s.load(ctx, path)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		stale := s.gens[path] != gen
		if !stale {
			s.items[path] = v
		}
		s.mu.Unlock()

		if stale {
			logger.Debug("discarding stale load",
				zap.String("store", s.kind),
				zap.String("path", path))
			return v, nil
		}

		logger.Debug("loaded",
			zap.String("store", s.kind),
			zap.String("path", path),
			zap.Duration("took", time.Since(start)))
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("load %s %s: %w", s.kind, path, err)
	}
	return res.(T), nil
}

func (s *Store[T]) cached(path string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[path]
	return v, ok
}

// Invalidate drops path from the cache and reports whether it was present.
// A load already in flight for path still returns to its callers but is
// not cached.
func (s *Store[T]) Invalidate(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[path]
	delete(s.items, path)
	s.gens[path]++
	return ok
}

// Reload drops any cached copy of path and loads it again, even when a
// Get for path is still running. On failure the previous entry stays dropped.
func (s *Store[T]) Reload(ctx context.Context, path string) (T, error) {
	s.Invalidate(path)
	s.group.Forget(path)
	return s.Get(ctx, path)
}

// Len returns the number of cached resources.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// LoadAll loads paths concurrently and returns results in input order.
// The first error cancels the remaining loads and no results are returned.
func (s *Store[T]) LoadAll(ctx context.Context, paths []string) ([]T, error) {
	results := make([]T, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := s.Get(ctx, path)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
