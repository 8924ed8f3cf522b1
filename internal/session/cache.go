package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/models"
	"github.com/bookstore-insights/backend/internal/source"
	"golang.org/x/sync/singleflight"
)

// LoaderFunc produces a dataset for a source. source.LoadResult is the default.
type LoaderFunc func(ctx context.Context, src source.Source) (*source.Result, error)

// CacheEntry is the memoised outcome of one load, failed or not.
type CacheEntry struct {
	Dataset     *dataset.Dataset
	Errors      []models.ParseError
	Fingerprint string
	LoadedAt    time.Time
	Duration    time.Duration
	Err         error
}

// DatasetCache memoises loads per source identity. A failed load is cached as
// well: it is only retried after Invalidate or Reload. A load whose caller went
// away is not a failure of the source and is never cached.
//
// mu only guards the map; loads run outside it so Peek never waits on a fetch.
type DatasetCache struct {
	mu      sync.Mutex
	loader  LoaderFunc
	entries map[string]*CacheEntry
	gen     uint64 // bumped by Invalidate
	flight  singleflight.Group
}

func NewDatasetCache(loader LoaderFunc) *DatasetCache {
	if loader == nil {
		loader = source.LoadResult
	}
	return &DatasetCache{loader: loader, entries: make(map[string]*CacheEntry)}
}

// Get returns the cached entry for src, loading it on first use. Concurrent
// callers share a single load. The load itself is detached from ctx and is
// bounded by the source's own timeout; when ctx ends first, Get returns an
// uncached LoadError and the load still completes for later callers.
func (c *DatasetCache) Get(ctx context.Context, src source.Source) *CacheEntry {
	id := src.Identity()
	if e, ok := c.Peek(id); ok {
		return e
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(id, func() (any, error) {
		if e, ok := c.Peek(id); ok {
			return e, nil
		}
		e := c.load(loadCtx, src)
		if !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded) {
			c.mu.Lock()
			if c.gen == gen {
				c.entries[id] = e
			}
			c.mu.Unlock()
		}
		return e, nil
	})

	select {
	case r := <-ch:
		return r.Val.(*CacheEntry)
	case <-ctx.Done():
		return &CacheEntry{
			Dataset:  dataset.Empty(),
			LoadedAt: time.Now(),
			Err:      &source.LoadError{Source: id, Cause: ctx.Err()},
		}
	}
}

func (c *DatasetCache) load(ctx context.Context, src source.Source) *CacheEntry {
	res, err := c.loader(ctx, src)
	e := &CacheEntry{LoadedAt: time.Now(), Err: err}
	if res != nil {
		e.Dataset = res.Dataset
		e.Errors = res.Errors
		e.Fingerprint = res.Fingerprint
		e.Duration = res.Duration
	}
	if e.Dataset == nil {
		e.Dataset = dataset.Empty()
	}
	return e
}

// Peek returns the entry for identity without loading.
func (c *DatasetCache) Peek(identity string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[identity]
	return e, ok
}

// Invalidate drops the entry for identity. A load already in flight finishes
// for its callers but is not stored.
func (c *DatasetCache) Invalidate(identity string) {
	c.mu.Lock()
	delete(c.entries, identity)
	c.gen++
	c.mu.Unlock()
	c.flight.Forget(identity)
}

// Reload discards any cached entry for src and loads it again.
func (c *DatasetCache) Reload(ctx context.Context, src source.Source) *CacheEntry {
	c.Invalidate(src.Identity())
	return c.Get(ctx, src)
}

// Len returns the number of cached sources.
func (c *DatasetCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
