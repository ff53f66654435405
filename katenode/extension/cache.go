package extension

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/kate"
	"github.com/LumeraProtocol/kate/pkg/logtrace"
	"github.com/LumeraProtocol/kate/pkg/task"
)

const (
	// DefaultCapacity bounds the cache at roughly 1 GiB of 512 KiB matrices.
	DefaultCapacity = 2048

	// TaskKind is the tracker kind of running builds.
	TaskKind = "extension_build"
)

// ExtrinsicsFunc produces the inclusion-ordered extrinsics of the block being
// built. It is only called on a miss.
type ExtrinsicsFunc func() ([]kate.ExtrinsicRecord, error)

// SeedFunc produces the padding seed of the block being built. It is only
// called on a miss.
type SeedFunc func(ctx context.Context) kate.VRFSeed

// Stats is a snapshot of cache activity.
type Stats struct {
	Size          int    `json:"size"`
	Capacity      int    `json:"capacity"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Builds        uint64 `json:"builds"`
	BuildFailures uint64 `json:"buildFailures"`
	Evictions     uint64 `json:"evictions"`
	Poisoned      bool   `json:"poisoned"`
}

// Cache is a strict-LRU store of block extensions keyed by block hash.
//
// Concurrent callers asking for the same hash share one build; callers for
// other hashes never wait on it. An entry is inserted only after a fully
// successful build. A build that panics poisons the cache: every later call
// fails with a retryable CacheUnavailable error until Reset.
type Cache struct {
	builder  BlockBuilder
	entries  *lru.Cache[kate.Hash, *Extension]
	flights  singleflight.Group
	slots    *semaphore.Weighted
	tracker  task.Tracker
	capacity int

	poison atomic.Pointer[error]

	hits, misses, builds, failures, evictions atomic.Uint64
}

type options struct {
	capacity  int
	maxBuilds int64
	tracker   task.Tracker
}

// Option configures a Cache.
type Option func(*options)

// WithCapacity sets the maximum number of cached extensions.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithMaxConcurrentBuilds bounds how many distinct blocks may be built at
// once. Zero means unbounded.
func WithMaxConcurrentBuilds(n int64) Option {
	return func(o *options) { o.maxBuilds = n }
}

// WithTracker records running builds on tr, keyed by block hash.
func WithTracker(tr task.Tracker) Option {
	return func(o *options) { o.tracker = tr }
}

// NewCache returns an empty cache building misses with builder.
func NewCache(builder BlockBuilder, opts ...Option) (*Cache, error) {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity <= 0 {
		return nil, errors.Errorf("cache capacity must be positive, got %d", o.capacity)
	}
	entries, err := lru.New[kate.Hash, *Extension](o.capacity)
	if err != nil {
		return nil, errors.Wrap(err, "create lru")
	}
	c := &Cache{builder: builder, entries: entries, tracker: o.tracker, capacity: o.capacity}
	if o.maxBuilds > 0 {
		c.slots = semaphore.NewWeighted(o.maxBuilds)
	}
	return c, nil
}

// GetOrBuild returns the cached extension of block id, building and inserting
// it on a miss. A failed build inserts nothing; the next caller retries.
// Builds are not cancelled by ctx once they start.
func (c *Cache) GetOrBuild(ctx context.Context, id kate.BlockIdentity, dims kate.BlockDimensions, extrinsics ExtrinsicsFunc, seed SeedFunc) (*Extension, error) {
	if err := c.unavailable(); err != nil {
		return nil, err
	}
	if ext, ok := c.entries.Get(id.Hash); ok {
		c.hits.Add(1)
		return ext, nil
	}

	v, err, shared := c.flights.Do(string(id.Hash[:]), func() (interface{}, error) {
		// Another flight may have inserted it between our lookup and now.
		if ext, ok := c.entries.Get(id.Hash); ok {
			c.hits.Add(1)
			return ext, nil
		}
		c.misses.Add(1)
		return c.build(context.WithoutCancel(ctx), id, dims, extrinsics, seed)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logtrace.Debug(ctx, "joined in-flight extension build", logtrace.Fields{
			logtrace.FieldModule:      "extension",
			logtrace.FieldBlockNumber: id.Number,
		})
	}
	return v.(*Extension), nil
}

func (c *Cache) build(ctx context.Context, id kate.BlockIdentity, dims kate.BlockDimensions, extrinsics ExtrinsicsFunc, seed SeedFunc) (ext *Extension, err error) {
	fields := logtrace.Fields{
		logtrace.FieldModule:      "extension",
		logtrace.FieldBlockNumber: id.Number,
		logtrace.FieldBlockHash:   id.Hash.String(),
	}
	defer func() {
		if r := recover(); r != nil {
			cause := errors.FromPanic(r)
			c.poison.Store(&cause)
			c.failures.Add(1)
			logtrace.Error(ctx, "extension build aborted, cache poisoned", logtrace.WithFields(fields, logtrace.Fields{
				logtrace.FieldError:      cause.Error(),
				logtrace.FieldStackTrace: errors.ErrorStack(cause),
			}))
			ext, err = nil, errors.WrapKind(errors.KindCacheUnavailable, cause, "extension build of block %s aborted", id)
		}
	}()

	if c.slots != nil {
		if err := c.slots.Acquire(ctx, 1); err != nil {
			return nil, errors.WrapKind(errors.KindCacheUnavailable, err, "waiting for a build slot for block %s", id)
		}
		defer c.slots.Release(1)
	}

	defer task.Track(ctx, c.tracker, TaskKind, id.Hash.String())()

	xts, err := extrinsics()
	if err != nil {
		c.failures.Add(1)
		return nil, errors.Wrapf(err, "extrinsics of block %s", id)
	}
	s := seed(ctx)

	c.builds.Add(1)
	ext, err = c.builder.Build(ctx, id, dims, xts, s)
	if err != nil {
		c.failures.Add(1)
		logtrace.Warn(ctx, "extension build failed", logtrace.WithFields(fields, logtrace.Fields{logtrace.FieldError: err.Error()}))
		return nil, err
	}
	if ext == nil || ext.Matrix == nil {
		c.failures.Add(1)
		return nil, errors.E(errors.KindInternal, "builder returned no extension for block %s", id)
	}

	if evicted := c.entries.Add(id.Hash, ext); evicted {
		c.evictions.Add(1)
	}
	fields[logtrace.FieldCacheSize] = c.entries.Len()
	logtrace.Info(ctx, "extension cached", fields)
	return ext, nil
}

func (c *Cache) unavailable() error {
	if cause := c.poison.Load(); cause != nil {
		return errors.WrapKind(errors.KindCacheUnavailable, *cause, "block extension cache is poisoned")
	}
	return nil
}

// Contains reports whether the extension of hash is cached, without touching
// its recency.
func (c *Cache) Contains(hash kate.Hash) bool {
	return c.entries.Contains(hash)
}

// Len returns the number of cached extensions.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Reset drops every entry and clears a poisoned state.
func (c *Cache) Reset() {
	c.entries.Purge()
	c.poison.Store(nil)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Size:          c.entries.Len(),
		Capacity:      c.capacity,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Builds:        c.builds.Load(),
		BuildFailures: c.failures.Load(),
		Evictions:     c.evictions.Load(),
		Poisoned:      c.poison.Load() != nil,
	}
}
