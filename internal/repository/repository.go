// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/cache"
)

// DefaultTTL is the in-memory cache expiration when none is configured.
const DefaultTTL = 5 * time.Minute

// Result is one emission of a streaming operation. Err, when set, is an
// apierr.Error.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// =============================================================================
// OPTIONS
// =============================================================================

type options struct {
	ttl          time.Duration
	now          func() time.Time
	persistent   cache.Persistent
	singleFlight bool
	log          *zap.Logger
}

// Option configures a repository.
type Option func(*options)

// WithTTL sets the in-memory cache expiration.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces the cache clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPersistent adds a disk-backed cache behind the in-memory one.
func WithPersistent(p cache.Persistent) Option {
	return func(o *options) { o.persistent = p }
}

// WithSingleFlight collapses concurrent loads of the same key into one
// request. Off by default: concurrent misses each hit the network.
func WithSingleFlight(enabled bool) Option {
	return func(o *options) { o.singleFlight = enabled }
}

// WithLogger sets the logger for cache and stream diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// =============================================================================
// CACHED RESOURCE
// =============================================================================

// resource is the cache-then-network read path for one namespace.
type resource[T any] struct {
	namespace  string
	memory     *cache.TTL[string, T]
	persistent cache.Persistent
	group      *singleflight.Group
	log        *zap.Logger
}

func newResource[T any](namespace string, o options) *resource[T] {
	r := &resource[T]{
		namespace:  namespace,
		memory:     cache.New[string, T](o.ttl).WithClock(o.now),
		persistent: o.persistent,
		log:        o.log.With(zap.String("namespace", namespace)),
	}
	if o.singleFlight {
		r.group = &singleflight.Group{}
	}
	return r
}

// fetch returns the cached value for key or calls load. load must return
// apierr errors or the context's error.
func (r *resource[T]) fetch(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := r.memory.Get(key); ok {
		return v, nil
	}
	if r.group == nil {
		return r.load(ctx, key, load)
	}

	// The shared load must not inherit one caller's cancellation; each
	// caller instead stops waiting when its own ctx ends.
	ch := r.group.DoChan(key, func() (any, error) {
		return r.load(context.WithoutCancel(ctx), key, load)
	})
	select {
	case res := <-ch:
		if res.Shared {
			r.log.Debug("load shared", zap.String("key", key))
		}
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (r *resource[T]) load(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := r.fromPersistent(ctx, key); ok {
		r.memory.Put(key, v)
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		if !apierr.IsCanceled(err) {
			r.invalidate(ctx, key)
		}
		var zero T
		return zero, err
	}

	r.memory.Put(key, v)
	r.toPersistent(ctx, key, v)
	return v, nil
}

func (r *resource[T]) fromPersistent(ctx context.Context, key string) (T, bool) {
	var v T
	if r.persistent == nil {
		return v, false
	}
	data, ok, err := r.persistent.Get(ctx, r.namespace, key)
	if err != nil {
		r.log.Warn("persistent cache read failed", zap.String("key", key), zap.Error(err))
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		r.log.Debug("discarding corrupt persistent entry", zap.String("key", key), zap.Error(err))
		return v, false
	}
	return v, true
}

func (r *resource[T]) toPersistent(ctx context.Context, key string, v T) {
	if r.persistent == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("persistent cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.persistent.Put(ctx, r.namespace, key, data); err != nil {
		r.log.Warn("persistent cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate removes key from both caches. The removal outlives ctx so a
// timed-out load still clears its entry.
func (r *resource[T]) invalidate(ctx context.Context, key string) {
	r.memory.Remove(key)
	if r.persistent == nil {
		return
	}
	if err := r.persistent.Remove(context.WithoutCancel(ctx), r.namespace, key); err != nil {
		r.log.Warn("persistent cache remove failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateAll empties the namespace in both caches.
func (r *resource[T]) invalidateAll(ctx context.Context) {
	r.memory.Clear()
	if r.persistent == nil {
		return
	}
	if err := r.persistent.RemoveNamespace(context.WithoutCancel(ctx), r.namespace); err != nil {
		r.log.Warn("persistent cache clear failed", zap.Error(err))
	}
}
