// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

// ThreadRepository reads conversation threads.
type ThreadRepository struct {
	doer    transport.Doer
	lists   *resource[[]model.Thread]
	threads *resource[model.Thread]
}

// NewThreadRepository creates a thread repository over doer.
func NewThreadRepository(doer transport.Doer, opts ...Option) *ThreadRepository {
	o := buildOptions(opts)
	return &ThreadRepository{
		doer:    doer,
		lists:   newResource[[]model.Thread]("threads.list", o),
		threads: newResource[model.Thread]("threads", o),
	}
}

// ListThreads returns one page of threads, cached by "limit:offset".
func (r *ThreadRepository) ListThreads(ctx context.Context, limit, offset int) ([]model.Thread, error) {
	if limit < 0 || offset < 0 {
		return nil, &apierr.ValidationError{Message: "limit and offset must not be negative"}
	}
	key := fmt.Sprintf("%d:%d", limit, offset)
	return r.lists.fetch(ctx, key, func(ctx context.Context) ([]model.Thread, error) {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		req := transport.Request{Method: http.MethodGet, Path: "/v1/threads", Query: q}
		return call(ctx, r.doer, req, "failed to list threads", model.DecodeThreads)
	})
}

// GetThread returns a single thread, cached by id.
func (r *ThreadRepository) GetThread(ctx context.Context, id string) (model.Thread, error) {
	if err := requireID("thread", id); err != nil {
		return model.Thread{}, err
	}
	return r.threads.fetch(ctx, id, func(ctx context.Context) (model.Thread, error) {
		req := transport.Request{Method: http.MethodGet, Path: "/v1/threads/" + url.PathEscape(id)}
		return call(ctx, r.doer, req, "failed to load thread "+id, decodeJSON[model.Thread])
	})
}

// CreateThread is declared by the API but not served. It always fails with
// HTTP 501 and makes no request.
func (r *ThreadRepository) CreateThread(ctx context.Context, title string) (model.Thread, error) {
	return model.Thread{}, apierr.NotImplemented("thread creation is not supported by the server")
}

// InvalidateLists drops every cached page so the next listing is fresh.
func (r *ThreadRepository) InvalidateLists(ctx context.Context) {
	r.lists.invalidateAll(ctx)
}

// Invalidate drops the cached copy of one thread.
func (r *ThreadRepository) Invalidate(ctx context.Context, id string) {
	r.threads.invalidate(ctx, id)
}
