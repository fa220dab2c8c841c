// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

func TestListThreads_PagesAreCachedSeparately(t *testing.T) {
	client, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/threads", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		fmt.Fprintf(w, `{"threads":[{"id":"t-%s","title":"Page"}]}`, r.URL.Query().Get("offset"))
	})
	repo := NewThreadRepository(client)
	ctx := context.Background()

	first, err := repo.ListThreads(ctx, 20, 0)
	require.NoError(t, err)
	second, err := repo.ListThreads(ctx, 20, 20)
	require.NoError(t, err)
	_, err = repo.ListThreads(ctx, 20, 0)
	require.NoError(t, err)

	assert.Equal(t, "t-0", first[0].ID)
	assert.Equal(t, "t-20", second[0].ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListThreads_EmptyEnvelope(t *testing.T) {
	client, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	threads, err := NewThreadRepository(client).ListThreads(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
}

func TestListThreads_InvalidateLists(t *testing.T) {
	client, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"threads":[]}`)
	})
	repo := NewThreadRepository(client)
	ctx := context.Background()

	_, _ = repo.ListThreads(ctx, 20, 0)
	repo.InvalidateLists(ctx)
	_, _ = repo.ListThreads(ctx, 20, 0)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListThreads_NegativeOffset(t *testing.T) {
	_, err := NewThreadRepository(nil).ListThreads(context.Background(), 20, -1)
	var vErr *apierr.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCreateThread_AlwaysNotImplemented(t *testing.T) {
	var calls atomic.Int32
	doer := doerFunc(func(ctx context.Context, req transport.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, fmt.Errorf("unexpected request")
	})
	repo := NewThreadRepository(doer)

	for i := 0; i < 2; i++ {
		_, err := repo.CreateThread(context.Background(), "x")
		var httpErr *apierr.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotImplemented, httpErr.Code)
		assert.Equal(t, "Not Implemented", httpErr.Message)
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestGetThread_EmptyID(t *testing.T) {
	_, err := NewThreadRepository(nil).GetThread(context.Background(), " ")
	var vErr *apierr.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
