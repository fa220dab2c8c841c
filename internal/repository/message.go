// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

// MessageRepository reads the messages of a thread.
type MessageRepository struct {
	doer     transport.Doer
	messages *resource[[]model.Message]
}

// NewMessageRepository creates a message repository over doer.
func NewMessageRepository(doer transport.Doer, opts ...Option) *MessageRepository {
	return &MessageRepository{
		doer:     doer,
		messages: newResource[[]model.Message]("messages", buildOptions(opts)),
	}
}

// ListMessages returns the messages of threadID, cached by thread id.
func (r *MessageRepository) ListMessages(ctx context.Context, threadID string) ([]model.Message, error) {
	if err := requireID("thread", threadID); err != nil {
		return nil, err
	}
	return r.messages.fetch(ctx, threadID, func(ctx context.Context) ([]model.Message, error) {
		req := transport.Request{
			Method: http.MethodGet,
			Path:   "/v1/threads/" + url.PathEscape(threadID) + "/messages",
		}
		return call(ctx, r.doer, req, "failed to load messages for thread "+threadID, model.DecodeMessages)
	})
}

// Invalidate drops the cached messages of threadID. Called after a chat turn
// added to the thread.
func (r *MessageRepository) Invalidate(ctx context.Context, threadID string) {
	r.messages.invalidate(ctx, threadID)
}
