// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/stream"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

const chatPath = "/v1/chat"

// ChatRepository sends chat turns. Nothing here is cached.
type ChatRepository struct {
	doer transport.Doer
	log  *zap.Logger
}

// NewChatRepository creates a chat repository over doer. Only WithLogger
// affects it.
func NewChatRepository(doer transport.Doer, opts ...Option) *ChatRepository {
	o := buildOptions(opts)
	return &ChatRepository{doer: doer, log: o.log}
}

// SendMessage streams one chat turn. The channel yields each parsed chunk
// and at most one failure, then closes. When ctx is canceled the channel
// closes without a failure. Callers must drain the channel or cancel ctx.
func (r *ChatRepository) SendMessage(ctx context.Context, req model.ChatRequest) <-chan Result[stream.Chunk] {
	out := make(chan Result[stream.Chunk])

	go func() {
		defer close(out)

		emit := func(res Result[stream.Chunk]) bool {
			if ctx.Err() != nil {
				return false
			}
			select {
			case out <- res:
				return true
			case <-ctx.Done():
				return false
			}
		}
		fail := func(err error) {
			if apierr.IsCanceled(err) || ctx.Err() != nil {
				return
			}
			emit(Result[stream.Chunk]{Err: err})
		}

		if err := validateChat(req); err != nil {
			fail(err)
			return
		}
		req.Stream = true

		resp, err := r.doer.Do(ctx, transport.Request{
			Method: http.MethodPost,
			Path:   chatPath,
			Body:   req,
			Stream: true,
		})
		if err != nil {
			fail(normalize(ctx, err))
			return
		}
		defer resp.Body.Close()

		if !transport.IsSuccess(resp.StatusCode) {
			fail(statusError(resp, "chat request failed"))
			return
		}

		parser := stream.NewParser(resp.Body).WithLogger(r.log)
		defer func() {
			if n := parser.Dropped(); n > 0 {
				r.log.Debug("dropped undecodable stream payloads", zap.Int("count", n))
			}
		}()

		for {
			chunk, err := parser.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				fail(apierr.Wrap(err))
				return
			}
			if !emit(Result[stream.Chunk]{Value: chunk}) {
				return
			}
		}
	}()

	return out
}

// SendMessageSync performs the same turn without streaming and decodes the
// single response body.
func (r *ChatRepository) SendMessageSync(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	if err := validateChat(req); err != nil {
		return model.ChatResponse{}, err
	}
	req.Stream = false
	return call(ctx, r.doer, transport.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body:   req,
	}, "chat request failed", decodeJSON[model.ChatResponse])
}

// ListModels returns the models offered by the backend. Not cached.
func (r *ChatRepository) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	req := transport.Request{Method: http.MethodGet, Path: chatPath + "/models"}
	return call(ctx, r.doer, req, "failed to list models", model.DecodeModels)
}

func validateChat(req model.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return &apierr.ValidationError{Message: "message must not be empty"}
	}
	return nil
}
