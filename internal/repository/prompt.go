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

// SystemPromptRepository reads and writes named system prompts.
type SystemPromptRepository struct {
	doer    transport.Doer
	prompts *resource[model.SystemPrompt]
}

// NewSystemPromptRepository creates a system prompt repository over doer.
func NewSystemPromptRepository(doer transport.Doer, opts ...Option) *SystemPromptRepository {
	return &SystemPromptRepository{
		doer:    doer,
		prompts: newResource[model.SystemPrompt]("system_prompts", buildOptions(opts)),
	}
}

func promptPath(name string) string {
	return "/v1/system-prompts/" + url.PathEscape(name)
}

// Get returns the prompt called name, cached by name.
func (r *SystemPromptRepository) Get(ctx context.Context, name string) (model.SystemPrompt, error) {
	if err := requireID("system prompt", name); err != nil {
		return model.SystemPrompt{}, err
	}
	return r.prompts.fetch(ctx, name, func(ctx context.Context) (model.SystemPrompt, error) {
		req := transport.Request{Method: http.MethodGet, Path: promptPath(name)}
		return call(ctx, r.doer, req, "failed to load system prompt "+name, decodeJSON[model.SystemPrompt])
	})
}

// Update replaces the content of prompt name. The cached copy is dropped
// whether or not the write succeeds.
func (r *SystemPromptRepository) Update(ctx context.Context, name, content string) (model.SystemPrompt, error) {
	if err := requireID("system prompt", name); err != nil {
		return model.SystemPrompt{}, err
	}
	defer r.prompts.invalidate(ctx, name)

	req := transport.Request{
		Method: http.MethodPut,
		Path:   promptPath(name),
		Body:   model.UpdateSystemPromptRequest{Content: content},
	}
	return call(ctx, r.doer, req, "failed to update system prompt "+name, decodeJSON[model.SystemPrompt])
}
