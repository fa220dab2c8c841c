// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/model"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

// TerminalEndpointSource supplies the terminal host settings. It is consulted
// on every request so configuration changes apply without a restart.
type TerminalEndpointSource interface {
	TerminalEndpoint() (baseURL, apiKey string)
}

// EndpointFunc adapts a function to TerminalEndpointSource.
type EndpointFunc func() (baseURL, apiKey string)

// TerminalEndpoint calls f.
func (f EndpointFunc) TerminalEndpoint() (string, string) { return f() }

// DoerFactory builds a Doer for a resolved endpoint.
type DoerFactory func(baseURL, apiKey string) transport.Doer

// DefaultDoerFactory creates a transport.Client.
func DefaultDoerFactory(baseURL, apiKey string) transport.Doer {
	return transport.NewClient(baseURL, apiKey)
}

const terminalSessionsPath = "/api/v1/terminal/sessions"

// TerminalRepository reads terminal sessions.
type TerminalRepository struct {
	source   TerminalEndpointSource
	factory  DoerFactory
	lists    *resource[[]model.TerminalSession]
	sessions *resource[model.TerminalSession]
}

// NewTerminalRepository creates a terminal repository. A nil factory uses
// DefaultDoerFactory.
func NewTerminalRepository(source TerminalEndpointSource, factory DoerFactory, opts ...Option) *TerminalRepository {
	if factory == nil {
		factory = DefaultDoerFactory
	}
	o := buildOptions(opts)
	return &TerminalRepository{
		source:   source,
		factory:  factory,
		lists:    newResource[[]model.TerminalSession]("terminal.list", o),
		sessions: newResource[model.TerminalSession]("terminal.sessions", o),
	}
}

// ListSessions returns all terminal sessions. The endpoint is validated
// before the cache is consulted, and cached entries are scoped to the
// endpoint they were read from.
func (r *TerminalRepository) ListSessions(ctx context.Context) ([]model.TerminalSession, error) {
	doer, scope, err := r.resolve()
	if err != nil {
		return nil, err
	}
	return r.lists.fetch(ctx, scope, func(ctx context.Context) ([]model.TerminalSession, error) {
		req := transport.Request{Method: http.MethodGet, Path: terminalSessionsPath}
		return call(ctx, doer, req, "failed to list terminal sessions", model.DecodeTerminalSessions)
	})
}

// GetSession returns one terminal session, cached by endpoint and id.
func (r *TerminalRepository) GetSession(ctx context.Context, id string) (model.TerminalSession, error) {
	if err := requireID("terminal session", id); err != nil {
		return model.TerminalSession{}, err
	}
	doer, scope, err := r.resolve()
	if err != nil {
		return model.TerminalSession{}, err
	}
	return r.sessions.fetch(ctx, scope+"/"+id, func(ctx context.Context) (model.TerminalSession, error) {
		req := transport.Request{Method: http.MethodGet, Path: terminalSessionsPath + "/" + url.PathEscape(id)}
		return call(ctx, doer, req, "failed to load terminal session "+id, decodeJSON[model.TerminalSession])
	})
}

// resolve validates the current endpoint and returns a client for it with
// the cache scope of that endpoint: base URL plus a digest of the key.
func (r *TerminalRepository) resolve() (transport.Doer, string, error) {
	if r.source == nil {
		return nil, "", &apierr.ValidationError{Message: "terminal endpoint is not configured"}
	}
	baseURL, apiKey := r.source.TerminalEndpoint()
	if err := ValidateTerminalEndpoint(baseURL, apiKey); err != nil {
		return nil, "", err
	}
	baseURL, apiKey = strings.TrimSpace(baseURL), strings.TrimSpace(apiKey)
	sum := sha256.Sum256([]byte(apiKey))
	scope := strings.TrimRight(baseURL, "/") + "#" + hex.EncodeToString(sum[:4])
	return r.factory(baseURL, apiKey), scope, nil
}

// ValidateTerminalEndpoint checks that the terminal URL is an absolute
// http(s) URL and that a key is present.
func ValidateTerminalEndpoint(baseURL, apiKey string) error {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return &apierr.ValidationError{Message: "terminal base URL is not configured"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return &apierr.ValidationError{Message: "terminal API key is not configured"}
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &apierr.ValidationError{Message: "terminal base URL is not a valid http(s) URL: " + baseURL}
	}
	return nil
}
