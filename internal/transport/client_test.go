// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestClient_HeadersAndQuery(t *testing.T) {
	var got *http.Request
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "secret-key")
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "v1/chat",
		Query:  url.Values{"limit": {"20"}},
		Body:   map[string]any{"stream": true},
		Stream: true,
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got.URL.Path != "/v1/chat" {
		t.Errorf("path = %q, want /v1/chat", got.URL.Path)
	}
	if got.URL.Query().Get("limit") != "20" {
		t.Errorf("limit query = %q, want 20", got.URL.Query().Get("limit"))
	}
	if got.Header.Get(APIKeyHeader) != "secret-key" {
		t.Errorf("%s = %q, want secret-key", APIKeyHeader, got.Header.Get(APIKeyHeader))
	}
	if got.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Header.Get("Content-Type"))
	}
	if got.Header.Get("Accept") != "text/event-stream" {
		t.Errorf("Accept = %q, want text/event-stream", got.Header.Get("Accept"))
	}
	if gotBody["stream"] != true {
		t.Errorf("body stream = %v, want true", gotBody["stream"])
	}
}

func TestClient_NoKeyNoHeader(t *testing.T) {
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
	}))
	defer server.Close()

	c := NewClient(server.URL, "  ")
	resp, err := c.Do(context.Background(), Request{Path: "/v1/threads"})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if _, ok := header[http.CanonicalHeaderKey(APIKeyHeader)]; ok {
		t.Error("X-API-Key must be absent when no key is configured")
	}
	if header.Get("Content-Type") != "" {
		t.Error("Content-Type must be absent without a body")
	}
	if c.IsConfigured() {
		t.Error("blank key should not count as configured")
	}
}

func TestClient_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := NewClient(server.URL, "").Do(ctx, Request{Path: "/slow"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClient_RateLimitWaitHonorsContext(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "").WithRateLimit(0.001, 1)
	// Consume the single token
	c.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := c.Do(ctx, Request{Path: "/"}); err == nil {
		t.Fatal("expected rate limiter to reject before the deadline")
	}
}

func TestReadAll_Limit(t *testing.T) {
	data, err := ReadAll(strings.NewReader("small"))
	if err != nil || string(data) != "small" {
		t.Errorf("ReadAll = (%q, %v)", data, err)
	}
}

func TestKeyFingerprint(t *testing.T) {
	a := NewClient("http://x", "key-a").KeyFingerprint()
	b := NewClient("http://x", "key-b").KeyFingerprint()
	if a == b {
		t.Error("different keys should have different fingerprints")
	}
	if strings.Contains(a, "key") {
		t.Error("fingerprint must not contain the key")
	}
	if NewClient("http://x", "").KeyFingerprint() != "none" {
		t.Error("empty key fingerprint should be none")
	}
}
