// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// writeConfig writes a TOML config pointing at baseURL and returns its path.
func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`[api]
base_url = %q
api_key = "test-key"

[cache]
path = %q

[logging]
level = "error"
`, baseURL, filepath.Join(dir, "cache.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// run executes the command line and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `{"threads":[{"id":"t1","title":"Release notes","message_count":4}]}`)
	})
	mux.HandleFunc("GET /v1/threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":%q,"title":"Release notes","message_count":1}`, r.PathValue("id"))
	})
	mux.HandleFunc("GET /v1/threads/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages":[{"id":"m1","thread_id":"t1","role":"user","content":"what changed?"}]}`)
	})
	mux.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"delta\",\"text\":\"Hello\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"delta\",\"text\":\" world\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"done\",\"thread_id\":\"t9\",\"message_id\":\"m2\"}\n\n")
	})
	mux.HandleFunc("GET /v1/chat/models", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model registry down", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestThreadsCommand_Table(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	out, _, err := run(t, "--config", cfg, "threads")

	require.NoError(t, err)
	assert.Contains(t, out, "t1")
	assert.Contains(t, out, "Release notes")
	assert.Contains(t, out, "TITLE")
}

func TestThreadsCommand_JSON(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	out, _, err := run(t, "--config", cfg, "--json", "threads")
	require.NoError(t, err)

	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Release notes", resp.Data[0].Title)
}

func TestThreadsCommand_RejectsNonPositiveLimit(t *testing.T) {
	_, _, err := run(t, "--config", writeConfig(t, "http://127.0.0.1:1"), "threads", "--limit", "0")

	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestMessagesCommand(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	out, _, err := run(t, "--config", cfg, "messages", "t1")

	require.NoError(t, err)
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "what changed?")
}

func TestExportCommand_Markdown(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)
	path := filepath.Join(t.TempDir(), "out", "t1.md")

	out, _, err := run(t, "--config", cfg, "export", "t1", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[OK]")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Release notes")
	assert.Contains(t, string(data), "what changed?")
}

func TestExportCommand_JSONToStdout(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	out, _, err := run(t, "--config", cfg, "export", "t1", "--format", "json", "-o", "-")
	require.NoError(t, err)

	var doc struct {
		Thread   struct{ ID string }        `json:"thread"`
		Messages []struct{ Content string } `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "t1", doc.Thread.ID)
	require.Len(t, doc.Messages, 1)
	assert.Equal(t, "what changed?", doc.Messages[0].Content)
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	_, _, err := run(t, "--config", writeConfig(t, "http://127.0.0.1:1"), "export", "t1", "--format", "pdf")

	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestSendCommand_StreamsReply(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	out, errOut, err := run(t, "--config", cfg, "send", "say", "hello")

	require.NoError(t, err)
	assert.Equal(t, "Hello world\n", out)
	assert.Contains(t, errOut, "thread: t9")
}

func TestSendCommand_JSON(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	out, _, err := run(t, "--config", cfg, "--json", "send", "hi")
	require.NoError(t, err)

	var resp struct {
		Data sendResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, sendResult{ThreadID: "t9", MessageID: "m2", Content: "Hello world"}, resp.Data)
}

func TestModelsCommand_ServerErrorExitsGeneral(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	_, _, err := run(t, "--config", cfg, "models")

	var httpErr *apierr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
	assert.Equal(t, ExitGeneralError, ExitCode(err))
}

func TestStatusCommand_ReportsEveryEndpoint(t *testing.T) {
	cfg := writeConfig(t, backend(t).URL)

	out, _, err := run(t, "--config", cfg, "status")

	// models fails, so the command fails after printing the report
	require.Error(t, err)
	assert.Contains(t, out, "[OK]")
	assert.Contains(t, out, "[FAIL]")
	assert.Contains(t, out, "[SKIP]")
	assert.Contains(t, out, "terminal")
}

func TestCacheStats_NoDatabase(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")

	out, _, err := run(t, "--config", cfg, "cache", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "No persistent cache yet.")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, _, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, _, err = run(t, "--config", path, "config", "init")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)

	_, _, err = run(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfig_InvalidFileIsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"not a url\"\n"), 0600))

	_, _, err := run(t, "--config", path, "threads")

	assert.Equal(t, ExitConfigError, ExitCode(err))
}

// =============================================================================
// HELPERS
// =============================================================================

func TestJSONErrorResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONErrorResponse("rigrun-chat models", errors.New("boom")).Write(&buf))

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "boom", *resp.Error)
	assert.Nil(t, resp.Data)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"config", &ConfigError{Err: errors.New("bad")}, ExitConfigError},
		{"usage", &UsageError{Message: "bad flag"}, ExitUsageError},
		{"validation", &apierr.ValidationError{Message: "empty"}, ExitUsageError},
		{"unauthorized", apierr.FromStatus(http.StatusUnauthorized, ""), ExitAuthError},
		{"forbidden", apierr.FromStatus(http.StatusForbidden, ""), ExitAuthError},
		{"authentication", &apierr.AuthenticationError{Message: "no key"}, ExitAuthError},
		{"not found", apierr.FromStatus(http.StatusNotFound, ""), ExitNotFoundError},
		{"server", apierr.FromStatus(http.StatusInternalServerError, ""), ExitGeneralError},
		{"network", &apierr.NetworkError{Cause: errors.New("refused")}, ExitNetworkError},
		{"timeout", &apierr.TimeoutError{Kind: "request"}, ExitTimeoutError},
		{"wrapped", fmt.Errorf("load: %w", apierr.FromStatus(http.StatusNotFound, "")), ExitNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestPromptContent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "prompt.md")
	require.NoError(t, os.WriteFile(file, []byte("Be brief.\n"), 0600))

	got, err := promptContent([]string{"default", "inline"}, "")
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	got, err = promptContent([]string{"default"}, file)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", got)

	_, err = promptContent([]string{"default", "inline"}, file)
	assert.Error(t, err)

	_, err = promptContent([]string{"default"}, "")
	assert.Error(t, err)
}
