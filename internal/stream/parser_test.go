// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
)

// collect drains p and returns the chunks and the first non-EOF error.
func collect(t *testing.T, ctx context.Context, p *Parser) ([]Chunk, error) {
	t.Helper()
	var chunks []Chunk
	for i := 0; i < 1000; i++ {
		c, err := p.Next(ctx)
		if errors.Is(err, io.EOF) {
			return chunks, nil
		}
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
	}
	t.Fatal("parser did not terminate")
	return nil, nil
}

func parse(t *testing.T, body string) ([]Chunk, error) {
	t.Helper()
	return collect(t, context.Background(), NewParser(strings.NewReader(body)))
}

// =============================================================================
// FRAMING
// =============================================================================

func TestParser_SingleDeltaAndDone(t *testing.T) {
	chunks, err := parse(t, "data: {\"type\":\"delta\",\"text\":\"hi\"}\n\ndata: [DONE]\n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Chunk{Delta{Text: "hi"}}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_MultipleDataLinesInOneRecord(t *testing.T) {
	body := "data: {\"type\":\"delta\",\"text\":\"a\"}\n" +
		"data:{\"type\":\"delta\",\"text\":\"b\"}\n" +
		"\n"
	chunks, err := parse(t, body)
	if err != nil {
		t.Fatal(err)
	}
	want := []Chunk{Delta{Text: "a"}, Delta{Text: "b"}}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_NoTrailingBlankLine(t *testing.T) {
	chunks, err := parse(t, "data: {\"type\":\"delta\",\"text\":\"end\"}")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0] != (Delta{Text: "end"}) {
		t.Errorf("got %#v, want one Delta{end}", chunks)
	}
}

func TestParser_CRLFAndNonDataFields(t *testing.T) {
	body := ": keep-alive\r\n\r\n" +
		"event: message\r\nid: 7\r\ndata: {\"type\":\"delta\",\"text\":\"x\"}\r\n\r\n"
	chunks, err := parse(t, body)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0] != (Delta{Text: "x"}) {
		t.Errorf("got %#v, want one Delta{x}", chunks)
	}
}

func TestParser_MalformedPayloadDropped(t *testing.T) {
	body := "data: not json\n\n" +
		"data: {\"type\":\"mystery\"}\n\n" +
		"data: {\"type\":\"delta\",\"text\":\"ok\"}\n\n"
	p := NewParser(strings.NewReader(body))
	chunks, err := collect(t, context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if p.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", p.Dropped())
	}
}

func TestParser_AllVariants(t *testing.T) {
	body := "data: {\"type\":\"delta\",\"content\":\"c\"}\n\n" +
		"data: {\"type\":\"tool_call\",\"id\":\"call_1\",\"name\":\"search\",\"arguments\":{\"q\":\"go\"}}\n\n" +
		"data: {\"type\":\"done\",\"thread_id\":\"t1\",\"message_id\":\"m1\"}\n\n"
	chunks, err := parse(t, body)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[0] != (Delta{Text: "c"}) {
		t.Errorf("chunk[0] = %#v", chunks[0])
	}
	tc, ok := chunks[1].(ToolCall)
	if !ok || tc.ID != "call_1" || tc.Name != "search" || string(tc.Arguments) != `{"q":"go"}` {
		t.Errorf("chunk[1] = %#v", chunks[1])
	}
	if chunks[2] != (Done{ThreadID: "t1", MessageID: "m1"}) {
		t.Errorf("chunk[2] = %#v", chunks[2])
	}
}

// =============================================================================
// ERROR TERMINATION
// =============================================================================

func TestParser_ErrorChunkTerminatesStream(t *testing.T) {
	body := "data: {\"type\":\"delta\",\"text\":\"partial\"}\n\n" +
		"data: {\"type\":\"error\",\"message\":\"model overloaded\"}\n" +
		"data: {\"type\":\"delta\",\"text\":\"same record\"}\n\n" +
		"data: {\"type\":\"delta\",\"text\":\"after\"}\n\n"
	p := NewParser(strings.NewReader(body))
	ctx := context.Background()

	chunks, err := collect(t, ctx, p)
	want := []Chunk{Delta{Text: "partial"}, ErrorChunk{Message: "model overloaded"}}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}

	var httpErr *apierr.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("terminating error = %v, want *apierr.HTTPError", err)
	}
	if httpErr.Code != 500 || httpErr.Message != "Stream error" || httpErr.Detail != "model overloaded" {
		t.Errorf("terminating error = %+v", httpErr)
	}

	if _, err := p.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Next after termination = %v, want io.EOF", err)
	}
}

// =============================================================================
// CANCELLATION AND READ FAILURES
// =============================================================================

func TestParser_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewParser(strings.NewReader("data: {\"type\":\"delta\",\"text\":\"hi\"}\n\n"))
	c, err := p.Next(ctx)
	if c != nil {
		t.Errorf("expected no chunk after cancellation, got %#v", c)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if _, ok := apierr.As(err); ok {
		t.Error("cancellation must not be converted into an apierr.Error")
	}
}

func TestParser_CancelBetweenChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	body := "data: {\"type\":\"delta\",\"text\":\"a\"}\ndata: {\"type\":\"delta\",\"text\":\"b\"}\n\n"
	p := NewParser(strings.NewReader(body))

	if _, err := p.Next(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	if _, err := p.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestParser_ReadFailureIsNetworkError(t *testing.T) {
	p := NewParser(io.MultiReader(
		strings.NewReader("data: {\"type\":\"delta\",\"text\":\"a\"}\n\n"),
		failingReader{err: errors.New("connection reset")},
	))
	chunks, err := collect(t, context.Background(), p)
	if len(chunks) != 1 {
		t.Errorf("got %d chunks before failure, want 1", len(chunks))
	}
	var netErr *apierr.NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("err = %v, want *apierr.NetworkError", err)
	}
}
