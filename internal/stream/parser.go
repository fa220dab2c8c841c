// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// Parser reads SSE records from a body and yields decoded chunks.
// A Parser is not safe for concurrent use.
type Parser struct {
	reader *bufio.Reader
	record []string
	queue  []Chunk

	// final is returned once the queue drains; io.EOF after that.
	final error

	dropped int
	log     *zap.Logger
}

// NewParser creates a parser over r.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		reader: bufio.NewReader(r),
		log:    zap.NewNop(),
	}
}

// WithLogger sets the logger used to report dropped payloads.
func (p *Parser) WithLogger(log *zap.Logger) *Parser {
	if log != nil {
		p.log = log
	}
	return p
}

// Dropped returns how many payloads failed to decode and were skipped.
func (p *Parser) Dropped() int {
	return p.dropped
}

// Next returns the next chunk. It returns io.EOF at the end of the stream,
// ctx.Err() unchanged if ctx is done, an *apierr.HTTPError after an
// ErrorChunk, and an *apierr.NetworkError if reading the body fails.
func (p *Parser) Next(ctx context.Context) (Chunk, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(p.queue) > 0 {
			c := p.queue[0]
			p.queue = p.queue[1:]
			return c, nil
		}

		if p.final != nil {
			err := p.final
			p.final = io.EOF
			return nil, err
		}

		line, readErr := p.reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p.final = io.EOF
			return nil, &apierr.NetworkError{Cause: readErr}
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if err := p.flush(ctx); err != nil {
				return nil, err
			}
		} else {
			p.record = append(p.record, line)
		}

		if readErr != nil {
			// Body without a trailing blank line
			if err := p.flush(ctx); err != nil {
				return nil, err
			}
			if p.final == nil {
				p.final = io.EOF
			}
		}
	}
}

// flush decodes the buffered record into the queue.
func (p *Parser) flush(ctx context.Context) error {
	lines := p.record
	p.record = nil

	for _, line := range lines {
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		payload := strings.TrimLeft(line[len(dataPrefix):], " \t")
		if payload == doneSentinel {
			continue
		}

		chunk, err := Decode([]byte(payload))
		if err != nil {
			p.dropped++
			p.log.Debug("dropping undecodable stream payload", zap.Error(err), zap.Int("bytes", len(payload)))
			continue
		}

		p.queue = append(p.queue, chunk)
		if e, ok := chunk.(ErrorChunk); ok {
			p.final = &apierr.HTTPError{
				Code:    http.StatusInternalServerError,
				Message: "Stream error",
				Detail:  e.Message,
			}
			return nil
		}
	}
	return nil
}
