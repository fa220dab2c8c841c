// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jeranaias/rigrun-chat/internal/apierr"
	"github.com/jeranaias/rigrun-chat/internal/transport"
)

// maxErrorBody bounds how much of a failed response becomes error detail.
const maxErrorBody = 4096

// call performs req and decodes a 2xx body with decode. Non-2xx statuses
// become *apierr.HTTPError with the body text as detail, or fallback if the
// body is empty or unreadable.
func call[T any](ctx context.Context, doer transport.Doer, req transport.Request, fallback string, decode func([]byte) (T, error)) (T, error) {
	var zero T

	resp, err := doer.Do(ctx, req)
	if err != nil {
		return zero, normalize(ctx, err)
	}
	defer resp.Body.Close()

	if !transport.IsSuccess(resp.StatusCode) {
		return zero, statusError(resp, fallback)
	}

	body, err := transport.ReadAll(resp.Body)
	if err != nil {
		return zero, normalize(ctx, err)
	}

	v, err := decode(body)
	if err != nil {
		return zero, &apierr.SerializationError{Cause: err}
	}
	return v, nil
}

// normalize maps a transport failure to an apierr.Error. A canceled ctx wins
// over whatever error the transport produced.
func normalize(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && apierr.IsCanceled(ctxErr) {
		return ctxErr
	}
	return apierr.Wrap(err)
}

// statusError converts a non-2xx response.
func statusError(resp *http.Response, fallback string) *apierr.HTTPError {
	detail := fallback
	if body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			detail = text
		}
	}
	return apierr.FromStatus(resp.StatusCode, detail)
}

// decodeJSON decodes a single JSON object body.
func decodeJSON[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return &apierr.ValidationError{Message: kind + " id must not be empty"}
	}
	return nil
}
