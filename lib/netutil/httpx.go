// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reading for the
// subgraph clients.
//
// Every response body read goes through MaxResponseSize so a
// misbehaving endpoint cannot exhaust memory. Meta documents are
// small; the bound only needs to clear the largest page of hex
// encoded metas a subgraph returns for one query.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds response body reads: 32 MiB.
const MaxResponseSize int64 = 32 << 20

// maxErrorBody bounds the part of an error response quoted in error
// messages.
const maxErrorBody = 512

// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// ReadResponse reads a response body of at most MaxResponseSize
// bytes. Larger bodies fail with ErrResponseTooLarge rather than
// being silently cut short.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// DecodeResponse reads a JSON response body with ReadResponse and
// decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody returns the start of an error response body for use in
// diagnostics. Read errors are ignored: a partial body is still
// useful in a message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody+1))
	text := strings.TrimSpace(string(data))
	if len(data) > maxErrorBody {
		text = strings.TrimSpace(string(data[:maxErrorBody])) + "..."
	}
	return text
}
