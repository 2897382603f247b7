// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package indexer

import (
	"fmt"
	"strings"

	"github.com/rainlanguage/rainmeta/lib/meta"
)

// ErrNotFound is returned when a subgraph answers a query with no
// metas. It wraps meta.ErrNotFound.
var ErrNotFound = fmt.Errorf("subgraph returned no metas: %w", meta.ErrNotFound)

// RequestError reports a query a subgraph could not answer: a
// transport failure, a non-2xx response, an unreadable body or
// GraphQL errors. It matches meta.ErrIndexerUnavailable.
type RequestError struct {
	// URL is the subgraph endpoint.
	URL string

	// Key is the hash or subject the query was for.
	Key string

	// StatusCode is the HTTP status, or zero when no response
	// arrived.
	StatusCode int

	// Messages holds GraphQL error messages, if the server sent any.
	Messages []string

	Err error
}

func (e *RequestError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "subgraph %s: query for %s", e.URL, e.Key)
	if e.StatusCode != 0 {
		fmt.Fprintf(&builder, ": HTTP %d", e.StatusCode)
	}
	for _, message := range e.Messages {
		fmt.Fprintf(&builder, "; %s", message)
	}
	if e.Err != nil {
		fmt.Fprintf(&builder, ": %v", e.Err)
	}
	return builder.String()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == meta.ErrIndexerUnavailable
}
