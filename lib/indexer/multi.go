// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rainlanguage/rainmeta/lib/meta"
)

// MultiClient queries several subgraphs at once and returns the first
// successful answer. The remaining queries are cancelled.
type MultiClient struct {
	clients []*Client
}

// NewMultiClient creates one Client per URL.
func NewMultiClient(urls []string, httpClient *http.Client, logger *slog.Logger) (*MultiClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("indexer: no subgraph URLs configured")
	}
	clients := make([]*Client, 0, len(urls))
	for _, subgraphURL := range urls {
		client, err := NewClient(Config{URL: subgraphURL, HTTPClient: httpClient, Logger: logger})
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return &MultiClient{clients: clients}, nil
}

// FetchByHash runs Client.FetchByHash against every subgraph.
func (m *MultiClient) FetchByHash(ctx context.Context, hash meta.Hash) ([][]byte, error) {
	return m.first(ctx, meta.FormatHash(hash), func(ctx context.Context, client *Client) ([][]byte, error) {
		return client.FetchByHash(ctx, hash)
	})
}

// FetchBySubject runs Client.FetchBySubject against every subgraph.
func (m *MultiClient) FetchBySubject(ctx context.Context, subject string) ([][]byte, error) {
	return m.first(ctx, subject, func(ctx context.Context, client *Client) ([][]byte, error) {
		return client.FetchBySubject(ctx, subject)
	})
}

type outcome struct {
	blobs [][]byte
	err   error
}

// first returns the first successful query. When every subgraph
// fails, the result is ErrNotFound if they all answered with nothing,
// and otherwise the joined errors of those that could not answer.
func (m *MultiClient) first(ctx context.Context, key string, query func(context.Context, *Client) ([][]byte, error)) ([][]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan outcome, len(m.clients))
	for _, client := range m.clients {
		go func() {
			blobs, err := query(ctx, client)
			outcomes <- outcome{blobs: blobs, err: err}
		}()
	}

	var failures []error
	for range m.clients {
		result := <-outcomes
		if result.err == nil {
			return result.blobs, nil
		}
		if !errors.Is(result.err, meta.ErrNotFound) {
			failures = append(failures, result.err)
		}
	}
	if len(failures) == 0 {
		return nil, fmt.Errorf("%w for %s on %d subgraphs", ErrNotFound, key, len(m.clients))
	}
	return nil, errors.Join(failures...)
}
