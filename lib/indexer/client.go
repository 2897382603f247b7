// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package indexer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/netutil"
)

const metasByHashQuery = `query MetasByHash($metahash: Bytes!) {
  metaV1S(where: {metaHash: $metahash}) { meta metaHash subject }
}`

const metasBySubjectQuery = `query MetasBySubject($subject: BigInt!) {
  metaV1S(where: {subject: $subject}) { meta metaHash subject }
}`

// Config holds configuration for a subgraph Client.
type Config struct {
	// URL is the GraphQL endpoint of a metaboard subgraph. Must be
	// http or https.
	URL string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient. Timeouts come from the request context.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client queries one metaboard subgraph for emitted metas.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a subgraph client.
func NewClient(config Config) (*Client, error) {
	parsed, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("indexer: parsing subgraph URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("indexer: subgraph URL must be http or https (got %q)", config.URL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("indexer: subgraph URL has no host (got %q)", config.URL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{url: config.URL, httpClient: httpClient, logger: logger}, nil
}

// URL returns the subgraph endpoint.
func (client *Client) URL() string {
	return client.url
}

// FetchByHash returns every meta emitted with the given meta hash,
// hex-decoded. A subgraph with no matching metas yields ErrNotFound.
func (client *Client) FetchByHash(ctx context.Context, hash meta.Hash) ([][]byte, error) {
	key := meta.FormatHash(hash)
	return client.fetch(ctx, key, metasByHashQuery, map[string]any{"metahash": key})
}

// FetchBySubject returns every meta emitted for a subject. The
// subject is a uint256 in decimal or 0x-prefixed hex, as accepted by
// the subgraph's BigInt scalar; see SubjectFromHash.
func (client *Client) FetchBySubject(ctx context.Context, subject string) ([][]byte, error) {
	return client.fetch(ctx, subject, metasBySubjectQuery, map[string]any{"subject": subject})
}

// SubjectFromHash renders a bytes32 subject as the decimal string the
// subgraph stores it as.
func SubjectFromHash(hash meta.Hash) string {
	return new(big.Int).SetBytes(hash[:]).String()
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data *struct {
		Metas []metaV1 `json:"metaV1S"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type metaV1 struct {
	Meta     string `json:"meta"`
	MetaHash string `json:"metaHash"`
	Subject  string `json:"subject"`
}

func (client *Client) fetch(ctx context.Context, key, query string, variables map[string]any) ([][]byte, error) {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("indexer: encoding query: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("indexer: creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, &RequestError{URL: client.url, Key: key, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &RequestError{
			URL:        client.url,
			Key:        key,
			StatusCode: response.StatusCode,
			Messages:   []string{netutil.ErrorBody(response.Body)},
		}
	}

	var decoded graphQLResponse
	if err := netutil.DecodeResponse(response.Body, &decoded); err != nil {
		return nil, &RequestError{URL: client.url, Key: key, StatusCode: response.StatusCode, Err: err}
	}
	if len(decoded.Errors) > 0 || decoded.Data == nil {
		requestError := &RequestError{URL: client.url, Key: key, StatusCode: response.StatusCode}
		for _, graphQLError := range decoded.Errors {
			requestError.Messages = append(requestError.Messages, graphQLError.Message)
		}
		if decoded.Data == nil && len(requestError.Messages) == 0 {
			requestError.Messages = []string{"response has no data"}
		}
		return nil, requestError
	}

	if len(decoded.Data.Metas) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, key)
	}

	// A row that does not decode is skipped; the others are still
	// candidates for the caller to verify.
	blobs := make([][]byte, 0, len(decoded.Data.Metas))
	var decodeErr error
	for _, entry := range decoded.Data.Metas {
		blob, err := decodeHex(entry.Meta)
		if err != nil {
			decodeErr = fmt.Errorf("indexer: decoding meta with hash %s: %w", entry.MetaHash, err)
			client.logger.Debug("skipping undecodable meta", "url", client.url, "key", key,
				"meta_hash", entry.MetaHash, "error", err)
			continue
		}
		blobs = append(blobs, blob)
	}
	if len(blobs) == 0 {
		return nil, decodeErr
	}
	client.logger.Debug("subgraph query answered", "url", client.url, "key", key, "metas", len(blobs))
	return blobs, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
