// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rainlanguage/rainmeta/lib/clock"
	"github.com/rainlanguage/rainmeta/lib/meta"
	"github.com/rainlanguage/rainmeta/lib/metastore"
	"github.com/rainlanguage/rainmeta/lib/registry"
)

// DefaultTimeout bounds one indexer lookup when Config.Timeout is
// zero.
const DefaultTimeout = 30 * time.Second

// Store is the local cache consulted before the indexer. Put must
// reject bytes that are not the content named by the hash.
// *metastore.Store satisfies it.
type Store interface {
	Get(hash meta.Hash) ([]byte, bool)
	Put(hash meta.Hash, data []byte) error
}

// Indexer fetches candidate meta blobs for a hash from a remote
// source. An error matching meta.ErrNotFound means the source
// answered and has nothing for the hash.
type Indexer interface {
	FetchByHash(ctx context.Context, hash meta.Hash) ([][]byte, error)
}

// IndexerError reports a lookup the indexer could not answer. It
// matches meta.ErrIndexerUnavailable.
type IndexerError struct {
	Hash meta.Hash
	Err  error
}

func (e *IndexerError) Error() string {
	return fmt.Sprintf("indexer lookup for %s: %v", e.Hash, e.Err)
}

func (e *IndexerError) Unwrap() error {
	return e.Err
}

func (e *IndexerError) Is(target error) bool {
	return target == meta.ErrIndexerUnavailable
}

// Config holds the dependencies of a Resolver.
type Config struct {
	// Local caches resolved blobs. Defaults to an in-memory
	// metastore.
	Local Store

	// Indexer is consulted on a local miss. Without one every miss
	// fails with meta.ErrNotFound.
	Indexer Indexer

	// Registry validates resolved documents. Defaults to the
	// built-in registry.
	Registry *registry.Registry

	// Timeout bounds one shared indexer lookup. Defaults to
	// DefaultTimeout.
	Timeout time.Duration

	Logger *slog.Logger
	Clock  clock.Clock
}

// Resolver finds meta bytes by hash, locally first and then through
// the indexer. Concurrent lookups of the same hash share one indexer
// call. Successful lookups are cached in the local store; failures
// are not.
//
// Resolver is safe for concurrent use.
type Resolver struct {
	local    Store
	indexer  Indexer
	pipeline *Pipeline
	timeout  time.Duration
	logger   *slog.Logger
	clock    clock.Clock

	group singleflight.Group

	// testHookJoined runs after a caller has joined the shared lookup
	// for a hash.
	testHookJoined func()
}

// New creates a Resolver, filling unset Config fields with defaults.
func New(config Config) *Resolver {
	if config.Local == nil {
		config.Local = metastore.NewMemory()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	return &Resolver{
		local:    config.Local,
		indexer:  config.Indexer,
		pipeline: NewPipeline(config.Registry),
		timeout:  config.Timeout,
		logger:   config.Logger,
		clock:    config.Clock,
	}
}

// ResolveByHash returns the bytes stored under hash. These are either
// bytes whose keccak256 is hash, or a document or item containing an
// item whose content hash is hash.
//
// Cancelling ctx abandons the wait but not a lookup other callers
// share; that lookup runs to completion under the resolver's own
// timeout.
func (r *Resolver) ResolveByHash(ctx context.Context, hash meta.Hash) ([]byte, error) {
	if data, ok := r.local.Get(hash); ok {
		return data, nil
	}
	if r.indexer == nil {
		return nil, fmt.Errorf("%w: %s (no indexer configured)", meta.ErrNotFound, hash)
	}

	results := r.group.DoChan(hash.String(), func() (any, error) {
		return r.fetch(ctx, hash)
	})
	if r.testHookJoined != nil {
		r.testHookJoined()
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		return bytes.Clone(result.Val.([]byte)), nil
	}
}

// ResolveDocument resolves hash and decodes the result. A resolved
// blob that is a single bare item is decoded as a one-item document.
func (r *Resolver) ResolveDocument(ctx context.Context, hash meta.Hash) ([]Decoded, error) {
	data, err := r.ResolveByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if !meta.IsRainMetaDocument(data) {
		item, consumed, err := meta.DecodeItem(data)
		if err == nil && consumed == len(data) {
			data, err = meta.Frame([]meta.Item{item})
			if err != nil {
				return nil, err
			}
		}
	}
	return r.pipeline.Decode(data)
}

// fetch runs the shared indexer lookup for one hash.
func (r *Resolver) fetch(ctx context.Context, hash meta.Hash) ([]byte, error) {
	// A caller that missed locally may arrive just after a previous
	// lookup stored the result and left the group.
	if data, ok := r.local.Get(hash); ok {
		return data, nil
	}

	fetchContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	start := r.clock.Now()
	candidates, err := r.indexer.FetchByHash(fetchContext, hash)
	if err != nil {
		if errors.Is(err, meta.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", meta.ErrNotFound, hash)
		}
		r.logger.Warn("indexer lookup failed", "hash", hash.String(), "error", err,
			"elapsed", clock.Since(r.clock, start))
		return nil, &IndexerError{Hash: hash, Err: err}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", meta.ErrNotFound, hash)
	}

	for index, candidate := range candidates {
		if err := metastore.Verify(hash, candidate); err != nil {
			r.logger.Debug("rejecting indexer candidate", "hash", hash.String(), "candidate", index, "error", err)
			continue
		}
		if err := r.local.Put(hash, candidate); err != nil {
			return nil, fmt.Errorf("caching %s: %w", hash, err)
		}
		r.logger.Debug("resolved meta from indexer", "hash", hash.String(), "bytes", len(candidate),
			"candidates", len(candidates), "elapsed", clock.Since(r.clock, start))
		return candidate, nil
	}
	return nil, fmt.Errorf("%w: none of %d indexer candidates match %s", meta.ErrHashMismatch, len(candidates), hash)
}
