// Copyright 2026 The Rainmeta Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns bytes into validated meta items and hashes
// into bytes.
//
// The [Pipeline] is the encode and decode path: payload compression,
// document framing, content hashing and registry validation. Decoding
// stops only on document-level failures; a bad item is reported on
// its own [Decoded] result and decoding carries on.
//
// A [Resolver] looks meta up by hash, first in a local [Store] and
// then through an [Indexer]. Concurrent lookups for one hash share a
// single indexer call, and every blob an indexer returns is checked
// against the hash before it is cached or returned.
package resolver
